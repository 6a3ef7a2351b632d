package timeline

import (
	"sync"
	"testing"
	"time"
)

func TestNewProjectLayers(t *testing.T) {
	p := NewProject(Student{Name: "Ana", Surname: "Ruiz"}, nil)

	layers := p.Layers()
	if len(layers) != 7 {
		t.Fatalf("got %d layers, want 7", len(layers))
	}
	if layers[0].Def.ID != "estructura" || layers[6].Def.ID != "otros" {
		t.Errorf("unexpected layer order: %s ... %s", layers[0].Def.ID, layers[6].Def.ID)
	}
	if _, ok := p.Layer("acompañamiento"); !ok {
		t.Error("missing acompañamiento layer")
	}
	if p.Video().Duration != DefaultTotalDuration {
		t.Errorf("default duration = %v", p.Video().Duration)
	}
	if p.Student().FullName() != "Ana Ruiz" {
		t.Errorf("FullName = %q", p.Student().FullName())
	}
	if p.Dirty() {
		t.Error("new project should not be dirty")
	}
}

func TestProjectChangeNotification(t *testing.T) {
	p := NewProject(Student{}, nil)
	var mu sync.Mutex
	var changes []Change
	unsubscribe := p.Subscribe(func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	l, _ := p.Layer("estructura")
	b := l.Blocks.Add("intro", "Intro", 0, 8)
	l.Blocks.Update(b.ID, WithStart(2))
	l.Blocks.Remove(b.ID)
	l.Blocks.Remove(b.ID)

	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}
	for i, c := range changes {
		if c.Kind != ChangeBlocks || c.LayerID != "estructura" {
			t.Errorf("change %d = %+v", i, c)
		}
		if c.Revision != uint64(i+1) {
			t.Errorf("change %d revision = %d", i, c.Revision)
		}
	}
	if !p.Dirty() {
		t.Error("project should be dirty after mutation")
	}

	unsubscribe()
	l.Blocks.Add("coda", "Coda", 100, 4)
	if len(changes) != 3 {
		t.Error("listener called after unsubscribe")
	}
}

func TestProjectMarkSaved(t *testing.T) {
	p := NewProject(Student{}, nil)
	l, _ := p.Layer("estructura")
	l.Blocks.Add("intro", "Intro", 0, 8)

	snap := p.Snapshot()
	l.Blocks.Add("coda", "Coda", 200, 4)
	now := time.Now()
	p.MarkSaved(snap.Revision, now)
	if !p.Dirty() {
		t.Error("dirty flag cleared although a change happened after the snapshot")
	}
	if !p.LastSaved().Equal(now) {
		t.Errorf("LastSaved = %v, want %v", p.LastSaved(), now)
	}

	p.MarkSaved(p.Revision(), now)
	if p.Dirty() {
		t.Error("dirty flag not cleared")
	}
}

func TestProjectSnapshotSorted(t *testing.T) {
	p := NewProject(Student{}, nil)
	l, _ := p.Layer("melodia-principal")
	l.Blocks.Add("tema-b", "TEMA B", 30, 8)
	l.Blocks.Add("tema-a", "TEMA A", 10, 8)

	snap := p.Snapshot()
	var got []Block
	for _, ls := range snap.Layers {
		if ls.Def.ID == "melodia-principal" {
			got = ls.Blocks
		}
	}
	if len(got) != 2 || got[0].Label != "TEMA A" || got[1].Label != "TEMA B" {
		t.Errorf("snapshot blocks not sorted: %+v", got)
	}
}

func TestProjectRestore(t *testing.T) {
	p := NewProject(Student{}, nil)
	est, _ := p.Layer("estructura")
	old := est.Blocks.Add("intro", "Intro", 0, 8)
	otros, _ := p.Layer("otros")
	otros.Blocks.Add("hit", "Hit", 3, 0.5)

	var kinds []ChangeKind
	p.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	p.Restore(Video{Title: "Song", URL: "https://youtu.be/abc", Duration: 180}, map[string][]Block{
		"estructura": {{ID: "b1", Category: "verse", Label: "A (Estrofa)", StartTime: 8, Duration: 16}},
		"unknown":    {{ID: "b2", Category: "x", Label: "X", StartTime: 1, Duration: 1}},
	})

	if _, ok := est.Blocks.Get(old.ID); ok {
		t.Error("old block survived restore")
	}
	b, ok := est.Blocks.Get("b1")
	if !ok || b.StartTime != 8 || b.Duration != 16 {
		t.Errorf("restored block = %+v, %v", b, ok)
	}
	if otros.Blocks.Len() != 0 {
		t.Error("layer absent from restore should be empty")
	}
	if v := p.Video(); v.Title != "Song" || v.Duration != 180 {
		t.Errorf("video = %+v", v)
	}
	if len(kinds) != 1 || kinds[0] != ChangeRestored {
		t.Errorf("changes = %v", kinds)
	}
}

func TestProjectSetVideoKeepsDuration(t *testing.T) {
	p := NewProject(Student{}, nil)
	p.SetVideo(Video{Title: "Untitled", URL: "x"})
	if p.Video().Duration != DefaultTotalDuration {
		t.Errorf("duration = %v", p.Video().Duration)
	}
	p.SetVideo(Video{Title: "Song", Duration: 95.5})
	if p.Video().Duration != 95.5 {
		t.Errorf("duration = %v", p.Video().Duration)
	}
}

func TestFindBlock(t *testing.T) {
	p := NewProject(Student{}, nil)
	l, _ := p.Layer("conectores")
	b := l.Blocks.Add("fill", "Fill", 4, 2)

	got, gb, ok := p.FindBlock(b.ID)
	if !ok || got.Def.ID != "conectores" || gb.ID != b.ID {
		t.Errorf("FindBlock = %v, %+v, %v", got, gb, ok)
	}
	if _, _, ok := p.FindBlock("missing"); ok {
		t.Error("FindBlock found a missing block")
	}
}

func TestVisibleLayers(t *testing.T) {
	defs := DefaultLayers()
	tests := []struct {
		step int
		want int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{7, 7},
		{12, 7},
	}
	for _, tt := range tests {
		if got := len(VisibleLayers(defs, tt.step)); got != tt.want {
			t.Errorf("VisibleLayers(step %d) = %d layers, want %d", tt.step, got, tt.want)
		}
	}
}

package timeline

import (
	"math"
	"strings"
	"sync"
	"time"
)

// DefaultTotalDuration is the timeline length before any media is loaded.
const DefaultTotalDuration = 240.0

// Student identifies who owns the analysis.
type Student struct {
	Name    string `json:"name" yaml:"name"`
	Surname string `json:"surname" yaml:"surname"`
}

// FullName joins name and surname.
func (s Student) FullName() string {
	return strings.TrimSpace(s.Name + " " + s.Surname)
}

// Matches reports whether two identities refer to the same student.
func (s Student) Matches(other Student) bool {
	return s.Name == other.Name && s.Surname == other.Surname
}

// Video is the media being analysed. Duration is the timeline length.
type Video struct {
	Title    string  `json:"title" yaml:"title"`
	URL      string  `json:"url" yaml:"url"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// ChangeKind identifies what part of a Project changed.
type ChangeKind int

const (
	// ChangeBlocks is a mutation inside one layer.
	ChangeBlocks ChangeKind = iota
	// ChangeVideo is new video metadata.
	ChangeVideo
	// ChangeRestored is a whole-project replacement (import or load).
	ChangeRestored
)

// String returns a short name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeBlocks:
		return "blocks"
	case ChangeVideo:
		return "video"
	case ChangeRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// Change is delivered to Project listeners after every mutation.
type Change struct {
	Kind     ChangeKind
	LayerID  string
	Revision uint64
}

// Layer pairs a layer definition with its block store.
type Layer struct {
	Def    LayerDef
	Blocks *BlockStore
}

// LayerSnapshot is a copy of one layer's content, blocks sorted by start.
type LayerSnapshot struct {
	Def    LayerDef
	Blocks []Block
}

// Snapshot is a consistent copy of the whole Project.
type Snapshot struct {
	Student   Student
	Video     Video
	Layers    []LayerSnapshot
	LastSaved time.Time
	Revision  uint64
}

// Project is the aggregate root of an editing session.
type Project struct {
	mu        sync.RWMutex
	student   Student
	video     Video
	layers    []*Layer
	byID      map[string]*Layer
	lastSaved time.Time
	dirty     bool
	revision  uint64

	lmu       sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

// NewProject creates an empty project over the given layer definitions.
// A nil defs uses DefaultLayers.
func NewProject(student Student, defs []LayerDef) *Project {
	if defs == nil {
		defs = DefaultLayers()
	}
	p := &Project{
		student:   student,
		video:     Video{Duration: DefaultTotalDuration},
		byID:      make(map[string]*Layer, len(defs)),
		listeners: make(map[int]func(Change)),
	}
	for _, d := range defs {
		l := &Layer{Def: d, Blocks: newBlockStore(d.ID, &p.mu, p.blocksChanged)}
		p.layers = append(p.layers, l)
		p.byID[d.ID] = l
	}
	return p
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (p *Project) Subscribe(fn func(Change)) func() {
	p.lmu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.lmu.Unlock()
	return func() {
		p.lmu.Lock()
		delete(p.listeners, id)
		p.lmu.Unlock()
	}
}

func (p *Project) emit(c Change) {
	p.lmu.Lock()
	fns := make([]func(Change), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.lmu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// touchLocked bumps the revision and marks the project dirty.
func (p *Project) touchLocked() uint64 {
	p.revision++
	p.dirty = true
	return p.revision
}

func (p *Project) blocksChanged(layerID string) {
	p.mu.Lock()
	rev := p.touchLocked()
	p.mu.Unlock()
	p.emit(Change{Kind: ChangeBlocks, LayerID: layerID, Revision: rev})
}

// Student returns the session identity.
func (p *Project) Student() Student {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.student
}

// Video returns the current video metadata.
func (p *Project) Video() Video {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.video
}

// SetVideo replaces the video metadata. A non-positive duration keeps the
// current one.
func (p *Project) SetVideo(v Video) {
	p.mu.Lock()
	switch {
	case !(v.Duration > 0) || math.IsInf(v.Duration, 1):
		v.Duration = p.video.Duration
	case v.Duration > MaxTime:
		v.Duration = MaxTime
	}
	p.video = v
	rev := p.touchLocked()
	p.mu.Unlock()
	p.emit(Change{Kind: ChangeVideo, Revision: rev})
}

// Layers returns the layers in declaration order.
func (p *Project) Layers() []*Layer {
	out := make([]*Layer, len(p.layers))
	copy(out, p.layers)
	return out
}

// Layer returns the layer with the given id.
func (p *Project) Layer(id string) (*Layer, bool) {
	l, ok := p.byID[id]
	return l, ok
}

// Defs returns the layer definitions in declaration order.
func (p *Project) Defs() []LayerDef {
	out := make([]LayerDef, len(p.layers))
	for i, l := range p.layers {
		out[i] = l.Def
	}
	return out
}

// FindBlock locates a block by id across all layers.
func (p *Project) FindBlock(id string) (*Layer, Block, bool) {
	for _, l := range p.layers {
		if b, ok := l.Blocks.Get(id); ok {
			return l, b, true
		}
	}
	return nil, Block{}, false
}

// Dirty reports whether there are changes since the last MarkSaved.
func (p *Project) Dirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty
}

// Revision returns the mutation counter.
func (p *Project) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// LastSaved returns the time of the last successful save.
func (p *Project) LastSaved() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSaved
}

// MarkSaved records a save of the snapshot taken at revision rev. The dirty
// flag is cleared only if nothing changed since.
func (p *Project) MarkSaved(rev uint64, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSaved = at
	if p.revision == rev {
		p.dirty = false
	}
}

// Snapshot returns a consistent copy of the project.
func (p *Project) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Snapshot{
		Student:   p.student,
		Video:     p.video,
		LastSaved: p.lastSaved,
		Revision:  p.revision,
		Layers:    make([]LayerSnapshot, len(p.layers)),
	}
	for i, l := range p.layers {
		s.Layers[i] = LayerSnapshot{Def: l.Def, Blocks: l.Blocks.sortedLocked()}
	}
	return s
}

// Restore atomically replaces the video metadata and the content of every
// layer. Layers absent from blocks become empty; unknown layer ids are
// ignored.
func (p *Project) Restore(video Video, blocks map[string][]Block) {
	p.mu.Lock()
	switch {
	case !(video.Duration > 0) || math.IsInf(video.Duration, 1):
		video.Duration = DefaultTotalDuration
	case video.Duration > MaxTime:
		video.Duration = MaxTime
	}
	p.video = video
	for _, l := range p.layers {
		l.Blocks.replaceLocked(blocks[l.Def.ID])
	}
	rev := p.touchLocked()
	p.mu.Unlock()
	p.emit(Change{Kind: ChangeRestored, Revision: rev})
}

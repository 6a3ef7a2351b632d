package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProvider struct {
	mu    sync.Mutex
	ready bool
	state State
	pos   float64
	dur   float64
	title string
	calls []string
	subs  subscribers
}

func newFakeProvider(ready bool) *fakeProvider {
	return &fakeProvider{ready: ready, state: StatePaused, dur: 200, title: "Fake"}
}

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeProvider) fire(e Event) {
	f.mu.Lock()
	fns := f.subs.snapshot()
	f.mu.Unlock()
	deliver(fns, e)
}

func (f *fakeProvider) setPos(p float64) {
	f.mu.Lock()
	f.pos = p
	f.mu.Unlock()
}

func (f *fakeProvider) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *fakeProvider) Load(_ context.Context, ref string) error {
	f.record("load:" + ref)
	return nil
}

func (f *fakeProvider) Play() error {
	f.record("play")
	f.setState(StatePlaying)
	f.fire(Event{Kind: EventStateChange, State: StatePlaying})
	return nil
}

func (f *fakeProvider) Pause() error {
	f.record("pause")
	f.setState(StatePaused)
	f.fire(Event{Kind: EventStateChange, State: StatePaused})
	return nil
}

func (f *fakeProvider) Seek(s float64) error {
	f.record("seek")
	f.setPos(s)
	return nil
}

func (f *fakeProvider) Mute() error   { f.record("mute"); return nil }
func (f *fakeProvider) Unmute() error { f.record("unmute"); return nil }

func (f *fakeProvider) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeProvider) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

func (f *fakeProvider) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

func (f *fakeProvider) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeProvider) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeProvider) Subscribe(fn func(Event)) func() {
	f.mu.Lock()
	id := f.subs.add(fn)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs.remove(id)
		f.mu.Unlock()
	}
}

func (f *fakeProvider) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs.fns)
}

func (f *fakeProvider) Close() error { return nil }

type manualTicker struct {
	ch      chan time.Time
	started atomic.Int32
	stopped atomic.Int32
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) fn(time.Duration) (<-chan time.Time, func()) {
	m.started.Add(1)
	return m.ch, func() { m.stopped.Add(1) }
}

func newTestClock(p Provider, tk *manualTicker) *Clock {
	return NewClock(p, DefaultConfig(), WithTicker(tk.fn))
}

func TestSeekDeadband(t *testing.T) {
	p := newFakeProvider(true)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	p.setPos(10)
	c.Seek(10.8)
	if n := p.count("seek"); n != 0 {
		t.Errorf("seek within deadband forwarded %d times", n)
	}
	if c.Time() != 10.8 {
		t.Errorf("Time = %v, want 10.8", c.Time())
	}

	c.Seek(11) // exactly at the deadband edge
	if n := p.count("seek"); n != 0 {
		t.Errorf("seek at deadband edge forwarded")
	}

	c.Seek(30)
	if n := p.count("seek"); n != 1 {
		t.Errorf("seek beyond deadband forwarded %d times, want 1", n)
	}
	if p.CurrentTime() != 30 {
		t.Errorf("provider position = %v", p.CurrentTime())
	}

	// The provider now reports the sought position; repeating the seek is quiet.
	c.Seek(30.4)
	if n := p.count("seek"); n != 1 {
		t.Errorf("post-seek report triggered another seek")
	}
}

func TestSeekWhilePlayingNotForwarded(t *testing.T) {
	p := newFakeProvider(true)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	c.SetPlaying(true)
	c.Seek(100)
	if n := p.count("seek"); n != 0 {
		t.Errorf("seek while playing forwarded %d times", n)
	}
}

func TestSeekClampsToTotal(t *testing.T) {
	p := newFakeProvider(true)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	c.SetTotal(60)
	c.Seek(90)
	if c.Time() != 60 {
		t.Errorf("Time = %v, want 60", c.Time())
	}
	c.Seek(-5)
	if c.Time() != 0 {
		t.Errorf("Time = %v, want 0", c.Time())
	}
}

func TestPlayPauseCommandsOnlyOnDifference(t *testing.T) {
	p := newFakeProvider(true)
	tk := newManualTicker()
	c := newTestClock(p, tk)
	defer c.Close()

	c.SetPlaying(true)
	if p.count("play") != 1 || !c.Playing() {
		t.Fatalf("play not commanded: %v", p.Calls())
	}
	c.SetPlaying(true)
	if p.count("play") != 1 {
		t.Errorf("play commanded while provider already playing")
	}

	c.SetPlaying(false)
	if p.count("pause") != 1 || c.Playing() {
		t.Errorf("pause not commanded: %v", p.Calls())
	}
	c.SetPlaying(false)
	if p.count("pause") != 1 {
		t.Errorf("pause commanded while provider not playing")
	}

	if tk.started.Load() != 1 || tk.stopped.Load() != 1 {
		t.Errorf("poll loop started %d stopped %d", tk.started.Load(), tk.stopped.Load())
	}
}

func TestPollOverwritesTime(t *testing.T) {
	p := newFakeProvider(true)
	tk := newManualTicker()
	c := newTestClock(p, tk)
	defer c.Close()

	updates := make(chan Update, 8)
	c.Subscribe(func(u Update) {
		if u.Kind == UpdatePoll {
			updates <- u
		}
	})

	c.Seek(50)
	c.SetPlaying(true)
	p.setPos(12.3)
	tk.ch <- time.Now()

	select {
	case u := <-updates:
		if u.Time != 12.3 || !u.Playing {
			t.Errorf("poll update = %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no poll update")
	}
	if c.Time() != 12.3 {
		t.Errorf("Time = %v, want provider position 12.3", c.Time())
	}
	if n := p.count("seek"); n != 1 {
		t.Errorf("poll caused provider seeks: %v", p.Calls())
	}
}

func TestProviderStateChangeDoesNotCommand(t *testing.T) {
	p := newFakeProvider(true)
	tk := newManualTicker()
	c := newTestClock(p, tk)
	defer c.Close()

	var states []bool
	c.Subscribe(func(u Update) {
		if u.Kind == UpdateState {
			states = append(states, u.Playing)
		}
	})

	p.setState(StatePlaying)
	p.fire(Event{Kind: EventStateChange, State: StatePlaying})
	if !c.Playing() {
		t.Error("clock did not follow provider into playing")
	}
	p.setState(StateEnded)
	p.fire(Event{Kind: EventStateChange, State: StateEnded})
	if c.Playing() {
		t.Error("clock still playing after provider ended")
	}

	if n := len(p.Calls()); n != 0 {
		t.Errorf("provider events triggered commands: %v", p.Calls())
	}
	if len(states) != 2 || !states[0] || states[1] {
		t.Errorf("state updates = %v", states)
	}
	if tk.started.Load() != 1 || tk.stopped.Load() != 1 {
		t.Errorf("poll loop started %d stopped %d", tk.started.Load(), tk.stopped.Load())
	}
}

func TestCommandsBeforeReady(t *testing.T) {
	p := newFakeProvider(false)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	c.SetPlaying(true)
	c.Seek(40)
	c.Mute()
	if c.Playing() {
		t.Error("play state changed before readiness")
	}
	if c.Time() != 40 {
		t.Errorf("Time = %v; seek should still move the cursor", c.Time())
	}
	if err := c.Load(context.Background(), "https://youtu.be/abc"); err != nil {
		t.Fatalf("deferred Load: %v", err)
	}
	if n := len(p.Calls()); n != 0 {
		t.Fatalf("commands issued before readiness: %v", p.Calls())
	}

	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()
	p.fire(Event{Kind: EventReady})

	if !c.Ready() {
		t.Error("clock not ready after ready event")
	}
	if p.count("load:https://youtu.be/abc") != 1 {
		t.Errorf("deferred load not issued: %v", p.Calls())
	}
}

func TestLoadedUpdatesTotal(t *testing.T) {
	p := newFakeProvider(true)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	var got Update
	c.Subscribe(func(u Update) {
		if u.Kind == UpdateLoaded {
			got = u
		}
	})

	c.Seek(150)
	p.mu.Lock()
	p.dur = 120
	p.title = "Cancion"
	p.mu.Unlock()
	p.fire(Event{Kind: EventLoaded})

	if got.Title != "Cancion" || got.Duration != 120 {
		t.Errorf("loaded update = %+v", got)
	}
	if c.Time() != 120 {
		t.Errorf("Time = %v, want clamp to new duration", c.Time())
	}
}

func TestMuteToggle(t *testing.T) {
	p := newFakeProvider(true)
	c := newTestClock(p, newManualTicker())
	defer c.Close()

	c.ToggleMute()
	c.ToggleMute()
	if calls := p.Calls(); len(calls) != 2 || calls[0] != "mute" || calls[1] != "unmute" {
		t.Errorf("calls = %v", calls)
	}
	if c.Muted() {
		t.Error("still muted")
	}
}

func TestCloseTearsDown(t *testing.T) {
	p := newFakeProvider(true)
	tk := newManualTicker()
	c := newTestClock(p, tk)

	calls := 0
	c.Subscribe(func(Update) { calls++ })
	c.SetPlaying(true)
	before := calls

	c.Close()
	if tk.stopped.Load() != 1 {
		t.Errorf("poll loop not stopped on close")
	}
	if p.subscriberCount() != 0 {
		t.Errorf("clock still subscribed to provider")
	}

	c.Seek(10)
	c.SetPlaying(false)
	if calls != before {
		t.Error("listeners notified after close")
	}
	c.Close()
}

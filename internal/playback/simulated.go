package playback

import (
	"context"
	"math"
	"sync"
	"time"
)

// Simulated is an in-process provider with a virtual transport that
// advances with wall time. It needs no media and is used when no external
// player is configured.
type Simulated struct {
	mu       sync.Mutex
	now      func() time.Time
	ready    bool
	loaded   bool
	state    State
	pos      float64
	anchor   time.Time
	duration float64
	title    string
	muted    bool
	subs     subscribers
}

// SimOption configures a Simulated provider.
type SimOption func(*Simulated)

// WithNow replaces the wall clock, for tests.
func WithNow(now func() time.Time) SimOption {
	return func(s *Simulated) { s.now = now }
}

// WithMedia sets the title and duration reported after Load.
func WithMedia(title string, duration float64) SimOption {
	return func(s *Simulated) {
		s.title = title
		s.duration = duration
	}
}

// WithDeferredReady keeps the provider unready until MarkReady is called.
func WithDeferredReady() SimOption {
	return func(s *Simulated) { s.ready = false }
}

// NewSimulated creates a provider that is ready immediately unless
// WithDeferredReady is given.
func NewSimulated(opts ...SimOption) *Simulated {
	s := &Simulated{
		now:      time.Now,
		ready:    true,
		duration: 240,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkReady flips the provider to ready and emits EventReady.
func (s *Simulated) MarkReady() {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return
	}
	s.ready = true
	fns := s.subs.snapshot()
	s.mu.Unlock()
	deliver(fns, Event{Kind: EventReady})
}

// Subscribe registers fn for events. A ready provider replays EventReady to
// new subscribers.
func (s *Simulated) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.subs.add(fn)
	ready := s.ready
	s.mu.Unlock()
	if ready {
		fn(Event{Kind: EventReady})
	}
	return func() {
		s.mu.Lock()
		s.subs.remove(id)
		s.mu.Unlock()
	}
}

// Load cues media. The reference only sets the title when none was given.
func (s *Simulated) Load(_ context.Context, ref string) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.title == "" {
		if id := ExtractVideoID(ref); id != "" {
			s.title = id
		} else {
			s.title = ref
		}
	}
	s.loaded = true
	s.pos = 0
	s.anchor = s.now()
	s.state = StatePaused
	fns := s.subs.snapshot()
	s.mu.Unlock()
	deliver(fns, Event{Kind: EventLoaded})
	deliver(fns, Event{Kind: EventStateChange, State: StatePaused})
	return nil
}

func (s *Simulated) positionLocked() float64 {
	pos := s.pos
	if s.state == StatePlaying {
		pos += s.now().Sub(s.anchor).Seconds()
	}
	if s.duration > 0 {
		pos = math.Min(pos, s.duration)
	}
	return pos
}

func (s *Simulated) setState(st State) error {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.state == st {
		s.mu.Unlock()
		return nil
	}
	s.pos = s.positionLocked()
	s.anchor = s.now()
	s.state = st
	fns := s.subs.snapshot()
	s.mu.Unlock()
	deliver(fns, Event{Kind: EventStateChange, State: st})
	return nil
}

// Play starts the virtual transport.
func (s *Simulated) Play() error {
	return s.setState(StatePlaying)
}

// Pause freezes the virtual transport.
func (s *Simulated) Pause() error {
	return s.setState(StatePaused)
}

// Seek moves the position, clamped to the media length.
func (s *Simulated) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	seconds = math.Max(seconds, 0)
	if s.duration > 0 {
		seconds = math.Min(seconds, s.duration)
	}
	s.pos = seconds
	s.anchor = s.now()
	return nil
}

// Mute silences output.
func (s *Simulated) Mute() error {
	return s.setMuted(true)
}

// Unmute restores output.
func (s *Simulated) Unmute() error {
	return s.setMuted(false)
}

func (s *Simulated) setMuted(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	s.muted = v
	return nil
}

// Muted reports the mute flag.
func (s *Simulated) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// CurrentTime returns the virtual position in seconds.
func (s *Simulated) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// Duration returns the media length.
func (s *Simulated) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Title returns the media title.
func (s *Simulated) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// State returns the transport state.
func (s *Simulated) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether commands are accepted.
func (s *Simulated) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Close drops all subscribers.
func (s *Simulated) Close() error {
	s.mu.Lock()
	s.subs = subscribers{}
	s.mu.Unlock()
	return nil
}

package playback

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Default synchronization settings.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultDeadband     = 1.0
)

// UpdateKind tells listeners why the clock changed.
type UpdateKind int

const (
	// UpdatePoll is a provider position sample taken while playing.
	UpdatePoll UpdateKind = iota
	// UpdateSeek is a user-driven change of the current time.
	UpdateSeek
	// UpdateState is a play/pause transition.
	UpdateState
	// UpdateLoaded carries new media metadata.
	UpdateLoaded
)

// Update is delivered to clock listeners.
type Update struct {
	Kind     UpdateKind
	Time     float64
	Playing  bool
	Title    string
	Duration float64
}

// Config tunes the clock.
type Config struct {
	// PollInterval is the provider sampling cadence while playing.
	PollInterval time.Duration
	// Deadband is the divergence in seconds below which a user seek is not
	// forwarded to the provider.
	Deadband float64
}

// DefaultConfig returns the stock synchronization settings.
func DefaultConfig() Config {
	return Config{PollInterval: DefaultPollInterval, Deadband: DefaultDeadband}
}

// TickerFunc creates a tick source and its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithTicker replaces the poll tick source, for tests.
func WithTicker(fn TickerFunc) ClockOption {
	return func(c *Clock) { c.newTicker = fn }
}

// WithLogger sets the logger used for suppressed commands.
func WithLogger(l *slog.Logger) ClockOption {
	return func(c *Clock) { c.logger = l }
}

// Clock owns the authoritative current time and play state.
//
// Provider position flows into the clock only through the poll loop while
// playing. Clock changes flow to the provider only through Seek while paused,
// and only past the deadband. Provider events update state but never trigger
// provider commands, so the two directions cannot feed each other.
type Clock struct {
	mu        sync.Mutex
	provider  Provider
	cfg       Config
	newTicker TickerFunc
	logger    *slog.Logger

	current float64
	total   float64
	playing bool
	ready   bool
	muted   bool
	closed  bool

	pendingRef string
	pendingCtx context.Context

	stopPoll    func()
	unsubscribe func()

	listeners map[int]func(Update)
	nextID    int
}

// NewClock creates a clock bound to p and subscribes to its events.
func NewClock(p Provider, cfg Config, opts ...ClockOption) *Clock {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Deadband < 0 {
		cfg.Deadband = DefaultDeadband
	}
	c := &Clock{
		provider:  p,
		cfg:       cfg,
		newTicker: realTicker,
		logger:    slog.Default(),
		listeners: make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(c)
	}
	unsubscribe := p.Subscribe(c.handleEvent)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	if p.Ready() {
		c.ready = true
	}
	c.mu.Unlock()
	return c
}

// Subscribe registers fn for clock updates. The returned func unsubscribes.
func (c *Clock) Subscribe(fn func(Update)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Clock) emit(u Update) {
	c.mu.Lock()
	fns := make([]func(Update), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

// Time returns the current time in seconds.
func (c *Clock) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Playing reports the play state.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Ready reports whether the provider has signalled readiness.
func (c *Clock) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Muted reports the last mute command sent.
func (c *Clock) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetTotal sets the upper bound for the current time. Non-positive values
// remove the bound.
func (c *Clock) SetTotal(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = math.Max(seconds, 0)
	c.current = c.clampLocked(c.current)
}

func (c *Clock) clampLocked(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if c.total > 0 && t > c.total {
		return c.total
	}
	return t
}

// Seek sets the current time from a user action. While paused, the provider
// is told to seek only when its own position is more than the deadband away.
// While playing the poll loop owns the time and the provider is left alone.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	t = c.clampLocked(t)
	c.current = t
	playing, ready := c.playing, c.ready
	c.mu.Unlock()

	c.emit(Update{Kind: UpdateSeek, Time: t, Playing: playing})

	if playing {
		return
	}
	if !ready {
		c.logger.Debug("seek not forwarded, provider not ready", "time", t)
		return
	}
	if math.Abs(c.provider.CurrentTime()-t) <= c.cfg.Deadband {
		return
	}
	if err := c.provider.Seek(t); err != nil {
		c.logger.Debug("provider seek failed", "time", t, "error", err)
	}
}

// SetPlaying changes the play state and commands the provider only when its
// own state differs. Before readiness the call is a no-op.
func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.ready {
		c.mu.Unlock()
		c.logger.Debug("play state change ignored, provider not ready", "playing", playing)
		return
	}
	changed := c.playing != playing
	c.setPlayingLocked(playing)
	t := c.current
	c.mu.Unlock()

	st := c.provider.State()
	var err error
	switch {
	case playing && st != StatePlaying:
		err = c.provider.Play()
	case !playing && st == StatePlaying:
		err = c.provider.Pause()
	}
	if err != nil {
		c.logger.Debug("provider transport command failed", "playing", playing, "error", err)
	}
	if changed {
		c.emit(Update{Kind: UpdateState, Time: t, Playing: playing})
	}
}

// Toggle flips the play state.
func (c *Clock) Toggle() {
	c.SetPlaying(!c.Playing())
}

// setPlayingLocked records the state and starts or stops the poll loop.
func (c *Clock) setPlayingLocked(playing bool) {
	c.playing = playing
	if playing {
		c.startPollLocked()
	} else {
		c.stopPollLocked()
	}
}

func (c *Clock) startPollLocked() {
	if c.stopPoll != nil {
		return
	}
	ticks, stop := c.newTicker(c.cfg.PollInterval)
	done := make(chan struct{})
	var once sync.Once
	c.stopPoll = func() {
		once.Do(func() {
			stop()
			close(done)
		})
	}
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				c.sample()
			}
		}
	}()
}

func (c *Clock) stopPollLocked() {
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
}

// sample pulls the provider position into the clock.
func (c *Clock) sample() {
	c.mu.Lock()
	if !c.playing || c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	pos := c.provider.CurrentTime()

	c.mu.Lock()
	if !c.playing || c.closed {
		c.mu.Unlock()
		return
	}
	c.current = c.clampLocked(pos)
	t := c.current
	c.mu.Unlock()

	c.emit(Update{Kind: UpdatePoll, Time: t, Playing: true})
}

// Load asks the provider to load ref. Before readiness the request is
// deferred and issued when the provider reports ready.
func (c *Clock) Load(ctx context.Context, ref string) error {
	c.mu.Lock()
	if !c.ready {
		c.pendingRef = ref
		c.pendingCtx = ctx
		c.mu.Unlock()
		c.logger.Debug("load deferred until provider is ready", "ref", ref)
		return nil
	}
	c.mu.Unlock()
	return c.provider.Load(ctx, ref)
}

// Mute silences the provider.
func (c *Clock) Mute() {
	c.setMuted(true)
}

// Unmute restores provider audio.
func (c *Clock) Unmute() {
	c.setMuted(false)
}

// ToggleMute flips the mute state.
func (c *Clock) ToggleMute() {
	c.setMuted(!c.Muted())
}

func (c *Clock) setMuted(muted bool) {
	if !c.Ready() {
		c.logger.Debug("mute ignored, provider not ready")
		return
	}
	var err error
	if muted {
		err = c.provider.Mute()
	} else {
		err = c.provider.Unmute()
	}
	if err != nil {
		c.logger.Debug("provider mute failed", "error", err)
		return
	}
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// handleEvent applies provider notifications. It never commands the
// provider except to issue a load deferred before readiness.
func (c *Clock) handleEvent(e Event) {
	switch e.Kind {
	case EventReady:
		c.mu.Lock()
		c.ready = true
		ref, ctx := c.pendingRef, c.pendingCtx
		c.pendingRef, c.pendingCtx = "", nil
		closed := c.closed
		c.mu.Unlock()
		if ref != "" && !closed {
			if ctx == nil {
				ctx = context.Background()
			}
			if err := c.provider.Load(ctx, ref); err != nil {
				c.logger.Warn("deferred load failed", "ref", ref, "error", err)
			}
		}

	case EventStateChange:
		playing := e.State == StatePlaying
		c.mu.Lock()
		if c.closed || c.playing == playing {
			c.mu.Unlock()
			return
		}
		c.setPlayingLocked(playing)
		t := c.current
		c.mu.Unlock()
		c.emit(Update{Kind: UpdateState, Time: t, Playing: playing})

	case EventLoaded:
		title, dur := c.provider.Title(), c.provider.Duration()
		c.mu.Lock()
		if dur > 0 {
			c.total = dur
			c.current = c.clampLocked(c.current)
		}
		t, playing := c.current, c.playing
		c.mu.Unlock()
		c.emit(Update{Kind: UpdateLoaded, Time: t, Playing: playing, Title: title, Duration: dur})
	}
}

// Close stops the poll loop, detaches from the provider and drops listeners.
// It does not close the provider.
func (c *Clock) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopPollLocked()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.listeners = make(map[int]func(Update))
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

package timeline

import (
	"errors"
	"math"
	"sync"
)

// ErrGestureActive is returned when a gesture is started while another one
// has not ended.
var ErrGestureActive = errors.New("timeline: a gesture is already active")

// ErrUnknownBlock is returned when a gesture targets a block that is not in
// the store.
var ErrUnknownBlock = errors.New("timeline: unknown block")

// GestureState is the state of the pointer interaction machine.
type GestureState int

const (
	// Idle means no gesture is in flight.
	Idle GestureState = iota
	// Dragging moves a block's start time.
	Dragging
	// Resizing changes a block's duration.
	Resizing
)

// String returns a human-readable state name.
func (s GestureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Zone is the part of a block under the pointer.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneBody
	ZoneResize
)

// InteractionConfig tunes hit-testing and resize limits, in pixels.
type InteractionConfig struct {
	// HandlePixels is the width of the resize handle at the block's right edge.
	HandlePixels float64
	// MinResizePixels is the narrowest width a resize can produce.
	MinResizePixels float64
}

// DefaultInteractionConfig returns the stock gesture settings.
func DefaultInteractionConfig() InteractionConfig {
	return InteractionConfig{
		HandlePixels:    8,
		MinResizePixels: 40,
	}
}

// Gesture describes the in-flight interaction, kept apart from store state.
type Gesture struct {
	State       GestureState
	LayerID     string
	BlockID     string
	Zoom        float64
	OriginX     float64
	OriginLeft  float64
	OriginWidth float64
	// Moves counts the store writes made by this gesture.
	Moves int
}

// Controller drives drag and resize gestures. Only one gesture may be active
// at a time across all blocks and layers.
type Controller struct {
	mu     sync.Mutex
	mapper Mapper
	cfg    InteractionConfig
	store  *BlockStore
	g      Gesture
}

// NewController creates an idle controller.
func NewController(m Mapper, cfg InteractionConfig) *Controller {
	if cfg.HandlePixels < 0 {
		cfg.HandlePixels = 0
	}
	if cfg.MinResizePixels < 0 {
		cfg.MinResizePixels = 0
	}
	return &Controller{mapper: m, cfg: cfg}
}

// State returns the current gesture state.
func (c *Controller) State() GestureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.State
}

// Active returns the in-flight gesture, if any.
func (c *Controller) Active() (Gesture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g, c.g.State != Idle
}

// HitTest classifies pixel x against block b at the given zoom. The resize
// handle wins on the pixel shared with the body.
func (c *Controller) HitTest(b Block, x, zoom float64) Zone {
	left := c.mapper.ToPixels(b.StartTime, zoom)
	width := c.mapper.ToPixels(b.Duration, zoom)
	right := left + width
	if x < left || x > right {
		return ZoneNone
	}
	handle := math.Min(c.cfg.HandlePixels, width/2)
	if x >= right-handle {
		return ZoneResize
	}
	return ZoneBody
}

// Press hit-tests x against the block and begins the matching gesture.
func (c *Controller) Press(store *BlockStore, blockID string, x, zoom float64) (Zone, error) {
	b, ok := store.Get(blockID)
	if !ok {
		return ZoneNone, ErrUnknownBlock
	}
	zone := c.HitTest(b, x, zoom)
	switch zone {
	case ZoneResize:
		return zone, c.begin(Resizing, store, b, x, zoom)
	case ZoneBody:
		return zone, c.begin(Dragging, store, b, x, zoom)
	default:
		return zone, nil
	}
}

// BeginDrag starts moving a block from pointer position x.
func (c *Controller) BeginDrag(store *BlockStore, blockID string, x, zoom float64) error {
	b, ok := store.Get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	return c.begin(Dragging, store, b, x, zoom)
}

// BeginResize starts resizing a block from pointer position x.
func (c *Controller) BeginResize(store *BlockStore, blockID string, x, zoom float64) error {
	b, ok := store.Get(blockID)
	if !ok {
		return ErrUnknownBlock
	}
	return c.begin(Resizing, store, b, x, zoom)
}

func (c *Controller) begin(state GestureState, store *BlockStore, b Block, x, zoom float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g.State != Idle {
		return ErrGestureActive
	}
	c.store = store
	c.g = Gesture{
		State:       state,
		LayerID:     store.LayerID(),
		BlockID:     b.ID,
		Zoom:        zoom,
		OriginX:     x,
		OriginLeft:  c.mapper.ToPixels(b.StartTime, zoom),
		OriginWidth: c.mapper.ToPixels(b.Duration, zoom),
	}
	return nil
}

// Move applies the pointer position to the active gesture and writes the
// result to the store immediately. It returns false when idle.
func (c *Controller) Move(x float64) (Block, bool) {
	c.mu.Lock()
	g := c.g
	store := c.store
	if g.State == Idle {
		c.mu.Unlock()
		return Block{}, false
	}
	c.g.Moves++
	c.mu.Unlock()

	dx := x - g.OriginX
	var p Patch
	switch g.State {
	case Dragging:
		left := math.Max(g.OriginLeft+dx, 0)
		p = WithStart(math.Max(c.mapper.ToTime(left, g.Zoom), 0))
	case Resizing:
		width := math.Max(g.OriginWidth+dx, c.cfg.MinResizePixels)
		p = WithDuration(math.Max(c.mapper.ToTime(width, g.Zoom), MinDuration))
	}
	return store.Update(g.BlockID, p)
}

// End finishes the gesture. The last written value stays; there is no
// cancel path for pointer gestures.
func (c *Controller) End() Gesture {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.g
	c.g = Gesture{}
	c.store = nil
	return g
}

// Reset forces the controller back to Idle, for teardown. Writes already
// made are kept.
func (c *Controller) Reset() {
	c.End()
}

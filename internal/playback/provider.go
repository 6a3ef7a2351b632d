// Package playback owns the editor's time cursor and reconciles it with an
// external playback provider.
package playback

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotReady is returned by providers for commands issued before readiness.
var ErrNotReady = errors.New("playback: provider not ready")

// State is the transport state reported by a provider.
type State int

const (
	StateUnstarted State = iota
	StatePlaying
	StatePaused
	StateEnded
	StateBuffering
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// EventKind identifies a provider notification.
type EventKind int

const (
	// EventReady fires once the provider accepts commands.
	EventReady EventKind = iota
	// EventStateChange carries the new transport state.
	EventStateChange
	// EventLoaded fires when media metadata becomes available.
	EventLoaded
)

// Event is a notification from a provider.
type Event struct {
	Kind  EventKind
	State State
}

// Provider is the narrow transport surface the clock depends on.
type Provider interface {
	Load(ctx context.Context, ref string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Mute() error
	Unmute() error

	CurrentTime() float64
	Duration() float64
	Title() string
	State() State
	Ready() bool

	// Subscribe registers fn for provider events. Events are delivered
	// outside the provider's locks.
	Subscribe(fn func(Event)) (cancel func())
	Close() error
}

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// ExtractVideoID returns the YouTube video id in url, or "" if none.
func ExtractVideoID(url string) string {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// subscribers is a small registry shared by provider implementations.
type subscribers struct {
	next int
	fns  map[int]func(Event)
}

func (s *subscribers) add(fn func(Event)) int {
	if s.fns == nil {
		s.fns = make(map[int]func(Event))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return id
}

func (s *subscribers) remove(id int) {
	delete(s.fns, id)
}

func (s *subscribers) snapshot() []func(Event) {
	out := make([]func(Event), 0, len(s.fns))
	for _, fn := range s.fns {
		out = append(out, fn)
	}
	return out
}

func deliver(fns []func(Event), e Event) {
	for _, fn := range fns {
		fn(e)
	}
}

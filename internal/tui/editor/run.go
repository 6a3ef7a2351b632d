package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mta-tools/mta/internal/catalog"
	"github.com/mta-tools/mta/internal/playback"
	"github.com/mta-tools/mta/internal/watcher"
)

// Notifier forwards background events to a running program. Send never
// blocks; a goroutine started by Run delivers queued messages in order.
// Messages sent before the program starts wait for it and messages sent
// after it stops are dropped.
type Notifier struct {
	mu      sync.Mutex
	queue   []tea.Msg
	wake    chan struct{}
	stopped bool
}

func (n *Notifier) wakeLocked() chan struct{} {
	if n.wake == nil {
		n.wake = make(chan struct{}, 1)
	}
	return n.wake
}

// Send queues msg for the program.
func (n *Notifier) Send(msg tea.Msg) {
	if n == nil {
		return
	}
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.queue = append(n.queue, msg)
	wake := n.wakeLocked()
	n.mu.Unlock()
	select {
	case wake <- struct{}{}:
	default:
	}
}

// deliver drains the queue into p until done is closed.
func (n *Notifier) deliver(p *tea.Program, done <-chan struct{}) {
	n.mu.Lock()
	wake := n.wakeLocked()
	n.mu.Unlock()
	for {
		n.mu.Lock()
		pending := n.queue
		n.queue = nil
		n.mu.Unlock()
		for _, msg := range pending {
			// Send returns once the program has exited.
			p.Send(msg)
		}
		select {
		case <-done:
			return
		case <-wake:
		}
	}
}

// stop drops queued messages and rejects new ones.
func (n *Notifier) stop() {
	n.mu.Lock()
	n.stopped = true
	n.queue = nil
	n.mu.Unlock()
}

// SaveHook adapts the notifier to persist.SaveHook.
func (n *Notifier) SaveHook(at time.Time, err error) {
	n.Send(SavedMsg{At: at, Err: err})
}

// Run starts the editor and blocks until the user quits or ctx is
// cancelled. On return the gesture controller is idle and the clock is
// closed; the caller cancels the autosave loop for its final save.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)...)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = &Notifier{}
	}

	unsubscribe := opts.Clock.Subscribe(func(u playback.Update) {
		if u.Kind != playback.UpdatePoll {
			notifier.Send(ClockMsg(u))
		}
	})
	defer unsubscribe()

	if opts.CatalogFile != "" {
		w, err := watcher.New(func(path string) {
			cat, err := catalog.Load(path)
			notifier.Send(CatalogMsg{Catalog: cat, Err: err})
		})
		if err != nil {
			return err
		}
		if err := w.Add(opts.CatalogFile); err != nil {
			slog.Default().Warn("catalog file not watched", "path", opts.CatalogFile, "error", err)
		}
		w.Start(ctx)
		defer w.Stop()
	}

	done := make(chan struct{})
	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		notifier.deliver(p, done)
	}()
	_, err := p.Run()
	notifier.stop()
	close(done)
	<-delivered

	m.Controller().Reset()
	opts.Clock.Close()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

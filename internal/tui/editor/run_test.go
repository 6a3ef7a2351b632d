package editor

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/playback"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/theme"
)

// headlessOptions runs the program without a terminal.
func headlessOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	}
}

func TestRunReturnsAfterClockChanges(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
	}{
		{"zoom", []tea.Msg{keyRunes("+")}},
		{"play and pause", []tea.Msg{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}}},
		{"ruler seek", []tea.Msg{mouse(gutterWidth+45, rulerRow, tea.MouseButtonLeft, tea.MouseActionPress)}},
		{"track seek", []tea.Msg{mouse(gutterWidth+30, headerRows, tea.MouseButtonLeft, tea.MouseActionPress)}},
		{"rewind", []tea.Msg{keyRunes("0")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := timeline.NewProject(timeline.Student{Name: "Ana", Surname: "García"}, nil)
			sim := playback.NewSimulated(playback.WithMedia("Bolero", 240))
			clock := playback.NewClock(sim, playback.DefaultConfig(), playback.WithTicker(stoppedTicker))
			t.Cleanup(clock.Close)

			notifier := &Notifier{}
			notifier.Send(tea.WindowSizeMsg{Width: 100, Height: 30})
			for _, msg := range tt.msgs {
				notifier.Send(msg)
			}
			notifier.Send(keyRunes("q"))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			errc := make(chan error, 1)
			go func() {
				errc <- Run(ctx, Options{
					Project:        project,
					Clock:          clock,
					Manager:        persist.NewManager(persist.NewMemoryStore(), project),
					Theme:          theme.Mocha,
					CellPixels:     4,
					Step:           1,
					Notifier:       notifier,
					ProgramOptions: headlessOptions(),
				})
			}()

			select {
			case err := <-errc:
				if err != nil {
					t.Fatalf("Run: %v", err)
				}
			case <-time.After(5 * time.Second):
				cancel()
				t.Fatal("Run did not return after quit")
			}
		})
	}
}

func TestNotifierDropsAfterStop(t *testing.T) {
	n := &Notifier{}
	n.Send(keyRunes("a"))
	if len(n.queue) != 1 {
		t.Fatalf("queued %d messages before start, want 1", len(n.queue))
	}
	n.stop()
	n.Send(keyRunes("b"))
	if len(n.queue) != 0 {
		t.Errorf("queued %d messages after stop, want 0", len(n.queue))
	}

	var nilNotifier *Notifier
	nilNotifier.Send(keyRunes("c"))
}

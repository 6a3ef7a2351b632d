package playback

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// Property observer ids registered with mpv.
const (
	observeTimePos = iota + 1
	observePause
	observeDuration
	observeTitle
)

// DefaultMPVRequestTimeout bounds a single IPC round trip.
const DefaultMPVRequestTimeout = 3 * time.Second

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvMessage struct {
	Event     string          `json:"event,omitempty"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
}

// MPV drives an external mpv process through its JSON IPC socket. Video is
// disabled; mpv resolves YouTube URLs through its ytdl hook.
type MPV struct {
	binary  string
	socket  string
	timeout time.Duration
	logger  *slog.Logger

	cmd  *exec.Cmd
	conn net.Conn

	wmu     sync.Mutex
	mu      sync.Mutex
	nextReq int64
	pending map[int64]chan mpvMessage
	ready   bool
	loaded  bool
	paused  bool
	pos     float64
	dur     float64
	title   string
	subs    subscribers
	done    chan struct{}
}

// MPVOption configures an MPV provider.
type MPVOption func(*MPV)

// WithMPVBinary sets the mpv executable path.
func WithMPVBinary(path string) MPVOption {
	return func(m *MPV) { m.binary = path }
}

// WithMPVSocket sets the IPC socket path.
func WithMPVSocket(path string) MPVOption {
	return func(m *MPV) { m.socket = path }
}

// WithMPVLogger sets the logger.
func WithMPVLogger(l *slog.Logger) MPVOption {
	return func(m *MPV) { m.logger = l }
}

// NewMPV creates an unstarted provider. Call Start to launch mpv, or Attach
// to use an existing IPC connection.
func NewMPV(opts ...MPVOption) *MPV {
	m := &MPV{
		binary:  "mpv",
		timeout: DefaultMPVRequestTimeout,
		logger:  slog.Default(),
		pending: make(map[int64]chan mpvMessage),
		paused:  true,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.socket == "" {
		m.socket = filepath.Join(os.TempDir(), fmt.Sprintf("mta-mpv-%d.sock", os.Getpid()))
	}
	return m
}

// Start launches mpv in idle mode and connects to its IPC socket, retrying
// until ctx is done.
func (m *MPV) Start(ctx context.Context) error {
	_ = os.Remove(m.socket)
	m.cmd = exec.Command(m.binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--pause",
		"--input-ipc-server="+m.socket,
	)
	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", m.binary, err)
	}

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", m.socket)
		if err == nil {
			m.Attach(conn)
			return nil
		}
		select {
		case <-ctx.Done():
			_ = m.cmd.Process.Kill()
			return fmt.Errorf("connecting to mpv ipc %s: %w", m.socket, ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Attach uses conn as the IPC channel, registers property observers and
// marks the provider ready.
func (m *MPV) Attach(conn net.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	go m.readLoop(conn)

	for id, name := range map[int]string{
		observeTimePos:  "time-pos",
		observePause:    "pause",
		observeDuration: "duration",
		observeTitle:    "media-title",
	} {
		if err := m.send("observe_property", id, name); err != nil {
			m.logger.Warn("mpv observe failed", "property", name, "error", err)
		}
	}

	m.mu.Lock()
	m.ready = true
	fns := m.subs.snapshot()
	m.mu.Unlock()
	deliver(fns, Event{Kind: EventReady})
}

func (m *MPV) readLoop(conn net.Conn) {
	defer close(m.done)
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			m.logger.Debug("mpv: bad ipc message", "error", err)
			continue
		}
		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}
		m.mu.Lock()
		ch, ok := m.pending[msg.RequestID]
		delete(m.pending, msg.RequestID)
		m.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
}

func (m *MPV) handleEvent(msg mpvMessage) {
	var out []Event
	m.mu.Lock()
	switch msg.Event {
	case "property-change":
		switch msg.ID {
		case observeTimePos:
			var v float64
			if json.Unmarshal(msg.Data, &v) == nil {
				m.pos = v
			}
		case observePause:
			var v bool
			if json.Unmarshal(msg.Data, &v) == nil && v != m.paused {
				m.paused = v
				if m.loaded {
					out = append(out, Event{Kind: EventStateChange, State: m.stateLocked()})
				}
			}
		case observeDuration:
			var v float64
			if json.Unmarshal(msg.Data, &v) == nil && v > 0 && v != m.dur {
				m.dur = v
				out = append(out, Event{Kind: EventLoaded})
			}
		case observeTitle:
			var v string
			if json.Unmarshal(msg.Data, &v) == nil {
				m.title = v
			}
		}
	case "file-loaded":
		m.loaded = true
		out = append(out,
			Event{Kind: EventLoaded},
			Event{Kind: EventStateChange, State: m.stateLocked()},
		)
	case "end-file":
		m.loaded = false
		out = append(out, Event{Kind: EventStateChange, State: StateEnded})
	}
	fns := m.subs.snapshot()
	m.mu.Unlock()

	for _, e := range out {
		deliver(fns, e)
	}
}

func (m *MPV) stateLocked() State {
	switch {
	case !m.loaded:
		return StateUnstarted
	case m.paused:
		return StatePaused
	default:
		return StatePlaying
	}
}

// send issues a command and waits for mpv's reply.
func (m *MPV) send(args ...any) error {
	m.mu.Lock()
	if m.conn == nil {
		m.mu.Unlock()
		return ErrNotReady
	}
	conn := m.conn
	m.nextReq++
	id := m.nextReq
	ch := make(chan mpvMessage, 1)
	m.pending[id] = ch
	m.mu.Unlock()

	data, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return fmt.Errorf("encoding mpv command: %w", err)
	}
	data = append(data, '\n')

	m.wmu.Lock()
	_, err = conn.Write(data)
	m.wmu.Unlock()
	if err != nil {
		m.forget(id)
		return fmt.Errorf("writing mpv command: %w", err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "" && reply.Error != "success" {
			return fmt.Errorf("mpv %v: %s", args[0], reply.Error)
		}
		return nil
	case <-m.done:
		return errors.New("mpv: connection closed")
	case <-time.After(m.timeout):
		m.forget(id)
		return fmt.Errorf("mpv %v: timed out", args[0])
	}
}

func (m *MPV) forget(id int64) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

func (m *MPV) command(args ...any) error {
	if !m.Ready() {
		return ErrNotReady
	}
	return m.send(args...)
}

// Load replaces the current file with ref.
func (m *MPV) Load(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.command("loadfile", ref, "replace")
}

// Play unpauses.
func (m *MPV) Play() error {
	return m.command("set_property", "pause", false)
}

// Pause pauses.
func (m *MPV) Pause() error {
	return m.command("set_property", "pause", true)
}

// Seek jumps to an absolute position.
func (m *MPV) Seek(seconds float64) error {
	return m.command("seek", seconds, "absolute")
}

// Mute silences audio.
func (m *MPV) Mute() error {
	return m.command("set_property", "mute", true)
}

// Unmute restores audio.
func (m *MPV) Unmute() error {
	return m.command("set_property", "mute", false)
}

// CurrentTime returns the last observed playback position.
func (m *MPV) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Duration returns the last observed media length.
func (m *MPV) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dur
}

// Title returns the media title reported by mpv.
func (m *MPV) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// State returns the transport state.
func (m *MPV) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Ready reports whether the IPC connection is up.
func (m *MPV) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Subscribe registers fn for events. A ready provider replays EventReady.
func (m *MPV) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.subs.add(fn)
	ready := m.ready
	m.mu.Unlock()
	if ready {
		fn(Event{Kind: EventReady})
	}
	return func() {
		m.mu.Lock()
		m.subs.remove(id)
		m.mu.Unlock()
	}
}

// Close asks mpv to quit, closes the connection and reaps the process.
func (m *MPV) Close() error {
	m.mu.Lock()
	wasReady := m.ready
	m.ready = false
	m.mu.Unlock()

	quitErr := errors.New("mpv: not connected")
	if wasReady {
		quitErr = m.send("quit")
	}
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	var err error
	if conn != nil {
		err = conn.Close()
	}
	if m.cmd != nil && m.cmd.Process != nil {
		if quitErr != nil {
			m.logger.Debug("mpv did not quit cleanly, killing", "error", quitErr)
			_ = m.cmd.Process.Kill()
		}
		_ = m.cmd.Wait()
		_ = os.Remove(m.socket)
	}
	return err
}

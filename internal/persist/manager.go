package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mta-tools/mta/internal/timeline"
)

// DefaultAutosaveInterval is the cadence of the autosave loop.
const DefaultAutosaveInterval = 30 * time.Second

// SaveHook observes every autosave attempt.
type SaveHook func(at time.Time, err error)

// Manager autosaves a project, restores it on open, and exports or imports
// documents.
type Manager struct {
	store    Store
	key      string
	project  *timeline.Project
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex // serializes saves
	hooks []SaveHook
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithKey overrides the storage key.
func WithKey(key string) ManagerOption {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithInterval overrides the autosave cadence.
func WithInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithSaveHook registers a hook called after each autosave.
func WithSaveHook(h SaveHook) ManagerOption {
	return func(m *Manager) { m.hooks = append(m.hooks, h) }
}

// NewManager binds a store to a project.
func NewManager(store Store, project *timeline.Project, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		key:      DefaultKey,
		project:  project,
		interval: DefaultAutosaveInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the storage key.
func (m *Manager) Key() string {
	return m.key
}

// Interval returns the autosave cadence.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// Run autosaves every interval until ctx is cancelled, then saves once more.
// Save failures are logged and reported to hooks but never stop the loop.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Save(final); err != nil {
				m.logger.Warn("final autosave failed", "key", m.key, "error", err)
			}
			return nil
		case <-ticker.C:
			if err := m.Save(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Warn("autosave failed", "key", m.key, "error", err)
			}
		}
	}
}

// Save writes the full project under the key with a fresh timestamp.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.project.Snapshot()
	at := m.now()
	doc := FromSnapshot(snap, at)

	data, err := Encode(doc, FormatJSON)
	if err == nil {
		err = m.store.Save(ctx, m.key, data)
	}
	if err != nil {
		err = fmt.Errorf("autosave: %w", err)
	} else {
		m.project.MarkSaved(snap.Revision, at)
		m.logger.Debug("autosaved", "key", m.key, "revision", snap.Revision, "bytes", len(data))
	}
	for _, h := range m.hooks {
		h(at, err)
	}
	return err
}

// LoadOnOpen restores the saved project when one exists under the key and
// belongs to the same student. It reports whether anything was restored.
// A missing, unreadable or foreign save leaves the project untouched.
func (m *Manager) LoadOnOpen(ctx context.Context) (bool, error) {
	data, err := m.store.Load(ctx, m.key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading saved project: %w", err)
	}

	doc, err := Decode(data, FormatJSON)
	if err != nil {
		return false, fmt.Errorf("saved project is unreadable: %w", err)
	}
	if !doc.Student().Matches(m.project.Student()) {
		m.logger.Info("saved project belongs to another student, starting fresh",
			"saved", doc.StudentInfo.FullName)
		return false, nil
	}

	m.project.Restore(doc.Video(), doc.BlocksByLayer())
	m.project.MarkSaved(m.project.Revision(), doc.ExportDate)
	return true, nil
}

// Export returns the versioned document for the current project.
func (m *Manager) Export() Document {
	doc := FromSnapshot(m.project.Snapshot(), m.now())
	doc.SchemaVersion = SchemaVersion
	return doc
}

// Import validates data and atomically replaces the project's layers and
// video metadata. On error nothing changes.
func (m *Manager) Import(data []byte, f Format) (Document, error) {
	doc, err := Decode(data, f)
	if err != nil {
		return Document{}, err
	}
	m.project.Restore(doc.Video(), doc.BlocksByLayer())
	return doc, nil
}

// ImportFile reads and imports a document, choosing the format from the
// file extension.
func (m *Manager) ImportFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &ImportError{Source: path, Err: err}
	}
	doc, err := m.Import(data, FormatForPath(path))
	var ie *ImportError
	if errors.As(err, &ie) {
		ie.Source = path
	}
	return doc, err
}

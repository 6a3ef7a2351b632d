package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/mta-tools/mta/internal/catalog"
	"github.com/mta-tools/mta/internal/config"
	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/timeline"
)

// setupLogging installs the default slog logger. Logs go to the configured
// file, else to fallback when set, else to stderr.
func setupLogging(c *config.Config, fallback string) (func() error, error) {
	noop := func() error { return nil }
	path := c.Log.File
	if path == "" {
		path = fallback
	}

	var w io.Writer = os.Stderr
	closeFn := noop
	if path != "" {
		path = config.ExpandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return noop, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return noop, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()})
	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

func openStore(ctx context.Context) (persist.Store, func() error, error) {
	return persist.Open(ctx, cfg.Autosave.Backend, config.ExpandHome(cfg.Autosave.Dir), cfg.Autosave.DSN)
}

// loadSaved decodes the project stored under the autosave key.
func loadSaved(ctx context.Context) (persist.Document, error) {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return persist.Document{}, err
	}
	defer closeStore()

	data, err := store.Load(ctx, cfg.Autosave.Key)
	if errors.Is(err, persist.ErrNotFound) {
		return persist.Document{}, fmt.Errorf("no saved project under key %q (run mta edit or mta import first)", cfg.Autosave.Key)
	}
	if err != nil {
		return persist.Document{}, err
	}
	doc, err := persist.Decode(data, persist.FormatJSON)
	if err != nil {
		return persist.Document{}, fmt.Errorf("saved project is unreadable: %w", err)
	}
	doc.SchemaVersion = persist.SchemaVersion
	return doc, nil
}

// readDocument reads an exported analysis, picking the format from the
// file extension.
func readDocument(path string) (persist.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return persist.Document{}, &persist.ImportError{Source: path, Err: err}
	}
	doc, err := persist.Decode(data, persist.FormatForPath(path))
	var ie *persist.ImportError
	if errors.As(err, &ie) {
		ie.Source = path
	}
	return doc, err
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.File == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(config.ExpandHome(cfg.Catalog.File))
}

// terminal reports whether f is a terminal and its width in columns.
func terminal(f *os.File) (bool, int) {
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false, 0
	}
	w, _, err := term.GetSize(int(fd))
	if err != nil {
		return true, 0
	}
	return true, w
}

// writerTerminal is terminal for writers that may not be files.
func writerTerminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok {
		return false, 0
	}
	return terminal(f)
}

// parseTimeFlag accepts m:ss(.s) or plain seconds; empty means unset.
func parseTimeFlag(name, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	t, ok := timeline.ParseClock(v)
	if !ok {
		return 0, fmt.Errorf("--%s: invalid time %q (use m:ss or seconds)", name, v)
	}
	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

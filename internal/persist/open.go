package persist

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Open returns the store for a backend name. The returned close function
// releases any held resources and is never nil.
func Open(ctx context.Context, backend, dir, dsn string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendFile, "":
		s, err := NewFileStore(dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendPostgres:
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown autosave backend %q", backend)
	}
}

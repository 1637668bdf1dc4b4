package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is the raw content of every persisted collection, keyed by
// collection name. Absent collections are omitted.
type Snapshot map[string]json.RawMessage

// Capture reads every known collection as stored.
func (s *Store) Capture(ctx context.Context) (Snapshot, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	snap := make(Snapshot, len(Names))
	for _, name := range Names {
		if raw, ok := all[name]; ok {
			snap[name] = json.RawMessage(raw)
		}
	}
	return snap, nil
}

// Restore replaces the whole store with snap. Unknown collection names are
// ignored.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	values := make(map[string][]byte, len(snap))
	for _, name := range Names {
		if raw, ok := snap[name]; ok && raw != nil {
			values[name] = []byte(raw)
		}
	}

	if err := s.repo.Replace(ctx, values); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

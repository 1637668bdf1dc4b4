package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Batch collects writes to several collections and commits them in one
// transaction, so a failure leaves every collection unchanged.
type Batch struct {
	s       *Store
	changes map[string][]byte
	err     error
}

func (s *Store) Batch() *Batch {
	return &Batch{s: s, changes: make(map[string][]byte)}
}

// Put stages v as the new content of c.
func Put[T any](b *Batch, c Collection[T], v T) {
	if b.err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", c.Name, err)
		return
	}
	b.changes[c.Name] = raw
}

// Remove stages the removal of the named collection.
func (b *Batch) Remove(name string) {
	b.changes[name] = nil
}

// Commit applies the staged changes.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.changes) == 0 {
		return nil
	}
	if err := b.s.repo.Apply(ctx, b.changes); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

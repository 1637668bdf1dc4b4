// Package store is the typed durable store adapter. It maps named
// collections to Go types on top of a collections.Repository.
//
// Reads never fail: a missing or undecodable collection reads as the type's
// empty default, and the absorbed error is logged. Writes fully replace the
// collection's previous content.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/models"
	"github.com/dmitrijs2005/vinony/internal/repositories/collections"
)

// Collection binds a persisted key to the Go type stored under it.
type Collection[T any] struct {
	Name string
}

// Persisted collections.
var (
	SessionUser  = Collection[*models.User]{Name: "session.user"}
	SessionToken = Collection[string]{Name: "session.token"}
	Credentials  = Collection[[]models.Credential]{Name: "credentials"}
	Threads      = Collection[[]models.Thread]{Name: "conversation.threads"}
	History      = Collection[[]models.GenerationRecord]{Name: "generation.history"}
)

// Names lists every collection the engine persists.
var Names = []string{
	SessionUser.Name,
	SessionToken.Name,
	Credentials.Name,
	Threads.Name,
	History.Name,
}

// Store is the adapter shared by the managers.
type Store struct {
	repo collections.Repository
	log  logging.Logger

	// mu serializes read-modify-write sequences across managers.
	mu sync.Mutex
}

func New(repo collections.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "store")}
}

// Atomic runs fn while holding the store lock. Managers wrap every
// read-modify-write sequence in Atomic so that operations never interleave.
// fn must not call Atomic again.
func (s *Store) Atomic(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Read returns the content of c, or its empty default when the entry is
// missing or corrupt.
func Read[T any](ctx context.Context, s *Store, c Collection[T]) T {
	var zero T

	raw, err := s.repo.Get(ctx, c.Name)
	if err != nil {
		s.absorb(ctx, c.Name, err)
		return zero
	}
	if raw == nil {
		return zero
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.absorb(ctx, c.Name, err)
		return zero
	}
	return v
}

// Write replaces the content of c with v.
func Write[T any](ctx context.Context, s *Store, c Collection[T], v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Name, err)
	}
	if err := s.repo.Set(ctx, c.Name, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.Name, err)
	}
	return nil
}

// Clear removes the named collection.
func (s *Store) Clear(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	return nil
}

// ClearAll removes every persisted collection in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.repo.Replace(ctx, nil); err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}

func (s *Store) absorb(ctx context.Context, name string, err error) {
	s.log.Warn(ctx, "collection read as empty",
		"collection", name, "error", errors.Join(common.ErrPersistenceRead, err).Error())
}

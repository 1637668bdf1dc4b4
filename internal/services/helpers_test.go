package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/vinony/internal/clockx"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/provider"
	"github.com/dmitrijs2005/vinony/internal/repositories/collections"
	"github.com/dmitrijs2005/vinony/internal/store"
)

var errWriteFailed = errors.New("write failed")

// flakyRepo is a memory repository whose writes can be switched off.
type flakyRepo struct {
	*collections.MemoryRepository
	failWrites atomic.Bool
}

func (r *flakyRepo) Set(ctx context.Context, key string, value []byte) error {
	if r.failWrites.Load() {
		return errWriteFailed
	}
	return r.MemoryRepository.Set(ctx, key, value)
}

func (r *flakyRepo) Apply(ctx context.Context, changes map[string][]byte) error {
	if r.failWrites.Load() {
		return errWriteFailed
	}
	return r.MemoryRepository.Apply(ctx, changes)
}

func (r *flakyRepo) Replace(ctx context.Context, values map[string][]byte) error {
	if r.failWrites.Load() {
		return errWriteFailed
	}
	return r.MemoryRepository.Replace(ctx, values)
}

type env struct {
	repo  *flakyRepo
	store *store.Store
	clock *clockx.Manual
	sess  SessionManager
	conv  ConversationManager
	sched GenerationScheduler
}

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithProvider(t, nil)
}

func newEnvWithProvider(t *testing.T, p provider.Provider) *env {
	t.Helper()

	repo := &flakyRepo{MemoryRepository: collections.NewMemoryRepository()}
	log := logging.Discard()
	st := store.New(repo, log)
	clock := clockx.NewManual(epoch)

	sess := NewSessionManager(st, clock, log, SessionOptions{Secret: []byte("test-secret"), TokenTTL: time.Hour})
	conv := NewConversationManager(st, clock, log, "gpt-4o")
	if p == nil {
		p = provider.NewSimulated(provider.PlaceholderLinker{}, sess.VerifyToken)
	}
	sched := NewGenerationScheduler(st, conv, p, sess, clock, log, SchedulerOptions{})
	sess.OnAccountDeleted(sched.Reset)

	return &env{repo: repo, store: st, clock: clock, sess: sess, conv: conv, sched: sched}
}

// rawState returns every stored collection as raw bytes.
func (e *env) rawState(t *testing.T) map[string][]byte {
	t.Helper()
	all, err := e.repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return all
}

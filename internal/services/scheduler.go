package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vinony/internal/clockx"
	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/models"
	"github.com/dmitrijs2005/vinony/internal/provider"
	"github.com/dmitrijs2005/vinony/internal/store"
)

// Default simulated latencies.
const (
	DefaultChatLatency  = 1500 * time.Millisecond
	DefaultImageLatency = 3000 * time.Millisecond
)

// GenerationScheduler issues chat completions and image renders as
// deferred jobs. A job moves from Pending to Completed or Failed exactly
// once. Every job carries the target captured at submission, so results are
// applied to the original thread regardless of later selection.
type GenerationScheduler interface {
	SubmitChatCompletion(ctx context.Context, threadID, content string) (models.GenerationJob, error)
	SubmitImageGeneration(ctx context.Context, prompt string) (models.GenerationJob, error)
	Job(id string) (models.GenerationJob, bool)
	HasPending(kind models.JobKind) bool
	CurrentResult() *models.GenerationRecord
	History(ctx context.Context) []models.GenerationRecord
	DeleteGenerationRecord(ctx context.Context, id string) error
	// OnSettled registers fn to run after each job settles.
	OnSettled(fn func(models.GenerationJob))
	// Reset forgets the current result and marks every job submitted so far
	// as stale: when it fires it settles Completed with Discarded set and
	// writes nothing.
	Reset()
}

// TokenSource yields the access token of the active session.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// SchedulerOptions configures latencies and the image model.
type SchedulerOptions struct {
	ChatLatency  time.Duration
	ImageLatency time.Duration
	ImageModel   string
}

type generationScheduler struct {
	store    *store.Store
	conv     ConversationManager
	provider provider.Provider
	tokens   TokenSource
	clock    clockx.Clock
	log      logging.Logger
	opts     SchedulerOptions

	mu      sync.Mutex
	epoch   uint64
	jobs    map[string]*models.GenerationJob
	current *models.GenerationRecord
	hooks   []func(models.GenerationJob)
}

// NewGenerationScheduler wires a scheduler. tokens may be nil.
func NewGenerationScheduler(st *store.Store, conv ConversationManager, p provider.Provider, tokens TokenSource,
	clock clockx.Clock, log logging.Logger, opts SchedulerOptions) GenerationScheduler {
	if opts.ChatLatency <= 0 {
		opts.ChatLatency = DefaultChatLatency
	}
	if opts.ImageLatency <= 0 {
		opts.ImageLatency = DefaultImageLatency
	}
	if opts.ImageModel == "" {
		opts.ImageModel = models.ImageModelDallE3
	}
	return &generationScheduler{
		store:    st,
		conv:     conv,
		provider: p,
		tokens:   tokens,
		clock:    clock,
		log:      log.With("component", "scheduler"),
		opts:     opts,
		jobs:     make(map[string]*models.GenerationJob),
	}
}

// SubmitChatCompletion appends the user message to the thread right away
// and schedules the assistant reply for the same thread.
func (s *generationScheduler) SubmitChatCompletion(ctx context.Context, threadID, content string) (models.GenerationJob, error) {
	if strings.TrimSpace(content) == "" {
		return models.GenerationJob{}, common.ErrEmptyPrompt
	}

	thread, err := s.conv.Thread(ctx, threadID)
	if errors.Is(err, common.ErrThreadNotFound) {
		return models.GenerationJob{}, fmt.Errorf("%w: %w", common.ErrEmptyPrompt, err)
	}
	if err != nil {
		return models.GenerationJob{}, err
	}
	history := thread.Messages

	userMsg, err := s.conv.AppendMessage(ctx, threadID, models.Message{Role: models.RoleUser, Content: content})
	if err != nil {
		return models.GenerationJob{}, err
	}

	req := provider.ChatRequest{
		ThreadID:    threadID,
		Model:       thread.Model,
		Prompt:      content,
		History:     history,
		AccessToken: s.accessToken(ctx),
	}

	job, epoch := s.register(models.JobKindChat, threadID)
	s.log.Debug(ctx, "chat job submitted", "job_id", job.ID, "thread_id", threadID, "message_id", userMsg.ID)

	bg := context.WithoutCancel(ctx)
	s.clock.AfterFunc(s.opts.ChatLatency, func() {
		s.completeChat(bg, job.ID, epoch, req)
	})
	return job, nil
}

func (s *generationScheduler) completeChat(ctx context.Context, jobID string, epoch uint64, req provider.ChatRequest) {
	if s.stale(epoch) {
		s.discard(ctx, jobID)
		return
	}

	reply, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}

	msg, err := s.conv.AppendMessage(ctx, req.ThreadID, models.Message{Role: models.RoleAssistant, Content: reply})
	switch {
	case errors.Is(err, common.ErrThreadNotFound):
		s.log.Info(ctx, "chat result discarded, thread is gone", "job_id", jobID, "thread_id", req.ThreadID)
		s.discard(ctx, jobID)
	case err != nil:
		s.fail(ctx, jobID, err)
	default:
		s.settle(jobID, func(j *models.GenerationJob) {
			j.Status = models.JobCompleted
			j.MessageID = msg.ID
		})
	}
}

// SubmitImageGeneration schedules an image render of prompt.
func (s *generationScheduler) SubmitImageGeneration(ctx context.Context, prompt string) (models.GenerationJob, error) {
	if strings.TrimSpace(prompt) == "" {
		return models.GenerationJob{}, common.ErrEmptyPrompt
	}

	job, epoch := s.register(models.JobKindImage, "")
	req := provider.ImageRequest{
		ID:          common.NewID(),
		Model:       s.opts.ImageModel,
		Prompt:      prompt,
		AccessToken: s.accessToken(ctx),
	}
	s.log.Debug(ctx, "image job submitted", "job_id", job.ID)

	bg := context.WithoutCancel(ctx)
	s.clock.AfterFunc(s.opts.ImageLatency, func() {
		s.completeImage(bg, job.ID, epoch, req)
	})
	return job, nil
}

func (s *generationScheduler) completeImage(ctx context.Context, jobID string, epoch uint64, req provider.ImageRequest) {
	if s.stale(epoch) {
		s.discard(ctx, jobID)
		return
	}

	url, err := s.provider.Render(ctx, req)
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}

	rec := models.GenerationRecord{
		ID:        req.ID,
		Prompt:    req.Prompt,
		ResultURL: url,
		Timestamp: s.clock.Now(),
	}
	// Reset is called under Atomic, so the epoch check belongs inside it.
	var dropped bool
	err = s.store.Atomic(func() error {
		if s.stale(epoch) {
			dropped = true
			return nil
		}
		history := store.Read(ctx, s.store, store.History)
		if err := store.Write(ctx, s.store, store.History, prepend(history, rec)); err != nil {
			return err
		}
		s.mu.Lock()
		s.current = &rec
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		s.fail(ctx, jobID, err)
		return
	}
	if dropped {
		s.discard(ctx, jobID)
		return
	}

	s.settle(jobID, func(j *models.GenerationJob) {
		j.Status = models.JobCompleted
		j.RecordID = rec.ID
	})
}

func (s *generationScheduler) accessToken(ctx context.Context) string {
	if s.tokens == nil {
		return ""
	}
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNoActiveSession) {
			s.log.Warn(ctx, "access token unavailable", "error", err.Error())
		}
		return ""
	}
	return token
}

func (s *generationScheduler) register(kind models.JobKind, threadID string) (models.GenerationJob, uint64) {
	job := &models.GenerationJob{
		ID:          common.NewID(),
		Kind:        kind,
		ThreadID:    threadID,
		Status:      models.JobPending,
		SubmittedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	epoch := s.epoch
	s.mu.Unlock()
	return *job, epoch
}

func (s *generationScheduler) stale(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch != s.epoch
}

func (s *generationScheduler) discard(ctx context.Context, jobID string) {
	s.log.Debug(ctx, "generation result discarded", "job_id", jobID)
	s.settle(jobID, func(j *models.GenerationJob) {
		j.Status = models.JobCompleted
		j.Discarded = true
	})
}

func (s *generationScheduler) fail(ctx context.Context, jobID string, err error) {
	s.log.Error(ctx, "generation job failed", "job_id", jobID, "error", err.Error())
	s.settle(jobID, func(j *models.GenerationJob) {
		j.Status = models.JobFailed
		j.Err = err.Error()
	})
}

// settle applies the final state once and notifies the hooks.
func (s *generationScheduler) settle(jobID string, apply func(*models.GenerationJob)) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != models.JobPending {
		s.mu.Unlock()
		return
	}
	apply(job)
	job.SettledAt = s.clock.Now()
	snapshot := *job
	hooks := append([]func(models.GenerationJob){}, s.hooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(snapshot)
	}
}

func (s *generationScheduler) Job(id string) (models.GenerationJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.GenerationJob{}, false
	}
	return *job, true
}

func (s *generationScheduler) HasPending(kind models.JobKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.Kind == kind && j.Status == models.JobPending {
			return true
		}
	}
	return false
}

func (s *generationScheduler) CurrentResult() *models.GenerationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	rec := *s.current
	return &rec
}

func (s *generationScheduler) History(ctx context.Context) []models.GenerationRecord {
	return store.Read(ctx, s.store, store.History)
}

// DeleteGenerationRecord removes the record with id. Removing an absent id
// is a no-op.
func (s *generationScheduler) DeleteGenerationRecord(ctx context.Context, id string) error {
	err := s.store.Atomic(func() error {
		history := store.Read(ctx, s.store, store.History)
		kept := history[:0]
		for _, r := range history {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(history) {
			return nil
		}
		return store.Write(ctx, s.store, store.History, kept)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *generationScheduler) OnSettled(fn func(models.GenerationJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *generationScheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.current = nil
}

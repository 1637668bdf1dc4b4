package services

import (
	"context"

	"github.com/dmitrijs2005/vinony/internal/clockx"
	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/models"
	"github.com/dmitrijs2005/vinony/internal/store"
)

// ConversationManager owns the thread collection, ordered most recent
// first, and the active thread selection.
//
// The active thread always references an existing thread when any thread
// exists; it is resolved against the persisted collection on every read.
type ConversationManager interface {
	CreateThread(ctx context.Context) (models.Thread, error)
	ListThreads(ctx context.Context) []models.Thread
	Thread(ctx context.Context, id string) (models.Thread, error)
	ActiveThread(ctx context.Context) (models.Thread, error)
	SelectThread(ctx context.Context, id string) error
	DeleteThread(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, threadID string, msg models.Message) (models.Message, error)
	SetModel(ctx context.Context, threadID, model string) error
	EnsureThread(ctx context.Context) (models.Thread, error)
}

type conversationManager struct {
	store        *store.Store
	clock        clockx.Clock
	log          logging.Logger
	defaultModel string

	// activeID is only touched inside store.Atomic.
	activeID string
}

// NewConversationManager returns a ConversationManager creating threads
// bound to defaultModel.
func NewConversationManager(st *store.Store, clock clockx.Clock, log logging.Logger, defaultModel string) ConversationManager {
	log = log.With("component", "conversation")
	if !models.IsChatModel(defaultModel) {
		log.Warn(context.Background(), "unknown default chat model, using fallback",
			"model", defaultModel, "fallback", models.ModelGPT4o)
		defaultModel = models.ModelGPT4o
	}
	return &conversationManager{store: st, clock: clock, log: log, defaultModel: defaultModel}
}

func (m *conversationManager) newThread() models.Thread {
	return models.Thread{
		ID:       common.NewID(),
		Title:    common.DefaultThreadTitle,
		Model:    m.defaultModel,
		Messages: []models.Message{},
	}
}

// CreateThread prepends an empty thread and makes it active.
func (m *conversationManager) CreateThread(ctx context.Context) (models.Thread, error) {
	var t models.Thread
	err := m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		t = m.newThread()

		if err := store.Write(ctx, m.store, store.Threads, prepend(threads, t)); err != nil {
			return err
		}
		m.activeID = t.ID
		return nil
	})
	if err != nil {
		return models.Thread{}, err
	}

	m.log.Debug(ctx, "thread created", "thread_id", t.ID)
	return t, nil
}

func (m *conversationManager) ListThreads(ctx context.Context) []models.Thread {
	return store.Read(ctx, m.store, store.Threads)
}

func (m *conversationManager) Thread(ctx context.Context, id string) (models.Thread, error) {
	threads := store.Read(ctx, m.store, store.Threads)
	i, ok := findThread(threads, id)
	if !ok {
		return models.Thread{}, common.ErrThreadNotFound
	}
	return threads[i], nil
}

// ActiveThread returns the selected thread, falling back to the head of the
// collection when the selection no longer exists.
func (m *conversationManager) ActiveThread(ctx context.Context) (models.Thread, error) {
	var t models.Thread
	err := m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		i, ok := m.resolveActive(threads)
		if !ok {
			return common.ErrThreadNotFound
		}
		t = threads[i]
		return nil
	})
	return t, err
}

func (m *conversationManager) resolveActive(threads []models.Thread) (int, bool) {
	if i, ok := findThread(threads, m.activeID); ok {
		return i, true
	}
	if len(threads) == 0 {
		m.activeID = ""
		return -1, false
	}
	m.activeID = threads[0].ID
	return 0, true
}

func (m *conversationManager) SelectThread(ctx context.Context, id string) error {
	return m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		if _, ok := findThread(threads, id); !ok {
			return common.ErrThreadNotFound
		}
		m.activeID = id
		return nil
	})
}

// DeleteThread removes the thread. When it was active the new head becomes
// active; when the collection becomes empty a fresh thread replaces it.
func (m *conversationManager) DeleteThread(ctx context.Context, id string) error {
	err := m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		i, ok := findThread(threads, id)
		if !ok {
			return common.ErrThreadNotFound
		}
		threads = append(threads[:i], threads[i+1:]...)

		if len(threads) == 0 {
			threads = []models.Thread{m.newThread()}
		}
		if err := store.Write(ctx, m.store, store.Threads, threads); err != nil {
			return err
		}

		if _, ok := findThread(threads, m.activeID); !ok {
			m.activeID = threads[0].ID
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug(ctx, "thread deleted", "thread_id", id)
	return nil
}

// AppendMessage appends msg to the thread, assigning an ID and timestamp
// when missing. The first message of a thread names it when its role is
// user.
func (m *conversationManager) AppendMessage(ctx context.Context, threadID string, msg models.Message) (models.Message, error) {
	if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
		return models.Message{}, common.NewValidationError("role", "must be user or assistant")
	}
	if msg.ID == "" {
		msg.ID = common.NewID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.clock.Now()
	}

	err := m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		i, ok := findThread(threads, threadID)
		if !ok {
			return common.ErrThreadNotFound
		}

		t := &threads[i]
		if len(t.Messages) == 0 && msg.Role == models.RoleUser {
			t.Title = deriveTitle(msg.Content)
		}
		t.Messages = append(t.Messages, msg)

		return store.Write(ctx, m.store, store.Threads, threads)
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (m *conversationManager) SetModel(ctx context.Context, threadID, model string) error {
	if !models.IsChatModel(model) {
		return common.NewValidationError("model", "is unknown")
	}

	return m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		i, ok := findThread(threads, threadID)
		if !ok {
			return common.ErrThreadNotFound
		}
		threads[i].Model = model
		return store.Write(ctx, m.store, store.Threads, threads)
	})
}

// EnsureThread makes sure at least one thread exists and returns the
// active one.
func (m *conversationManager) EnsureThread(ctx context.Context) (models.Thread, error) {
	var t models.Thread
	err := m.store.Atomic(func() error {
		threads := store.Read(ctx, m.store, store.Threads)
		if i, ok := m.resolveActive(threads); ok {
			t = threads[i]
			return nil
		}

		t = m.newThread()
		if err := store.Write(ctx, m.store, store.Threads, []models.Thread{t}); err != nil {
			return err
		}
		m.activeID = t.ID
		return nil
	})
	return t, err
}

// deriveTitle is the first TitleLength characters of content followed by
// the ellipsis.
func deriveTitle(content string) string {
	r := []rune(content)
	if len(r) > common.TitleLength {
		r = r[:common.TitleLength]
	}
	return string(r) + common.TitleEllipsis
}

func findThread(threads []models.Thread, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, t := range threads {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

func prepend[T any](xs []T, x T) []T {
	return append([]T{x}, xs...)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vinony/internal/auth"
	"github.com/dmitrijs2005/vinony/internal/clockx"
	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/cryptox"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/models"
	"github.com/dmitrijs2005/vinony/internal/store"
)

// SessionManager owns the credential collection and the single active
// session.
//
// Contract:
//   - Register: create a credential and sign in as it.
//   - Authenticate: sign in as an existing credential.
//   - CurrentUser: the persisted active user, nil when signed out.
//   - Update / ChangePassword: edit the active account.
//   - EndSession: sign out, keeping the credential.
//   - DeleteAccount: wipe every persisted collection and sign out.
//   - OnAccountDeleted: run fn inside the wipe, before other store users
//     can observe it.
//   - AccessToken / VerifyToken: the signed token of the active session.
//
// Failing operations leave persisted state unchanged.
type SessionManager interface {
	Register(ctx context.Context, name, email string, password []byte) (models.User, error)
	Authenticate(ctx context.Context, email string, password []byte) (models.User, error)
	CurrentUser(ctx context.Context) *models.User
	Update(ctx context.Context, upd models.UserUpdate) (models.User, error)
	ChangePassword(ctx context.Context, current, next []byte) error
	EndSession(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	OnAccountDeleted(fn func())
	AccessToken(ctx context.Context) (string, error)
	VerifyToken(token string) (string, error)
}

// SessionOptions configures session tokens.
type SessionOptions struct {
	Secret   []byte
	TokenTTL time.Duration
}

type sessionManager struct {
	store *store.Store
	clock clockx.Clock
	log   logging.Logger
	opts  SessionOptions

	mu        sync.Mutex
	onDeleted []func()
}

// NewSessionManager returns a SessionManager persisting through st.
func NewSessionManager(st *store.Store, clock clockx.Clock, log logging.Logger, opts SessionOptions) SessionManager {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &sessionManager{store: st, clock: clock, log: log.With("component", "session"), opts: opts}
}

// Register validates the input, stores a starter credential with a salted
// verifier of password, and activates the new user.
func (m *sessionManager) Register(ctx context.Context, name, email string, password []byte) (models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if err := validateName(name); err != nil {
		return models.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := m.store.Atomic(func() error {
		creds := store.Read(ctx, m.store, store.Credentials)
		if _, ok := findByEmail(creds, email); ok {
			return common.ErrDuplicateEmail
		}

		salt, err := cryptox.NewSalt()
		if err != nil {
			return err
		}
		cred := models.Credential{
			ID:       common.NewID(),
			Name:     name,
			Email:    email,
			Plan:     models.PlanStarter,
			Credits:  common.StarterCredits,
			Salt:     salt,
			Verifier: cryptox.HashSecret(password, salt),
		}

		user = cred.User()
		return m.activate(ctx, append(creds, cred), user)
	})
	if err != nil {
		return models.User{}, err
	}

	m.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate activates the credential matching email and password.
func (m *sessionManager) Authenticate(ctx context.Context, email string, password []byte) (models.User, error) {
	email = normalizeEmail(email)

	var user models.User
	err := m.store.Atomic(func() error {
		creds := store.Read(ctx, m.store, store.Credentials)
		i, ok := findByEmail(creds, email)
		if !ok || !cryptox.VerifySecret(password, creds[i].Salt, creds[i].Verifier) {
			return common.ErrInvalidCredentials
		}

		user = creds[i].User()
		return m.activate(ctx, nil, user)
	})
	if err != nil {
		return models.User{}, err
	}

	m.log.Info(ctx, "user signed in", "user_id", user.ID)
	return user, nil
}

// activate persists user as the active session with a fresh token, and
// creds as the credential collection when non-nil, in one batch.
func (m *sessionManager) activate(ctx context.Context, creds []models.Credential, user models.User) error {
	token, err := m.mint(user.ID)
	if err != nil {
		return err
	}

	b := m.store.Batch()
	if creds != nil {
		store.Put(b, store.Credentials, creds)
	}
	store.Put(b, store.SessionUser, &user)
	store.Put(b, store.SessionToken, token)
	return b.Commit(ctx)
}

func (m *sessionManager) CurrentUser(ctx context.Context) *models.User {
	return store.Read(ctx, m.store, store.SessionUser)
}

// Update merges upd into the active user and its credential.
func (m *sessionManager) Update(ctx context.Context, upd models.UserUpdate) (models.User, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := validateName(name); err != nil {
			return models.User{}, err
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if err := validateEmail(email); err != nil {
			return models.User{}, err
		}
		upd.Email = &email
	}
	if upd.Plan != nil && !upd.Plan.Valid() {
		return models.User{}, common.NewValidationError("plan", "is unknown")
	}
	if upd.Credits != nil && *upd.Credits < 0 {
		return models.User{}, common.NewValidationError("credits", "must not be negative")
	}

	var user models.User
	err := m.store.Atomic(func() error {
		current := store.Read(ctx, m.store, store.SessionUser)
		if current == nil {
			return common.ErrNoActiveSession
		}
		user = upd.Apply(*current)

		creds := store.Read(ctx, m.store, store.Credentials)
		if j, ok := findByEmail(creds, user.Email); ok && creds[j].ID != user.ID {
			return common.ErrDuplicateEmail
		}

		b := m.store.Batch()
		if i, ok := findByID(creds, user.ID); ok {
			creds[i].Name = user.Name
			creds[i].Email = user.Email
			creds[i].Plan = user.Plan
			creds[i].Credits = user.Credits
			store.Put(b, store.Credentials, creds)
		}
		store.Put(b, store.SessionUser, &user)
		return b.Commit(ctx)
	})
	if err != nil {
		return models.User{}, err
	}

	m.log.Info(ctx, "profile updated", "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces the active credential's secret after checking
// the current one.
func (m *sessionManager) ChangePassword(ctx context.Context, current, next []byte) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	return m.store.Atomic(func() error {
		user := store.Read(ctx, m.store, store.SessionUser)
		if user == nil {
			return common.ErrNoActiveSession
		}

		creds := store.Read(ctx, m.store, store.Credentials)
		i, ok := findByID(creds, user.ID)
		if !ok || !cryptox.VerifySecret(current, creds[i].Salt, creds[i].Verifier) {
			return common.ErrInvalidCredentials
		}

		salt, err := cryptox.NewSalt()
		if err != nil {
			return err
		}
		creds[i].Salt = salt
		creds[i].Verifier = cryptox.HashSecret(next, salt)

		if err := store.Write(ctx, m.store, store.Credentials, creds); err != nil {
			return err
		}
		m.log.Info(ctx, "password changed", "user_id", user.ID)
		return nil
	})
}

// EndSession clears the active session record. Credentials are kept.
func (m *sessionManager) EndSession(ctx context.Context) error {
	err := m.store.Atomic(func() error {
		b := m.store.Batch()
		b.Remove(store.SessionUser.Name)
		b.Remove(store.SessionToken.Name)
		return b.Commit(ctx)
	})
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	m.log.Info(ctx, "session ended")
	return nil
}

// DeleteAccount clears every persisted collection, which also ends the
// session.
func (m *sessionManager) DeleteAccount(ctx context.Context) error {
	var userID string
	err := m.store.Atomic(func() error {
		user := store.Read(ctx, m.store, store.SessionUser)
		if user == nil {
			return common.ErrNoActiveSession
		}
		userID = user.ID
		if err := m.store.ClearAll(ctx); err != nil {
			return err
		}

		m.mu.Lock()
		hooks := append([]func(){}, m.onDeleted...)
		m.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

// OnAccountDeleted registers fn to run once the store has been wiped by
// DeleteAccount. fn runs under the store's Atomic lock and must not call
// back into the store.
func (m *sessionManager) OnAccountDeleted(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDeleted = append(m.onDeleted, fn)
}

// AccessToken returns the active session's token, minting a new one when
// the stored token is missing, expired or not valid for the active user.
func (m *sessionManager) AccessToken(ctx context.Context) (string, error) {
	var token string
	err := m.store.Atomic(func() error {
		user := store.Read(ctx, m.store, store.SessionUser)
		if user == nil {
			return common.ErrNoActiveSession
		}

		token = store.Read(ctx, m.store, store.SessionToken)
		if id, err := m.VerifyToken(token); err == nil && id == user.ID {
			return nil
		}

		var err error
		token, err = m.mint(user.ID)
		if err != nil {
			return err
		}
		return store.Write(ctx, m.store, store.SessionToken, token)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// VerifyToken checks token against the session secret and returns its
// user ID.
func (m *sessionManager) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}
	return auth.GetUserIDFromToken(token, m.opts.Secret, m.clock.Now())
}

func (m *sessionManager) mint(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, m.opts.Secret, m.opts.TokenTTL, m.clock.Now())
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return token, nil
}

func findByEmail(creds []models.Credential, email string) (int, bool) {
	for i, c := range creds {
		if c.Email == email {
			return i, true
		}
	}
	return -1, false
}

func findByID(creds []models.Credential, id string) (int, bool) {
	for i, c := range creds {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

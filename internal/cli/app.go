package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/vinony/internal/clockx"
	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/config"
	"github.com/dmitrijs2005/vinony/internal/db"
	"github.com/dmitrijs2005/vinony/internal/filex"
	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/models"
	"github.com/dmitrijs2005/vinony/internal/provider"
	"github.com/dmitrijs2005/vinony/internal/services"
	"github.com/dmitrijs2005/vinony/internal/store"
)

// ErrBusy is returned when a submission of the same kind is still pending.
var ErrBusy = errors.New("a generation of this kind is still pending")

type App struct {
	config  *config.Config
	db      *db.Database
	store   *store.Store
	session services.SessionManager
	conv    services.ConversationManager
	sched   services.GenerationScheduler
	log     logging.Logger

	reader *bufio.Reader
	out    *syncWriter
}

// syncWriter serializes writes from the REPL and from job notifications,
// which run on timer goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// NewApp opens the configured store and wires the engine on the real clock,
// reading from stdin and writing to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)
	return newApp(ctx, c, clockx.Real(), log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, clock clockx.Clock, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if (c.StoreDriver == db.DriverSQLite || c.StoreDriver == "") && c.DatabaseDSN == "" {
		if _, err := filex.EnsureDir(c.DataDir); err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
	}

	database, err := db.InitDatabase(ctx, c.StoreDriver, c.DSN(), log)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}

	secret := []byte(c.SessionSecret)
	if len(secret) == 0 {
		secret = common.GenerateRandByteArray(32)
	}

	st := store.New(database.Collections, log)
	session := services.NewSessionManager(st, clock, log, services.SessionOptions{
		Secret:   secret,
		TokenTTL: c.SessionTTL,
	})
	conv := services.NewConversationManager(st, clock, log, c.ChatModel)
	p := provider.NewSimulated(newLinker(c), session.VerifyToken)
	sched := services.NewGenerationScheduler(st, conv, p, session, clock, log, services.SchedulerOptions{
		ChatLatency:  c.ChatLatency,
		ImageLatency: c.ImageLatency,
		ImageModel:   c.ImageModel,
	})

	a := &App{
		config:  c,
		db:      database,
		store:   st,
		session: session,
		conv:    conv,
		sched:   sched,
		log:     log,
		reader:  bufio.NewReader(in),
		out:     &syncWriter{w: out},
	}
	sched.OnSettled(a.announce)
	session.OnAccountDeleted(sched.Reset)
	return a, nil
}

func newLinker(c *config.Config) provider.Linker {
	if c.S3Bucket == "" {
		return provider.PlaceholderLinker{}
	}
	return provider.NewS3Linker(provider.S3Options{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		LinkTTL:      c.S3LinkTTL,
	})
}

// Close releases the store.
func (a *App) Close() error {
	return a.db.Close()
}

// Run starts the interactive loop and returns when the user exits or input
// ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser(context.Background()) != nil
}

// println writes one line with a single Write call.
func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// announce reports a settled job.
func (a *App) announce(job models.GenerationJob) {
	switch {
	case job.Status == models.JobFailed:
		a.println(fmt.Sprintf("\n[%s] generation failed: %s", job.Kind, job.Err))
	case job.Kind == models.JobKindChat && job.Discarded:
		a.println("\n[chat] reply dropped, its thread was deleted")
	case job.Kind == models.JobKindChat:
		a.println("\n[chat] reply ready, type 'show' to read it")
	case job.Kind == models.JobKindImage:
		if rec := a.sched.CurrentResult(); rec != nil && rec.ID == job.RecordID {
			a.println("\n[image] ready:", rec.ResultURL)
		}
	}
}

// Package db opens the collection store selected by configuration and
// applies its embedded goose migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vinony/internal/logging"
	"github.com/dmitrijs2005/vinony/internal/migrations"
	"github.com/dmitrijs2005/vinony/internal/repositories/collections"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// Database bundles the open connection (nil for the memory driver) with the
// collection repository built on top of it.
type Database struct {
	Conn        *sql.DB
	Collections collections.Repository
}

// Close releases the connection, if any.
func (d *Database) Close() error {
	if d.Conn == nil {
		return nil
	}
	return d.Conn.Close()
}

// InitDatabase opens the store for driver/dsn and migrates it.
func InitDatabase(ctx context.Context, driver, dsn string, log logging.Logger) (*Database, error) {
	switch driver {
	case DriverMemory:
		return &Database{Collections: collections.NewMemoryRepository()}, nil

	case DriverSQLite, "":
		conn, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		// SQLite has a single writer; one connection also keeps ":memory:"
		// databases from splitting across connections.
		conn.SetMaxOpenConns(1)

		if err := RunMigrations(ctx, conn, "sqlite3", migrations.SQLiteDir, log); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		return &Database{Conn: conn, Collections: collections.NewSQLiteRepository(conn)}, nil

	case DriverPostgres:
		conn, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}

		if err := RunMigrations(ctx, conn, "postgres", migrations.PostgresDir, log); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		return &Database{Conn: conn, Collections: collections.NewPostgresRepository(conn)}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// RunMigrations applies the embedded migrations in dir using the goose
// dialect. It is safe to run repeatedly.
func RunMigrations(ctx context.Context, conn *sql.DB, dialect, dir string, log logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: log})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, conn, dir)
}

// gooseLogger routes goose output into the engine logger.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(g.ctx, "migration", "detail", fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	g.log.Error(g.ctx, "migration failed", "detail", msg)
	panic(msg)
}

package ledger

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

//go:embed schema.sql
var schema string

// SQLite is the durable seen-posts ledger. It records the (source, url)
// identity of every post ever reported so a post is never reported twice.
// The set grows monotonically, pruning is not this package's concern.
type SQLite struct {
	conn *sqlx.DB
}

// Config represents ledger database configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New opens the ledger database and initializes its schema
func New(ctx context.Context, cfg Config) (*SQLite, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:intel.db?cache=shared&mode=rwc&_txlock=immediate"
	}

	conn, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	// configure connection pool
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// optimize SQLite settings
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000", // 5 second timeout for locks
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

// Close closes the ledger database
func (l *SQLite) Close() error {
	return l.conn.Close()
}

// seenRow represents a ledger entry for SQL operations
type seenRow struct {
	Source    string    `db:"source"`
	URL       string    `db:"url"`
	FirstSeen time.Time `db:"first_seen"`
}

// Load reads the full seen-posts set, called once at the start of a run
func (l *SQLite) Load(ctx context.Context) (map[domain.PostKey]time.Time, error) {
	var rows []seenRow
	if err := l.conn.SelectContext(ctx, &rows, `SELECT source, url, first_seen FROM seen_posts`); err != nil {
		return nil, fmt.Errorf("load seen posts: %w", err)
	}

	seen := make(map[domain.PostKey]time.Time, len(rows))
	for _, r := range rows {
		seen[domain.PostKey{Source: r.Source, URL: r.URL}] = r.FirstSeen
	}
	return seen, nil
}

// Add appends newly reported post keys, called once at the end of a
// successful run. All keys go in a single transaction so the ledger is
// never left half updated. Re-adding an existing key is a no-op.
func (l *SQLite) Add(ctx context.Context, keys []domain.PostKey, firstSeen time.Time) error {
	if len(keys) == 0 {
		return nil
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		tx, err := l.conn.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("begin ledger transaction: %w", err)}
		}

		query := `
			INSERT INTO seen_posts (source, url, first_seen)
			VALUES (:source, :url, :first_seen)
			ON CONFLICT(source, url) DO NOTHING
		`
		for _, key := range keys {
			row := seenRow{Source: key.Source, URL: key.URL, FirstSeen: firstSeen}
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				_ = tx.Rollback()
				if isLockError(err) {
					return err
				}
				return &criticalError{err: fmt.Errorf("insert seen post: %w", err)}
			}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit ledger transaction: %w", err)}
		}
		return nil
	})
}

// Count returns the number of ledger entries, handy for stats and tests
func (l *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.conn.GetContext(ctx, &n, `SELECT count(*) FROM seen_posts`); err != nil {
		return 0, fmt.Errorf("count seen posts: %w", err)
	}
	return n, nil
}

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	if e.err == nil {
		return "critical error"
	}
	return e.err.Error()
}

func (e *criticalError) Unwrap() error { return e.err }

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

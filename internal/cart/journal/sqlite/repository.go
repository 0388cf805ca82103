// Package sqlite provides a SQLite-backed implementation of journal.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa. Cart operations write while the journal endpoint may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/gift-cart/internal/cart/journal"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite needs no CGO, so the binaries build on Alpine as is.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// The table is append-only: each row is one applied cart operation, and a
// session's rows in id order replay its history.
const schema = `
CREATE TABLE IF NOT EXISTS cart_journal (
    -- Surrogate primary key, also the replay order within a session.
    id            INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Cart session the operation applied to. Not UNIQUE: one row per operation.
    session_id    TEXT    NOT NULL,

    -- What happened, e.g. "ITEM_ADDED" or "GIFT_GRANTED".
    action        TEXT    NOT NULL,

    -- Catalog id the action touched; 0 for session-level actions.
    product_id    INTEGER NOT NULL DEFAULT 0,

    -- Requested quantity change; 0 when the action has none.
    delta         INTEGER NOT NULL DEFAULT 0,

    -- Cart subtotal right after the action.
    subtotal      INTEGER NOT NULL DEFAULT 0,

    -- 1 when the free gift was in the cart after the action.
    gift_present  INTEGER NOT NULL DEFAULT 0,

    -- W3C trace_id (32 hex chars) from the active OTel span.
    -- Allows jumping from this row directly to the trace in Grafana/Tempo.
    trace_id      TEXT    NOT NULL DEFAULT '',

    -- W3C span_id (16 hex chars), the cart operation's own span.
    span_id       TEXT    NOT NULL DEFAULT '',

    -- Wall-clock time of the action (RFC3339 stored as TEXT, SQLite idiom).
    recorded_at   TEXT    NOT NULL
);

-- Index for the journal endpoint: "all entries for session X in order".
CREATE INDEX IF NOT EXISTS idx_cart_journal_session ON cart_journal(session_id, id);

-- Index for the observability query: "find the session for trace Y".
CREATE INDEX IF NOT EXISTS idx_cart_journal_trace ON cart_journal(trace_id);
`

// Repository is the SQLite implementation of journal.Repository.
type Repository struct {
	db *sql.DB
}

var _ journal.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. WAL mode is enabled for better concurrent read/write performance.
//
//	repo, err := sqlite.Open("./data/cart.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. busy_timeout waits for locks instead of
	// failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new journal entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO cart_journal
			(session_id, action, product_id, delta, subtotal, gift_present, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SessionID,
		string(entry.Action),
		entry.ProductID,
		entry.Delta,
		entry.Subtotal,
		boolToInt(entry.GiftPresent),
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save journal entry for %q: %w", entry.SessionID, err)
	}
	return nil
}

// List returns every entry recorded for sessionID, oldest first. An unknown
// session yields an empty, non-nil slice.
func (r *Repository) List(ctx context.Context, sessionID string) ([]journal.Entry, error) {
	const q = `
		SELECT session_id, action, product_id, delta, subtotal, gift_present,
		       trace_id, span_id, recorded_at
		FROM   cart_journal
		WHERE  session_id = ?
		ORDER  BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list journal for %q: %w", sessionID, err)
	}
	defer rows.Close()

	entries := make([]journal.Entry, 0)
	for rows.Next() {
		var (
			e          journal.Entry
			action     string
			gift       int
			recordedAt string
		)
		if err := rows.Scan(
			&e.SessionID,
			&action,
			&e.ProductID,
			&e.Delta,
			&e.Subtotal,
			&gift,
			&e.TraceID,
			&e.SpanID,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan journal row for %q: %w", sessionID, err)
		}

		e.Action = journal.Action(action)
		e.GiftPresent = gift != 0
		if e.RecordedAt, err = parseRFC3339(recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate journal for %q: %w", sessionID, err)
	}

	return entries, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// boolToInt maps gift_present onto SQLite's integer booleans.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

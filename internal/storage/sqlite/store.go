// Package sqlite provides the SQLite-backed implementation of storage.DB.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa. All counters that must never go negative (stock quantities, token
// balances) are mutated exclusively through conditional updates of the form
// UPDATE ... SET x = x - ? WHERE ... AND x >= ?, verified to affect one row,
// so concurrent requests cannot oversell or over-debit.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kdiomande/rewards-platform/internal/balance"
	"github.com/kdiomande/rewards-platform/internal/cart"
	"github.com/kdiomande/rewards-platform/internal/catalog"
	"github.com/kdiomande/rewards-platform/internal/notification"
	"github.com/kdiomande/rewards-platform/internal/order"
	"github.com/kdiomande/rewards-platform/internal/stock"
	"github.com/kdiomande/rewards-platform/internal/storage"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps the image build simple (Alpine, scratch).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent via IF NOT EXISTS.
//
// stock_entries.reward_id is UNIQUE: there is exactly one stock row per
// reward, so "the" available quantity is never ambiguous and the conditional
// decrement targets a single row.
const schema = `
CREATE TABLE IF NOT EXISTS rewards (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    label           TEXT    NOT NULL UNIQUE,
    slug            TEXT    NOT NULL UNIQUE,
    token_cost      INTEGER NOT NULL CHECK (token_cost >= 0),
    image_url       TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stock_entries (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    reward_id          INTEGER NOT NULL UNIQUE REFERENCES rewards(id),
    quantity_available INTEGER NOT NULL DEFAULT 0 CHECK (quantity_available >= 0),
    last_updated       TEXT    NOT NULL,
    created_at         TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    reward_id  INTEGER NOT NULL REFERENCES rewards(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    added_at   TEXT    NOT NULL,
    UNIQUE (account_id, reward_id)
);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    account_id  INTEGER NOT NULL,
    customer_id INTEGER NOT NULL,
    amount      INTEGER NOT NULL,
    status      TEXT    NOT NULL DEFAULT 'pending',
    contact     TEXT    NOT NULL DEFAULT 'N/A',
    created_at  TEXT    NOT NULL
);

-- Frozen snapshot of the cart at placement time. label and token_cost are
-- copied so later catalog edits never change what an order contains.
CREATE TABLE IF NOT EXISTS order_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    reward_id  INTEGER NOT NULL,
    label      TEXT    NOT NULL,
    token_cost INTEGER NOT NULL,
    quantity   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id, id);

-- Append-only: rows are inserted by the workflow and never updated.
CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    message    TEXT    NOT NULL,
    created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_account ON notifications(account_id, created_at);

-- Mirrors the customer tables owned by the core-banking system. This
-- subsystem reads and conditionally debits balance, nothing more.
CREATE TABLE IF NOT EXISTS customers (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_code TEXT    NOT NULL UNIQUE,
    first_name    TEXT    NOT NULL DEFAULT '',
    short_name    TEXT    NOT NULL DEFAULT '',
    balance       INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS favorites (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    reward_id  INTEGER NOT NULL REFERENCES rewards(id),
    created_at TEXT    NOT NULL,
    UNIQUE (account_id, reward_id)
);
`

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every repository method
// works identically inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.DB over a single SQLite database.
type Store struct {
	db   *sql.DB
	q    dbtx
	inTx bool
}

var _ storage.DB = (*Store)(nil)

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	// The pure-Go driver takes _pragma query parameters for connection
	// state. busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection; a single
	// connection also makes the in-memory DSN safe to share.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic. Nested calls join the ambient transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Tx) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	scoped := &Store{db: s.db, q: tx, inTx: true}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(scoped); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

func (s *Store) Catalog() catalog.Repository         { return &catalogRepo{q: s.q} }
func (s *Store) Stock() stock.Ledger                 { return &stockLedger{q: s.q} }
func (s *Store) Cart() cart.Repository               { return &cartRepo{q: s.q} }
func (s *Store) Orders() order.Repository            { return &orderRepo{q: s.q} }
func (s *Store) Balances() balance.Ledger            { return &balanceLedger{q: s.q} }
func (s *Store) Notifications() notification.Sink    { return &notificationSink{q: s.q} }

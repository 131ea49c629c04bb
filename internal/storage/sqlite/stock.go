package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/stock"
)

type stockLedger struct {
	q dbtx
}

var _ stock.Ledger = (*stockLedger)(nil)

func (l *stockLedger) Entry(ctx context.Context, rewardID int64) (*stock.Entry, error) {
	const q = `
		SELECT id, reward_id, quantity_available, last_updated, created_at
		FROM   stock_entries
		WHERE  reward_id = ?`

	return l.scanEntry(l.q.QueryRowContext(ctx, q, rewardID), rewardID)
}

func (l *stockLedger) List(ctx context.Context) ([]stock.Entry, error) {
	const q = `
		SELECT id, reward_id, quantity_available, last_updated, created_at
		FROM   stock_entries
		ORDER  BY reward_id`

	rows, err := l.q.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list stock: %w", err)
	}
	defer rows.Close()

	var out []stock.Entry
	for rows.Next() {
		var e stock.Entry
		var updated, created string
		if err := rows.Scan(&e.ID, &e.RewardID, &e.QuantityAvailable, &updated, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan stock entry: %w", err)
		}
		if e.LastUpdated, err = parseTime(updated); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reserve is the single atomic check-and-decrement: the WHERE clause both
// locates the row and verifies availability, so two concurrent reservations
// of the last unit resolve to exactly one winner.
func (l *stockLedger) Reserve(ctx context.Context, rewardID, qty int64) error {
	const q = `
		UPDATE stock_entries
		SET    quantity_available = quantity_available - ?,
		       last_updated = ?
		WHERE  reward_id = ? AND quantity_available >= ?`

	res, err := l.q.ExecContext(ctx, q, qty, formatTime(time.Now()), rewardID, qty)
	if err != nil {
		return fmt.Errorf("sqlite: reserve %d of reward %d: %w", qty, rewardID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reserve reward %d: %w", rewardID, err)
	}
	if n == 0 {
		return fault.Errorf(fault.InsufficientStock, "insufficient stock for reward %d", rewardID)
	}
	return nil
}

// Release is the compensating increment for a prior Reserve.
func (l *stockLedger) Release(ctx context.Context, rewardID, qty int64) error {
	const q = `
		UPDATE stock_entries
		SET    quantity_available = quantity_available + ?,
		       last_updated = ?
		WHERE  reward_id = ?`

	res, err := l.q.ExecContext(ctx, q, qty, formatTime(time.Now()), rewardID)
	if err != nil {
		return fmt.Errorf("sqlite: release %d of reward %d: %w", qty, rewardID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: release reward %d: %w", rewardID, err)
	}
	if n == 0 {
		return fault.Errorf(fault.NotFound, "no stock entry for reward %d", rewardID)
	}
	return nil
}

// Restock sets the absolute quantity, creating the entry if missing.
func (l *stockLedger) Restock(ctx context.Context, rewardID, qty int64) (*stock.Entry, bool, error) {
	now := formatTime(time.Now())

	const upd = `
		UPDATE stock_entries
		SET    quantity_available = ?, last_updated = ?
		WHERE  reward_id = ?`

	res, err := l.q.ExecContext(ctx, upd, qty, now, rewardID)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: restock reward %d: %w", rewardID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: restock reward %d: %w", rewardID, err)
	}

	created := false
	if n == 0 {
		const ins = `
			INSERT INTO stock_entries (reward_id, quantity_available, last_updated, created_at)
			VALUES (?, ?, ?, ?)`
		if _, err := l.q.ExecContext(ctx, ins, rewardID, qty, now, now); err != nil {
			return nil, false, fmt.Errorf("sqlite: create stock entry for reward %d: %w", rewardID, err)
		}
		created = true
	}

	entry, err := l.Entry(ctx, rewardID)
	if err != nil {
		return nil, false, err
	}
	return entry, created, nil
}

func (l *stockLedger) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM stock_entries WHERE id = ?`

	res, err := l.q.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete stock entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete stock entry %d: %w", id, err)
	}
	if n == 0 {
		return fault.Errorf(fault.NotFound, "stock entry %d not found", id)
	}
	return nil
}

func (l *stockLedger) scanEntry(row *sql.Row, rewardID int64) (*stock.Entry, error) {
	var e stock.Entry
	var updated, created string
	err := row.Scan(&e.ID, &e.RewardID, &e.QuantityAvailable, &updated, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "no stock entry for reward %d", rewardID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get stock entry for reward %d: %w", rewardID, err)
	}
	if e.LastUpdated, err = parseTime(updated); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &e, nil
}

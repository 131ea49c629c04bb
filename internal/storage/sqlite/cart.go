package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdiomande/rewards-platform/internal/cart"
	"github.com/kdiomande/rewards-platform/internal/fault"
)

type cartRepo struct {
	q dbtx
}

var _ cart.Repository = (*cartRepo)(nil)

func (r *cartRepo) Item(ctx context.Context, accountID, rewardID int64) (*cart.Item, error) {
	const q = `
		SELECT id, account_id, reward_id, quantity, added_at
		FROM   cart_items
		WHERE  account_id = ? AND reward_id = ?`

	return r.scanItem(r.q.QueryRowContext(ctx, q, accountID, rewardID), rewardID)
}

func (r *cartRepo) List(ctx context.Context, accountID int64) ([]cart.Item, error) {
	const q = `
		SELECT id, account_id, reward_id, quantity, added_at
		FROM   cart_items
		WHERE  account_id = ?
		ORDER  BY added_at, id`

	rows, err := r.q.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cart for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var out []cart.Item
	for rows.Next() {
		var it cart.Item
		var added string
		if err := rows.Scan(&it.ID, &it.AccountID, &it.RewardID, &it.Quantity, &added); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart item: %w", err)
		}
		if it.AddedAt, err = parseTime(added); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Upsert grows an existing line or creates a new one. The UNIQUE
// (account_id, reward_id) constraint turns the repeated add into an
// increment.
func (r *cartRepo) Upsert(ctx context.Context, accountID, rewardID, qty int64) (*cart.Item, error) {
	const q = `
		INSERT INTO cart_items (account_id, reward_id, quantity, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id, reward_id)
		DO UPDATE SET quantity = quantity + excluded.quantity`

	if _, err := r.q.ExecContext(ctx, q, accountID, rewardID, qty, formatTime(time.Now())); err != nil {
		return nil, fmt.Errorf("sqlite: upsert cart item for account %d reward %d: %w", accountID, rewardID, err)
	}
	return r.Item(ctx, accountID, rewardID)
}

func (r *cartRepo) Remove(ctx context.Context, accountID, rewardID int64) error {
	const q = `DELETE FROM cart_items WHERE account_id = ? AND reward_id = ?`

	res, err := r.q.ExecContext(ctx, q, accountID, rewardID)
	if err != nil {
		return fmt.Errorf("sqlite: remove cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: remove cart item: %w", err)
	}
	if n == 0 {
		return fault.Errorf(fault.NotFound, "reward %d is not in the cart", rewardID)
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, accountID int64) error {
	const q = `DELETE FROM cart_items WHERE account_id = ?`

	if _, err := r.q.ExecContext(ctx, q, accountID); err != nil {
		return fmt.Errorf("sqlite: clear cart for account %d: %w", accountID, err)
	}
	return nil
}

func (r *cartRepo) scanItem(row *sql.Row, rewardID int64) (*cart.Item, error) {
	var it cart.Item
	var added string
	err := row.Scan(&it.ID, &it.AccountID, &it.RewardID, &it.Quantity, &added)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "reward %d is not in the cart", rewardID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart item: %w", err)
	}
	if it.AddedAt, err = parseTime(added); err != nil {
		return nil, err
	}
	return &it, nil
}

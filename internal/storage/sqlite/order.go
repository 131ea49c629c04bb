package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/order"
)

type orderRepo struct {
	q dbtx
}

var _ order.Repository = (*orderRepo)(nil)

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	const q = `
		INSERT INTO orders (id, account_id, customer_id, amount, status, contact, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if _, err := r.q.ExecContext(ctx, q,
		o.ID, o.AccountID, o.CustomerID, o.Amount, string(o.Status), o.Contact, formatTime(o.CreatedAt),
	); err != nil {
		return fmt.Errorf("sqlite: create order %s: %w", o.ID, err)
	}

	const qi = `
		INSERT INTO order_items (order_id, reward_id, label, token_cost, quantity)
		VALUES (?, ?, ?, ?, ?)`
	for _, it := range o.Items {
		if _, err := r.q.ExecContext(ctx, qi, o.ID, it.RewardID, it.Label, it.TokenCost, it.Quantity); err != nil {
			return fmt.Errorf("sqlite: create order item for %s: %w", o.ID, err)
		}
	}
	return nil
}

func (r *orderRepo) Get(ctx context.Context, id string) (*order.Order, error) {
	const q = `
		SELECT id, account_id, customer_id, amount, status, contact, created_at
		FROM   orders
		WHERE  id = ?`

	var o order.Order
	var status, created string
	err := r.q.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.AccountID, &o.CustomerID, &o.Amount, &status, &o.Contact, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %s: %w", id, err)
	}
	o.Status = order.Status(status)
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context) ([]order.Order, error) {
	const q = `
		SELECT id, account_id, customer_id, amount, status, contact, created_at
		FROM   orders
		ORDER  BY created_at DESC, id`

	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		var status, created string
		if err := rows.Scan(&o.ID, &o.AccountID, &o.CustomerID, &o.Amount, &status, &o.Contact, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		o.Status = order.Status(status)
		if o.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Transition is a conditional update on the current status, so a terminal
// order can never change again even under concurrent admins.
func (r *orderRepo) Transition(ctx context.Context, id string, from, to order.Status) error {
	const q = `UPDATE orders SET status = ? WHERE id = ? AND status = ?`

	res, err := r.q.ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("sqlite: transition order %s to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: transition order %s: %w", id, err)
	}
	if n == 0 {
		return fault.Errorf(fault.InvalidState, "order %s is no longer %s", id, from)
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM orders WHERE id = ?`

	res, err := r.q.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete order %s: %w", id, err)
	}
	if n == 0 {
		return fault.Errorf(fault.NotFound, "order %s not found", id)
	}
	return nil
}

// items returns the frozen snapshot lines in placement order.
func (r *orderRepo) items(ctx context.Context, orderID string) ([]order.Item, error) {
	const q = `
		SELECT reward_id, label, token_cost, quantity
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := r.q.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.RewardID, &it.Label, &it.TokenCost, &it.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kdiomande/rewards-platform/internal/balance"
	"github.com/kdiomande/rewards-platform/internal/fault"
)

type balanceLedger struct {
	q dbtx
}

var _ balance.Ledger = (*balanceLedger)(nil)

func (l *balanceLedger) ByCode(ctx context.Context, code string) (*balance.Customer, error) {
	const q = `
		SELECT id, customer_code, first_name, short_name, balance
		FROM   customers
		WHERE  customer_code = ?`

	return l.scan(l.q.QueryRowContext(ctx, q, code), code)
}

func (l *balanceLedger) ByID(ctx context.Context, id int64) (*balance.Customer, error) {
	const q = `
		SELECT id, customer_code, first_name, short_name, balance
		FROM   customers
		WHERE  id = ?`

	return l.scan(l.q.QueryRowContext(ctx, q, id), fmt.Sprintf("id %d", id))
}

// Debit is conditional on the remaining balance so a competing validation
// can never drive it negative.
func (l *balanceLedger) Debit(ctx context.Context, customerID, amount int64) error {
	const q = `
		UPDATE customers
		SET    balance = balance - ?
		WHERE  id = ? AND balance >= ?`

	res, err := l.q.ExecContext(ctx, q, amount, customerID, amount)
	if err != nil {
		return fmt.Errorf("sqlite: debit customer %d: %w", customerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: debit customer %d: %w", customerID, err)
	}
	if n == 0 {
		return fault.Errorf(fault.InsufficientBalance, "customer %d has insufficient balance", customerID)
	}
	return nil
}

func (l *balanceLedger) Upsert(ctx context.Context, c *balance.Customer) error {
	const q = `
		INSERT INTO customers (customer_code, first_name, short_name, balance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (customer_code)
		DO UPDATE SET first_name = excluded.first_name,
		              short_name = excluded.short_name,
		              balance    = excluded.balance`

	if _, err := l.q.ExecContext(ctx, q, c.Code, c.FirstName, c.ShortName, c.Balance); err != nil {
		return fmt.Errorf("sqlite: upsert customer %q: %w", c.Code, err)
	}

	stored, err := l.ByCode(ctx, c.Code)
	if err != nil {
		return err
	}
	c.ID = stored.ID
	return nil
}

func (l *balanceLedger) scan(row *sql.Row, key string) (*balance.Customer, error) {
	var c balance.Customer
	err := row.Scan(&c.ID, &c.Code, &c.FirstName, &c.ShortName, &c.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "customer %s not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get customer %s: %w", key, err)
	}
	return &c, nil
}

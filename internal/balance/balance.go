// Package balance exposes the customer token balance owned by the external
// core-banking system. The redemption workflow only reads it and debits it
// on order validation; it never credits.
package balance

import "context"

// Customer is the banking-side customer record carrying the token balance.
type Customer struct {
	ID        int64
	Code      string
	FirstName string
	ShortName string
	Balance   int64
}

// DisplayName is the form used in admin-facing notifications.
func (c Customer) DisplayName() string {
	return c.FirstName + " " + c.ShortName
}

// Ledger is the read/debit port over the shared customer tables.
type Ledger interface {
	// ByCode returns the customer linked to a principal's customer code, or
	// a NotFound failure.
	ByCode(ctx context.Context, code string) (*Customer, error)

	// ByID returns the customer by primary key, or a NotFound failure.
	ByID(ctx context.Context, id int64) (*Customer, error)

	// Debit atomically subtracts amount from the customer's balance. It
	// fails with InsufficientBalance if fewer than amount tokens remain;
	// the balance can never go negative.
	Debit(ctx context.Context, customerID, amount int64) error

	// Upsert writes a customer row. The balance data is owned by the banking
	// system; this exists for provisioning and test fixtures only.
	Upsert(ctx context.Context, c *Customer) error
}

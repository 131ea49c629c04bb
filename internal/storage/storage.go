// Package storage defines the unit-of-work ports the workflow runs against.
//
// Every mutating workflow operation executes inside one transaction: it asks
// DB.InTx for a transaction-scoped Tx, performs all reads and writes through
// it, and the store commits on a nil return or rolls back on error or panic.
// The repositories are never reached around the transaction boundary.
package storage

import (
	"context"

	"github.com/kdiomande/rewards-platform/internal/balance"
	"github.com/kdiomande/rewards-platform/internal/cart"
	"github.com/kdiomande/rewards-platform/internal/catalog"
	"github.com/kdiomande/rewards-platform/internal/notification"
	"github.com/kdiomande/rewards-platform/internal/order"
	"github.com/kdiomande/rewards-platform/internal/stock"
)

// Tx bundles the repositories bound to one transaction (or, outside InTx,
// to the raw connection for read-only use).
type Tx interface {
	Catalog() catalog.Repository
	Stock() stock.Ledger
	Cart() cart.Repository
	Orders() order.Repository
	Balances() balance.Ledger
	Notifications() notification.Sink
}

// DB is the store handed to the workflow services.
type DB interface {
	Tx

	// InTx runs fn against a transaction-scoped Tx. It commits when fn
	// returns nil and rolls back when fn returns an error or panics; the
	// error is returned unchanged so typed failures survive the boundary.
	InTx(ctx context.Context, fn func(Tx) error) error
}

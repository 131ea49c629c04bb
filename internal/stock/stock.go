// Package stock defines the stock ledger: the single source of truth for
// how many units of each reward remain available. The quantity for a reward
// must never go negative; every decrement is an atomic check-and-decrement.
package stock

import (
	"context"
	"time"
)

// Entry tracks the available quantity for one reward. There is exactly one
// entry per reward; the schema enforces uniqueness.
type Entry struct {
	ID                int64
	RewardID          int64
	QuantityAvailable int64
	LastUpdated       time.Time
	CreatedAt         time.Time
}

// Ledger is the port for stock mutations.
//
// Reserve and Release must be safe under concurrent callers: two requests
// competing for the last unit must resolve to exactly one winner.
type Ledger interface {
	// Entry returns the stock row for a reward, or a NotFound failure if no
	// entry exists.
	Entry(ctx context.Context, rewardID int64) (*Entry, error)

	// List returns all stock entries ordered by reward id.
	List(ctx context.Context) ([]Entry, error)

	// Reserve atomically decrements the available quantity by qty. It fails
	// with InsufficientStock if no entry exists or fewer than qty units
	// remain; the counter can never go below zero.
	Reserve(ctx context.Context, rewardID, qty int64) error

	// Release is the compensating increment for a prior Reserve.
	Release(ctx context.Context, rewardID, qty int64) error

	// Restock sets the absolute available quantity for a reward, creating
	// the entry if none exists. Returns the resulting entry and whether it
	// was newly created.
	Restock(ctx context.Context, rewardID, qty int64) (*Entry, bool, error)

	// Delete removes a stock entry by its row id.
	Delete(ctx context.Context, id int64) error
}

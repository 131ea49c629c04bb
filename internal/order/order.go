// Package order defines the redemption order and its status state machine.
//
// An order is created pending and transitions exactly once to validated or
// cancelled. Both are terminal: nothing ever moves an order out of them.
// The ordered items are a snapshot taken from the cart at placement time, so
// later catalog or stock changes never alter what an order contains.
package order

import (
	"context"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	return s == StatusValidated || s == StatusCancelled
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusCancelled:
		return true
	}
	return false
}

// Item is a frozen snapshot line: the reward's label and unit cost are
// copied at placement time.
type Item struct {
	RewardID  int64
	Label     string
	TokenCost int64
	Quantity  int64
}

// Subtotal is the token cost of this line.
func (i Item) Subtotal() int64 {
	return i.Quantity * i.TokenCost
}

// Order is a committed redemption request.
type Order struct {
	ID         string
	AccountID  int64
	CustomerID int64
	Amount     int64
	Status     Status
	Contact    string
	CreatedAt  time.Time
	Items      []Item
}

// Repository is the port for order persistence.
type Repository interface {
	// Create inserts the order and its item snapshot.
	Create(ctx context.Context, o *Order) error

	// Get returns the order with its items, or a NotFound failure.
	Get(ctx context.Context, id string) (*Order, error)

	// List returns all orders, newest first, each with its items.
	List(ctx context.Context) ([]Order, error)

	// Transition moves the order from one status to another as a single
	// conditional update. It fails with InvalidState if the order is no
	// longer in the from status, so a terminal order can never change again
	// even under concurrent callers.
	Transition(ctx context.Context, id string, from, to Status) error

	// Delete hard-deletes the order and its items.
	Delete(ctx context.Context, id string) error
}

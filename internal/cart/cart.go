// Package cart defines the per-customer staging area for reward selections
// prior to order placement. A cart line is unique per (account, reward);
// adding the same reward again grows the existing line.
package cart

import (
	"context"
	"time"

	"github.com/kdiomande/rewards-platform/internal/catalog"
)

// Item is one staged selection.
type Item struct {
	ID        int64
	AccountID int64
	RewardID  int64
	Quantity  int64
	AddedAt   time.Time
}

// Line is a cart item joined with its reward for display.
type Line struct {
	Item    Item
	Reward  catalog.Reward
	Tokens  int64 // Quantity * TokenCost
}

// View is the read model returned by ViewCart: the lines plus the customer's
// balance and whether the whole cart is affordable.
type View struct {
	AvailableTokens int64
	RequiredTokens  int64
	Purchasable     bool
	Lines           []Line
}

// Repository is the port for cart persistence.
type Repository interface {
	// Item returns the line for (account, reward), or a NotFound failure.
	Item(ctx context.Context, accountID, rewardID int64) (*Item, error)

	// List returns the account's lines ordered by when they were added.
	List(ctx context.Context, accountID int64) ([]Item, error)

	// Upsert creates the line for (account, reward) with qty, or increments
	// the existing line by qty. Returns the resulting line.
	Upsert(ctx context.Context, accountID, rewardID, qty int64) (*Item, error)

	// Remove deletes the line for (account, reward). Removing a missing line
	// is a NotFound failure.
	Remove(ctx context.Context, accountID, rewardID int64) error

	// Clear deletes every line for the account.
	Clear(ctx context.Context, accountID int64) error
}

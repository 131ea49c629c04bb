// Package catalog holds the reward reference data customers redeem tokens
// for. Rewards are read-mostly: they are created by catalog administration
// and never mutated by the redemption workflow.
package catalog

import (
	"context"
	"time"
)

// Reward is a catalog item redeemable for tokens.
type Reward struct {
	ID        int64
	Label     string
	Slug      string
	TokenCost int64
	ImageURL  string
}

// Category returns the display tier derived from the token cost.
func (r Reward) Category() string {
	return CategoryFor(r.TokenCost)
}

// categoryRange maps a token-cost interval to a display tier.
type categoryRange struct {
	name string
	min  int64
	max  int64 // inclusive; -1 means unbounded
}

var categories = []categoryRange{
	{name: "Eco Premium", min: 0, max: 100},
	{name: "Executive", min: 101, max: 1000},
	{name: "Executive +", min: 1001, max: 3000},
	{name: "First Class", min: 3001, max: -1},
}

// CategoryFor resolves the tier name for a token cost.
func CategoryFor(tokens int64) string {
	for _, c := range categories {
		if tokens >= c.min && (c.max < 0 || tokens <= c.max) {
			return c.name
		}
	}
	return ""
}

// Favorite marks a reward pinned by an account.
type Favorite struct {
	ID        int64
	AccountID int64
	RewardID  int64
	CreatedAt time.Time
}

// Repository is the port for reward and favorite persistence.
type Repository interface {
	// Reward returns the reward by id, or a NotFound failure.
	Reward(ctx context.Context, id int64) (*Reward, error)

	// List returns all rewards ordered by id.
	List(ctx context.Context) ([]Reward, error)

	// CreateReward inserts a new catalog entry. Used by catalog
	// administration and test fixtures.
	CreateReward(ctx context.Context, r *Reward) error

	// IsFavorite reports whether the account has pinned the reward.
	IsFavorite(ctx context.Context, accountID, rewardID int64) (bool, error)

	// AddFavorite pins a reward for an account.
	AddFavorite(ctx context.Context, accountID, rewardID int64) error

	// RemoveFavorite unpins a reward for an account.
	RemoveFavorite(ctx context.Context, accountID, rewardID int64) error

	// ListFavorites returns the rewards the account has pinned.
	ListFavorites(ctx context.Context, accountID int64) ([]Reward, error)
}

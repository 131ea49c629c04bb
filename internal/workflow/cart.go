package workflow

import (
	"context"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/cart"
	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/storage"
)

// CartService stages reward selections prior to order placement.
type CartService struct {
	db     storage.DB
	policy ReservationPolicy
}

// NewCartService builds the service with the given reservation policy.
func NewCartService(db storage.DB, policy ReservationPolicy) *CartService {
	return &CartService{db: db, policy: policy}
}

// AddItem puts qty units of a reward into the principal's cart. Under the
// ReserveAtAdd policy the stock decrement happens here, atomically with the
// cart mutation: both commit or neither does.
func (s *CartService) AddItem(ctx context.Context, p *auth.Principal, rewardID, qty int64) (*cart.Line, error) {
	if err := auth.Authorize(p, auth.OpAddToCart); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, fault.New(fault.InvalidArgument, "quantity must be positive")
	}

	var line *cart.Line
	err := s.db.InTx(ctx, func(tx storage.Tx) error {
		reward, err := tx.Catalog().Reward(ctx, rewardID)
		if err != nil {
			return err
		}

		if s.policy == ReserveAtAdd {
			if err := tx.Stock().Reserve(ctx, rewardID, qty); err != nil {
				return err
			}
		} else {
			entry, err := tx.Stock().Entry(ctx, rewardID)
			if fault.IsKind(err, fault.NotFound) {
				return fault.Errorf(fault.InsufficientStock, "insufficient stock for reward %d", rewardID)
			}
			if err != nil {
				return err
			}
			if entry.QuantityAvailable < qty {
				return fault.Errorf(fault.InsufficientStock, "insufficient stock for reward %d", rewardID)
			}
		}

		item, err := tx.Cart().Upsert(ctx, p.AccountID, rewardID, qty)
		if err != nil {
			return err
		}
		line = &cart.Line{
			Item:   *item,
			Reward: *reward,
			Tokens: item.Quantity * reward.TokenCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// View returns the cart lines with their token costs, the customer's current
// balance, and whether the whole cart is affordable. Read-only.
func (s *CartService) View(ctx context.Context, p *auth.Principal) (*cart.View, error) {
	if err := auth.Authorize(p, auth.OpViewCart); err != nil {
		return nil, err
	}

	items, err := s.db.Cart().List(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	view := &cart.View{}
	for _, it := range items {
		reward, err := s.db.Catalog().Reward(ctx, it.RewardID)
		if err != nil {
			return nil, err
		}
		tokens := it.Quantity * reward.TokenCost
		view.Lines = append(view.Lines, cart.Line{Item: it, Reward: *reward, Tokens: tokens})
		view.RequiredTokens += tokens
	}

	// A principal without a linked customer record simply has no tokens to
	// spend; viewing the cart is still allowed.
	customer, err := s.db.Balances().ByCode(ctx, p.CustomerCode)
	switch {
	case err == nil:
		view.AvailableTokens = customer.Balance
	case fault.IsKind(err, fault.NotFound):
		view.AvailableTokens = 0
	default:
		return nil, err
	}

	view.Purchasable = view.AvailableTokens >= view.RequiredTokens
	return view, nil
}

// RemoveItem deletes a cart line. No compensating stock increment is issued:
// under ReserveAtAdd this preserves the source system's behavior of keeping
// the reservation, and under ReserveAtValidate nothing was reserved yet.
func (s *CartService) RemoveItem(ctx context.Context, p *auth.Principal, rewardID int64) error {
	if err := auth.Authorize(p, auth.OpRemoveFromCart); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx storage.Tx) error {
		return tx.Cart().Remove(ctx, p.AccountID, rewardID)
	})
}

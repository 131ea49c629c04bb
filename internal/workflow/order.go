package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/order"
	"github.com/kdiomande/rewards-platform/internal/storage"
)

// OrderWorkflow drives the order state machine: placement from the cart, and
// the pending → validated | cancelled transitions with their stock, balance,
// and notification effects.
type OrderWorkflow struct {
	db     storage.DB
	policy ReservationPolicy
}

// NewOrderWorkflow builds the workflow with the given reservation policy.
func NewOrderWorkflow(db storage.DB, policy ReservationPolicy) *OrderWorkflow {
	return &OrderWorkflow{db: db, policy: policy}
}

// Place converts the principal's cart into a pending order. The order
// creation, item snapshot, cart clearing, and placement notification commit
// as one transaction. Stock is untouched here: under ReserveAtAdd it was
// consumed when the items entered the cart, under ReserveAtValidate it is
// consumed at validation.
func (w *OrderWorkflow) Place(ctx context.Context, p *auth.Principal) (*order.Order, error) {
	if err := auth.Authorize(p, auth.OpPlaceOrder); err != nil {
		return nil, err
	}

	var placed *order.Order
	err := w.db.InTx(ctx, func(tx storage.Tx) error {
		customer, err := tx.Balances().ByCode(ctx, p.CustomerCode)
		if err != nil {
			return err
		}

		items, err := tx.Cart().List(ctx, p.AccountID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fault.New(fault.EmptyCart, "the cart is empty")
		}

		// Freeze the snapshot: label and unit cost are copied so later
		// catalog or stock changes never alter what this order contains.
		var snapshot []order.Item
		var total int64
		for _, it := range items {
			reward, err := tx.Catalog().Reward(ctx, it.RewardID)
			if err != nil {
				return err
			}
			snapshot = append(snapshot, order.Item{
				RewardID:  reward.ID,
				Label:     reward.Label,
				TokenCost: reward.TokenCost,
				Quantity:  it.Quantity,
			})
			total += it.Quantity * reward.TokenCost
		}

		o := &order.Order{
			ID:         uuid.NewString(),
			AccountID:  p.AccountID,
			CustomerID: customer.ID,
			Amount:     total,
			Status:     order.StatusPending,
			Contact:    "N/A",
			Items:      snapshot,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := tx.Cart().Clear(ctx, p.AccountID); err != nil {
			return err
		}
		if err := tx.Notifications().Append(ctx, p.AccountID,
			fmt.Sprintf("Order %s placed for %d tokens (pending validation).", o.ID, total)); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Validate moves a pending order to validated: it re-secures stock per the
// reservation policy, debits the customer balance, and notifies customer and
// admin, all in one transaction. A stock shortfall cancels the order
// instead (committed, with notifications); an insufficient balance rejects
// the call and leaves the order pending.
func (w *OrderWorkflow) Validate(ctx context.Context, p *auth.Principal, orderID string) (*order.Order, error) {
	if err := auth.Authorize(p, auth.OpValidateOrder); err != nil {
		return nil, err
	}

	var result *order.Order
	err := w.db.InTx(ctx, func(tx storage.Tx) error {
		o, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		switch o.Status {
		case order.StatusValidated:
			return fault.Errorf(fault.InvalidState, "order %s is already validated", orderID)
		case order.StatusCancelled:
			return fault.Errorf(fault.InvalidState, "order %s is already cancelled", orderID)
		}

		if w.policy == ReserveAtValidate {
			cancelled, err := w.reserveSnapshot(ctx, tx, p, o)
			if err != nil {
				return err
			}
			if cancelled {
				result = o
				return nil
			}
		}

		customer, err := tx.Balances().ByID(ctx, o.CustomerID)
		if err != nil {
			return err
		}
		if customer.Balance < o.Amount {
			// Returning the failure rolls back the whole transaction, so
			// any stock reserved above is restored and the order stays
			// pending with no notification.
			return fault.Errorf(fault.InsufficientBalance, "customer %d has insufficient balance for order %s", o.CustomerID, orderID)
		}

		if err := tx.Orders().Transition(ctx, orderID, order.StatusPending, order.StatusValidated); err != nil {
			return err
		}
		if err := tx.Balances().Debit(ctx, o.CustomerID, o.Amount); err != nil {
			return err
		}

		details := itemSummary(o.Items)
		if err := tx.Notifications().Append(ctx, o.AccountID,
			fmt.Sprintf("Your order %s of %d item(s) (%s) has been validated. Visit your branch to collect it.",
				o.ID, len(o.Items), details)); err != nil {
			return err
		}
		if err := tx.Notifications().Append(ctx, p.AccountID,
			fmt.Sprintf("Order %s from %s for %d item(s) (%s) has been validated.",
				o.ID, customer.DisplayName(), len(o.Items), details)); err != nil {
			return err
		}

		o.Status = order.StatusValidated
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reserveSnapshot reserves each snapshot item in placement order. On the
// first shortfall it releases what was reserved earlier in this validation,
// cancels the order, notifies customer and admin, and reports cancelled=true
// so the caller commits the cancellation and stops.
func (w *OrderWorkflow) reserveSnapshot(ctx context.Context, tx storage.Tx, p *auth.Principal, o *order.Order) (bool, error) {
	var reserved []order.Item
	for _, it := range o.Items {
		err := tx.Stock().Reserve(ctx, it.RewardID, it.Quantity)
		if err == nil {
			reserved = append(reserved, it)
			continue
		}
		if !fault.IsKind(err, fault.InsufficientStock) {
			return false, err
		}

		for i := len(reserved) - 1; i >= 0; i-- {
			if rerr := tx.Stock().Release(ctx, reserved[i].RewardID, reserved[i].Quantity); rerr != nil {
				return false, rerr
			}
		}
		if terr := tx.Orders().Transition(ctx, o.ID, order.StatusPending, order.StatusCancelled); terr != nil {
			return false, terr
		}
		if nerr := tx.Notifications().Append(ctx, o.AccountID,
			fmt.Sprintf("Your order %s has been cancelled because %s is out of stock.", o.ID, it.Label)); nerr != nil {
			return false, nerr
		}
		if nerr := tx.Notifications().Append(ctx, p.AccountID,
			fmt.Sprintf("Order %s has been cancelled because %s is out of stock.", o.ID, it.Label)); nerr != nil {
			return false, nerr
		}
		o.Status = order.StatusCancelled
		return true, nil
	}
	return false, nil
}

// Cancel moves a pending order to cancelled and notifies customer and
// admin. No stock or balance restoration is performed; under ReserveAtAdd
// the add-time reservation is deliberately not released, matching the
// source system.
func (w *OrderWorkflow) Cancel(ctx context.Context, p *auth.Principal, orderID string) (*order.Order, error) {
	if err := auth.Authorize(p, auth.OpCancelOrder); err != nil {
		return nil, err
	}

	var result *order.Order
	err := w.db.InTx(ctx, func(tx storage.Tx) error {
		o, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		switch o.Status {
		case order.StatusValidated:
			return fault.Errorf(fault.InvalidState, "order %s is validated and can no longer be cancelled", orderID)
		case order.StatusCancelled:
			return fault.Errorf(fault.InvalidState, "order %s is already cancelled", orderID)
		}

		if err := tx.Orders().Transition(ctx, orderID, order.StatusPending, order.StatusCancelled); err != nil {
			return err
		}
		if err := tx.Notifications().Append(ctx, o.AccountID,
			fmt.Sprintf("Your order %s has been cancelled.", o.ID)); err != nil {
			return err
		}
		if err := tx.Notifications().Append(ctx, p.AccountID,
			fmt.Sprintf("Order %s has been cancelled.", o.ID)); err != nil {
			return err
		}

		o.Status = order.StatusCancelled
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete hard-deletes an order and its snapshot. Irreversible; no business
// rules beyond existence are checked.
func (w *OrderWorkflow) Delete(ctx context.Context, p *auth.Principal, orderID string) error {
	if err := auth.Authorize(p, auth.OpDeleteOrder); err != nil {
		return err
	}
	return w.db.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Orders().Get(ctx, orderID); err != nil {
			return err
		}
		return tx.Orders().Delete(ctx, orderID)
	})
}

// List returns all orders with their snapshots, newest first.
func (w *OrderWorkflow) List(ctx context.Context, p *auth.Principal) ([]order.Order, error) {
	if err := auth.Authorize(p, auth.OpListOrders); err != nil {
		return nil, err
	}
	return w.db.Orders().List(ctx)
}

// Get returns one order with its snapshot.
func (w *OrderWorkflow) Get(ctx context.Context, p *auth.Principal, orderID string) (*order.Order, error) {
	if err := auth.Authorize(p, auth.OpGetOrder); err != nil {
		return nil, err
	}
	return w.db.Orders().Get(ctx, orderID)
}

// itemSummary renders "2 x Gift Card, 1 x Coffee Mug" for notifications.
func itemSummary(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%d x %s", it.Quantity, it.Label))
	}
	return strings.Join(parts, ", ")
}

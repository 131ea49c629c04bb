// Package auth resolves bearer tokens into principals and decides, per
// operation, whether a principal may perform it. Role flags are carried as a
// capability set; each operation names its required capability in one table
// instead of scattering boolean checks across handlers.
package auth

import (
	"context"

	"github.com/kdiomande/rewards-platform/internal/fault"
)

// Capability is a coarse role grant.
type Capability uint8

const (
	CapCustomer Capability = 1 << iota
	CapAdmin
	CapSuperAdmin
)

// Principal is the authenticated actor behind a request.
type Principal struct {
	// AccountID is the primary key of the platform account.
	AccountID int64

	// Identifier is the login identifier carried as the JWT subject.
	Identifier string

	// CustomerCode links the account to the banking-side customer record.
	// Empty for back-office principals.
	CustomerCode string

	caps Capability
}

// NewPrincipal builds a principal with the given capability set.
func NewPrincipal(accountID int64, identifier, customerCode string, caps Capability) *Principal {
	return &Principal{
		AccountID:    accountID,
		Identifier:   identifier,
		CustomerCode: customerCode,
		caps:         caps,
	}
}

// Has reports whether the principal holds the capability. A superadmin
// implicitly holds admin.
func (p *Principal) Has(c Capability) bool {
	if p == nil {
		return false
	}
	if c == CapAdmin && p.caps&CapSuperAdmin != 0 {
		return true
	}
	return p.caps&c != 0
}

// HasAny reports whether the principal holds at least one capability from
// the mask.
func (p *Principal) HasAny(mask Capability) bool {
	if p == nil {
		return false
	}
	if mask&CapAdmin != 0 && p.caps&CapSuperAdmin != 0 {
		return true
	}
	return p.caps&mask != 0
}

// Operation names one externally invocable workflow operation.
type Operation string

const (
	OpListRewards       Operation = "rewards.list"
	OpToggleFavorite    Operation = "rewards.favorite"
	OpListFavorites     Operation = "favorites.list"
	OpAddToCart         Operation = "cart.add"
	OpViewCart          Operation = "cart.view"
	OpRemoveFromCart    Operation = "cart.remove"
	OpPlaceOrder        Operation = "orders.place"
	OpListOrders        Operation = "orders.list"
	OpGetOrder          Operation = "orders.get"
	OpValidateOrder     Operation = "orders.validate"
	OpCancelOrder       Operation = "orders.cancel"
	OpDeleteOrder       Operation = "orders.delete"
	OpListStock         Operation = "stock.list"
	OpRestock           Operation = "stock.restock"
	OpDeleteStock       Operation = "stock.delete"
	OpListNotifications Operation = "notifications.list"
)

// required maps each operation to the capability mask it demands: the
// principal must hold at least one capability from the mask. Evaluated once
// per operation via Authorize instead of ad-hoc flag checks per handler.
var required = map[Operation]Capability{
	OpListRewards:       CapCustomer,
	OpToggleFavorite:    CapCustomer,
	OpListFavorites:     CapCustomer,
	OpAddToCart:         CapCustomer,
	OpViewCart:          CapCustomer,
	OpRemoveFromCart:    CapCustomer,
	OpPlaceOrder:        CapCustomer,
	OpListOrders:        CapAdmin | CapSuperAdmin,
	OpGetOrder:          CapAdmin | CapSuperAdmin,
	OpValidateOrder:     CapSuperAdmin,
	OpCancelOrder:       CapSuperAdmin,
	OpDeleteOrder:       CapSuperAdmin,
	OpListStock:         CapAdmin | CapSuperAdmin,
	OpRestock:           CapSuperAdmin,
	OpDeleteStock:       CapSuperAdmin,
	OpListNotifications: CapCustomer | CapAdmin | CapSuperAdmin,
}

// Required returns the capability mask an operation demands.
func Required(op Operation) Capability {
	return required[op]
}

// Authorize checks the principal against the operation's required
// capability mask and returns a Forbidden failure on mismatch.
func Authorize(p *Principal, op Operation) error {
	need, ok := required[op]
	if !ok {
		return fault.Errorf(fault.Forbidden, "unknown operation %q", op)
	}
	if !p.HasAny(need) {
		return fault.Errorf(fault.Forbidden, "operation %q requires elevated access", op)
	}
	return nil
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal stored by the auth
// middleware; ok is false for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

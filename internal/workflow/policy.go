// Package workflow implements the redemption core: the cart staging area and
// the order state machine with their stock, balance, and notification
// effects. Every mutating operation runs inside one storage transaction.
package workflow

import "fmt"

// ReservationPolicy selects the point where the single stock decrement
// happens. The source system decremented both at cart-add and again at
// validation, which could drive quantities negative; here exactly one of the
// two points is chosen and the decrement is an atomic conditional update.
type ReservationPolicy string

const (
	// ReserveAtAdd decrements stock when the item enters the cart, matching
	// the source system's reservation point. Removing a cart item or
	// cancelling an order does not restore stock, also matching the source.
	ReserveAtAdd ReservationPolicy = "add"

	// ReserveAtValidate leaves stock untouched until order validation, where
	// each snapshot item is reserved atomically; the first shortfall cancels
	// the order and releases the items reserved earlier in that validation.
	ReserveAtValidate ReservationPolicy = "validate"
)

// ParseReservationPolicy validates a configured policy name.
func ParseReservationPolicy(s string) (ReservationPolicy, error) {
	switch ReservationPolicy(s) {
	case ReserveAtAdd, ReserveAtValidate:
		return ReservationPolicy(s), nil
	}
	return "", fmt.Errorf("unknown reservation policy %q (want %q or %q)", s, ReserveAtAdd, ReserveAtValidate)
}

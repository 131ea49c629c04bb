package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/order"
)

func TestPlaceOrder_SnapshotAndClear(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	mugID := seedReward(t, db, "Coffee Mug", 20)
	seedStock(t, db, giftID, 10)
	seedStock(t, db, mugID, 10)
	seedCustomer(t, db, "C-100", 500)
	p := customerPrincipal("C-100")

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, p, mugID, 1)
	require.NoError(t, err)

	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, int64(120), placed.Amount)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "Gift Card", placed.Items[0].Label)
	assert.Equal(t, int64(50), placed.Items[0].TokenCost)

	// The cart is cleared with no further stock effect.
	items, err := db.Cart().List(ctx, p.AccountID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(8), stockOf(t, db, giftID))

	notifs, err := db.Notifications().ListByAccount(ctx, p.AccountID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, placed.ID)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	db := newStore(t)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	seedCustomer(t, db, "C-101", 100)

	_, err := orders.Place(context.Background(), customerPrincipal("C-101"))
	assert.True(t, fault.IsKind(err, fault.EmptyCart))
}

func TestPlaceOrder_NoCustomerRecord(t *testing.T) {
	db := newStore(t)
	orders := NewOrderWorkflow(db, ReserveAtAdd)

	_, err := orders.Place(context.Background(), customerPrincipal("C-unknown"))
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestValidateOrder_DebitsAndNotifies(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-102", 500)
	p := customerPrincipal("C-102")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	validated, err := orders.Validate(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, validated.Status)

	assert.Equal(t, int64(400), balanceOf(t, db, "C-102"))
	// Under the add-time policy validation does not touch stock again.
	assert.Equal(t, int64(8), stockOf(t, db, giftID))

	custNotifs, err := db.Notifications().ListByAccount(ctx, p.AccountID)
	require.NoError(t, err)
	require.Len(t, custNotifs, 2) // placement + validation
	assert.Contains(t, custNotifs[0].Message, "validated")
	assert.Contains(t, custNotifs[0].Message, "2 x Gift Card")

	adminNotifs, err := db.Notifications().ListByAccount(ctx, admin.AccountID)
	require.NoError(t, err)
	require.Len(t, adminNotifs, 1)
	assert.Contains(t, adminNotifs[0].Message, "Ada L.")
}

func TestValidateOrder_InsufficientBalanceStaysPending(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-103", 60)
	p := customerPrincipal("C-103")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	_, err = orders.Validate(ctx, admin, placed.ID)
	require.True(t, fault.IsKind(err, fault.InsufficientBalance))

	got, err := orders.Get(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, int64(60), balanceOf(t, db, "C-103"))
}

func TestValidateOrder_ShortfallCancels(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtValidate)
	orders := NewOrderWorkflow(db, ReserveAtValidate)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	mugID := seedReward(t, db, "Coffee Mug", 20)
	seedStock(t, db, giftID, 5)
	seedStock(t, db, mugID, 5)
	seedCustomer(t, db, "C-104", 1000)
	p := customerPrincipal("C-104")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, p, mugID, 3)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	// The mugs sell out between placement and validation.
	_, _, err = db.Stock().Restock(ctx, mugID, 1)
	require.NoError(t, err)

	result, err := orders.Validate(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, result.Status)

	// The gift cards reserved before the shortfall are released again.
	assert.Equal(t, int64(5), stockOf(t, db, giftID))
	assert.Equal(t, int64(1), stockOf(t, db, mugID))
	assert.Equal(t, int64(1000), balanceOf(t, db, "C-104"))

	custNotifs, err := db.Notifications().ListByAccount(ctx, p.AccountID)
	require.NoError(t, err)
	require.Len(t, custNotifs, 2)
	assert.Contains(t, custNotifs[0].Message, "out of stock")
	assert.Contains(t, custNotifs[0].Message, "Coffee Mug")

	adminNotifs, err := db.Notifications().ListByAccount(ctx, admin.AccountID)
	require.NoError(t, err)
	require.Len(t, adminNotifs, 1)
	assert.Contains(t, adminNotifs[0].Message, "out of stock")
}

func TestValidateOrder_ValidatePolicyReservesStock(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtValidate)
	orders := NewOrderWorkflow(db, ReserveAtValidate)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 5)
	seedCustomer(t, db, "C-105", 500)
	p := customerPrincipal("C-105")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	// Placement left stock alone; validation consumes it.
	assert.Equal(t, int64(5), stockOf(t, db, giftID))

	_, err = orders.Validate(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stockOf(t, db, giftID))
	assert.Equal(t, int64(400), balanceOf(t, db, "C-105"))
}

// Two pending orders over the same stock: the first validation wins, the
// second is cancelled, and the quantity never goes negative.
func TestValidateOrder_CompetingOrders(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtValidate)
	orders := NewOrderWorkflow(db, ReserveAtValidate)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 5)
	seedCustomer(t, db, "C-106", 1000)
	seedCustomer(t, db, "C-107", 1000)
	p1 := customerPrincipal("C-106")
	p2 := customerPrincipal("C-107")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p1, giftID, 5)
	require.NoError(t, err)
	first, err := orders.Place(ctx, p1)
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, p2, giftID, 5)
	require.NoError(t, err)
	second, err := orders.Place(ctx, p2)
	require.NoError(t, err)

	got, err := orders.Validate(ctx, admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusValidated, got.Status)
	assert.Equal(t, int64(0), stockOf(t, db, giftID))

	got, err = orders.Validate(ctx, admin, second.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.Equal(t, int64(0), stockOf(t, db, giftID))
	assert.Equal(t, int64(1000), balanceOf(t, db, "C-107"))
}

func TestValidateOrder_TerminalStates(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-108", 500)
	p := customerPrincipal("C-108")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 1)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	_, err = orders.Validate(ctx, admin, placed.ID)
	require.NoError(t, err)

	// Repeated validation is rejected and the balance is not debited twice.
	_, err = orders.Validate(ctx, admin, placed.ID)
	assert.True(t, fault.IsKind(err, fault.InvalidState))
	assert.Equal(t, int64(450), balanceOf(t, db, "C-108"))

	_, err = orders.Cancel(ctx, admin, placed.ID)
	assert.True(t, fault.IsKind(err, fault.InvalidState))
}

func TestValidateOrder_RequiresSuperAdmin(t *testing.T) {
	db := newStore(t)
	orders := NewOrderWorkflow(db, ReserveAtAdd)

	_, err := orders.Validate(context.Background(), adminPrincipal(), "any")
	assert.True(t, fault.IsKind(err, fault.Forbidden))

	_, err = orders.Validate(context.Background(), customerPrincipal("C-x"), "any")
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

func TestCancelOrder_NoRestoration(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-109", 500)
	p := customerPrincipal("C-109")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	cancelled, err := orders.Cancel(ctx, admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// Neither stock nor balance moves on cancellation.
	assert.Equal(t, int64(8), stockOf(t, db, giftID))
	assert.Equal(t, int64(500), balanceOf(t, db, "C-109"))

	custNotifs, err := db.Notifications().ListByAccount(ctx, p.AccountID)
	require.NoError(t, err)
	require.Len(t, custNotifs, 2)
	assert.Contains(t, custNotifs[0].Message, "cancelled")

	// Cancelling again is rejected.
	_, err = orders.Cancel(ctx, admin, placed.ID)
	assert.True(t, fault.IsKind(err, fault.InvalidState))
}

func TestDeleteOrder(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-110", 500)
	p := customerPrincipal("C-110")
	admin := superPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 1)
	require.NoError(t, err)
	placed, err := orders.Place(ctx, p)
	require.NoError(t, err)

	require.NoError(t, orders.Delete(ctx, admin, placed.ID))

	_, err = orders.Get(ctx, admin, placed.ID)
	assert.True(t, fault.IsKind(err, fault.NotFound))

	err = orders.Delete(ctx, admin, placed.ID)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestListOrders_NewestFirstWithSnapshots(t *testing.T) {
	db := newStore(t)
	carts := NewCartService(db, ReserveAtAdd)
	orders := NewOrderWorkflow(db, ReserveAtAdd)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 50)
	seedStock(t, db, giftID, 10)
	seedCustomer(t, db, "C-111", 500)
	p := customerPrincipal("C-111")
	admin := adminPrincipal()

	_, err := carts.AddItem(ctx, p, giftID, 1)
	require.NoError(t, err)
	_, err = orders.Place(ctx, p)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, p, giftID, 2)
	require.NoError(t, err)
	_, err = orders.Place(ctx, p)
	require.NoError(t, err)

	all, err := orders.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, o := range all {
		require.NotEmpty(t, o.Items)
	}

	// Plain customers may not browse the order book.
	_, err = orders.List(ctx, p)
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

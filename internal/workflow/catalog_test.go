package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/rewards-platform/internal/fault"
)

func TestListRewards_FilterByCategory(t *testing.T) {
	db := newStore(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	seedReward(t, db, "Keyring", 40)        // Eco Premium
	seedReward(t, db, "Gift Card", 500)     // Executive
	seedReward(t, db, "Weekend Trip", 5000) // First Class

	p := customerPrincipal("C-200")

	all, err := svc.ListRewards(ctx, p, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	exec, err := svc.ListRewards(ctx, p, "Executive")
	require.NoError(t, err)
	require.Len(t, exec, 1)
	assert.Equal(t, "Gift Card", exec[0].Label)

	none, err := svc.ListRewards(ctx, p, "No Such Tier")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	db := newStore(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	rewardID := seedReward(t, db, "Gift Card", 500)
	p := customerPrincipal("C-201")

	added, err := svc.ToggleFavorite(ctx, p, rewardID)
	require.NoError(t, err)
	assert.True(t, added)

	favs, err := svc.ListFavorites(ctx, p)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, rewardID, favs[0].ID)

	added, err = svc.ToggleFavorite(ctx, p, rewardID)
	require.NoError(t, err)
	assert.False(t, added)

	favs, err = svc.ListFavorites(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestToggleFavorite_UnknownReward(t *testing.T) {
	db := newStore(t)
	svc := NewCatalogService(db, nil)

	_, err := svc.ToggleFavorite(context.Background(), customerPrincipal("C-202"), 999)
	assert.True(t, fault.IsKind(err, fault.NotFound))
}

func TestRestock_UpsertSemantics(t *testing.T) {
	db := newStore(t)
	svc := NewStockService(db)
	ctx := context.Background()

	rewardID := seedReward(t, db, "Gift Card", 500)
	admin := superPrincipal()

	entry, created, err := svc.Restock(ctx, admin, rewardID, 7)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(7), entry.QuantityAvailable)

	// Restocking again overwrites the absolute quantity.
	entry, created, err = svc.Restock(ctx, admin, rewardID, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(3), entry.QuantityAvailable)

	_, _, err = svc.Restock(ctx, admin, rewardID, -1)
	assert.True(t, fault.IsKind(err, fault.InvalidArgument))

	_, _, err = svc.Restock(ctx, admin, 999, 5)
	assert.True(t, fault.IsKind(err, fault.NotFound))

	_, _, err = svc.Restock(ctx, adminPrincipal(), rewardID, 5)
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

func TestStockList_AndDelete(t *testing.T) {
	db := newStore(t)
	svc := NewStockService(db)
	ctx := context.Background()

	giftID := seedReward(t, db, "Gift Card", 500)
	mugID := seedReward(t, db, "Coffee Mug", 20)
	seedStock(t, db, giftID, 5)
	seedStock(t, db, mugID, 2)
	admin := superPrincipal()

	entries, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, svc.Delete(ctx, admin, entries[0].ID))

	entries, err = svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = svc.Delete(ctx, admin, 999)
	assert.True(t, fault.IsKind(err, fault.NotFound))

	_, err = svc.List(ctx, customerPrincipal("C-203"))
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

func TestNotificationList_OwnAccountOnly(t *testing.T) {
	db := newStore(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	p := customerPrincipal("C-204")
	other := customerPrincipal("C-205")

	require.NoError(t, db.Notifications().Append(ctx, p.AccountID, "first"))
	require.NoError(t, db.Notifications().Append(ctx, p.AccountID, "second"))
	require.NoError(t, db.Notifications().Append(ctx, other.AccountID, "theirs"))

	notifs, err := svc.List(ctx, p)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	assert.Equal(t, "second", notifs[0].Message)
	assert.Equal(t, "first", notifs[1].Message)
}

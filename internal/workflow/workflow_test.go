package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/balance"
	"github.com/kdiomande/rewards-platform/internal/catalog"
	"github.com/kdiomande/rewards-platform/internal/storage"
	"github.com/kdiomande/rewards-platform/internal/storage/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedReward(t *testing.T, db storage.DB, label string, cost int64) int64 {
	t.Helper()
	r := &catalog.Reward{
		Label:     label,
		Slug:      strings.ToLower(strings.ReplaceAll(label, " ", "-")),
		TokenCost: cost,
	}
	require.NoError(t, db.Catalog().CreateReward(context.Background(), r))
	return r.ID
}

func seedStock(t *testing.T, db storage.DB, rewardID, qty int64) {
	t.Helper()
	_, _, err := db.Stock().Restock(context.Background(), rewardID, qty)
	require.NoError(t, err)
}

func seedCustomer(t *testing.T, db storage.DB, code string, tokens int64) int64 {
	t.Helper()
	c := &balance.Customer{Code: code, FirstName: "Ada", ShortName: "L.", Balance: tokens}
	require.NoError(t, db.Balances().Upsert(context.Background(), c))
	return c.ID
}

func stockOf(t *testing.T, db storage.DB, rewardID int64) int64 {
	t.Helper()
	entry, err := db.Stock().Entry(context.Background(), rewardID)
	require.NoError(t, err)
	return entry.QuantityAvailable
}

func balanceOf(t *testing.T, db storage.DB, code string) int64 {
	t.Helper()
	c, err := db.Balances().ByCode(context.Background(), code)
	require.NoError(t, err)
	return c.Balance
}

var accountSeq int64 = 100

func customerPrincipal(code string) *auth.Principal {
	accountSeq++
	return auth.NewPrincipal(accountSeq, fmt.Sprintf("user-%d", accountSeq), code, auth.CapCustomer)
}

func superPrincipal() *auth.Principal {
	accountSeq++
	return auth.NewPrincipal(accountSeq, fmt.Sprintf("admin-%d", accountSeq), "", auth.CapSuperAdmin)
}

func adminPrincipal() *auth.Principal {
	accountSeq++
	return auth.NewPrincipal(accountSeq, fmt.Sprintf("staff-%d", accountSeq), "", auth.CapAdmin)
}

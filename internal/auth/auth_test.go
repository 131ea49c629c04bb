package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdiomande/rewards-platform/internal/fault"
)

func TestAuthorize_CapabilityTable(t *testing.T) {
	customer := NewPrincipal(1, "alice", "C-1", CapCustomer)
	admin := NewPrincipal(2, "bob", "", CapAdmin)
	super := NewPrincipal(3, "carol", "", CapSuperAdmin)

	cases := []struct {
		op      Operation
		allowed []*Principal
		denied  []*Principal
	}{
		{OpAddToCart, []*Principal{customer}, []*Principal{admin, super}},
		{OpPlaceOrder, []*Principal{customer}, []*Principal{admin, super}},
		{OpListOrders, []*Principal{admin, super}, []*Principal{customer}},
		{OpValidateOrder, []*Principal{super}, []*Principal{customer, admin}},
		{OpCancelOrder, []*Principal{super}, []*Principal{customer, admin}},
		{OpRestock, []*Principal{super}, []*Principal{customer, admin}},
		{OpListStock, []*Principal{admin, super}, []*Principal{customer}},
		{OpListNotifications, []*Principal{customer, admin, super}, nil},
	}

	for _, tc := range cases {
		for _, p := range tc.allowed {
			assert.NoError(t, Authorize(p, tc.op), "op %s should allow %s", tc.op, p.Identifier)
		}
		for _, p := range tc.denied {
			err := Authorize(p, tc.op)
			assert.True(t, fault.IsKind(err, fault.Forbidden), "op %s should deny %s", tc.op, p.Identifier)
		}
	}
}

func TestAuthorize_NilPrincipal(t *testing.T) {
	err := Authorize(nil, OpAddToCart)
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

func TestAuthorize_UnknownOperation(t *testing.T) {
	p := NewPrincipal(1, "alice", "C-1", CapSuperAdmin)
	err := Authorize(p, Operation("nope"))
	assert.True(t, fault.IsKind(err, fault.Forbidden))
}

func TestSuperAdminImpliesAdmin(t *testing.T) {
	super := NewPrincipal(1, "carol", "", CapSuperAdmin)
	assert.True(t, super.Has(CapAdmin))
	assert.True(t, super.HasAny(CapAdmin))
	assert.False(t, super.Has(CapCustomer))

	admin := NewPrincipal(2, "bob", "", CapAdmin)
	assert.False(t, admin.Has(CapSuperAdmin))
}

func TestValidator_RoundTrip(t *testing.T) {
	v := NewValidator([]byte("secret"))

	token, err := v.Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		AccountID:        42,
		CustomerCode:     "C-42",
		IsCustomer:       true,
	}, time.Minute)
	require.NoError(t, err)

	p, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.AccountID)
	assert.Equal(t, "alice", p.Identifier)
	assert.Equal(t, "C-42", p.CustomerCode)
	assert.True(t, p.Has(CapCustomer))
	assert.False(t, p.Has(CapAdmin))
}

func TestValidator_WrongSecret(t *testing.T) {
	token, err := NewValidator([]byte("one")).Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		IsCustomer:       true,
	}, time.Minute)
	require.NoError(t, err)

	_, err = NewValidator([]byte("two")).Validate(token)
	assert.Error(t, err)
}

func TestValidator_ExpiredToken(t *testing.T) {
	v := NewValidator([]byte("secret"))
	token, err := v.Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		IsCustomer:       true,
	}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestValidator_RejectsMissingFlagsAndSubject(t *testing.T) {
	v := NewValidator([]byte("secret"))

	token, err := v.Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}, time.Minute)
	require.NoError(t, err)
	_, err = v.Validate(token)
	assert.ErrorContains(t, err, "role flags")

	token, err = v.Sign(Claims{IsCustomer: true}, time.Minute)
	require.NoError(t, err)
	_, err = v.Validate(token)
	assert.ErrorContains(t, err, "subject")
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued by the (external) login service. The
// subject is the account's login identifier; the role flags mirror the
// account table owned by that service.
type Claims struct {
	jwt.RegisteredClaims
	AccountID    int64  `json:"account_id"`
	CustomerCode string `json:"customer_code,omitempty"`
	IsCustomer   bool   `json:"is_customer"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// Validator parses and verifies HMAC-signed bearer tokens.
type Validator struct {
	secret []byte
}

// NewValidator builds a validator for the shared signing secret.
func NewValidator(secret []byte) *Validator {
	return &Validator{secret: secret}
}

// Validate parses the token string and returns the principal it carries.
func (v *Validator) Validate(tokenStr string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token subject is required")
	}

	var caps Capability
	if claims.IsCustomer {
		caps |= CapCustomer
	}
	if claims.IsAdmin {
		caps |= CapAdmin
	}
	if claims.IsSuperuser {
		caps |= CapSuperAdmin
	}
	if caps == 0 {
		return nil, fmt.Errorf("token carries no role flags")
	}

	return NewPrincipal(claims.AccountID, claims.Subject, claims.CustomerCode, caps), nil
}

// Sign issues a token for the principal described by claims. Exposed for
// provisioning scripts and tests; production tokens come from the login
// service.
func (v *Validator) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

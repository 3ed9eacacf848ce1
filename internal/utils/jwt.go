package utils

import (
	"errors" // Error construction
	"fmt"    // Error wrapping
	"time"   // Time for token expiration

	"store_rating/internal/domain" // Roles and error kinds

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token ids
)

// DefaultTokenTTL is the absolute lifetime of an access token
const DefaultTokenTTL = 8 * time.Hour

// Claims is the signed payload of an access token
type Claims struct {
	UserID uint        `json:"id"`   // User ID
	Role   domain.Role `json:"role"` // Role at issuance time
	Name   string      `json:"name"` // Display name at issuance time
	jwt.RegisteredClaims               // iat, exp, jti
}

// TokenIssuer signs and verifies HS256 access tokens with a single secret.
// It never consults the user table: a role change becomes visible only once
// the previously issued token expires.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption customises a TokenIssuer
type IssuerOption func(*TokenIssuer)

// WithClock replaces the issuer's time source
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewTokenIssuer creates an issuer for the given secret. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token issuer: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	i := &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the token lifetime
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue creates a signed token for the given principal
func (i *TokenIssuer) Issue(userID uint, role domain.Role, name string) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),                   // Token id, used by the revocation list
			IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)), // Absolute expiry
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString(i.secret)               // Sign the token with the secret
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Every failure wraps domain.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete claims", domain.ErrInvalidToken)
	}
	return claims, nil
}

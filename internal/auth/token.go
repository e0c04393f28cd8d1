package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/servify/servify-dashboard/internal/shared"
)

// TokenTTL is the fixed validity of a session token.
const TokenTTL = 24 * time.Hour

const tokenIssuer = "servify"

// Claims defines the session token payload.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs an issuer for the given signing secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// WithNow overrides the issuer clock for testing.
func (t *TokenIssuer) WithNow(fn func() time.Time) *TokenIssuer {
	if fn != nil {
		t.now = fn
	}
	return t
}

// Issue returns a signed token for the user, valid for TokenTTL. Claims carry
// whole seconds, so iat and exp are computed from the truncated clock.
func (t *TokenIssuer) Issue(user User) (string, error) {
	now := t.now().Truncate(time.Second)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the identity it carries. Any signature,
// algorithm, format or expiry failure is reported as shared.ErrForbidden.
func (t *TokenIssuer) Parse(raw string) (shared.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return shared.Identity{}, fmt.Errorf("%w: %w", shared.ErrForbidden, err)
	}
	if !parsed.Valid {
		return shared.Identity{}, shared.ErrForbidden
	}
	return shared.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

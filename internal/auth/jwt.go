package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baharkarakas/campus-registration/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies HS256 access tokens with one fixed secret.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Claims is what a verified token asserts. Subject carries the user id.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// Issue mints a token for p and returns it with its expiry.
func (tm *TokenManager) Issue(p models.Principal) (string, time.Time, error) {
	const op = "auth.Issue"
	now := time.Now()
	exp := now.Add(tm.ttl)

	claims := Claims{
		Role:  p.Role,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return tok, exp, nil
}

// Parse verifies the signature against the configured secret and decodes the claims.
// Only HS256 is accepted; exp is required.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	const op = "auth.Parse"
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

// Package auth issues and verifies the dashboard's bearer tokens and hashes
// user passwords.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/dashboard-backend/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Issuer signs and parses HS512 tokens with a shared secret.
type Issuer struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer decodes the base64 secret and returns an Issuer whose tokens
// expire after expiry.
func NewIssuer(base64Secret string, expiry time.Duration) (*Issuer, error) {
	key, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode JWT secret: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("JWT secret is empty")
	}
	if expiry <= 0 {
		return nil, errors.New("JWT expiry must be positive")
	}
	return &Issuer{key: key, expiry: expiry, now: time.Now}, nil
}

// Sign returns a token for user and the time it expires.
func (i *Issuer) Sign(user domain.User) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.expiry)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Admin:    user.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Parse verifies the signature, algorithm and expiry of token.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by WithClaims, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// HashPassword bcrypt-hashes password. Costs below bcrypt.MinCost are raised to it.
func HashPassword(password string, cost int) (string, error) {
	cost = max(cost, bcrypt.MinCost)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// placeholderHash is compared against when the user does not exist.
var placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.DefaultCost)

// CheckPassword reports whether password matches hash. An empty hash runs a
// full-cost comparison against placeholderHash so unknown users cost the same time.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"coursecatalog/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("not authenticated")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenManager signs and verifies HS256 session tokens. Tokens are not
// tracked server-side: a token stays valid until it expires.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed token for user and its expiry time.
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	issuedAt := m.now()
	expirationTime := issuedAt.Add(m.ttl)
	claims := &models.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// Parse verifies tokenString and returns its claims. Any failure, expiry
// included, wraps ErrInvalidToken; expiry additionally wraps jwt.ErrTokenExpired.
func (m *TokenManager) Parse(tokenString string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

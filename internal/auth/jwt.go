// Package auth verifies the bearer tokens of the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenNotValid = errors.New("token is not valid")
	ErrTokenExpired  = errors.New("token expired")
)

// Manager issues and verifies HS256 tokens whose subject is a user id.
type Manager struct {
	secret []byte
	now    func() time.Time
}

func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret, now: time.Now}
}

// Issue signs a token for userID valid for ttl.
func (m *Manager) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its subject.
func (m *Manager) Verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return uuid.Nil, ErrTokenExpired
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("jwt parse: %w: %w", err, ErrTokenNotValid)
	}
	if !parsed.Valid {
		return uuid.Nil, ErrTokenNotValid
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject %q: %w", claims.Subject, ErrTokenNotValid)
	}
	return id, nil
}

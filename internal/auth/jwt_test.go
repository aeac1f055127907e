package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	m := NewManager([]byte("secret"))
	id := uuid.New()

	token, err := m.Issue(id, time.Hour)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager([]byte("secret"))
	token, err := m.Issue(uuid.New(), time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager([]byte("secret"))

	other, err := NewManager([]byte("other")).Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "abc.def.ghi",
		"wrong secret": other,
		"bad subject":  noSubject,
		"no expiry":    noExpiry,
		"wrong method": hs512,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.ErrorIs(t, err, ErrTokenNotValid)
		})
	}
}

func TestContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

package auth

import (
	"testing"
	"time"

	"medshop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{Secret: "s3cret", TTL: time.Hour})

	token, exp, err := m.Issue(42, "alice", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager(config.JWTConfig{Secret: "one"})
	verifier := NewTokenManager(config.JWTConfig{Secret: "two"})

	token, _, err := issuer.Issue(1, "bob", "staff")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{Secret: "s", TTL: time.Minute})
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(1, "bob", "staff")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestTokenManager_EmptyToken(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{Secret: "s"})
	_, err := m.Parse("")
	assert.Error(t, err)
}

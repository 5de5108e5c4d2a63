package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, expiresAt, err := m.Issue("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	user, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
}

func TestManager_Validate(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour)
		tok, _, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = m.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := &Manager{secret: []byte("test-secret"), expiry: -time.Hour}
		tok, _, err := expired.Issue("alice")
		require.NoError(t, err)

		_, err = m.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewManager_DefaultExpiry(t *testing.T) {
	m := NewManager("s", 0)
	assert.Equal(t, 12*time.Hour, m.Expiry())
}

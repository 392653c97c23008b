package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassphrase(t *testing.T) {
	t.Parallel()

	hash, err := HashPassphrase("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.NoError(t, NewBcryptVerifier().Compare(hash, "correct horse battery staple"))
	assert.Error(t, NewBcryptVerifier().Compare(hash, "wrong"))

	_, err = HashPassphrase("")
	assert.Error(t, err)
}

func TestOwnerAuthenticator(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	ownerID := uuid.New()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cfg := config.AuthConfig{
		JWTSecret:            testSecret,
		OwnerPassphraseHash:  string(hash),
		OwnerID:              ownerID.String(),
		TokenLifetimeMinutes: 30,
	}
	tokens := newTestService(t, testSecret, cfg.TokenLifetimeMinutes, fixed(now))

	a, err := NewOwnerAuthenticator(cfg, NewBcryptVerifier(), tokens)
	require.NoError(t, err)
	assert.Equal(t, ownerID, a.OwnerID())

	t.Run("valid passphrase", func(t *testing.T) {
		t.Parallel()
		tok, err := a.Login(context.Background(), "open sesame")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, now.Add(30*time.Minute), tok.ExpiresAt)

		claims, err := tokens.ValidateToken(context.Background(), tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, ownerID, claims.OwnerID)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		t.Parallel()
		tok, err := a.Login(context.Background(), "close sesame")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, tok.AccessToken)
	})
}

func TestNewOwnerAuthenticator_InvalidConfig(t *testing.T) {
	t.Parallel()

	tokens := newTestService(t, testSecret, 60, time.Now)
	valid := config.AuthConfig{OwnerPassphraseHash: "$2a$04$x", OwnerID: uuid.NewString()}

	tests := []struct {
		name     string
		mutate   func(c *config.AuthConfig)
		verifier PasswordVerifier
		tokens   JWTService
	}{
		{"bad owner id", func(c *config.AuthConfig) { c.OwnerID = "nope" }, NewBcryptVerifier(), tokens},
		{"missing hash", func(c *config.AuthConfig) { c.OwnerPassphraseHash = "" }, NewBcryptVerifier(), tokens},
		{"nil verifier", func(*config.AuthConfig) {}, nil, tokens},
		{"nil tokens", func(*config.AuthConfig) {}, NewBcryptVerifier(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			a, err := NewOwnerAuthenticator(cfg, tt.verifier, tt.tokens)
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}
}

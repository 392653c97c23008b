package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
)

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// OwnerAuthenticator exchanges the owner passphrase for access tokens.
type OwnerAuthenticator struct {
	ownerID  uuid.UUID
	hash     string
	verifier PasswordVerifier
	tokens   JWTService
}

// NewOwnerAuthenticator creates an OwnerAuthenticator from configuration.
func NewOwnerAuthenticator(cfg config.AuthConfig, verifier PasswordVerifier, tokens JWTService) (*OwnerAuthenticator, error) {
	ownerID, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}
	if cfg.OwnerPassphraseHash == "" {
		return nil, fmt.Errorf("owner passphrase hash is required")
	}
	if verifier == nil || tokens == nil {
		return nil, fmt.Errorf("verifier and token service are required")
	}
	return &OwnerAuthenticator{
		ownerID:  ownerID,
		hash:     cfg.OwnerPassphraseHash,
		verifier: verifier,
		tokens:   tokens,
	}, nil
}

// Login checks passphrase and issues an access token.
// It returns ErrInvalidCredentials on mismatch.
func (a *OwnerAuthenticator) Login(ctx context.Context, passphrase string) (Token, error) {
	log := logger.FromContext(ctx)

	if err := a.verifier.Compare(a.hash, passphrase); err != nil {
		log.Warn("owner login failed")
		return Token{}, ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokens.GenerateToken(ctx, a.ownerID)
	if err != nil {
		return Token{}, err
	}

	log.Info("owner logged in", "expires_at", expiresAt)
	return Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// OwnerID returns the identifier tokens are issued for.
func (a *OwnerAuthenticator) OwnerID() uuid.UUID {
	return a.ownerID
}

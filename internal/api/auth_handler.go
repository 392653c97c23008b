package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/service/auth"
)

// Authenticator exchanges the owner passphrase for an access token.
type Authenticator interface {
	Login(ctx context.Context, passphrase string) (auth.Token, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authenticator Authenticator
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authenticator Authenticator) *AuthHandler {
	if authenticator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("authenticator cannot be nil for AuthHandler")
	}
	return &AuthHandler{authenticator: authenticator}
}

// IssueToken handles POST /api/auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Passphrase)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, token)
}

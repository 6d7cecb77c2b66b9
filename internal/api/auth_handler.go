package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spraicheux/offerflow/internal/api/shared"
	"github.com/spraicheux/offerflow/internal/service/auth"
	"github.com/spraicheux/offerflow/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	clientStore    store.ClientStore
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier
	tokenLifetime  time.Duration
	validator      *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	clientStore store.ClientStore,
	jwtService auth.JWTService,
	apiKeyVerifier auth.APIKeyVerifier,
	tokenLifetimeMinutes int,
) *AuthHandler {
	return &AuthHandler{
		clientStore:    clientStore,
		jwtService:     jwtService,
		apiKeyVerifier: apiKeyVerifier,
		tokenLifetime:  time.Duration(tokenLifetimeMinutes) * time.Minute,
		validator:      validator.New(),
	}
}

// Token handles the /api/auth/token endpoint. Clients exchange their client ID
// and API key for a JWT token pair.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	client, err := h.clientStore.GetByClientID(r.Context(), req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			// Same response as a bad key so client IDs can't be probed
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate client", err)
		return
	}

	if err := h.apiKeyVerifier.Compare(client.APIKeyHash, req.APIKey); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), client.ID)
	if err != nil {
		slog.Error("failed to generate access token", "error", err, "client_id", client.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token")
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), client.ID)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "client_id", client.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		ClientID:     client.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}

// RefreshToken handles the /api/auth/refresh endpoint. It validates the
// provided refresh token and issues a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), claims.ClientID)
	if err != nil {
		slog.Error("failed to generate access token", "error", err, "client_id", claims.ClientID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token")
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), claims.ClientID)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "client_id", claims.ClientID)
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}

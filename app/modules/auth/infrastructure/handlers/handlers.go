// Package authhandlers exposes the auth HTTP surface: bearer-token
// validation middleware and the realtime token endpoint.
package authhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authservice "github.com/fairway-collective/moneygames/app/modules/auth/application"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
)

// AuthHandlers handles auth HTTP requests.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers.
func NewAuthHandlers(service authservice.Service, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{service: service, logger: logger}
}

// Routes mounts the auth endpoints on a chi router. The caller is expected
// to have applied RequireIdentity already.
func (h *AuthHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/realtime-token", h.RealtimeToken)
	return r
}

// RealtimeToken issues a capability-scoped token for the realtime transport.
func (h *AuthHandlers) RealtimeToken(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	token, err := h.service.IssueRealtimeToken(r.Context(), identity)
	if err != nil {
		if errors.Is(err, authservice.ErrUnknownUser) || errors.Is(err, authservice.ErrNoLeagueMembership) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to issue realtime token",
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(token); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode realtime token response", attr.Error(err))
	}
}

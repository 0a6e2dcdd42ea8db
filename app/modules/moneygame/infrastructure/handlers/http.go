// Package moneygamehandlers exposes the money game lifecycle over HTTP.
package moneygamehandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authhandlers "github.com/fairway-collective/moneygames/app/modules/auth/infrastructure/handlers"
	moneygameservice "github.com/fairway-collective/moneygames/app/modules/moneygame/application"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
)

// MoneyGameHandlers handles HTTP requests for money games.
type MoneyGameHandlers struct {
	service moneygameservice.Service
	logger  *slog.Logger
}

// NewMoneyGameHandlers creates a new MoneyGameHandlers.
func NewMoneyGameHandlers(service moneygameservice.Service, logger *slog.Logger) *MoneyGameHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &MoneyGameHandlers{service: service, logger: logger}
}

// Routes mounts the money game endpoints. RequireIdentity must wrap the
// mount point.
func (h *MoneyGameHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateGame)
	r.Get("/", h.ListChapterGames)
	r.Route("/{gameID}", func(r chi.Router) {
		r.Get("/lobby", h.GetLobby)
		r.Get("/me", h.GetMyStatus)
		r.Post("/respond", h.RecordResponse)
		r.Post("/status", h.ChangeGameStatus)
	})
	return r
}

type createGameRequest struct {
	LeagueID         uuid.UUID               `json:"leagueId"`
	ChapterID        uuid.UUID               `json:"chapterId"`
	GameType         moneygametypes.GameType `json:"gameType"`
	CourseID         uuid.UUID               `json:"courseId"`
	Currency         moneygametypes.Currency `json:"currency"`
	ScheduledDate    string                  `json:"scheduledDate,omitempty"`
	Description      string                  `json:"description,omitempty"`
	InvitedPlayerIDs []uuid.UUID             `json:"invitedPlayerIds"`
	Guests           []moneygametypes.Guest  `json:"guests,omitempty"`
}

type respondRequest struct {
	Status moneygametypes.InvitationStatus `json:"status"`
}

type statusChangeRequest struct {
	Status moneygametypes.GameStatus `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateGame creates a game and its invitation ledger.
func (h *MoneyGameHandlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.CreateGame(r.Context(), authhandlers.IdentityFromContext(r.Context()), moneygameservice.CreateGameInput{
		LeagueID:         req.LeagueID,
		ChapterID:        req.ChapterID,
		GameType:         req.GameType,
		CourseID:         req.CourseID,
		Currency:         req.Currency,
		Schedule:         req.ScheduledDate,
		Description:      req.Description,
		InvitedPlayerIDs: req.InvitedPlayerIDs,
		Guests:           req.Guests,
	})
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// ListChapterGames lists a chapter's games.
func (h *MoneyGameHandlers) ListChapterGames(w http.ResponseWriter, r *http.Request) {
	chapterID, err := uuid.Parse(r.URL.Query().Get("chapterId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "chapterId query parameter is required")
		return
	}

	games, err := h.service.ListChapterGames(r.Context(), authhandlers.IdentityFromContext(r.Context()), chapterID)
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, games)
}

// GetLobby returns the authoritative lobby snapshot.
func (h *MoneyGameHandlers) GetLobby(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.GetLobby(r.Context(), authhandlers.IdentityFromContext(r.Context()), gameID)
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// GetMyStatus returns the caller's standing on the game.
func (h *MoneyGameHandlers) GetMyStatus(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}

	mine, err := h.service.GetMyStatus(r.Context(), authhandlers.IdentityFromContext(r.Context()), gameID)
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mine)
}

// RecordResponse records the caller's accept or decline.
func (h *MoneyGameHandlers) RecordResponse(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	snap, err := h.service.RecordResponse(r.Context(), authhandlers.IdentityFromContext(r.Context()), gameID, req.Status)
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// ChangeGameStatus applies a creator-requested transition.
func (h *MoneyGameHandlers) ChangeGameStatus(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	snap, err := h.service.ChangeGameStatus(r.Context(), authhandlers.IdentityFromContext(r.Context()), gameID, req.Status)
	if err != nil {
		h.writeFailure(r, w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *MoneyGameHandlers) gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid game ID")
		return uuid.Nil, false
	}
	return gameID, true
}

// writeFailure maps a service error to an HTTP response. Domain failures
// become 4xx with their code; anything else is a 500.
func (h *MoneyGameHandlers) writeFailure(r *http.Request, w http.ResponseWriter, err error) {
	var failure *moneygameservice.Failure
	if !errors.As(err, &failure) {
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	status := http.StatusBadRequest
	switch failure.Code {
	case moneygameservice.FailureNotFound:
		status = http.StatusNotFound
	case moneygameservice.FailureNotCreator, moneygameservice.FailureNotChapterMember,
		moneygameservice.FailureInviteeOutOfScope, moneygameservice.FailureNotInvited:
		status = http.StatusForbidden
	}
	h.writeError(w, status, string(failure.Code), failure.Message)
}

func (h *MoneyGameHandlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (h *MoneyGameHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", attr.Error(err))
	}
}

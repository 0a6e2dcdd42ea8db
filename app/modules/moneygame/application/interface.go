package moneygameservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// CreateGameInput is the creation request after transport decoding. Schedule
// accepts RFC 3339 or natural language ("saturday at 9am"); empty means
// unscheduled.
type CreateGameInput struct {
	LeagueID         uuid.UUID
	ChapterID        uuid.UUID
	GameType         moneygametypes.GameType
	CourseID         uuid.UUID
	Currency         moneygametypes.Currency
	Schedule         string
	Description      string
	InvitedPlayerIDs []uuid.UUID
	Guests           []moneygametypes.Guest
}

// CreatedGame is the authoritative snapshot returned from creation.
type CreatedGame struct {
	GameID        uuid.UUID                 `json:"gameId"`
	Status        moneygametypes.GameStatus `json:"status"`
	AcceptedCount int                       `json:"acceptedCount"`
}

// ResponseSnapshot is the post-transition state returned from a response so
// clients can reconcile optimistic updates.
type ResponseSnapshot struct {
	Status        moneygametypes.InvitationStatus `json:"status"`
	GameStatus    moneygametypes.GameStatus       `json:"gameStatus"`
	CanStart      bool                            `json:"canStart"`
	AcceptedCount int                             `json:"acceptedCount"`
}

// StatusChangeSnapshot is returned from a manual status change.
type StatusChangeSnapshot struct {
	Status         moneygametypes.GameStatus `json:"status"`
	PreviousStatus moneygametypes.GameStatus `json:"previousStatus"`
	StartedAt      *time.Time                `json:"startedAt,omitempty"`
	CompletedAt    *time.Time                `json:"completedAt,omitempty"`
}

// ParticipantView is one ledger entry as the lobby shows it.
type ParticipantView struct {
	EntryID     uuid.UUID                       `json:"entryId"`
	PlayerID    *uuid.UUID                      `json:"playerId,omitempty"`
	DisplayName string                          `json:"displayName"`
	IsCreator   bool                            `json:"isCreator"`
	IsGuest     bool                            `json:"isGuest"`
	Status      moneygametypes.InvitationStatus `json:"status"`
	RespondedAt *time.Time                      `json:"respondedAt,omitempty"`
}

// LobbySnapshot is the full lobby state clients refetch to reconcile missed
// realtime messages.
type LobbySnapshot struct {
	GameID        uuid.UUID                 `json:"gameId"`
	GameType      moneygametypes.GameType   `json:"gameType"`
	Status        moneygametypes.GameStatus `json:"status"`
	CourseID      uuid.UUID                 `json:"courseId"`
	Currency      moneygametypes.Currency   `json:"currency"`
	ScheduledAt   *time.Time                `json:"scheduledAt,omitempty"`
	Description   string                    `json:"description,omitempty"`
	StartedAt     *time.Time                `json:"startedAt,omitempty"`
	CompletedAt   *time.Time                `json:"completedAt,omitempty"`
	AcceptedCount int                       `json:"acceptedCount"`
	RequiredTotal int                       `json:"requiredTotal"`
	MinimumTotal  int                       `json:"minimumTotal"`
	CanStart      bool                      `json:"canStart"`
	LobbyChannel  string                    `json:"lobbyChannel"`
	Participants  []ParticipantView         `json:"participants"`
}

// MyStatus is the caller's own standing on a game.
type MyStatus struct {
	GameID     uuid.UUID                       `json:"gameId"`
	GameStatus moneygametypes.GameStatus       `json:"gameStatus"`
	MyResponse moneygametypes.InvitationStatus `json:"myResponse"`
	IsCreator  bool                            `json:"isCreator"`
	CanRespond bool                            `json:"canRespond"`
}

// GameSummary is one row in a chapter's game listing.
type GameSummary struct {
	GameID        uuid.UUID                 `json:"gameId"`
	GameType      moneygametypes.GameType   `json:"gameType"`
	Status        moneygametypes.GameStatus `json:"status"`
	ScheduledAt   *time.Time                `json:"scheduledAt,omitempty"`
	AcceptedCount int                       `json:"acceptedCount"`
	InvitedCount  int                       `json:"invitedCount"`
	CreatedAt     time.Time                 `json:"createdAt"`
}

// Service defines the interface for money game lifecycle operations. The
// identity argument is the authenticated caller's opaque identifier; all
// permission checks trust it.
type Service interface {
	CreateGame(ctx context.Context, identity string, input CreateGameInput) (*CreatedGame, error)
	RecordResponse(ctx context.Context, identity string, gameID uuid.UUID, response moneygametypes.InvitationStatus) (*ResponseSnapshot, error)
	ChangeGameStatus(ctx context.Context, identity string, gameID uuid.UUID, requested moneygametypes.GameStatus) (*StatusChangeSnapshot, error)
	GetLobby(ctx context.Context, identity string, gameID uuid.UUID) (*LobbySnapshot, error)
	GetMyStatus(ctx context.Context, identity string, gameID uuid.UUID) (*MyStatus, error)
	ListChapterGames(ctx context.Context, identity string, chapterID uuid.UUID) ([]*GameSummary, error)
}

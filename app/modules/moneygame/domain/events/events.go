// Package moneygameevents defines the bus topics and payloads emitted by the
// lobby coordinator and consumed by the notification fan-out.
package moneygameevents

import (
	"time"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// Bus topics.
const (
	GameCreatedV1       = "moneygame.created.v1"
	ResponseRecordedV1  = "moneygame.response.recorded.v1"
	GameStatusChangedV1 = "moneygame.status.changed.v1"
	ParticipantNoticeV1 = "moneygame.participant.notice.v1"
)

// Realtime channel event names, as clients see them.
const (
	RealtimeGameInvitation   = "game-invitation"
	RealtimePlayerResponse   = "player-response"
	RealtimeGameStatusChange = "game-status-change"
	RealtimeGameStarted      = "game-started"
	RealtimeGameCancelled    = "game-cancelled"
)

// InvitedPlayer identifies one registered invitee for fan-out addressing.
type InvitedPlayer struct {
	PlayerID string `json:"playerId"`
	Identity string `json:"identity"`
}

// GameCreatedPayloadV1 is published once per game creation. One realtime
// invitation goes to each invited player's private channel; guests receive
// nothing.
type GameCreatedPayloadV1 struct {
	GameID         string                  `json:"gameId"`
	GameType       moneygametypes.GameType `json:"gameType"`
	CourseName     string                  `json:"courseName"`
	CreatorName    string                  `json:"creatorName"`
	Currency       moneygametypes.Currency `json:"currency"`
	ScheduledAt    *time.Time              `json:"scheduledAt,omitempty"`
	LobbyURL       string                  `json:"lobbyUrl"`
	InvitedPlayers []InvitedPlayer         `json:"invitedPlayers"`
	InvitedAt      time.Time               `json:"invitedAt"`
}

// ResponseRecordedPayloadV1 is published after each accepted ledger write
// and lands on the game's shared lobby channel.
type ResponseRecordedPayloadV1 struct {
	GameID        string                          `json:"gameId"`
	PlayerID      string                          `json:"playerId"`
	PlayerName    string                          `json:"playerName"`
	Status        moneygametypes.InvitationStatus `json:"status"`
	GameStatus    moneygametypes.GameStatus       `json:"gameStatus"`
	CanStart      bool                            `json:"canStart"`
	AcceptedCount int                             `json:"acceptedCount"`
	UpdatedAt     time.Time                       `json:"updatedAt"`
}

// GameStatusChangedPayloadV1 is published whenever the game status changes,
// automatically or manually, and lands on the lobby channel.
type GameStatusChangedPayloadV1 struct {
	GameID         string                    `json:"gameId"`
	Status         moneygametypes.GameStatus `json:"status"`
	PreviousStatus moneygametypes.GameStatus `json:"previousStatus"`
	CanStart       bool                      `json:"canStart"`
	UpdatedBy      string                    `json:"updatedBy,omitempty"`
	StartedAt      *time.Time                `json:"startedAt,omitempty"`
	CompletedAt    *time.Time                `json:"completedAt,omitempty"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

// ParticipantNoticePayloadV1 addresses one registered participant's private
// channel when a game starts or is cancelled.
type ParticipantNoticePayloadV1 struct {
	GameID    string                    `json:"gameId"`
	GameType  moneygametypes.GameType   `json:"gameType"`
	Status    moneygametypes.GameStatus `json:"status"`
	Identity  string                    `json:"identity"`
	Message   string                    `json:"message"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

package moneygametypes

import "time"

// GameType tags a money game format.
type GameType string

const (
	GameTypeTwoVsTwoAutoPress    GameType = "TWO_VS_TWO_AUTO_PRESS"
	GameTypeIndividualStrokePlay GameType = "INDIVIDUAL_STROKE_PLAY"
	GameTypeTeamScramble         GameType = "TEAM_SCRAMBLE"
	GameTypeSkinsGame            GameType = "SKINS_GAME"
)

// IsValid reports whether gt names a known game format.
func (gt GameType) IsValid() bool {
	switch gt {
	case GameTypeTwoVsTwoAutoPress, GameTypeIndividualStrokePlay,
		GameTypeTeamScramble, GameTypeSkinsGame:
		return true
	}
	return false
}

// GameStatus is the lifecycle state of a money game.
type GameStatus string

const (
	GameStatusWaitingForPlayers GameStatus = "WAITING_FOR_PLAYERS"
	GameStatusReadyToStart      GameStatus = "READY_TO_START"
	GameStatusInProgress        GameStatus = "IN_PROGRESS"
	GameStatusCompleted         GameStatus = "COMPLETED"
	GameStatusCancelled         GameStatus = "CANCELLED"
)

// IsValid reports whether s names a known status.
func (s GameStatus) IsValid() bool {
	switch s {
	case GameStatusWaitingForPlayers, GameStatusReadyToStart,
		GameStatusInProgress, GameStatusCompleted, GameStatusCancelled:
		return true
	}
	return false
}

// InvitationStatus is a ledger entry's response state.
type InvitationStatus string

const (
	InvitationStatusInvited  InvitationStatus = "INVITED"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusDeclined InvitationStatus = "DECLINED"
)

// Currency is opaque to the lifecycle logic.
type Currency string

// Guest is an ad-hoc participant vouched for by the creator. Guests have no
// identity and cannot respond on their own.
type Guest struct {
	Name string `json:"name"`
}

// GameDetails carries the descriptive attributes the lifecycle logic treats
// as opaque.
type GameDetails struct {
	CourseID    string
	Currency    Currency
	ScheduledAt *time.Time
	Description string
}

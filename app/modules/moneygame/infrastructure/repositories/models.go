package moneygamedb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// MoneyGame is the persisted state of one money game lobby.
type MoneyGame struct {
	bun.BaseModel `bun:"table:money_games,alias:mg"`

	ID              uuid.UUID                 `bun:"id,pk,type:uuid"`
	ChapterID       uuid.UUID                 `bun:"chapter_id,notnull,type:uuid"`
	CreatorPlayerID uuid.UUID                 `bun:"creator_player_id,notnull,type:uuid"`
	GameType        moneygametypes.GameType   `bun:"game_type,notnull"`
	Status          moneygametypes.GameStatus `bun:"status,notnull"`
	CourseID        uuid.UUID                 `bun:"course_id,notnull,type:uuid"`
	Currency        moneygametypes.Currency   `bun:"currency,notnull"`
	ScheduledAt     *time.Time                `bun:"scheduled_at"`
	Description     string                    `bun:"description"`
	StartedAt       *time.Time                `bun:"started_at"`
	CompletedAt     *time.Time                `bun:"completed_at"`
	CreatedAt       time.Time                 `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt       time.Time                 `bun:"updated_at,nullzero,notnull,default:now()"`

	Entries []*MoneyGameEntry `bun:"rel:has-many,join:id=game_id"`
}

// MoneyGameEntry is one participant slot on a game. Registered players carry
// a PlayerID; guests carry only a display name and never respond themselves.
type MoneyGameEntry struct {
	bun.BaseModel `bun:"table:money_game_entries,alias:mge"`

	ID          uuid.UUID                       `bun:"id,pk,type:uuid"`
	GameID      uuid.UUID                       `bun:"game_id,notnull,type:uuid"`
	PlayerID    *uuid.UUID                      `bun:"player_id,type:uuid"`
	GuestName   *string                         `bun:"guest_name"`
	IsCreator   bool                            `bun:"is_creator,notnull,default:false"`
	IsGuest     bool                            `bun:"is_guest,notnull,default:false"`
	Status      moneygametypes.InvitationStatus `bun:"status,notnull"`
	RespondedAt *time.Time                      `bun:"responded_at"`
	CreatedAt   time.Time                       `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt   time.Time                       `bun:"updated_at,nullzero,notnull,default:now()"`
}

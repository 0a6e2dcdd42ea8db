package rosterdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// League is the top-level organization.
type League struct {
	bun.BaseModel `bun:"table:leagues,alias:l"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Name            string    `bun:"name,notnull"`
	DefaultCurrency string    `bun:"default_currency,notnull,default:'USD'"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// Chapter is a league subdivision that players belong to.
type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:ch"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	LeagueID  uuid.UUID `bun:"league_id,notnull,type:uuid"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// Course is a playable venue owned by a league.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:co"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	LeagueID  uuid.UUID `bun:"league_id,notnull,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Location  string    `bun:"location"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// User is an authenticated account. Identity is the opaque identifier the
// identity provider yields; the core trusts it for all permission checks.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Identity  string    `bun:"identity,notnull,unique"`
	Name      string    `bun:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// Player is a user's membership in one chapter. A user has at most one
// player row per chapter.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	UserID      uuid.UUID `bun:"user_id,notnull,type:uuid"`
	ChapterID   uuid.UUID `bun:"chapter_id,notnull,type:uuid"`
	DisplayName string    `bun:"display_name,notnull"`
	AvatarURL   *string   `bun:"avatar_url"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:now()"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

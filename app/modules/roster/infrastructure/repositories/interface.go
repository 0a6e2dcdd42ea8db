package rosterdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the roster lookups the lifecycle core and the auth
// boundary need. All reads; roster mutation belongs to the surrounding
// league-management surfaces, not this service.
type Repository interface {
	// GetUserByIdentity resolves the identity provider's opaque identifier.
	GetUserByIdentity(ctx context.Context, db bun.IDB, identity string) (*User, error)

	// GetPlayerByUserAndChapter returns the user's membership in a chapter.
	GetPlayerByUserAndChapter(ctx context.Context, db bun.IDB, userID, chapterID uuid.UUID) (*Player, error)

	// GetPlayersInChapter returns the players among ids that belong to the
	// chapter, with their users loaded.
	GetPlayersInChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID, ids []uuid.UUID) ([]*Player, error)

	// GetPlayersByIDs returns players with their users loaded.
	GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error)

	// GetChapterInLeague returns the chapter iff it belongs to the league.
	GetChapterInLeague(ctx context.Context, db bun.IDB, chapterID, leagueID uuid.UUID) (*Chapter, error)

	// GetCourseInLeague returns the course iff it belongs to the league.
	GetCourseInLeague(ctx context.Context, db bun.IDB, courseID, leagueID uuid.UUID) (*Course, error)

	// GetLeagueIDsForIdentity lists the leagues a user belongs to through
	// any chapter membership.
	GetLeagueIDsForIdentity(ctx context.Context, db bun.IDB, identity string) ([]uuid.UUID, error)
}

package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a roster row is not found.
var ErrNotFound = errors.New("roster record not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new roster repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetUserByIdentity resolves the identity provider's opaque identifier.
func (r *Impl) GetUserByIdentity(ctx context.Context, db bun.IDB, identity string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("identity = ?", identity).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by identity: %w", err)
	}
	return user, nil
}

// GetPlayerByUserAndChapter returns the user's membership in a chapter.
func (r *Impl) GetPlayerByUserAndChapter(ctx context.Context, db bun.IDB, userID, chapterID uuid.UUID) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Relation("User").
		Where("p.user_id = ? AND p.chapter_id = ?", userID, chapterID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player by user and chapter: %w", err)
	}
	return player, nil
}

// GetPlayersInChapter returns the players among ids that belong to the chapter.
func (r *Impl) GetPlayersInChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID, ids []uuid.UUID) ([]*Player, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var players []*Player
	err := db.NewSelect().
		Model(&players).
		Relation("User").
		Where("p.chapter_id = ?", chapterID).
		Where("p.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players in chapter: %w", err)
	}
	return players, nil
}

// GetPlayersByIDs returns players with their users loaded.
func (r *Impl) GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*Player, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var players []*Player
	err := db.NewSelect().
		Model(&players).
		Relation("User").
		Where("p.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players by ids: %w", err)
	}
	return players, nil
}

// GetChapterInLeague returns the chapter iff it belongs to the league.
func (r *Impl) GetChapterInLeague(ctx context.Context, db bun.IDB, chapterID, leagueID uuid.UUID) (*Chapter, error) {
	db = r.resolveDB(db)
	chapter := new(Chapter)
	err := db.NewSelect().
		Model(chapter).
		Where("id = ? AND league_id = ?", chapterID, leagueID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chapter in league: %w", err)
	}
	return chapter, nil
}

// GetCourseInLeague returns the course iff it belongs to the league.
func (r *Impl) GetCourseInLeague(ctx context.Context, db bun.IDB, courseID, leagueID uuid.UUID) (*Course, error) {
	db = r.resolveDB(db)
	course := new(Course)
	err := db.NewSelect().
		Model(course).
		Where("id = ? AND league_id = ?", courseID, leagueID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course in league: %w", err)
	}
	return course, nil
}

// GetLeagueIDsForIdentity lists the leagues a user belongs to through any
// chapter membership.
func (r *Impl) GetLeagueIDsForIdentity(ctx context.Context, db bun.IDB, identity string) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var leagueIDs []uuid.UUID
	err := db.NewSelect().
		ColumnExpr("DISTINCT ch.league_id").
		Model((*Player)(nil)).
		Join("JOIN users AS u ON u.id = p.user_id").
		Join("JOIN chapters AS ch ON ch.id = p.chapter_id").
		Where("u.identity = ?", identity).
		Scan(ctx, &leagueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get league ids for identity: %w", err)
	}
	return leagueIDs, nil
}

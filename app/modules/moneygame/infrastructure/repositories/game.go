package moneygamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// ErrNotFound is returned when a game or entry is not found.
var ErrNotFound = errors.New("money game record not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new money game repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateGame inserts the game and its initial entries in one shot. Callers
// run it inside a transaction so a failed entry insert rolls back the game.
func (r *Impl) CreateGame(ctx context.Context, db bun.IDB, game *MoneyGame, entries []*MoneyGameEntry) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(game).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert money game: %w", err)
	}
	if len(entries) > 0 {
		if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert money game entries: %w", err)
		}
	}
	return nil
}

// GetGame loads a game with its entries.
func (r *Impl) GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*MoneyGame, error) {
	db = r.resolveDB(db)
	game := new(MoneyGame)
	err := db.NewSelect().
		Model(game).
		Relation("Entries").
		Where("mg.id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get money game: %w", err)
	}
	return game, nil
}

// GetGameForUpdate locks the game row for the duration of the surrounding
// transaction. Entries are deliberately not joined; lock the parent row,
// then read entries through the same transaction.
func (r *Impl) GetGameForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*MoneyGame, error) {
	db = r.resolveDB(db)
	game := new(MoneyGame)
	err := db.NewSelect().
		Model(game).
		Where("mg.id = ?", gameID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get money game for update: %w", err)
	}
	return game, nil
}

// GetEntries returns all entries for a game, creator first, then by creation
// order so lobby listings stay stable.
func (r *Impl) GetEntries(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*MoneyGameEntry, error) {
	db = r.resolveDB(db)
	var entries []*MoneyGameEntry
	err := db.NewSelect().
		Model(&entries).
		Where("game_id = ?", gameID).
		OrderExpr("is_creator DESC, created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get money game entries: %w", err)
	}
	return entries, nil
}

// GetEntryByPlayerID returns the registered player's entry on a game.
func (r *Impl) GetEntryByPlayerID(ctx context.Context, db bun.IDB, gameID, playerID uuid.UUID) (*MoneyGameEntry, error) {
	db = r.resolveDB(db)
	entry := new(MoneyGameEntry)
	err := db.NewSelect().
		Model(entry).
		Where("game_id = ? AND player_id = ?", gameID, playerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get money game entry: %w", err)
	}
	return entry, nil
}

// AcceptedCount counts entries in ACCEPTED status, guests included.
func (r *Impl) AcceptedCount(ctx context.Context, db bun.IDB, gameID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*MoneyGameEntry)(nil)).
		Where("game_id = ? AND status = ?", gameID, moneygametypes.InvitationStatusAccepted).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted entries: %w", err)
	}
	return count, nil
}

// UpdateEntryStatus records an invitee's response.
func (r *Impl) UpdateEntryStatus(ctx context.Context, db bun.IDB, entryID uuid.UUID, status moneygametypes.InvitationStatus, respondedAt time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*MoneyGameEntry)(nil)).
		Set("status = ?", status).
		Set("responded_at = ?", respondedAt).
		Set("updated_at = ?", respondedAt).
		Where("id = ?", entryID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check entry update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateGameStatus moves the game to a new status. startedAt and completedAt
// are only written when non-nil so earlier timestamps survive later moves.
func (r *Impl) UpdateGameStatus(ctx context.Context, db bun.IDB, gameID uuid.UUID, status moneygametypes.GameStatus, startedAt, completedAt *time.Time) error {
	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*MoneyGame)(nil)).
		Set("status = ?", status).
		Set("updated_at = now()").
		Where("id = ?", gameID)
	if startedAt != nil {
		q = q.Set("started_at = ?", startedAt)
	}
	if completedAt != nil {
		q = q.Set("completed_at = ?", completedAt)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check game update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGamesByChapter returns a chapter's games, newest first, entries loaded.
func (r *Impl) ListGamesByChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID) ([]*MoneyGame, error) {
	db = r.resolveDB(db)
	var games []*MoneyGame
	err := db.NewSelect().
		Model(&games).
		Relation("Entries").
		Where("mg.chapter_id = ?", chapterID).
		Order("mg.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by chapter: %w", err)
	}
	return games, nil
}

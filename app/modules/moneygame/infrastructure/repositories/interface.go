package moneygamedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
)

// Repository handles database operations for money games. All methods accept
// an optional bun.IDB so callers can pass a transaction; a nil db falls back
// to the repository's default connection.
type Repository interface {
	CreateGame(ctx context.Context, db bun.IDB, game *MoneyGame, entries []*MoneyGameEntry) error
	GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*MoneyGame, error)
	GetGameForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*MoneyGame, error)
	GetEntries(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*MoneyGameEntry, error)
	GetEntryByPlayerID(ctx context.Context, db bun.IDB, gameID, playerID uuid.UUID) (*MoneyGameEntry, error)
	AcceptedCount(ctx context.Context, db bun.IDB, gameID uuid.UUID) (int, error)
	UpdateEntryStatus(ctx context.Context, db bun.IDB, entryID uuid.UUID, status moneygametypes.InvitationStatus, respondedAt time.Time) error
	UpdateGameStatus(ctx context.Context, db bun.IDB, gameID uuid.UUID, status moneygametypes.GameStatus, startedAt, completedAt *time.Time) error
	ListGamesByChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID) ([]*MoneyGame, error)
}

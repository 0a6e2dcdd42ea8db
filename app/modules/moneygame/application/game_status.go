package moneygameservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	"github.com/fairway-collective/moneygames/app/modules/moneygame/domain/lifecycle"
	moneygamepolicy "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/policy"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/results"
)

// statusChangeEvent carries the caller's snapshot plus post-commit fan-out.
type statusChangeEvent struct {
	snapshot      *StatusChangeSnapshot
	statusChanged *moneygameevents.GameStatusChangedPayloadV1
	notices       []*moneygameevents.ParticipantNoticePayloadV1
}

// ChangeGameStatus applies a creator-requested transition. Starting a game
// re-validates quorum against the current ledger, not a stale client read.
func (s *MoneyGameService) ChangeGameStatus(ctx context.Context, identity string, gameID uuid.UUID, requested moneygametypes.GameStatus) (*StatusChangeSnapshot, error) {
	changeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*statusChangeEvent, *Failure], error) {
		return s.changeGameStatusLogic(ctx, db, identity, gameID, requested)
	}

	result, err := withTelemetry(s, ctx, "ChangeGameStatus", gameID.String(), func(ctx context.Context) (results.OperationResult[*statusChangeEvent, *Failure], error) {
		return runInTx(s, ctx, changeTx)
	})

	changed, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(
		string(changed.statusChanged.PreviousStatus),
		string(changed.statusChanged.Status),
	).Inc()
	s.publishEvent(ctx, moneygameevents.GameStatusChangedV1, changed.statusChanged)
	for _, notice := range changed.notices {
		s.publishEvent(ctx, moneygameevents.ParticipantNoticeV1, notice)
	}
	return changed.snapshot, nil
}

func (s *MoneyGameService) changeGameStatusLogic(ctx context.Context, db bun.IDB, identity string, gameID uuid.UUID, requested moneygametypes.GameStatus) (results.OperationResult[*statusChangeEvent, *Failure], error) {
	fail := func(f *Failure) (results.OperationResult[*statusChangeEvent, *Failure], error) {
		return results.FailureResult[*statusChangeEvent, *Failure](f), nil
	}
	infraErr := func(err error) (results.OperationResult[*statusChangeEvent, *Failure], error) {
		return results.OperationResult[*statusChangeEvent, *Failure]{}, err
	}

	if !requested.IsValid() {
		return fail(newFailure(FailureInvalidInput, "unknown game status %q", requested))
	}

	game, err := s.repo.GetGameForUpdate(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, moneygamedb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "game not found"))
		}
		return infraErr(err)
	}

	user, err := s.roster.GetUserByIdentity(ctx, db, identity)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotCreator, "only the game creator can change its status"))
		}
		return infraErr(err)
	}
	player, err := s.roster.GetPlayerByUserAndChapter(ctx, db, user.ID, game.ChapterID)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotCreator, "only the game creator can change its status"))
		}
		return infraErr(err)
	}
	if player.ID != game.CreatorPlayerID {
		return fail(newFailure(FailureNotCreator, "only the game creator can change its status"))
	}

	if !lifecycle.CanTransition(game.Status, requested) {
		return fail(newFailure(FailureInvalidTransition, "cannot transition from %s to %s", game.Status, requested))
	}

	now := s.now()
	var startedAt, completedAt *time.Time
	switch requested {
	case moneygametypes.GameStatusInProgress:
		// Quorum is re-validated here; a decline may have landed since the
		// client last saw the lobby.
		accepted, err := s.repo.AcceptedCount(ctx, db, gameID)
		if err != nil {
			return infraErr(err)
		}
		ready, err := moneygamepolicy.IsReady(game.GameType, accepted)
		if err != nil {
			return infraErr(err)
		}
		if !ready {
			requirement, _ := moneygamepolicy.ForGameType(game.GameType)
			return fail(newFailure(FailureQuorumNotMet,
				"cannot start: %d accepted, need %d", accepted, requirement.MinimumTotal()))
		}
		startedAt = &now
	case moneygametypes.GameStatusCompleted:
		completedAt = &now
	}

	if err := s.repo.UpdateGameStatus(ctx, db, gameID, requested, startedAt, completedAt); err != nil {
		return infraErr(err)
	}

	ev := &statusChangeEvent{
		snapshot: &StatusChangeSnapshot{
			Status:         requested,
			PreviousStatus: game.Status,
			StartedAt:      startedAt,
			CompletedAt:    completedAt,
		},
		statusChanged: &moneygameevents.GameStatusChangedPayloadV1{
			GameID:         gameID.String(),
			Status:         requested,
			PreviousStatus: game.Status,
			UpdatedBy:      player.DisplayName,
			StartedAt:      startedAt,
			CompletedAt:    completedAt,
			UpdatedAt:      now,
		},
	}

	// Starts and cancellations additionally notify every registered
	// participant on their private channel.
	if requested == moneygametypes.GameStatusInProgress || requested == moneygametypes.GameStatusCancelled {
		notices, err := s.participantNotices(ctx, db, game, requested, now)
		if err != nil {
			return infraErr(err)
		}
		ev.notices = notices
	}

	return results.SuccessResult[*statusChangeEvent, *Failure](ev), nil
}

func (s *MoneyGameService) participantNotices(ctx context.Context, db bun.IDB, game *moneygamedb.MoneyGame, status moneygametypes.GameStatus, now time.Time) ([]*moneygameevents.ParticipantNoticePayloadV1, error) {
	entries, err := s.repo.GetEntries(ctx, db, game.ID)
	if err != nil {
		return nil, err
	}

	playerIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.PlayerID != nil {
			playerIDs = append(playerIDs, *e.PlayerID)
		}
	}
	players, err := s.roster.GetPlayersByIDs(ctx, db, playerIDs)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your %s game has started", game.GameType)
	if status == moneygametypes.GameStatusCancelled {
		message = fmt.Sprintf("Your %s game was cancelled", game.GameType)
	}

	notices := make([]*moneygameevents.ParticipantNoticePayloadV1, 0, len(players))
	for _, p := range players {
		if p.User == nil {
			continue
		}
		notices = append(notices, &moneygameevents.ParticipantNoticePayloadV1{
			GameID:    game.ID.String(),
			GameType:  game.GameType,
			Status:    status,
			Identity:  p.User.Identity,
			Message:   message,
			UpdatedAt: now,
		})
	}
	return notices, nil
}

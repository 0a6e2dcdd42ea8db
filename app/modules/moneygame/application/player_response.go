package moneygameservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	"github.com/fairway-collective/moneygames/app/modules/moneygame/domain/lifecycle"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/results"
)

// responseEvent carries the caller's snapshot plus the events to fan out
// after commit.
type responseEvent struct {
	snapshot      *ResponseSnapshot
	recorded      *moneygameevents.ResponseRecordedPayloadV1
	statusChanged *moneygameevents.GameStatusChangedPayloadV1
}

// RecordResponse writes one invitee's accept or decline and re-evaluates
// readiness in the same transaction. The game row is locked for the duration
// so two concurrent responses cannot both act on a stale accepted count.
func (s *MoneyGameService) RecordResponse(ctx context.Context, identity string, gameID uuid.UUID, response moneygametypes.InvitationStatus) (*ResponseSnapshot, error) {
	respondTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*responseEvent, *Failure], error) {
		return s.recordResponseLogic(ctx, db, identity, gameID, response)
	}

	result, err := withTelemetry(s, ctx, "RecordResponse", gameID.String(), func(ctx context.Context) (results.OperationResult[*responseEvent, *Failure], error) {
		return runInTx(s, ctx, respondTx)
	})

	recorded, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.metrics.PlayerResponses.WithLabelValues(string(response)).Inc()
	s.publishEvent(ctx, moneygameevents.ResponseRecordedV1, recorded.recorded)
	if recorded.statusChanged != nil {
		s.metrics.StatusTransitions.WithLabelValues(
			string(recorded.statusChanged.PreviousStatus),
			string(recorded.statusChanged.Status),
		).Inc()
		s.publishEvent(ctx, moneygameevents.GameStatusChangedV1, recorded.statusChanged)
	}
	return recorded.snapshot, nil
}

func (s *MoneyGameService) recordResponseLogic(ctx context.Context, db bun.IDB, identity string, gameID uuid.UUID, response moneygametypes.InvitationStatus) (results.OperationResult[*responseEvent, *Failure], error) {
	fail := func(f *Failure) (results.OperationResult[*responseEvent, *Failure], error) {
		return results.FailureResult[*responseEvent, *Failure](f), nil
	}
	infraErr := func(err error) (results.OperationResult[*responseEvent, *Failure], error) {
		return results.OperationResult[*responseEvent, *Failure]{}, err
	}

	if response != moneygametypes.InvitationStatusAccepted && response != moneygametypes.InvitationStatusDeclined {
		return fail(newFailure(FailureInvalidInput, "response must be %s or %s",
			moneygametypes.InvitationStatusAccepted, moneygametypes.InvitationStatusDeclined))
	}

	game, err := s.repo.GetGameForUpdate(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, moneygamedb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "game not found"))
		}
		return infraErr(err)
	}

	if !lifecycle.AcceptsResponses(game.Status) {
		return fail(newFailure(FailureNotAcceptingResponses, "game is %s and no longer accepting responses", game.Status))
	}

	user, err := s.roster.GetUserByIdentity(ctx, db, identity)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotInvited, "you are not invited to this game"))
		}
		return infraErr(err)
	}
	player, err := s.roster.GetPlayerByUserAndChapter(ctx, db, user.ID, game.ChapterID)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotInvited, "you are not invited to this game"))
		}
		return infraErr(err)
	}

	entry, err := s.repo.GetEntryByPlayerID(ctx, db, gameID, player.ID)
	if err != nil {
		if errors.Is(err, moneygamedb.ErrNotFound) {
			return fail(newFailure(FailureNotInvited, "you are not invited to this game"))
		}
		return infraErr(err)
	}
	if entry.PlayerID == nil {
		// Unreachable through the player lookup, kept as a guard.
		return fail(newFailure(FailureGuestCannotRespond, "guests cannot respond to invitations"))
	}
	if entry.Status == response {
		return fail(newFailure(FailureNoOp, "response is already %s", response))
	}

	now := s.now()
	if err := s.repo.UpdateEntryStatus(ctx, db, entry.ID, response, now); err != nil {
		return infraErr(err)
	}

	accepted, err := s.repo.AcceptedCount(ctx, db, gameID)
	if err != nil {
		return infraErr(err)
	}

	newStatus, changed, err := lifecycle.Recompute(game.Status, game.GameType, accepted)
	if err != nil {
		return infraErr(err)
	}
	if changed {
		if err := s.repo.UpdateGameStatus(ctx, db, gameID, newStatus, nil, nil); err != nil {
			return infraErr(err)
		}
	}

	canStart := newStatus == moneygametypes.GameStatusReadyToStart
	ev := &responseEvent{
		snapshot: &ResponseSnapshot{
			Status:        response,
			GameStatus:    newStatus,
			CanStart:      canStart,
			AcceptedCount: accepted,
		},
		recorded: &moneygameevents.ResponseRecordedPayloadV1{
			GameID:        gameID.String(),
			PlayerID:      player.ID.String(),
			PlayerName:    player.DisplayName,
			Status:        response,
			GameStatus:    newStatus,
			CanStart:      canStart,
			AcceptedCount: accepted,
			UpdatedAt:     now,
		},
	}
	if changed {
		ev.statusChanged = &moneygameevents.GameStatusChangedPayloadV1{
			GameID:         gameID.String(),
			Status:         newStatus,
			PreviousStatus: game.Status,
			CanStart:       canStart,
			UpdatedAt:      now,
		}
	}

	return results.SuccessResult[*responseEvent, *Failure](ev), nil
}

package moneygameservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	moneygamepolicy "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/policy"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/results"
)

// createdGameEvent bundles what the fan-out needs alongside the caller's
// snapshot, so the event leaves only after the transaction commits.
type createdGameEvent struct {
	snapshot *CreatedGame
	payload  *moneygameevents.GameCreatedPayloadV1
}

// CreateGame validates the invite list against the game type's player-count
// policy and creates the game with its full ledger in one transaction.
func (s *MoneyGameService) CreateGame(ctx context.Context, identity string, input CreateGameInput) (*CreatedGame, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*createdGameEvent, *Failure], error) {
		return s.createGameLogic(ctx, db, identity, input)
	}

	result, err := withTelemetry(s, ctx, "CreateGame", identity, func(ctx context.Context) (results.OperationResult[*createdGameEvent, *Failure], error) {
		return runInTx(s, ctx, createTx)
	})

	created, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.metrics.GamesCreated.WithLabelValues(string(input.GameType)).Inc()
	s.publishEvent(ctx, moneygameevents.GameCreatedV1, created.payload)
	return created.snapshot, nil
}

func (s *MoneyGameService) createGameLogic(ctx context.Context, db bun.IDB, identity string, input CreateGameInput) (results.OperationResult[*createdGameEvent, *Failure], error) {
	fail := func(f *Failure) (results.OperationResult[*createdGameEvent, *Failure], error) {
		return results.FailureResult[*createdGameEvent, *Failure](f), nil
	}
	infraErr := func(err error) (results.OperationResult[*createdGameEvent, *Failure], error) {
		return results.OperationResult[*createdGameEvent, *Failure]{}, err
	}

	// Validation before any store access.
	if !input.GameType.IsValid() {
		return fail(newFailure(FailureInvalidInput, "unknown game type %q", input.GameType))
	}
	if input.Currency == "" {
		return fail(newFailure(FailureInvalidInput, "currency is required"))
	}
	for _, g := range input.Guests {
		if g.Name == "" {
			return fail(newFailure(FailureInvalidInput, "guest name is required"))
		}
	}

	var scheduledAt *time.Time
	if input.Schedule != "" {
		t, err := s.schedule.ParseSchedule(input.Schedule, s.now())
		if err != nil {
			return fail(newFailure(FailureInvalidInput, "unrecognized schedule: %s", input.Schedule))
		}
		scheduledAt = &t
	}

	requirement, _ := moneygamepolicy.ForGameType(input.GameType)
	otherCount := len(input.InvitedPlayerIDs) + len(input.Guests)
	eval, err := moneygamepolicy.Evaluate(input.GameType, otherCount)
	if err != nil {
		return infraErr(err)
	}
	if !eval.SatisfiesExact {
		return fail(newFailure(FailureInvalidPlayerCount,
			"%s requires %s other players, got %d", input.GameType, requirement.ExpectedOthers(), otherCount))
	}

	seen := make(map[uuid.UUID]struct{}, len(input.InvitedPlayerIDs))
	for _, id := range input.InvitedPlayerIDs {
		if _, dup := seen[id]; dup {
			return fail(newFailure(FailureDuplicateInvitee, "player %s is invited more than once", id))
		}
		seen[id] = struct{}{}
	}

	// Scope resolution. Chapter and course must belong to the league, the
	// creator must be a member of the chapter.
	if _, err := s.roster.GetChapterInLeague(ctx, db, input.ChapterID, input.LeagueID); err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "chapter not found"))
		}
		return infraErr(err)
	}
	course, err := s.roster.GetCourseInLeague(ctx, db, input.CourseID, input.LeagueID)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "course not found"))
		}
		return infraErr(err)
	}
	user, err := s.roster.GetUserByIdentity(ctx, db, identity)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "unknown user"))
		}
		return infraErr(err)
	}
	creator, err := s.roster.GetPlayerByUserAndChapter(ctx, db, user.ID, input.ChapterID)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return fail(newFailure(FailureNotChapterMember, "you are not a member of this chapter"))
		}
		return infraErr(err)
	}

	if _, invited := seen[creator.ID]; invited {
		return fail(newFailure(FailureSelfInvitation, "you cannot invite yourself"))
	}

	invitees, err := s.roster.GetPlayersInChapter(ctx, db, input.ChapterID, input.InvitedPlayerIDs)
	if err != nil {
		return infraErr(err)
	}
	if len(invitees) != len(input.InvitedPlayerIDs) {
		return fail(newFailure(FailureInviteeOutOfScope, "all invited players must belong to your chapter"))
	}

	now := s.now()
	game := &moneygamedb.MoneyGame{
		ID:              uuid.New(),
		ChapterID:       input.ChapterID,
		CreatorPlayerID: creator.ID,
		GameType:        input.GameType,
		Status:          moneygametypes.GameStatusWaitingForPlayers,
		CourseID:        input.CourseID,
		Currency:        input.Currency,
		ScheduledAt:     scheduledAt,
		Description:     input.Description,
	}

	// Creator and guests are accepted from the start; a ranged game with
	// enough guests is born ready.
	acceptedAtCreation := 1 + len(input.Guests)
	if ready, err := moneygamepolicy.IsReady(input.GameType, acceptedAtCreation); err == nil && ready {
		game.Status = moneygametypes.GameStatusReadyToStart
	}

	entries := make([]*moneygamedb.MoneyGameEntry, 0, 1+len(invitees)+len(input.Guests))
	creatorID := creator.ID
	respondedAt := now
	entries = append(entries, &moneygamedb.MoneyGameEntry{
		ID:          uuid.New(),
		GameID:      game.ID,
		PlayerID:    &creatorID,
		IsCreator:   true,
		Status:      moneygametypes.InvitationStatusAccepted,
		RespondedAt: &respondedAt,
	})
	for _, p := range invitees {
		playerID := p.ID
		entries = append(entries, &moneygamedb.MoneyGameEntry{
			ID:       uuid.New(),
			GameID:   game.ID,
			PlayerID: &playerID,
			Status:   moneygametypes.InvitationStatusInvited,
		})
	}
	for _, g := range input.Guests {
		guestName := g.Name
		entries = append(entries, &moneygamedb.MoneyGameEntry{
			ID:          uuid.New(),
			GameID:      game.ID,
			GuestName:   &guestName,
			IsGuest:     true,
			Status:      moneygametypes.InvitationStatusAccepted,
			RespondedAt: &respondedAt,
		})
	}

	if err := s.repo.CreateGame(ctx, db, game, entries); err != nil {
		return infraErr(err)
	}

	invitedPlayers := make([]moneygameevents.InvitedPlayer, 0, len(invitees))
	for _, p := range invitees {
		ip := moneygameevents.InvitedPlayer{PlayerID: p.ID.String()}
		if p.User != nil {
			ip.Identity = p.User.Identity
		}
		invitedPlayers = append(invitedPlayers, ip)
	}

	return results.SuccessResult[*createdGameEvent, *Failure](&createdGameEvent{
		snapshot: &CreatedGame{
			GameID:        game.ID,
			Status:        game.Status,
			AcceptedCount: acceptedAtCreation,
		},
		payload: &moneygameevents.GameCreatedPayloadV1{
			GameID:         game.ID.String(),
			GameType:       game.GameType,
			CourseName:     course.Name,
			CreatorName:    creator.DisplayName,
			Currency:       game.Currency,
			ScheduledAt:    scheduledAt,
			LobbyURL:       fmt.Sprintf("/games/%s/lobby", game.ID),
			InvitedPlayers: invitedPlayers,
			InvitedAt:      now,
		},
	}), nil
}

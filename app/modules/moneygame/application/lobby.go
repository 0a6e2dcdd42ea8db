package moneygameservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/moneygames/app/modules/moneygame/domain/lifecycle"
	moneygamepolicy "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/policy"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/results"
	"github.com/fairway-collective/moneygames/realtime"
)

// GetLobby returns the full lobby snapshot. Clients poll this to reconcile
// any realtime message they missed.
func (s *MoneyGameService) GetLobby(ctx context.Context, identity string, gameID uuid.UUID) (*LobbySnapshot, error) {
	lobbyTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LobbySnapshot, *Failure], error) {
		return s.getLobbyLogic(ctx, db, identity, gameID)
	}

	result, err := withTelemetry(s, ctx, "GetLobby", gameID.String(), func(ctx context.Context) (results.OperationResult[*LobbySnapshot, *Failure], error) {
		return runInTx(s, ctx, lobbyTx)
	})
	return unwrap(result, err)
}

func (s *MoneyGameService) getLobbyLogic(ctx context.Context, db bun.IDB, identity string, gameID uuid.UUID) (results.OperationResult[*LobbySnapshot, *Failure], error) {
	fail := func(f *Failure) (results.OperationResult[*LobbySnapshot, *Failure], error) {
		return results.FailureResult[*LobbySnapshot, *Failure](f), nil
	}
	infraErr := func(err error) (results.OperationResult[*LobbySnapshot, *Failure], error) {
		return results.OperationResult[*LobbySnapshot, *Failure]{}, err
	}

	game, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, moneygamedb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "game not found"))
		}
		return infraErr(err)
	}

	if f, err := s.requireChapterMember(ctx, db, identity, game.ChapterID); err != nil {
		return infraErr(err)
	} else if f != nil {
		return fail(f)
	}

	names, err := s.playerNames(ctx, db, game.Entries)
	if err != nil {
		return infraErr(err)
	}

	accepted := 0
	participants := make([]ParticipantView, 0, len(game.Entries))
	for _, e := range game.Entries {
		if e.Status == moneygametypes.InvitationStatusAccepted {
			accepted++
		}
		view := ParticipantView{
			EntryID:     e.ID,
			PlayerID:    e.PlayerID,
			IsCreator:   e.IsCreator,
			IsGuest:     e.IsGuest,
			Status:      e.Status,
			RespondedAt: e.RespondedAt,
		}
		switch {
		case e.GuestName != nil:
			view.DisplayName = *e.GuestName
		case e.PlayerID != nil:
			view.DisplayName = names[*e.PlayerID]
		}
		participants = append(participants, view)
	}

	requirement, ok := moneygamepolicy.ForGameType(game.GameType)
	if !ok {
		return fail(newFailure(FailureInvalidInput, "unknown game type %q", game.GameType))
	}

	return results.SuccessResult[*LobbySnapshot, *Failure](&LobbySnapshot{
		GameID:        game.ID,
		GameType:      game.GameType,
		Status:        game.Status,
		CourseID:      game.CourseID,
		Currency:      game.Currency,
		ScheduledAt:   game.ScheduledAt,
		Description:   game.Description,
		StartedAt:     game.StartedAt,
		CompletedAt:   game.CompletedAt,
		AcceptedCount: accepted,
		RequiredTotal: requirement.RequiredTotal(),
		MinimumTotal:  requirement.MinimumTotal(),
		CanStart:      game.Status == moneygametypes.GameStatusReadyToStart,
		LobbyChannel:  realtime.LobbyChannelName(game.ID.String()),
		Participants:  participants,
	}), nil
}

// GetMyStatus returns the caller's own standing on a game.
func (s *MoneyGameService) GetMyStatus(ctx context.Context, identity string, gameID uuid.UUID) (*MyStatus, error) {
	statusTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*MyStatus, *Failure], error) {
		return s.getMyStatusLogic(ctx, db, identity, gameID)
	}

	result, err := withTelemetry(s, ctx, "GetMyStatus", gameID.String(), func(ctx context.Context) (results.OperationResult[*MyStatus, *Failure], error) {
		return runInTx(s, ctx, statusTx)
	})
	return unwrap(result, err)
}

func (s *MoneyGameService) getMyStatusLogic(ctx context.Context, db bun.IDB, identity string, gameID uuid.UUID) (results.OperationResult[*MyStatus, *Failure], error) {
	fail := func(f *Failure) (results.OperationResult[*MyStatus, *Failure], error) {
		return results.FailureResult[*MyStatus, *Failure](f), nil
	}
	infraErr := func(err error) (results.OperationResult[*MyStatus, *Failure], error) {
		return results.OperationResult[*MyStatus, *Failure]{}, err
	}

	game, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, moneygamedb.ErrNotFound) {
			return fail(newFailure(FailureNotFound, "game not found"))
		}
		return infraErr(err)
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

	return results.SuccessResult[*MyStatus, *Failure](&MyStatus{
		GameID:     game.ID,
		GameStatus: game.Status,
		MyResponse: entry.Status,
		IsCreator:  entry.IsCreator,
		CanRespond: !entry.IsCreator && lifecycle.AcceptsResponses(game.Status),
	}), nil
}

// ListChapterGames lists a chapter's games for its members, newest first.
func (s *MoneyGameService) ListChapterGames(ctx context.Context, identity string, chapterID uuid.UUID) ([]*GameSummary, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*GameSummary, *Failure], error) {
		return s.listChapterGamesLogic(ctx, db, identity, chapterID)
	}

	result, err := withTelemetry(s, ctx, "ListChapterGames", chapterID.String(), func(ctx context.Context) (results.OperationResult[[]*GameSummary, *Failure], error) {
		return runInTx(s, ctx, listTx)
	})
	return unwrap(result, err)
}

func (s *MoneyGameService) listChapterGamesLogic(ctx context.Context, db bun.IDB, identity string, chapterID uuid.UUID) (results.OperationResult[[]*GameSummary, *Failure], error) {
	if f, err := s.requireChapterMember(ctx, db, identity, chapterID); err != nil {
		return results.OperationResult[[]*GameSummary, *Failure]{}, err
	} else if f != nil {
		return results.FailureResult[[]*GameSummary, *Failure](f), nil
	}

	games, err := s.repo.ListGamesByChapter(ctx, db, chapterID)
	if err != nil {
		return results.OperationResult[[]*GameSummary, *Failure]{}, err
	}

	summaries := make([]*GameSummary, 0, len(games))
	for _, g := range games {
		accepted := 0
		for _, e := range g.Entries {
			if e.Status == moneygametypes.InvitationStatusAccepted {
				accepted++
			}
		}
		summaries = append(summaries, &GameSummary{
			GameID:        g.ID,
			GameType:      g.GameType,
			Status:        g.Status,
			ScheduledAt:   g.ScheduledAt,
			AcceptedCount: accepted,
			InvitedCount:  len(g.Entries),
			CreatedAt:     g.CreatedAt,
		})
	}
	return results.SuccessResult[[]*GameSummary, *Failure](summaries), nil
}

// requireChapterMember resolves the caller to a player row in the chapter.
// A nil failure with nil error means the caller is a member.
func (s *MoneyGameService) requireChapterMember(ctx context.Context, db bun.IDB, identity string, chapterID uuid.UUID) (*Failure, error) {
	user, err := s.roster.GetUserByIdentity(ctx, db, identity)
	if err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return newFailure(FailureNotChapterMember, "you are not a member of this chapter"), nil
		}
		return nil, err
	}
	if _, err := s.roster.GetPlayerByUserAndChapter(ctx, db, user.ID, chapterID); err != nil {
		if errors.Is(err, rosterdb.ErrNotFound) {
			return newFailure(FailureNotChapterMember, "you are not a member of this chapter"), nil
		}
		return nil, err
	}
	return nil, nil
}

// playerNames resolves display names for all registered entries.
func (s *MoneyGameService) playerNames(ctx context.Context, db bun.IDB, entries []*moneygamedb.MoneyGameEntry) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.PlayerID != nil {
			ids = append(ids, *e.PlayerID)
		}
	}
	players, err := s.roster.GetPlayersByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}
	return names, nil
}

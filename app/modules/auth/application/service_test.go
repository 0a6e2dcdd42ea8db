package authservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/realtime"
)

type fakeRoster struct {
	users   map[string]*rosterdb.User
	leagues map[string][]uuid.UUID
}

func (f *fakeRoster) GetUserByIdentity(ctx context.Context, db bun.IDB, identity string) (*rosterdb.User, error) {
	if u, ok := f.users[identity]; ok {
		return u, nil
	}
	return nil, rosterdb.ErrNotFound
}

func (f *fakeRoster) GetLeagueIDsForIdentity(ctx context.Context, db bun.IDB, identity string) ([]uuid.UUID, error) {
	return f.leagues[identity], nil
}

func (f *fakeRoster) GetPlayerByUserAndChapter(ctx context.Context, db bun.IDB, userID, chapterID uuid.UUID) (*rosterdb.Player, error) {
	return nil, rosterdb.ErrNotFound
}

func (f *fakeRoster) GetPlayersInChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID, ids []uuid.UUID) ([]*rosterdb.Player, error) {
	return nil, nil
}

func (f *fakeRoster) GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*rosterdb.Player, error) {
	return nil, nil
}

func (f *fakeRoster) GetChapterInLeague(ctx context.Context, db bun.IDB, chapterID, leagueID uuid.UUID) (*rosterdb.Chapter, error) {
	return nil, rosterdb.ErrNotFound
}

func (f *fakeRoster) GetCourseInLeague(ctx context.Context, db bun.IDB, courseID, leagueID uuid.UUID) (*rosterdb.Course, error) {
	return nil, rosterdb.ErrNotFound
}

var _ rosterdb.Repository = (*fakeRoster)(nil)

func TestIssueRealtimeToken(t *testing.T) {
	leagueID := uuid.New()
	roster := &fakeRoster{
		users:   map[string]*rosterdb.User{"alice": {ID: uuid.New(), Identity: "alice"}},
		leagues: map[string][]uuid.UUID{"alice": {leagueID}},
	}
	tokens := realtime.NewTokenService("test-secret", time.Hour)
	svc := NewAuthService(roster, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	t.Run("member token carries league capabilities", func(t *testing.T) {
		token, err := svc.IssueRealtimeToken(context.Background(), "alice")
		require.NoError(t, err)

		assert.Equal(t, "user_alice", token.ClientID)
		assert.Contains(t, token.Capability, "private-user-alice")
		assert.Contains(t, token.Capability, "game-"+leagueID.String()+"-*")

		claims, err := tokens.ValidateToken(token.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("unknown identity rejected", func(t *testing.T) {
		_, err := svc.IssueRealtimeToken(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrUnknownUser)
	})

	t.Run("member of no league rejected", func(t *testing.T) {
		roster.users["drifter"] = &rosterdb.User{ID: uuid.New(), Identity: "drifter"}
		_, err := svc.IssueRealtimeToken(context.Background(), "drifter")
		assert.ErrorIs(t, err, ErrNoLeagueMembership)
	})
}

package moneygameservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	"github.com/fairway-collective/moneygames/internal/observability/metrics"
)

var fixedNow = time.Date(2026, time.August, 12, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *MoneyGameService
	repo   *FakeGameRepo
	roster *FakeRosterRepo
	bus    *FakeEventBus

	leagueID  uuid.UUID
	chapterID uuid.UUID
	courseID  uuid.UUID
	creatorID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := NewFakeGameRepo()
	roster := NewFakeRosterRepo()
	bus := NewFakeEventBus()

	leagueID := uuid.New()
	chapterID := uuid.New()
	courseID := uuid.New()
	roster.AddChapter(chapterID, leagueID)
	roster.AddCourse(courseID, leagueID, "Cedar Ridge")
	creatorID := roster.AddMember("creator-identity", "Casey", chapterID)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewMoneyGameService(repo, roster, bus, logger, metrics.NewNoop(), nil, nil)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:       svc,
		repo:      repo,
		roster:    roster,
		bus:       bus,
		leagueID:  leagueID,
		chapterID: chapterID,
		courseID:  courseID,
		creatorID: creatorID,
	}
}

func (f *fixture) input(gameType moneygametypes.GameType, invited []uuid.UUID, guests []moneygametypes.Guest) CreateGameInput {
	return CreateGameInput{
		LeagueID:         f.leagueID,
		ChapterID:        f.chapterID,
		GameType:         gameType,
		CourseID:         f.courseID,
		Currency:         "USD",
		InvitedPlayerIDs: invited,
		Guests:           guests,
	}
}

// addMembers seeds n chapter members and returns their player IDs.
func (f *fixture) addMembers(n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		identity := "member-" + uuid.NewString()
		ids = append(ids, f.roster.AddMember(identity, identity, f.chapterID))
	}
	return ids
}

func requireFailureCode(t *testing.T, err error, code FailureCode) {
	t.Helper()
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, code, failure.Code)
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("fixed format with two invitees and a guest", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(2)
		guests := []moneygametypes.Guest{{Name: "Ringer"}}

		created, err := f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, guests))
		require.NoError(t, err)

		assert.Equal(t, moneygametypes.GameStatusWaitingForPlayers, created.Status)
		assert.Equal(t, 2, created.AcceptedCount) // creator + guest

		entries := f.repo.entries[created.GameID]
		require.Len(t, entries, 4)
		assert.True(t, entries[0].IsCreator)
		assert.Equal(t, moneygametypes.InvitationStatusAccepted, entries[0].Status)

		published := f.bus.Published(moneygameevents.GameCreatedV1)
		require.Len(t, published, 1)
	})

	t.Run("ranged game with one guest is born ready", func(t *testing.T) {
		f := newFixture(t)
		guests := []moneygametypes.Guest{{Name: "Ringer"}}

		created, err := f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeSkinsGame, nil, guests))
		require.NoError(t, err)

		assert.Equal(t, moneygametypes.GameStatusReadyToStart, created.Status)
		assert.Equal(t, 2, created.AcceptedCount)
	})

	t.Run("fixed format rejects off-by-one in both directions", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(4)

		_, err := f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeTeamScramble, invited[:2], nil))
		requireFailureCode(t, err, FailureInvalidPlayerCount)

		_, err = f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeTeamScramble, invited, nil))
		requireFailureCode(t, err, FailureInvalidPlayerCount)
		assert.Contains(t, err.Error(), "exactly 3")
	})

	t.Run("ranged format enforces bounds inclusive", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(8)

		_, err := f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeIndividualStrokePlay, nil, nil))
		requireFailureCode(t, err, FailureInvalidPlayerCount)

		_, err = f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeIndividualStrokePlay, invited, nil))
		requireFailureCode(t, err, FailureInvalidPlayerCount)

		_, err = f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeIndividualStrokePlay, invited[:7], nil))
		require.NoError(t, err)
	})

	t.Run("duplicate invitee rejected", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(2)

		_, err := f.svc.CreateGame(ctx, "creator-identity",
			f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, []uuid.UUID{invited[0], invited[0], invited[1]}, nil))
		requireFailureCode(t, err, FailureDuplicateInvitee)
	})

	t.Run("self invitation rejected", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(2)

		_, err := f.svc.CreateGame(ctx, "creator-identity",
			f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, []uuid.UUID{f.creatorID, invited[0], invited[1]}, nil))
		requireFailureCode(t, err, FailureSelfInvitation)
	})

	t.Run("invitee outside chapter rejected", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(2)
		otherChapter := uuid.New()
		f.roster.AddChapter(otherChapter, f.leagueID)
		outsider := f.roster.AddMember("outsider", "Out Sider", otherChapter)

		_, err := f.svc.CreateGame(ctx, "creator-identity",
			f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, []uuid.UUID{invited[0], invited[1], outsider}, nil))
		requireFailureCode(t, err, FailureInviteeOutOfScope)
	})

	t.Run("caller must be chapter member", func(t *testing.T) {
		f := newFixture(t)
		otherChapter := uuid.New()
		f.roster.AddChapter(otherChapter, f.leagueID)
		f.roster.AddMember("stranger", "Stranger", otherChapter)
		invited := f.addMembers(3)

		_, err := f.svc.CreateGame(ctx, "stranger", f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, nil))
		requireFailureCode(t, err, FailureNotChapterMember)
	})

	t.Run("unknown game type rejected before store access", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateGame(ctx, "creator-identity", f.input("FOUR_BALL", nil, nil))
		requireFailureCode(t, err, FailureInvalidInput)
		assert.Empty(t, f.repo.Trace())
	})

	t.Run("unknown course rejected", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(3)
		input := f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, nil)
		input.CourseID = uuid.New()

		_, err := f.svc.CreateGame(ctx, "creator-identity", input)
		requireFailureCode(t, err, FailureNotFound)
	})

	t.Run("schedule accepts rfc3339 and natural language", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(3)
		input := f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, nil)
		input.Schedule = "2026-08-15T09:00:00Z"

		created, err := f.svc.CreateGame(ctx, "creator-identity", input)
		require.NoError(t, err)
		require.NotNil(t, f.repo.games[created.GameID].ScheduledAt)
	})

	t.Run("unparseable schedule rejected", func(t *testing.T) {
		f := newFixture(t)
		invited := f.addMembers(3)
		input := f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, nil)
		input.Schedule = "xyzzy plugh"

		_, err := f.svc.CreateGame(ctx, "creator-identity", input)
		requireFailureCode(t, err, FailureInvalidInput)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		f := newFixture(t)
		f.bus.failAll = true
		invited := f.addMembers(3)

		_, err := f.svc.CreateGame(ctx, "creator-identity", f.input(moneygametypes.GameTypeTwoVsTwoAutoPress, invited, nil))
		require.NoError(t, err)
	})
}

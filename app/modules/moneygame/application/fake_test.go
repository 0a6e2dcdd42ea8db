package moneygameservice

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
)

// ------------------------
// Fake Game Repo
// ------------------------

// FakeGameRepo is an in-memory Repository. Default behavior operates on the
// maps; any Func field overrides the corresponding method.
type FakeGameRepo struct {
	games   map[uuid.UUID]*moneygamedb.MoneyGame
	entries map[uuid.UUID][]*moneygamedb.MoneyGameEntry
	trace   []string

	GetGameForUpdateFunc func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*moneygamedb.MoneyGame, error)
	AcceptedCountFunc    func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (int, error)
	UpdateGameStatusFunc func(ctx context.Context, db bun.IDB, gameID uuid.UUID, status moneygametypes.GameStatus, startedAt, completedAt *time.Time) error
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{
		games:   map[uuid.UUID]*moneygamedb.MoneyGame{},
		entries: map[uuid.UUID][]*moneygamedb.MoneyGameEntry{},
		trace:   []string{},
	}
}

func (f *FakeGameRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGameRepo) CreateGame(ctx context.Context, db bun.IDB, game *moneygamedb.MoneyGame, entries []*moneygamedb.MoneyGameEntry) error {
	f.record("CreateGame")
	stored := *game
	f.games[game.ID] = &stored
	for _, e := range entries {
		entry := *e
		f.entries[game.ID] = append(f.entries[game.ID], &entry)
	}
	return nil
}

func (f *FakeGameRepo) GetGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*moneygamedb.MoneyGame, error) {
	f.record("GetGame")
	game, ok := f.games[gameID]
	if !ok {
		return nil, moneygamedb.ErrNotFound
	}
	out := *game
	out.Entries = f.entries[gameID]
	return &out, nil
}

func (f *FakeGameRepo) GetGameForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*moneygamedb.MoneyGame, error) {
	f.record("GetGameForUpdate")
	if f.GetGameForUpdateFunc != nil {
		return f.GetGameForUpdateFunc(ctx, db, gameID)
	}
	game, ok := f.games[gameID]
	if !ok {
		return nil, moneygamedb.ErrNotFound
	}
	out := *game
	return &out, nil
}

func (f *FakeGameRepo) GetEntries(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*moneygamedb.MoneyGameEntry, error) {
	f.record("GetEntries")
	return f.entries[gameID], nil
}

func (f *FakeGameRepo) GetEntryByPlayerID(ctx context.Context, db bun.IDB, gameID, playerID uuid.UUID) (*moneygamedb.MoneyGameEntry, error) {
	f.record("GetEntryByPlayerID")
	for _, e := range f.entries[gameID] {
		if e.PlayerID != nil && *e.PlayerID == playerID {
			out := *e
			return &out, nil
		}
	}
	return nil, moneygamedb.ErrNotFound
}

func (f *FakeGameRepo) AcceptedCount(ctx context.Context, db bun.IDB, gameID uuid.UUID) (int, error) {
	f.record("AcceptedCount")
	if f.AcceptedCountFunc != nil {
		return f.AcceptedCountFunc(ctx, db, gameID)
	}
	count := 0
	for _, e := range f.entries[gameID] {
		if e.Status == moneygametypes.InvitationStatusAccepted {
			count++
		}
	}
	return count, nil
}

func (f *FakeGameRepo) UpdateEntryStatus(ctx context.Context, db bun.IDB, entryID uuid.UUID, status moneygametypes.InvitationStatus, respondedAt time.Time) error {
	f.record("UpdateEntryStatus")
	for _, entries := range f.entries {
		for _, e := range entries {
			if e.ID == entryID {
				e.Status = status
				t := respondedAt
				e.RespondedAt = &t
				return nil
			}
		}
	}
	return moneygamedb.ErrNotFound
}

func (f *FakeGameRepo) UpdateGameStatus(ctx context.Context, db bun.IDB, gameID uuid.UUID, status moneygametypes.GameStatus, startedAt, completedAt *time.Time) error {
	f.record("UpdateGameStatus")
	if f.UpdateGameStatusFunc != nil {
		return f.UpdateGameStatusFunc(ctx, db, gameID, status, startedAt, completedAt)
	}
	game, ok := f.games[gameID]
	if !ok {
		return moneygamedb.ErrNotFound
	}
	game.Status = status
	if startedAt != nil {
		game.StartedAt = startedAt
	}
	if completedAt != nil {
		game.CompletedAt = completedAt
	}
	return nil
}

func (f *FakeGameRepo) ListGamesByChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID) ([]*moneygamedb.MoneyGame, error) {
	f.record("ListGamesByChapter")
	var out []*moneygamedb.MoneyGame
	for _, game := range f.games {
		if game.ChapterID == chapterID {
			g := *game
			g.Entries = f.entries[game.ID]
			out = append(out, &g)
		}
	}
	return out, nil
}

func (f *FakeGameRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ moneygamedb.Repository = (*FakeGameRepo)(nil)

// ------------------------
// Fake Roster Repo
// ------------------------

type FakeRosterRepo struct {
	users    map[string]*rosterdb.User // by identity
	players  []*rosterdb.Player
	chapters []*rosterdb.Chapter
	courses  []*rosterdb.Course
}

func NewFakeRosterRepo() *FakeRosterRepo {
	return &FakeRosterRepo{users: map[string]*rosterdb.User{}}
}

// AddMember seeds a user with a player row in the chapter and returns the
// player ID.
func (f *FakeRosterRepo) AddMember(identity, displayName string, chapterID uuid.UUID) uuid.UUID {
	user, ok := f.users[identity]
	if !ok {
		user = &rosterdb.User{ID: uuid.New(), Identity: identity, Name: displayName}
		f.users[identity] = user
	}
	player := &rosterdb.Player{
		ID:          uuid.New(),
		UserID:      user.ID,
		ChapterID:   chapterID,
		DisplayName: displayName,
		User:        user,
	}
	f.players = append(f.players, player)
	return player.ID
}

func (f *FakeRosterRepo) AddChapter(chapterID, leagueID uuid.UUID) {
	f.chapters = append(f.chapters, &rosterdb.Chapter{ID: chapterID, LeagueID: leagueID, Name: "chapter"})
}

func (f *FakeRosterRepo) AddCourse(courseID, leagueID uuid.UUID, name string) {
	f.courses = append(f.courses, &rosterdb.Course{ID: courseID, LeagueID: leagueID, Name: name})
}

func (f *FakeRosterRepo) GetUserByIdentity(ctx context.Context, db bun.IDB, identity string) (*rosterdb.User, error) {
	user, ok := f.users[identity]
	if !ok {
		return nil, rosterdb.ErrNotFound
	}
	return user, nil
}

func (f *FakeRosterRepo) GetPlayerByUserAndChapter(ctx context.Context, db bun.IDB, userID, chapterID uuid.UUID) (*rosterdb.Player, error) {
	for _, p := range f.players {
		if p.UserID == userID && p.ChapterID == chapterID {
			return p, nil
		}
	}
	return nil, rosterdb.ErrNotFound
}

func (f *FakeRosterRepo) GetPlayersInChapter(ctx context.Context, db bun.IDB, chapterID uuid.UUID, ids []uuid.UUID) ([]*rosterdb.Player, error) {
	var out []*rosterdb.Player
	for _, id := range ids {
		for _, p := range f.players {
			if p.ID == id && p.ChapterID == chapterID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *FakeRosterRepo) GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*rosterdb.Player, error) {
	var out []*rosterdb.Player
	for _, id := range ids {
		for _, p := range f.players {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *FakeRosterRepo) GetChapterInLeague(ctx context.Context, db bun.IDB, chapterID, leagueID uuid.UUID) (*rosterdb.Chapter, error) {
	for _, ch := range f.chapters {
		if ch.ID == chapterID && ch.LeagueID == leagueID {
			return ch, nil
		}
	}
	return nil, rosterdb.ErrNotFound
}

func (f *FakeRosterRepo) GetCourseInLeague(ctx context.Context, db bun.IDB, courseID, leagueID uuid.UUID) (*rosterdb.Course, error) {
	for _, co := range f.courses {
		if co.ID == courseID && co.LeagueID == leagueID {
			return co, nil
		}
	}
	return nil, rosterdb.ErrNotFound
}

func (f *FakeRosterRepo) GetLeagueIDsForIdentity(ctx context.Context, db bun.IDB, identity string) ([]uuid.UUID, error) {
	user, ok := f.users[identity]
	if !ok {
		return nil, nil
	}
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, p := range f.players {
		if p.UserID != user.ID {
			continue
		}
		for _, ch := range f.chapters {
			if ch.ID == p.ChapterID {
				if _, dup := seen[ch.LeagueID]; !dup {
					seen[ch.LeagueID] = struct{}{}
					out = append(out, ch.LeagueID)
				}
			}
		}
	}
	return out, nil
}

var _ rosterdb.Repository = (*FakeRosterRepo)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type FakeEventBus struct {
	mu        sync.Mutex
	published map[string][]*message.Message
	failAll   bool
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{published: map[string][]*message.Message{}}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return context.DeadlineExceeded
	}
	f.published[topic] = append(f.published[topic], messages...)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

func (f *FakeEventBus) Published(topic string) []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published[topic]
}

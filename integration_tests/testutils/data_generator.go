package testutils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
)

// Roster is a seeded league with one chapter, one course, and a set of
// chapter members.
type Roster struct {
	LeagueID  uuid.UUID
	ChapterID uuid.UUID
	CourseID  uuid.UUID
	Members   []Member
}

// Member pairs a seeded player with their identity.
type Member struct {
	PlayerID uuid.UUID
	UserID   uuid.UUID
	Identity string
	Name     string
}

// SeedRoster inserts a league, chapter, course, and memberCount players.
func SeedRoster(ctx context.Context, db *bun.DB, memberCount int) (*Roster, error) {
	now := time.Now().UTC()

	league := &rosterdb.League{
		ID:              uuid.New(),
		Name:            gofakeit.Company() + " Golf League",
		DefaultCurrency: "USD",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := db.NewInsert().Model(league).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert league: %w", err)
	}

	chapter := &rosterdb.Chapter{
		ID:        uuid.New(),
		LeagueID:  league.ID,
		Name:      gofakeit.City() + " Chapter",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := db.NewInsert().Model(chapter).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert chapter: %w", err)
	}

	course := &rosterdb.Course{
		ID:        uuid.New(),
		LeagueID:  league.ID,
		Name:      gofakeit.LastName() + " Ridge",
		Location:  gofakeit.City(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := db.NewInsert().Model(course).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}

	roster := &Roster{
		LeagueID:  league.ID,
		ChapterID: chapter.ID,
		CourseID:  course.ID,
	}

	for i := 0; i < memberCount; i++ {
		name := gofakeit.Name()
		identity := fmt.Sprintf("user-%s-%d", strings.ToLower(gofakeit.LetterN(6)), i)

		user := &rosterdb.User{
			ID:        uuid.New(),
			Identity:  identity,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}

		player := &rosterdb.Player{
			ID:          uuid.New(),
			UserID:      user.ID,
			ChapterID:   chapter.ID,
			DisplayName: name,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := db.NewInsert().Model(player).Exec(ctx); err != nil {
			return nil, fmt.Errorf("insert player: %w", err)
		}

		roster.Members = append(roster.Members, Member{
			PlayerID: player.ID,
			UserID:   user.ID,
			Identity: identity,
			Name:     name,
		})
	}

	return roster, nil
}

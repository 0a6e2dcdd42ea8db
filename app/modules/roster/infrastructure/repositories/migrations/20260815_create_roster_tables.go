package migrations

import (
	"context"
	"fmt"

	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating roster tables...")
			models := []interface{}{
				(*rosterdb.League)(nil),
				(*rosterdb.Chapter)(nil),
				(*rosterdb.Course)(nil),
				(*rosterdb.User)(nil),
				(*rosterdb.Player)(nil),
			}
			for _, model := range models {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}
			if _, err := db.NewCreateIndex().
				Model((*rosterdb.Player)(nil)).
				Index("players_user_chapter_idx").
				Unique().
				Column("user_id", "chapter_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			fmt.Println("roster tables created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping roster tables...")
			models := []interface{}{
				(*rosterdb.Player)(nil),
				(*rosterdb.User)(nil),
				(*rosterdb.Course)(nil),
				(*rosterdb.Chapter)(nil),
				(*rosterdb.League)(nil),
			}
			for _, model := range models {
				if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
			}
			fmt.Println("roster tables dropped successfully!")
			return nil
		},
	)
}

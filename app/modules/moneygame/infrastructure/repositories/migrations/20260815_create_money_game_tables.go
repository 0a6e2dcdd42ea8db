package migrations

import (
	"context"
	"fmt"

	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating money game tables...")
			if _, err := db.NewCreateTable().Model((*moneygamedb.MoneyGame)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateTable().Model((*moneygamedb.MoneyGameEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*moneygamedb.MoneyGameEntry)(nil)).
				Index("money_game_entries_game_player_idx").
				Unique().
				Column("game_id", "player_id").
				Where("player_id IS NOT NULL").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*moneygamedb.MoneyGame)(nil)).
				Index("money_games_chapter_idx").
				Column("chapter_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			fmt.Println("money game tables created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping money game tables...")
			if _, err := db.NewDropTable().Model((*moneygamedb.MoneyGameEntry)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewDropTable().Model((*moneygamedb.MoneyGame)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("money game tables dropped successfully!")
			return nil
		},
	)
}

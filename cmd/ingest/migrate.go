package main

import (
	"context"
	"time"

	"i4e-backend/internal/database/migration"
	dbpostgres "i4e-backend/internal/database/postgres"
	"i4e-backend/internal/database/seeder"

	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globals) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, g.cfg.Database, g.log)
			if err != nil {
				return err
			}
			defer db.Close()

			if dir == "" {
				dir = g.cfg.Database.MigrationsDir
			}
			if err := (migration.Runner{Dir: dir}).Run(ctx, db.SQLDB()); err != nil {
				return err
			}
			g.log.Info("migrations applied", "dir", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Read migrations from this directory instead of the embedded set")
	return cmd
}

func newSeedCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert lookup rows and the bulk upload template",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, g.cfg.Database, g.log)
			if err != nil {
				return err
			}
			defer db.Close()

			return seeder.Runner{Seeders: seeder.Defaults(), Log: g.log}.Run(ctx, db)
		},
	}
}

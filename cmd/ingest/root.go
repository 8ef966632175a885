package main

import (
	"fmt"

	"i4e-backend/internal/config"
	"i4e-backend/internal/pkg/logger"

	"github.com/spf13/cobra"
)

type globals struct {
	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Career library maintenance: migrations, seed data and bulk uploads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			lg, err := logger.New(cfg.App.Environment)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			g.cfg, g.log = cfg, lg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			g.log.Sync()
		},
	}

	root.AddCommand(newMigrateCmd(g), newSeedCmd(g), newUploadCmd(g))
	return root
}

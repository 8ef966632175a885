package seeder

import (
	"context"
	"fmt"
	"time"

	"i4e-backend/internal/database"
	"i4e-backend/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
	Log     *logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Log.Info("seeder applied", "seeder", s.Name(), "duration", time.Since(start))
	}
	return nil
}

package seeder

import (
	"context"

	"i4e-backend/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

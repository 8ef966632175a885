package seeder

import (
	"context"
	"fmt"

	"i4e-backend/internal/database"
)

// LookupSeeder fills the fixed lookup tables that reference rows point at,
// including the default city and institute type used for ingested institutes.
type LookupSeeder struct{}

func (LookupSeeder) Name() string { return "lookups" }

type lookupRow struct {
	ID   int64
	Name string
}

var lookupData = map[string][]lookupRow{
	"cities": {
		{ID: 249, Name: "Mumbai"},
		{ID: 250, Name: "Pune"},
		{ID: 251, Name: "Delhi"},
		{ID: 252, Name: "Bengaluru"},
	},
	"institute_types": {
		{ID: 1, Name: "University"},
		{ID: 2, Name: "College"},
		{ID: 3, Name: "Institute"},
	},
	"exam_types": {
		{ID: 1, Name: "Entrance"},
		{ID: 2, Name: "Certification"},
		{ID: 3, Name: "Competitive"},
	},
	"education_levels": {
		{ID: 1, Name: "10th"},
		{ID: 2, Name: "12th"},
		{ID: 3, Name: "Graduate"},
		{ID: 4, Name: "Post Graduate"},
	},
}

var lookupOrder = []string{"cities", "institute_types", "exam_types", "education_levels"}

func (LookupSeeder) Run(ctx context.Context, db database.DB) error {
	for _, table := range lookupOrder {
		if err := EnsureTableColumns(ctx, db, table, "id", "name"); err != nil {
			return err
		}
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, table := range lookupOrder {
		for _, it := range lookupData[table] {
			// table names come from the fixed list above
			q := fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, table)
			if _, err := tx.Exec(ctx, q, it.ID, it.Name); err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

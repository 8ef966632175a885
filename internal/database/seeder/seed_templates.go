package seeder

import (
	"context"

	"i4e-backend/internal/database"
	"i4e-backend/internal/domain/career"
)

type TemplateSeeder struct{}

func (TemplateSeeder) Name() string { return "templates" }

func (TemplateSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "ml_templates", "template_code", "template_url"); err != nil {
		return err
	}
	_, err := db.Exec(ctx,
		`INSERT INTO ml_templates (template_code, template_url) VALUES ($1, NULL) ON CONFLICT (template_code) DO NOTHING`,
		career.BulkUploadTemplateCode,
	)
	return err
}

package repository

import (
	"context"

	"i4e-backend/internal/database"
	"i4e-backend/internal/domain/career"
)

type TemplateRepository interface {
	Get(ctx context.Context, code string) (career.Template, error)
	Save(ctx context.Context, code, url string, userID int64) error
}

type PostgresTemplateRepository struct {
	db database.DB
}

func NewPostgresTemplateRepository(db database.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

func (r *PostgresTemplateRepository) Get(ctx context.Context, code string) (career.Template, error) {
	var t career.Template
	err := r.db.QueryRow(ctx,
		`SELECT template_code, COALESCE(template_url, ''), last_updated_by FROM ml_templates WHERE template_code = $1`,
		code,
	).Scan(&t.Code, &t.URL, &t.LastUpdatedBy)
	if err != nil {
		if database.IsNoRows(err) {
			return career.Template{}, career.ErrNotFound
		}
		return career.Template{}, err
	}
	return t, nil
}

func (r *PostgresTemplateRepository) Save(ctx context.Context, code, url string, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ml_templates (template_code, template_url, last_updated_on, last_updated_by)
		 VALUES ($1, $2, now(), $3)
		 ON CONFLICT (template_code) DO UPDATE SET
			template_url = EXCLUDED.template_url,
			last_updated_on = now(),
			last_updated_by = EXCLUDED.last_updated_by`,
		code, url, nullableID(userID),
	)
	return err
}

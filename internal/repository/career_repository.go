package repository

import (
	"context"
	"fmt"
	"strings"

	"i4e-backend/internal/database"
	"i4e-backend/internal/domain/career"
)

// CareerLinks are the reference rows a career points at.
type CareerLinks struct {
	Skills        []career.Reference
	Institutes    []career.Reference
	Exams         []career.Reference
	Companies     []career.Reference
	Personalities []career.Reference
}

type CareerRepository interface {
	// Save upserts by active slug and replaces every link table. inserted
	// reports whether the row did not exist before.
	Save(ctx context.Context, d career.Details, userID int64) (id int64, inserted bool, err error)
	Update(ctx context.Context, d career.Details, userID int64) error
	Deactivate(ctx context.Context, careerID, userID int64) error
	TogglePopular(ctx context.Context, careerID, userID int64) (bool, error)
	Delete(ctx context.Context, careerID int64) error

	GetBySlug(ctx context.Context, slug string) (career.Career, error)
	GetLinks(ctx context.Context, careerID int64) (CareerLinks, error)
	List(ctx context.Context, onlyActive bool) ([]career.Career, error)
	ListByCategorySlug(ctx context.Context, slug string) ([]career.Career, error)
	SearchCandidates(ctx context.Context, terms []string, limit int) ([]career.Career, error)
}

type PostgresCareerRepository struct {
	db database.DB
}

func NewPostgresCareerRepository(db database.DB) *PostgresCareerRepository {
	return &PostgresCareerRepository{db: db}
}

type linkTable struct {
	table  string
	column string
	ref    string
}

var (
	skillLinks       = linkTable{table: "career_skill_map", column: "skill_id", ref: "skills"}
	instituteLinks   = linkTable{table: "career_institute_map", column: "institute_id", ref: "institutes"}
	examLinks        = linkTable{table: "career_exam_map", column: "exam_id", ref: "exams"}
	companyLinks     = linkTable{table: "career_company_map", column: "company_id", ref: "companies"}
	personalityLinks = linkTable{table: "career_personality_map", column: "personality_id", ref: "personalities"}
)

const careerColumns = `c.id, COALESCE(c.code, ''), c.name, c.slug, c.category_id, COALESCE(cc.name, ''),
	c.other_names, c.is_active, c.is_popular, c.created_at, c.updated_at`

func scanCareer(row database.Row) (career.Career, error) {
	var c career.Career
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Slug, &c.CategoryID, &c.CategoryName,
		&c.OtherNames, &c.IsActive, &c.IsPopular, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresCareerRepository) Save(ctx context.Context, d career.Details, userID int64) (int64, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var (
		id       int64
		inserted bool
	)
	err = tx.QueryRow(ctx,
		`INSERT INTO careers (code, name, slug, category_id, other_names, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (slug) WHERE is_active DO UPDATE SET
			code = COALESCE(EXCLUDED.code, careers.code),
			name = EXCLUDED.name,
			category_id = COALESCE(EXCLUDED.category_id, careers.category_id),
			other_names = EXCLUDED.other_names,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id, (xmax = 0)`,
		d.CareerCode, d.CareerName, career.Slugify(d.CareerName), d.CareerCategoryID,
		nonNil(d.OtherNames), nullableID(userID),
	).Scan(&id, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("save career: %w", err)
	}

	if err := replaceLinks(ctx, tx, id, d); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return id, inserted, nil
}

func (r *PostgresCareerRepository) Update(ctx context.Context, d career.Details, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	n, err := tx.Exec(ctx,
		`UPDATE careers SET
			code = NULLIF($2, ''),
			name = $3,
			slug = $4,
			category_id = $5,
			other_names = $6,
			is_active = COALESCE($7, is_active),
			updated_by = $8,
			updated_at = now()
		 WHERE id = $1`,
		d.CareerID, d.CareerCode, d.CareerName, career.Slugify(d.CareerName), d.CareerCategoryID,
		nonNil(d.OtherNames), d.IsActive, nullableID(userID),
	)
	if err != nil {
		return fmt.Errorf("update career: %w", err)
	}
	if n == 0 {
		return career.ErrNotFound
	}

	if err := replaceLinks(ctx, tx, d.CareerID, d); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceLinks(ctx context.Context, tx database.Tx, careerID int64, d career.Details) error {
	sets := []struct {
		lt  linkTable
		ids []int64
	}{
		{skillLinks, d.CareerSkillIDs},
		{instituteLinks, d.InstituteIDs},
		{examLinks, d.ExamIDs},
		{companyLinks, d.CompanyIDs},
		{personalityLinks, d.PersonalityIDs},
	}
	for _, s := range sets {
		if _, err := tx.Exec(ctx, `DELETE FROM `+s.lt.table+` WHERE career_id = $1`, careerID); err != nil {
			return fmt.Errorf("clear %s: %w", s.lt.table, err)
		}
		if len(s.ids) == 0 {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO `+s.lt.table+` (career_id, `+s.lt.column+`)
			 SELECT $1, x FROM unnest($2::BIGINT[]) AS x
			 ON CONFLICT DO NOTHING`,
			careerID, s.ids,
		)
		if err != nil {
			return fmt.Errorf("link %s: %w", s.lt.table, err)
		}
	}
	return nil
}

func (r *PostgresCareerRepository) Deactivate(ctx context.Context, careerID, userID int64) error {
	n, err := r.db.Exec(ctx,
		`UPDATE careers SET is_active = FALSE, updated_by = $2, updated_at = now() WHERE id = $1`,
		careerID, nullableID(userID),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return career.ErrNotFound
	}
	return nil
}

func (r *PostgresCareerRepository) TogglePopular(ctx context.Context, careerID, userID int64) (bool, error) {
	var popular bool
	err := r.db.QueryRow(ctx,
		`UPDATE careers SET is_popular = NOT is_popular, updated_by = $2, updated_at = now()
		 WHERE id = $1 RETURNING is_popular`,
		careerID, nullableID(userID),
	).Scan(&popular)
	if err != nil {
		if database.IsNoRows(err) {
			return false, career.ErrNotFound
		}
		return false, err
	}
	return popular, nil
}

// Delete removes the row and, through ON DELETE CASCADE, its links. It is
// only used to undo a Save whose document write failed.
func (r *PostgresCareerRepository) Delete(ctx context.Context, careerID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM careers WHERE id = $1`, careerID)
	return err
}

func (r *PostgresCareerRepository) GetBySlug(ctx context.Context, slug string) (career.Career, error) {
	c, err := scanCareer(r.db.QueryRow(ctx,
		`SELECT `+careerColumns+`
		 FROM careers c
		 LEFT JOIN career_categories cc ON cc.id = c.category_id
		 WHERE c.slug = $1
		 ORDER BY c.is_active DESC, c.id DESC
		 LIMIT 1`,
		slug,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return career.Career{}, career.ErrNotFound
		}
		return career.Career{}, err
	}
	return c, nil
}

func (r *PostgresCareerRepository) GetLinks(ctx context.Context, careerID int64) (CareerLinks, error) {
	var (
		out CareerLinks
		err error
	)
	if out.Skills, err = r.linked(ctx, skillLinks, careerID); err != nil {
		return CareerLinks{}, err
	}
	if out.Institutes, err = r.linked(ctx, instituteLinks, careerID); err != nil {
		return CareerLinks{}, err
	}
	if out.Exams, err = r.linked(ctx, examLinks, careerID); err != nil {
		return CareerLinks{}, err
	}
	if out.Companies, err = r.linked(ctx, companyLinks, careerID); err != nil {
		return CareerLinks{}, err
	}
	if out.Personalities, err = r.linked(ctx, personalityLinks, careerID); err != nil {
		return CareerLinks{}, err
	}
	return out, nil
}

func (r *PostgresCareerRepository) linked(ctx context.Context, lt linkTable, careerID int64) ([]career.Reference, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.name, e.is_active
		 FROM `+lt.table+` m
		 JOIN `+lt.ref+` e ON e.id = m.`+lt.column+`
		 WHERE m.career_id = $1
		 ORDER BY e.name ASC`,
		careerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Reference, 0)
	for rows.Next() {
		var ref career.Reference
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.IsActive); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *PostgresCareerRepository) List(ctx context.Context, onlyActive bool) ([]career.Career, error) {
	return r.listCareers(ctx,
		`SELECT `+careerColumns+`
		 FROM careers c
		 LEFT JOIN career_categories cc ON cc.id = c.category_id
		 WHERE ($1::BOOLEAN = FALSE OR c.is_active)
		 ORDER BY c.name ASC`,
		onlyActive,
	)
}

func (r *PostgresCareerRepository) ListByCategorySlug(ctx context.Context, slug string) ([]career.Career, error) {
	return r.listCareers(ctx,
		`SELECT `+careerColumns+`
		 FROM careers c
		 JOIN career_categories cc ON cc.id = c.category_id
		 WHERE cc.slug = $1 AND cc.is_active AND c.is_active
		 ORDER BY c.is_popular DESC, c.name ASC`,
		slug,
	)
}

// SearchCandidates returns active careers whose name or any other name
// contains one of terms, case-insensitively.
func (r *PostgresCareerRepository) SearchCandidates(ctx context.Context, terms []string, limit int) ([]career.Career, error) {
	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		patterns = append(patterns, "%"+escapeLike(t)+"%")
	}
	if len(patterns) == 0 {
		return []career.Career{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	return r.listCareers(ctx,
		`SELECT `+careerColumns+`
		 FROM careers c
		 LEFT JOIN career_categories cc ON cc.id = c.category_id
		 WHERE c.is_active AND (
			c.name ILIKE ANY($1::TEXT[])
			OR EXISTS (SELECT 1 FROM unnest(c.other_names) o WHERE o ILIKE ANY($1::TEXT[]))
		 )
		 ORDER BY c.is_popular DESC, c.name ASC
		 LIMIT $2`,
		patterns, limit,
	)
}

func (r *PostgresCareerRepository) listCareers(ctx context.Context, query string, args ...any) ([]career.Career, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Career, 0)
	for rows.Next() {
		c, err := scanCareer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// nonNil keeps nil slices from being stored as NULL.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

package repository

import (
	"context"
	"fmt"

	"i4e-backend/internal/database"
	"i4e-backend/internal/domain/career"
)

// ReferenceRepository owns the named reference tables. Every Upsert is a
// single INSERT ... ON CONFLICT against the partial unique index on the
// active name, so concurrent callers with the same new name get one row.
type ReferenceRepository interface {
	UpsertCareerCategory(ctx context.Context, in career.CareerCategory, userID int64) (int64, error)
	UpsertSkillCategory(ctx context.Context, in career.SkillCategory, userID int64) (int64, error)
	UpsertSkill(ctx context.Context, in career.Skill, userID int64) (int64, error)
	UpsertExam(ctx context.Context, in career.Exam, userID int64) (int64, error)
	UpsertCompany(ctx context.Context, in career.Company, userID int64) (int64, error)
	UpsertPersonality(ctx context.Context, in career.Personality, userID int64) (int64, error)
	UpsertInstitute(ctx context.Context, in career.Institute, userID int64) (int64, error)

	FindActiveByName(ctx context.Context, kind career.EntityKind, name string) (career.Reference, error)
	UpdateCategoryDescription(ctx context.Context, categoryID int64, url string, userID int64) error

	ListCareerCategories(ctx context.Context) ([]career.CareerCategory, error)
	ListSkillCategories(ctx context.Context) ([]career.SkillCategory, error)
	ListSkills(ctx context.Context) ([]career.Skill, error)
	ListExams(ctx context.Context) ([]career.Exam, error)
	ListCompanies(ctx context.Context) ([]career.Company, error)
	ListPersonalities(ctx context.Context) ([]career.Personality, error)
	ListInstitutes(ctx context.Context) ([]career.Institute, error)
	ListExamTypes(ctx context.Context) ([]career.Lookup, error)
	ListEducationLevels(ctx context.Context) ([]career.Lookup, error)
}

type PostgresReferenceRepository struct {
	db database.DB
}

func NewPostgresReferenceRepository(db database.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

var referenceTables = map[career.EntityKind]string{
	career.KindCareerCategory: "career_categories",
	career.KindSkillCategory:  "skill_categories",
	career.KindSkill:          "skills",
	career.KindExam:           "exams",
	career.KindCompany:        "companies",
	career.KindPersonality:    "personalities",
	career.KindInstitute:      "institutes",
}

func (r *PostgresReferenceRepository) upsert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresReferenceRepository) UpsertCareerCategory(ctx context.Context, in career.CareerCategory, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO career_categories (code, name, slug, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, $3, $4, $4)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			code = COALESCE(EXCLUDED.code, career_categories.code),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Code, in.Name, career.Slugify(in.Name), nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertSkillCategory(ctx context.Context, in career.SkillCategory, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO skill_categories (code, name, description, parent_id, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $5)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			parent_id = COALESCE(skill_categories.parent_id, EXCLUDED.parent_id),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Code, in.Name, in.Description, in.ParentID, nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertSkill(ctx context.Context, in career.Skill, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO skills (code, name, description, category_id, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $5)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			category_id = COALESCE(skills.category_id, EXCLUDED.category_id),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Code, in.Name, in.Description, in.CategoryID, nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertExam(ctx context.Context, in career.Exam, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO exams (code, name, exam_type_id, education_level_id, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, $3, $4, $5, $5)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			exam_type_id = COALESCE(EXCLUDED.exam_type_id, exams.exam_type_id),
			education_level_id = COALESCE(EXCLUDED.education_level_id, exams.education_level_id),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Code, in.Name, in.ExamTypeID, in.EducationLevelID, nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertCompany(ctx context.Context, in career.Company, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO companies (name, description, logo_url, created_by, updated_by)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $4)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			description = COALESCE(EXCLUDED.description, companies.description),
			logo_url = COALESCE(EXCLUDED.logo_url, companies.logo_url),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Name, in.Description, in.LogoURL, nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertPersonality(ctx context.Context, in career.Personality, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO personalities (name, last_name, image_url, created_by, updated_by)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $4)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			last_name = COALESCE(EXCLUDED.last_name, personalities.last_name),
			image_url = COALESCE(EXCLUDED.image_url, personalities.image_url),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Name, in.LastName, in.ImageURL, nullableID(userID),
	)
}

func (r *PostgresReferenceRepository) UpsertInstitute(ctx context.Context, in career.Institute, userID int64) (int64, error) {
	return r.upsert(ctx,
		`INSERT INTO institutes (code, name, institute_type_id, city_id, address_line, postal_code, image_url, created_by, updated_by)
		 VALUES (NULLIF($1, ''), $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $8)
		 ON CONFLICT (name) WHERE is_active DO UPDATE SET
			institute_type_id = COALESCE(institutes.institute_type_id, EXCLUDED.institute_type_id),
			city_id = COALESCE(institutes.city_id, EXCLUDED.city_id),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		 RETURNING id`,
		in.Code, in.Name, in.InstituteTypeID, in.CityID, in.AddressLine, in.PostalCode, in.ImageURL, nullableID(userID),
	)
}

// FindActiveByName is an exact, case-sensitive match. The name is bound as a
// parameter, never spliced into SQL.
func (r *PostgresReferenceRepository) FindActiveByName(ctx context.Context, kind career.EntityKind, name string) (career.Reference, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return career.Reference{}, fmt.Errorf("unknown reference kind %q", kind)
	}

	parentCol := "NULL::BIGINT"
	switch kind {
	case career.KindSkillCategory:
		parentCol = "parent_id"
	case career.KindSkill:
		parentCol = "category_id"
	}

	var ref career.Reference
	err := r.db.QueryRow(ctx,
		`SELECT id, name, `+parentCol+`, is_active FROM `+table+` WHERE name = $1 AND is_active LIMIT 1`,
		name,
	).Scan(&ref.ID, &ref.Name, &ref.ParentID, &ref.IsActive)
	if err != nil {
		if database.IsNoRows(err) {
			return career.Reference{}, career.ErrNotFound
		}
		return career.Reference{}, err
	}
	return ref, nil
}

func (r *PostgresReferenceRepository) UpdateCategoryDescription(ctx context.Context, categoryID int64, url string, userID int64) error {
	n, err := r.db.Exec(ctx,
		`UPDATE career_categories SET description_url = $2, updated_by = $3, updated_at = now()
		 WHERE id = $1 AND is_active`,
		categoryID, url, nullableID(userID),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return career.ErrNotFound
	}
	return nil
}

func (r *PostgresReferenceRepository) ListCareerCategories(ctx context.Context) ([]career.CareerCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(code, ''), name, slug, description_url, is_active
		 FROM career_categories WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.CareerCategory, 0)
	for rows.Next() {
		var it career.CareerCategory
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Slug, &it.DescriptionURL, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListSkillCategories(ctx context.Context) ([]career.SkillCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(code, ''), name, COALESCE(description, ''), parent_id, is_active
		 FROM skill_categories WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.SkillCategory, 0)
	for rows.Next() {
		var it career.SkillCategory
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Description, &it.ParentID, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListSkills(ctx context.Context) ([]career.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(code, ''), name, COALESCE(description, ''), category_id, is_active
		 FROM skills WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Skill, 0)
	for rows.Next() {
		var it career.Skill
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Description, &it.CategoryID, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListExams(ctx context.Context) ([]career.Exam, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(code, ''), name, exam_type_id, education_level_id, is_active
		 FROM exams WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Exam, 0)
	for rows.Next() {
		var it career.Exam
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.ExamTypeID, &it.EducationLevelID, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListCompanies(ctx context.Context) ([]career.Company, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), logo_url, is_active
		 FROM companies WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Company, 0)
	for rows.Next() {
		var it career.Company
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.LogoURL, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListPersonalities(ctx context.Context) ([]career.Personality, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(last_name, ''), image_url, is_active
		 FROM personalities WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Personality, 0)
	for rows.Next() {
		var it career.Personality
		if err := rows.Scan(&it.ID, &it.Name, &it.LastName, &it.ImageURL, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListInstitutes(ctx context.Context) ([]career.Institute, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(code, ''), name, institute_type_id, city_id,
			COALESCE(address_line, ''), COALESCE(postal_code, ''), image_url, is_active
		 FROM institutes WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Institute, 0)
	for rows.Next() {
		var it career.Institute
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.InstituteTypeID, &it.CityID,
			&it.AddressLine, &it.PostalCode, &it.ImageURL, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresReferenceRepository) ListExamTypes(ctx context.Context) ([]career.Lookup, error) {
	return r.listLookup(ctx, `SELECT id, name FROM exam_types ORDER BY id ASC`)
}

func (r *PostgresReferenceRepository) ListEducationLevels(ctx context.Context) ([]career.Lookup, error) {
	return r.listLookup(ctx, `SELECT id, name FROM education_levels ORDER BY id ASC`)
}

func (r *PostgresReferenceRepository) listLookup(ctx context.Context, query string) ([]career.Lookup, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]career.Lookup, 0)
	for rows.Next() {
		var it career.Lookup
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func nullableID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

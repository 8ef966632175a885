package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"
)

// InstituteDefaults fill in the location of institutes created without one,
// which is every institute the bulk upload creates.
type InstituteDefaults struct {
	CityID          int64
	InstituteTypeID int64
}

type ReferenceUsecase interface {
	CreateCareerCategory(ctx context.Context, in career.CareerCategory, userID int64) (int64, error)
	CreateSkillCategory(ctx context.Context, in career.SkillCategory, userID int64) (int64, error)
	CreateSkill(ctx context.Context, in career.Skill, userID int64) (int64, error)
	CreateExam(ctx context.Context, in career.Exam, userID int64) (int64, error)
	CreateCompany(ctx context.Context, in career.Company, logo *FileUpload, userID int64) (int64, error)
	CreatePersonality(ctx context.Context, in career.Personality, image *FileUpload, userID int64) (int64, error)
	CreateInstitute(ctx context.Context, in career.Institute, userID int64) (int64, error)
	FindByName(ctx context.Context, kind career.EntityKind, name string) (career.Reference, error)
	UpdateCategoryDescription(ctx context.Context, categoryID int64, html []byte, userID int64) (string, error)
}

type Reference struct {
	refs     repository.ReferenceRepository
	store    storage.ObjectStorage
	cache    CareerCache
	defaults InstituteDefaults
	log      *logger.Logger
}

func NewReferenceUsecase(refs repository.ReferenceRepository, store storage.ObjectStorage, c CareerCache, defaults InstituteDefaults, log *logger.Logger) *Reference {
	if store == nil {
		store = storage.Disabled{}
	}
	return &Reference{refs: refs, store: store, cache: c, defaults: defaults, log: log.With("usecase", "reference")}
}

func (u *Reference) CreateCareerCategory(ctx context.Context, in career.CareerCategory, userID int64) (int64, error) {
	return u.created(ctx)(u.createCareerCategory(ctx, in, userID))
}

func (u *Reference) CreateSkillCategory(ctx context.Context, in career.SkillCategory, userID int64) (int64, error) {
	return u.created(ctx)(u.createSkillCategory(ctx, in, userID))
}

func (u *Reference) CreateSkill(ctx context.Context, in career.Skill, userID int64) (int64, error) {
	return u.created(ctx)(u.createSkill(ctx, in, userID))
}

func (u *Reference) CreateExam(ctx context.Context, in career.Exam, userID int64) (int64, error) {
	return u.created(ctx)(u.createExam(ctx, in, userID))
}

func (u *Reference) CreateCompany(ctx context.Context, in career.Company, logo *FileUpload, userID int64) (int64, error) {
	if logo != nil && len(logo.Data) > 0 {
		if strings.TrimSpace(in.Name) == "" {
			return 0, ErrInvalidInput
		}
		url, err := u.store.Upload(ctx, storage.CategoryCompanyLogos, objectName(logo.Filename), bytes.NewReader(logo.Data), logo.ContentType)
		if err != nil {
			return 0, storageError(err)
		}
		in.LogoURL = &url
	}
	return u.created(ctx)(u.createCompany(ctx, in, userID))
}

func (u *Reference) CreatePersonality(ctx context.Context, in career.Personality, image *FileUpload, userID int64) (int64, error) {
	if image != nil && len(image.Data) > 0 {
		if strings.TrimSpace(in.Name) == "" {
			return 0, ErrInvalidInput
		}
		url, err := u.store.Upload(ctx, storage.CategoryPersonalityImages, objectName(image.Filename), bytes.NewReader(image.Data), image.ContentType)
		if err != nil {
			return 0, storageError(err)
		}
		in.ImageURL = &url
	}
	return u.created(ctx)(u.createPersonality(ctx, in, userID))
}

func (u *Reference) CreateInstitute(ctx context.Context, in career.Institute, userID int64) (int64, error) {
	return u.created(ctx)(u.createInstitute(ctx, in, userID))
}

// CreateByName is what the bulk upload resolves names with. It does not
// invalidate the cache; the upload does that once at the end.
func (u *Reference) CreateByName(ctx context.Context, kind career.EntityKind, name string, parentID *int64, userID int64) (int64, error) {
	switch kind {
	case career.KindCareerCategory:
		return u.createCareerCategory(ctx, career.CareerCategory{Name: name}, userID)
	case career.KindSkillCategory:
		return u.createSkillCategory(ctx, career.SkillCategory{Name: name, ParentID: parentID}, userID)
	case career.KindSkill:
		return u.createSkill(ctx, career.Skill{Name: name, CategoryID: parentID}, userID)
	case career.KindExam:
		return u.createExam(ctx, career.Exam{Name: name}, userID)
	case career.KindCompany:
		return u.createCompany(ctx, career.Company{Name: name}, userID)
	case career.KindPersonality:
		return u.createPersonality(ctx, career.Personality{Name: name}, userID)
	case career.KindInstitute:
		return u.createInstitute(ctx, career.Institute{Name: name}, userID)
	default:
		return 0, fmt.Errorf("%w: unknown reference kind %q", ErrInvalidInput, kind)
	}
}

func (u *Reference) FindByName(ctx context.Context, kind career.EntityKind, name string) (career.Reference, error) {
	name = strings.TrimSpace(name)
	if !kind.Valid() || name == "" {
		return career.Reference{}, ErrInvalidInput
	}
	ref, err := u.refs.FindActiveByName(ctx, kind, name)
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return career.Reference{}, ErrNotFound
		}
		return career.Reference{}, ErrInternal
	}
	return ref, nil
}

// UpdateCategoryDescription stores the category's HTML description as an
// object and records its URL.
func (u *Reference) UpdateCategoryDescription(ctx context.Context, categoryID int64, html []byte, userID int64) (string, error) {
	if categoryID <= 0 || len(bytes.TrimSpace(html)) == 0 {
		return "", ErrInvalidInput
	}
	name := "category-" + strconv.FormatInt(categoryID, 10) + ".html"
	url, err := u.store.Upload(ctx, storage.CategoryCategoryDescriptions, name, bytes.NewReader(html), "text/html; charset=utf-8")
	if err != nil {
		return "", storageError(err)
	}
	if err := u.refs.UpdateCategoryDescription(ctx, categoryID, url, userID); err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", ErrInternal
	}
	invalidate(ctx, u.cache, u.log)
	return url, nil
}

func (u *Reference) created(ctx context.Context) func(int64, error) (int64, error) {
	return func(id int64, err error) (int64, error) {
		if err != nil {
			return 0, err
		}
		invalidate(ctx, u.cache, u.log)
		return id, nil
	}
}

func (u *Reference) createCareerCategory(ctx context.Context, in career.CareerCategory, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("career category", in.Name)(u.refs.UpsertCareerCategory(ctx, in, userID))
}

func (u *Reference) createSkillCategory(ctx context.Context, in career.SkillCategory, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("skill category", in.Name)(u.refs.UpsertSkillCategory(ctx, in, userID))
}

func (u *Reference) createSkill(ctx context.Context, in career.Skill, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("skill", in.Name)(u.refs.UpsertSkill(ctx, in, userID))
}

func (u *Reference) createExam(ctx context.Context, in career.Exam, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("exam", in.Name)(u.refs.UpsertExam(ctx, in, userID))
}

func (u *Reference) createCompany(ctx context.Context, in career.Company, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("company", in.Name)(u.refs.UpsertCompany(ctx, in, userID))
}

func (u *Reference) createPersonality(ctx context.Context, in career.Personality, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	return u.upserted("personality", in.Name)(u.refs.UpsertPersonality(ctx, in, userID))
}

func (u *Reference) createInstitute(ctx context.Context, in career.Institute, userID int64) (int64, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return 0, ErrInvalidInput
	}
	if in.CityID == nil && u.defaults.CityID > 0 {
		city := u.defaults.CityID
		in.CityID = &city
	}
	if in.InstituteTypeID == nil && u.defaults.InstituteTypeID > 0 {
		typ := u.defaults.InstituteTypeID
		in.InstituteTypeID = &typ
	}
	return u.upserted("institute", in.Name)(u.refs.UpsertInstitute(ctx, in, userID))
}

func (u *Reference) upserted(what, name string) func(int64, error) (int64, error) {
	return func(id int64, err error) (int64, error) {
		if err != nil {
			u.log.Error("reference upsert failed", "kind", what, "name", name, "err", err)
			return 0, fmt.Errorf("create %s %q: %w: %w", what, name, ErrInternal, err)
		}
		return id, nil
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/pkg/logger"
)

func newReferenceFixture() (*Reference, *fakeRefRepo, *fakeCache, *fakeStore) {
	refs, c, store := newFakeRefRepo(), newFakeCache(), newFakeStore()
	uc := NewReferenceUsecase(refs, store, c, InstituteDefaults{CityID: 249, InstituteTypeID: 2}, logger.Nop())
	return uc, refs, c, store
}

func TestReferenceUsecase_CreateByName_DispatchesPerKind(t *testing.T) {
	uc, refs, c, _ := newReferenceFixture()
	ctx := context.Background()

	kinds := []career.EntityKind{
		career.KindCareerCategory, career.KindSkillCategory, career.KindSkill,
		career.KindExam, career.KindCompany, career.KindPersonality, career.KindInstitute,
	}
	for _, kind := range kinds {
		id, err := uc.CreateByName(ctx, kind, " Shared Name ", nil, 1)
		if err != nil || id <= 0 {
			t.Fatalf("%s: id=%d err=%v", kind, id, err)
		}
		if refs.count(kind) != 1 {
			t.Fatalf("%s: expected one row", kind)
		}
		if _, ok := refs.byName[kind]["Shared Name"]; !ok {
			t.Fatalf("%s: name should be trimmed", kind)
		}
	}
	if c.invalidated() != 0 {
		t.Fatalf("CreateByName must not invalidate, got %d", c.invalidated())
	}

	if _, err := uc.CreateByName(ctx, career.EntityKind("planet"), "Mars", nil, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReferenceUsecase_CreateByName_ReturnsExistingID(t *testing.T) {
	uc, _, _, _ := newReferenceFixture()
	ctx := context.Background()
	a, _ := uc.CreateByName(ctx, career.KindCompany, "Tata Motors", nil, 1)
	b, _ := uc.CreateByName(ctx, career.KindCompany, "Tata Motors", nil, 2)
	if a != b {
		t.Fatalf("expected same id, got %d and %d", a, b)
	}
}

func TestReferenceUsecase_CreateInstitute_AppliesDefaults(t *testing.T) {
	uc, refs, c, _ := newReferenceFixture()
	ctx := context.Background()

	if _, err := uc.CreateInstitute(ctx, career.Institute{Name: "IIT Bombay"}, 1); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := refs.institute["IIT Bombay"]
	if got.CityID == nil || *got.CityID != 249 || got.InstituteTypeID == nil || *got.InstituteTypeID != 2 {
		t.Fatalf("defaults not applied: %+v", got)
	}

	city := int64(7)
	if _, err := uc.CreateInstitute(ctx, career.Institute{Name: "NIT Trichy", CityID: &city}, 1); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if *refs.institute["NIT Trichy"].CityID != 7 {
		t.Fatalf("explicit city must win")
	}
	if c.invalidated() != 2 {
		t.Fatalf("expected an invalidation per create, got %d", c.invalidated())
	}
}

func TestReferenceUsecase_EmptyName(t *testing.T) {
	uc, _, _, _ := newReferenceFixture()
	ctx := context.Background()
	if _, err := uc.CreateExam(ctx, career.Exam{Name: "  "}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.CreateCompany(ctx, career.Company{}, &FileUpload{Filename: "l.png", Data: []byte("x")}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReferenceUsecase_RepositoryFailure(t *testing.T) {
	uc, refs, _, _ := newReferenceFixture()
	refs.upsertErr = errBoom
	_, err := uc.CreateSkill(context.Background(), career.Skill{Name: "Welding"}, 1)
	if !errors.Is(err, ErrInternal) || !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped ErrInternal, got %v", err)
	}
}

func TestReferenceUsecase_CreateCompany_UploadsLogo(t *testing.T) {
	uc, _, _, store := newReferenceFixture()
	_, err := uc.CreateCompany(context.Background(), career.Company{Name: "Mahindra"},
		&FileUpload{Filename: "logo.png", ContentType: "image/png", Data: []byte("png")}, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(store.uploads))
	}
}

func TestReferenceUsecase_CreatePersonality_StorageDisabled(t *testing.T) {
	uc := NewReferenceUsecase(newFakeRefRepo(), storage.Disabled{}, newFakeCache(), InstituteDefaults{}, logger.Nop())
	_, err := uc.CreatePersonality(context.Background(), career.Personality{Name: "APJ Abdul Kalam"},
		&FileUpload{Filename: "kalam.jpg", Data: []byte("jpg")}, 1)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestReferenceUsecase_FindByName(t *testing.T) {
	uc, _, _, _ := newReferenceFixture()
	ctx := context.Background()
	id, _ := uc.CreateByName(ctx, career.KindExam, "JEE Main", nil, 1)

	ref, err := uc.FindByName(ctx, career.KindExam, "JEE Main")
	if err != nil || ref.ID != id {
		t.Fatalf("expected %d, got %+v %v", id, ref, err)
	}
	if _, err := uc.FindByName(ctx, career.KindExam, "NEET"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.FindByName(ctx, career.EntityKind("x"), "NEET"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReferenceUsecase_UpdateCategoryDescription(t *testing.T) {
	uc, _, c, store := newReferenceFixture()
	ctx := context.Background()

	url, err := uc.UpdateCategoryDescription(ctx, 3, []byte("<p>Engineering</p>"), 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if url != "https://cdn.test/career-category-descriptions/category-3.html" {
		t.Fatalf("unexpected url %q", url)
	}
	if store.uploads["career-category-descriptions/category-3.html"] != "<p>Engineering</p>" {
		t.Fatalf("html not uploaded")
	}
	if c.invalidated() != 1 {
		t.Fatalf("expected invalidation")
	}

	if _, err := uc.UpdateCategoryDescription(ctx, 404, []byte("<p/>"), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := uc.UpdateCategoryDescription(ctx, 3, []byte("  "), 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

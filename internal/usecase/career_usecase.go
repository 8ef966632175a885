package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	ViewClient = "client"
	ViewAdmin  = "admin"
)

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CareerUsecase interface {
	CreateCareer(ctx context.Context, d career.Details, userID int64) (int64, error)
	UpdateCareer(ctx context.Context, d career.Details, userID int64) error
	DeactivateCareer(ctx context.Context, careerID, userID int64) error
	MarkCareerAsPopular(ctx context.Context, careerID, userID int64) (bool, error)
	GetCareerDetails(ctx context.Context, slug, view string) (career.CareerDetails, error)
	ListCareers(ctx context.Context, onlyActive bool) ([]career.Career, error)
	GetCategoryCareers(ctx context.Context, slug string) ([]career.CategoryCareer, error)
	GetMetadata(ctx context.Context) (career.Metadata, error)
	UploadYoutubeLinks(ctx context.Context, careerID int64, links []career.YoutubeLink, thumbnails map[int]FileUpload) ([]career.YoutubeLink, error)
	AddEducationPath(ctx context.Context, careerID int64, steps []career.EducationStep, srno int) error
}

type Career struct {
	careers repository.CareerRepository
	docs    repository.CareerDocumentRepository
	refs    repository.ReferenceRepository
	cache   CareerCache
	store   storage.ObjectStorage

	metadataTTL time.Duration
	log         *logger.Logger
}

func NewCareerUsecase(
	careers repository.CareerRepository,
	docs repository.CareerDocumentRepository,
	refs repository.ReferenceRepository,
	c CareerCache,
	store storage.ObjectStorage,
	metadataTTL time.Duration,
	log *logger.Logger,
) *Career {
	if store == nil {
		store = storage.Disabled{}
	}
	return &Career{
		careers:     careers,
		docs:        docs,
		refs:        refs,
		cache:       c,
		store:       store,
		metadataTTL: metadataTTL,
		log:         log.With("usecase", "career"),
	}
}

// CreateCareer writes the relational row and then the document. If the
// document write fails after a fresh insert, the row is deleted again.
func (u *Career) CreateCareer(ctx context.Context, d career.Details, userID int64) (int64, error) {
	id, err := u.createCareer(ctx, d, userID)
	if err != nil {
		return 0, err
	}
	invalidate(ctx, u.cache, u.log)
	return id, nil
}

// BulkSink is CreateCareer without the per-row cache invalidation; the
// bulk upload invalidates once when it finishes.
func (u *Career) BulkSink() pipeline.CareerSink {
	return &bulkCareerSink{u: u}
}

type bulkCareerSink struct {
	u *Career
}

func (s *bulkCareerSink) CreateCareer(ctx context.Context, d career.Details, userID int64) (int64, error) {
	return s.u.createCareer(ctx, d, userID)
}

func (u *Career) createCareer(ctx context.Context, d career.Details, userID int64) (int64, error) {
	d.CareerName = strings.TrimSpace(d.CareerName)
	if d.CareerName == "" {
		return 0, ErrInvalidInput
	}
	if strings.TrimSpace(d.JobTitle) == "" {
		d.JobTitle = d.CareerName
	}

	id, inserted, err := u.careers.Save(ctx, d, userID)
	if err != nil {
		return 0, fmt.Errorf("save career %q: %w: %w", d.CareerName, ErrInternal, err)
	}

	if err := u.docs.Upsert(ctx, d.Document(id)); err != nil {
		if !inserted {
			u.log.Error("career document write failed, relational row kept", "career_id", id, "err", err)
			return 0, fmt.Errorf("career %d updated but its document was not written: %w: %w", id, ErrInternal, err)
		}
		// the caller's context may already be cancelled
		if delErr := u.careers.Delete(context.WithoutCancel(ctx), id); delErr != nil {
			u.log.Error("career compensation failed", "career_id", id, "err", delErr)
			return 0, fmt.Errorf("career %d document write failed and rollback failed (%v): %w: %w", id, delErr, ErrInternal, err)
		}
		u.log.Warn("career rolled back after document write failure", "career_id", id, "err", err)
		return 0, fmt.Errorf("write career document: %w: %w", ErrInternal, err)
	}

	u.log.Debug("career saved", "career_id", id, "inserted", inserted, "user_id", userID)
	return id, nil
}

func (u *Career) UpdateCareer(ctx context.Context, d career.Details, userID int64) error {
	d.CareerName = strings.TrimSpace(d.CareerName)
	if d.CareerID <= 0 || d.CareerName == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(d.JobTitle) == "" {
		d.JobTitle = d.CareerName
	}

	if err := u.careers.Update(ctx, d, userID); err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update career %d: %w: %w", d.CareerID, ErrInternal, err)
	}
	if err := u.docs.Upsert(ctx, d.Document(d.CareerID)); err != nil {
		return fmt.Errorf("career %d updated but its document was not written: %w: %w", d.CareerID, ErrInternal, err)
	}

	invalidate(ctx, u.cache, u.log)
	return nil
}

func (u *Career) DeactivateCareer(ctx context.Context, careerID, userID int64) error {
	if careerID <= 0 {
		return ErrInvalidInput
	}
	if err := u.careers.Deactivate(ctx, careerID, userID); err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	invalidate(ctx, u.cache, u.log)
	return nil
}

func (u *Career) MarkCareerAsPopular(ctx context.Context, careerID, userID int64) (bool, error) {
	if careerID <= 0 {
		return false, ErrInvalidInput
	}
	popular, err := u.careers.TogglePopular(ctx, careerID, userID)
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, ErrInternal
	}
	invalidate(ctx, u.cache, u.log)
	return popular, nil
}

func (u *Career) GetCareerDetails(ctx context.Context, slug, view string) (career.CareerDetails, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return career.CareerDetails{}, ErrInvalidInput
	}

	c, err := u.careers.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return career.CareerDetails{}, ErrNotFound
		}
		return career.CareerDetails{}, ErrInternal
	}

	links, err := u.careers.GetLinks(ctx, c.ID)
	if err != nil {
		return career.CareerDetails{}, ErrInternal
	}

	out := career.CareerDetails{
		Career:        c,
		Skills:        links.Skills,
		Institutes:    links.Institutes,
		Exams:         links.Exams,
		Companies:     links.Companies,
		Personalities: links.Personalities,
	}

	doc, err := u.docs.Get(ctx, c.ID)
	switch {
	case err == nil:
		doc.EducationPath = shapeEducationPaths(doc.EducationPath, view == ViewClient)
		out.Document = &doc
	case errors.Is(err, career.ErrNotFound):
		u.log.Warn("career has no document", "career_id", c.ID)
	default:
		return career.CareerDetails{}, ErrInternal
	}
	return out, nil
}

// shapeEducationPaths sorts paths by srno. The client view also drops steps
// without a certification and paths left empty.
func shapeEducationPaths(paths []career.EducationPath, client bool) []career.EducationPath {
	out := make([]career.EducationPath, 0, len(paths))
	for _, p := range paths {
		if client {
			steps := make([]career.EducationStep, 0, len(p.Details))
			for _, s := range p.Details {
				if s.Certification.IsBlank() {
					continue
				}
				steps = append(steps, s)
			}
			if len(steps) == 0 {
				continue
			}
			p.Details = steps
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Srno < out[j].Srno })
	return out
}

func (u *Career) ListCareers(ctx context.Context, onlyActive bool) ([]career.Career, error) {
	items, err := u.careers.List(ctx, onlyActive)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Career) GetCategoryCareers(ctx context.Context, slug string) ([]career.CategoryCareer, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidInput
	}

	items, err := u.careers.ListByCategorySlug(ctx, slug)
	if err != nil {
		return nil, ErrInternal
	}
	ids := make([]int64, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.ID)
	}
	docs, err := u.docs.GetMany(ctx, ids)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]career.CategoryCareer, 0, len(items))
	for _, c := range items {
		cc := career.CategoryCareer{
			CareerID:  c.ID,
			Name:      c.Name,
			Slug:      c.Slug,
			IsPopular: c.IsPopular,
		}
		if doc, ok := docs[c.ID]; ok {
			cc.AvgSalary = doc.AvgSalary
			cc.ShortDescription = doc.ShortDescription
			cc.Description = doc.Description
			if len(doc.ExpectedRange) > 0 {
				first := doc.ExpectedRange[0]
				cc.ExpectedRange = &first
			}
		}
		out = append(out, cc)
	}
	return out, nil
}

// GetMetadata loads every picker list in parallel and caches the result.
func (u *Career) GetMetadata(ctx context.Context) (career.Metadata, error) {
	if u.cache != nil {
		var cached career.Metadata
		if hit, err := u.cache.GetJSON(ctx, cacheKeyMetadata, &cached); err == nil && hit {
			return cached, nil
		}
	}

	var md career.Metadata
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { md.CareerCategories, err = u.refs.ListCareerCategories(gctx); return })
	g.Go(func() (err error) { md.SkillCategories, err = u.refs.ListSkillCategories(gctx); return })
	g.Go(func() (err error) { md.Skills, err = u.refs.ListSkills(gctx); return })
	g.Go(func() (err error) { md.Institutes, err = u.refs.ListInstitutes(gctx); return })
	g.Go(func() (err error) { md.ExamTypes, err = u.refs.ListExamTypes(gctx); return })
	g.Go(func() (err error) { md.Exams, err = u.refs.ListExams(gctx); return })
	g.Go(func() (err error) { md.Companies, err = u.refs.ListCompanies(gctx); return })
	g.Go(func() (err error) { md.Personalities, err = u.refs.ListPersonalities(gctx); return })
	g.Go(func() (err error) { md.EducationLevels, err = u.refs.ListEducationLevels(gctx); return })
	if err := g.Wait(); err != nil {
		u.log.Error("metadata load failed", "err", err)
		return career.Metadata{}, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, cacheKeyMetadata, md, u.metadataTTL); err != nil {
			u.log.Warn("metadata cache write failed", "err", err)
		}
	}
	return md, nil
}

// UploadYoutubeLinks replaces the career's video list. thumbnails is keyed
// by the index of the link it belongs to.
func (u *Career) UploadYoutubeLinks(ctx context.Context, careerID int64, links []career.YoutubeLink, thumbnails map[int]FileUpload) ([]career.YoutubeLink, error) {
	if careerID <= 0 {
		return nil, ErrInvalidInput
	}
	out := make([]career.YoutubeLink, 0, len(links))
	for i, l := range links {
		l.Link = strings.TrimSpace(l.Link)
		if l.Link == "" {
			return nil, ErrInvalidInput
		}
		if f, ok := thumbnails[i]; ok && len(f.Data) > 0 {
			url, err := u.store.Upload(ctx, storage.CategoryYoutubeThumbnails, objectName(f.Filename), bytes.NewReader(f.Data), f.ContentType)
			if err != nil {
				return nil, storageError(err)
			}
			l.Image = &url
		}
		out = append(out, l)
	}

	if err := u.docs.SetYoutubeLinks(ctx, careerID, out); err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Career) AddEducationPath(ctx context.Context, careerID int64, steps []career.EducationStep, srno int) error {
	if careerID <= 0 || len(steps) == 0 {
		return ErrInvalidInput
	}
	err := u.docs.PushEducationPath(ctx, careerID, career.EducationPath{Details: steps, Srno: srno})
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

// objectName keeps the extension of the uploaded file and replaces the
// rest with a fresh id.
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(filename))
}

func storageError(err error) error {
	if errors.Is(err, storage.ErrNotConfigured) {
		return ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"

	"github.com/google/uuid"
)

type BulkUploadResult struct {
	UploadID string               `json:"uploadId"`
	Rows     []pipeline.RowResult `json:"rows"`
}

type BulkUploadUsecase interface {
	Upload(ctx context.Context, userID int64, data []byte) (BulkUploadResult, error)
	GetTemplate(ctx context.Context) (career.Template, error)
	UploadTemplate(ctx context.Context, file FileUpload, userID int64) (career.Template, error)
}

type BulkUpload struct {
	pipeline  *pipeline.CareerIngestionPipeline
	locker    UploadLocker
	cache     CareerCache
	templates repository.TemplateRepository
	store     storage.ObjectStorage
	lockTTL   time.Duration
	log       *logger.Logger
}

func NewBulkUploadUsecase(
	p *pipeline.CareerIngestionPipeline,
	locker UploadLocker,
	c CareerCache,
	templates repository.TemplateRepository,
	store storage.ObjectStorage,
	lockTTL time.Duration,
	log *logger.Logger,
) *BulkUpload {
	if store == nil {
		store = storage.Disabled{}
	}
	return &BulkUpload{
		pipeline:  p,
		locker:    locker,
		cache:     c,
		templates: templates,
		store:     store,
		lockTTL:   lockTTL,
		log:       log.With("usecase", "bulk_upload"),
	}
}

// Upload runs the ingestion pipeline over one spreadsheet. Only one upload
// per user runs at a time.
//
// A *pipeline.MalformedInputError or *pipeline.RowError is returned as is so
// the caller can report the reason and the failing row; Rows then holds what
// finished before the failure.
func (u *BulkUpload) Upload(ctx context.Context, userID int64, data []byte) (BulkUploadResult, error) {
	if userID <= 0 || len(data) == 0 {
		return BulkUploadResult{}, ErrInvalidInput
	}

	uploadID := uuid.NewString()
	lockKey := BulkUploadLockKey(userID)
	if u.locker != nil {
		ok, err := u.locker.AcquireLock(ctx, lockKey, uploadID, u.lockTTL)
		if err != nil {
			u.log.Error("bulk upload lock failed", "user_id", userID, "err", err)
			return BulkUploadResult{}, ErrServiceUnavailable
		}
		if !ok {
			return BulkUploadResult{}, ErrUploadInProgress
		}
		defer func() {
			if err := u.locker.ReleaseLock(context.WithoutCancel(ctx), lockKey, uploadID); err != nil {
				u.log.Warn("bulk upload lock release failed", "user_id", userID, "err", err)
			}
		}()
	}

	rows, err := u.pipeline.Run(ctx, pipeline.IngestRequest{UploadID: uploadID, UserID: userID, Data: data})
	var malformed *pipeline.MalformedInputError
	rejected := errors.As(err, &malformed)
	// Resolved references are committed before any career write, so a run
	// that failed on its first row can still have changed the metadata.
	if !rejected {
		invalidate(context.WithoutCancel(ctx), u.cache, u.log)
	}
	if rows == nil {
		rows = []pipeline.RowResult{}
	}
	res := BulkUploadResult{UploadID: uploadID, Rows: rows}
	if err != nil {
		var rowErr *pipeline.RowError
		if rejected || errors.As(err, &rowErr) {
			return res, err
		}
		return res, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return res, nil
}

func (u *BulkUpload) GetTemplate(ctx context.Context) (career.Template, error) {
	t, err := u.templates.Get(ctx, career.BulkUploadTemplateCode)
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			return career.Template{}, ErrNotFound
		}
		return career.Template{}, ErrInternal
	}
	return t, nil
}

// UploadTemplate replaces the downloadable template. The sheet must parse
// the same way an upload would.
func (u *BulkUpload) UploadTemplate(ctx context.Context, file FileUpload, userID int64) (career.Template, error) {
	if len(file.Data) == 0 {
		return career.Template{}, ErrInvalidInput
	}
	if _, err := pipeline.ReadSheet(file.Data); err != nil {
		return career.Template{}, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	name := career.BulkUploadTemplateCode + templateExt(file.Data)
	url, err := u.store.Upload(ctx, storage.CategoryTemplates, name, bytes.NewReader(file.Data), contentType)
	if err != nil {
		return career.Template{}, storageError(err)
	}
	if err := u.templates.Save(ctx, career.BulkUploadTemplateCode, url, userID); err != nil {
		return career.Template{}, ErrInternal
	}

	by := userID
	return career.Template{Code: career.BulkUploadTemplateCode, URL: url, LastUpdatedBy: &by}, nil
}

func templateExt(data []byte) string {
	if pipeline.IsWorkbook(data) {
		return ".xlsx"
	}
	return ".csv"
}

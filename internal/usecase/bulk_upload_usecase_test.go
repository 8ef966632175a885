package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/logger"

	"github.com/stretchr/testify/require"
)

type bulkFixture struct {
	careers   *fakeCareerRepo
	docs      *fakeDocRepo
	refs      *fakeRefRepo
	cache     *fakeCache
	store     *fakeStore
	templates *fakeTemplateRepo
	uc        *BulkUpload
}

func newBulkFixture() bulkFixture {
	f := bulkFixture{
		careers:   newFakeCareerRepo(),
		docs:      newFakeDocRepo(),
		refs:      newFakeRefRepo(),
		cache:     newFakeCache(),
		store:     newFakeStore(),
		templates: &fakeTemplateRepo{},
	}
	careers := NewCareerUsecase(f.careers, f.docs, f.refs, f.cache, f.store, time.Minute, logger.Nop())
	refs := NewReferenceUsecase(f.refs, f.store, f.cache, InstituteDefaults{CityID: 249, InstituteTypeID: 2}, logger.Nop())
	p := pipeline.NewCareerIngestionPipeline(refs, careers.BulkSink(), nil, nil, 2, logger.Nop())
	f.uc = NewBulkUploadUsecase(p, f.cache, f.cache, f.templates, f.store, time.Minute, logger.Nop())
	return f
}

const bulkCSV = "career_cluster,jobs,companies,colleges\n" +
	"Engineering,Mechanical Engineer,\"Tata Motors,Mahindra\",\"IIT Bombay, Mumbai\"\n" +
	"Engineering,Civil Engineer,Mahindra,\n"

func TestBulkUpload_CreatesCareers(t *testing.T) {
	f := newBulkFixture()

	res, err := f.uc.Upload(context.Background(), 7, []byte(bulkCSV))
	require.NoError(t, err)
	require.NotEmpty(t, res.UploadID)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "Mechanical Engineer", res.Rows[0].CareerName)
	require.NotZero(t, res.Rows[0].CareerID)
	require.Empty(t, res.Rows[0].Unresolved)

	require.Equal(t, 2, f.careers.count())
	require.Equal(t, 1, f.refs.count(career.KindCareerCategory))
	require.Equal(t, 2, f.refs.count(career.KindCompany))
	require.Equal(t, 1, f.refs.count(career.KindInstitute))
	require.Equal(t, int64(249), *f.refs.institute["IIT Bombay, Mumbai"].CityID)

	require.Equal(t, 1, f.cache.invalidated(), "one invalidation per upload")
	require.Empty(t, f.cache.locks, "lock must be released")
}

func TestBulkUpload_ReuploadDoesNotDuplicate(t *testing.T) {
	f := newBulkFixture()
	ctx := context.Background()

	_, err := f.uc.Upload(ctx, 7, []byte(bulkCSV))
	require.NoError(t, err)
	_, err = f.uc.Upload(ctx, 7, []byte(bulkCSV))
	require.NoError(t, err)

	require.Equal(t, 2, f.careers.count())
	require.Equal(t, 2, f.refs.count(career.KindCompany))
}

func TestBulkUpload_OneJobPerUser(t *testing.T) {
	f := newBulkFixture()
	f.cache.locks[BulkUploadLockKey(7)] = "other-upload"

	_, err := f.uc.Upload(context.Background(), 7, []byte(bulkCSV))
	require.ErrorIs(t, err, ErrUploadInProgress)
	require.Equal(t, 0, f.careers.count())

	_, err = f.uc.Upload(context.Background(), 8, []byte(bulkCSV))
	require.NoError(t, err, "other users are not blocked")
}

func TestBulkUpload_LockBackendDown(t *testing.T) {
	f := newBulkFixture()
	f.cache.lockErr = errBoom

	_, err := f.uc.Upload(context.Background(), 7, []byte(bulkCSV))
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestBulkUpload_MalformedSheet(t *testing.T) {
	f := newBulkFixture()

	_, err := f.uc.Upload(context.Background(), 7, []byte("jobs\nbad\x00row\n"))
	var malformed *pipeline.MalformedInputError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	require.Empty(t, f.cache.locks)
	require.Equal(t, 0, f.cache.invalidated(), "nothing was written")
}

func TestBulkUpload_PersistenceFailureReportsRow(t *testing.T) {
	f := newBulkFixture()
	f.careers.saveErr = errBoom

	_, err := f.uc.Upload(context.Background(), 7, []byte(bulkCSV))
	var rowErr *pipeline.RowError
	require.True(t, errors.As(err, &rowErr), "got %v", err)
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, f.cache.locks)
}

func TestBulkUpload_FailedRunStillInvalidatesMetadata(t *testing.T) {
	f := newBulkFixture()
	ctx := context.Background()
	require.NoError(t, f.cache.SetJSON(ctx, cacheKeyMetadata, career.Metadata{}, time.Minute))
	f.careers.saveErr = errBoom

	res, err := f.uc.Upload(ctx, 7, []byte(bulkCSV))
	require.Error(t, err)
	require.Empty(t, res.Rows)
	require.NotZero(t, f.refs.count(career.KindCompany), "references were committed before the failure")
	require.Equal(t, 1, f.cache.invalidated())

	var cached career.Metadata
	hit, err := f.cache.GetJSON(ctx, cacheKeyMetadata, &cached)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestBulkUpload_ReleasesOnlyItsOwnLock(t *testing.T) {
	f := newBulkFixture()
	key := BulkUploadLockKey(7)
	// the lock expires mid-run and another upload takes it over
	f.careers.onSave = func() {
		f.cache.mu.Lock()
		f.cache.locks[key] = "next-upload"
		f.cache.mu.Unlock()
	}

	res, err := f.uc.Upload(context.Background(), 7, []byte(bulkCSV))
	require.NoError(t, err)
	require.Equal(t, []string{res.UploadID}, f.cache.released)
	require.Equal(t, "next-upload", f.cache.locks[key], "the newer upload keeps its lock")
}

func TestBulkUpload_InvalidInput(t *testing.T) {
	f := newBulkFixture()
	_, err := f.uc.Upload(context.Background(), 0, []byte(bulkCSV))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.uc.Upload(context.Background(), 7, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBulkUpload_Template(t *testing.T) {
	f := newBulkFixture()
	ctx := context.Background()

	_, err := f.uc.GetTemplate(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	tpl, err := f.uc.UploadTemplate(ctx, FileUpload{Filename: "t.csv", Data: []byte("career_cluster,jobs\n")}, 3)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/templates/CAREERBULKTEMPFILE.csv", tpl.URL)
	require.Equal(t, career.BulkUploadTemplateCode, tpl.Code)

	got, err := f.uc.GetTemplate(ctx)
	require.NoError(t, err)
	require.Equal(t, tpl.URL, got.URL)
	require.Equal(t, int64(3), *got.LastUpdatedBy)
}

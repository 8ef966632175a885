package app

import (
	"context"
	"errors"
	"time"

	"i4e-backend/internal/config"
	"i4e-backend/internal/database"
	dbmongo "i4e-backend/internal/database/mongo"
	dbpostgres "i4e-backend/internal/database/postgres"
	"i4e-backend/internal/infrastructure/cache"
	"i4e-backend/internal/infrastructure/sms"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/infrastructure/thumbnail"
	"i4e-backend/internal/pipeline"
	"i4e-backend/internal/pkg/jwt"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"
	"i4e-backend/internal/usecase"
	ucauth "i4e-backend/internal/usecase/auth"
	"i4e-backend/internal/ws"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Container owns every connection and the usecases built on them.
type Container struct {
	Config config.Config
	Log    *logger.Logger

	DB          database.DB
	MongoClient *mongo.Client
	Redis       *cache.Redis
	Storage     storage.ObjectStorage
	JWT         jwt.Service
	Hub         *ws.Hub

	Careers      *usecase.Career
	References   *usecase.Reference
	BulkUpload   *usecase.BulkUpload
	Search       *usecase.Search
	Auth         *usecase.Auth
	Users        *usecase.User
	Transactions *usecase.Transactions

	closers []func() error
}

func NewContainer(ctx context.Context, cfg config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)

	mc, mdb, err := dbmongo.Connect(connectCtx, cfg.Mongo, log)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.MongoClient = mc
	c.closers = append(c.closers, func() error { return mc.Disconnect(context.Background()) })

	c.Redis = cache.NewRedis(cfg.Redis, log)
	c.closers = append(c.closers, c.Redis.Close)

	c.Storage = storage.Disabled{}
	gcs, err := storage.NewGCS(connectCtx, cfg.Storage, log)
	switch {
	case err == nil:
		c.Storage = gcs
		c.closers = append(c.closers, gcs.Close)
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("object storage disabled", "reason", "GCS_BUCKET not set")
	default:
		_ = c.Close()
		return nil, err
	}

	docs := repository.NewMongoCareerDocumentRepository(mdb.Collection(dbmongo.CareerLibraryCollection))
	if err := docs.EnsureIndexes(connectCtx); err != nil {
		log.Warn("career document indexes not ensured", "err", err)
	}
	careerRepo := repository.NewPostgresCareerRepository(db)
	refRepo := repository.NewPostgresReferenceRepository(db)
	templateRepo := repository.NewPostgresTemplateRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)
	txRepo := repository.NewMongoTransactionRepository(mdb.Collection(dbmongo.TransactionCollection))

	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.RefreshExpiresIn)
	c.Hub = ws.NewHub(log)

	c.Careers = usecase.NewCareerUsecase(careerRepo, docs, refRepo, c.Redis, c.Storage, cfg.Redis.TTL, log)
	c.References = usecase.NewReferenceUsecase(refRepo, c.Storage, c.Redis, usecase.InstituteDefaults{
		CityID:          cfg.Ingest.DefaultCityID,
		InstituteTypeID: cfg.Ingest.DefaultInstituteTypeID,
	}, log)
	c.Search = usecase.NewSearchUsecase(careerRepo, c.Redis, cfg.Redis.TTL, log)

	var thumbs pipeline.ThumbnailFetcher
	if cfg.Ingest.YoutubeThumbnails {
		thumbs = thumbnail.NewYoutubeFetcher(cfg.Ingest.ThumbnailTimeout, log)
	}
	ingest := pipeline.NewCareerIngestionPipeline(c.References, c.Careers.BulkSink(), thumbs, ws.NewNotifier(c.Hub), cfg.Ingest.Workers, log)
	c.BulkUpload = usecase.NewBulkUploadUsecase(ingest, c.Redis, c.Redis, templateRepo, c.Storage, cfg.Ingest.LockTTL, log)

	otp := ucauth.NewOTPService(c.Redis, sms.NewLogSender(log), ucauth.OTPConfig{
		Length:         cfg.OTP.Length,
		TTL:            cfg.OTP.TTL,
		MaxAttempts:    cfg.OTP.MaxAttempts,
		LockDuration:   cfg.OTP.LockDuration,
		MaxSendsPerDay: cfg.OTP.MaxSendsPerDay,
	})
	c.Auth = usecase.NewAuthUsecase(userRepo, c.JWT, otp, cfg.OTP.ExposeInReply, log)
	c.Users = usecase.NewUserUsecase(userRepo)
	c.Transactions = usecase.NewTransactionUsecase(txRepo, log)

	return c, nil
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

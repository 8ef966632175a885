package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"i4e-backend/internal/config"
	"i4e-backend/internal/pkg/logger"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Category string

const (
	CategoryTemplates            Category = "templates"
	CategoryCompanyLogos         Category = "company-logos"
	CategoryPersonalityImages    Category = "personality-images"
	CategoryCategoryDescriptions Category = "career-category-descriptions"
	CategoryYoutubeThumbnails    Category = "youtube-thumbnails"
)

var ErrNotConfigured = errors.New("object storage not configured")

// ObjectStorage uploads public assets and returns their URL.
type ObjectStorage interface {
	Upload(ctx context.Context, category Category, name string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, category Category, name string) error
}

type GCS struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
	log           *logger.Logger
}

func NewGCS(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*GCS, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNotConfigured
	}

	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	log.Info("object storage initialized", "bucket", cfg.Bucket, "public_base_url", cfg.PublicBaseURL)
	return &GCS{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:           log.With("service", "ObjectStorage"),
	}, nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}

func objectKey(category Category, name string) string {
	return path.Join(string(category), path.Base("/"+name))
}

func (s *GCS) Upload(ctx context.Context, category Category, name string, body io.Reader, contentType string) (string, error) {
	key := objectKey(category, name)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "no-cache"
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}

	s.log.Info("object uploaded", "key", key, "content_type", contentType)
	return s.PublicURL(category, name), nil
}

func (s *GCS) Delete(ctx context.Context, category Category, name string) error {
	err := s.client.Bucket(s.bucket).Object(objectKey(category, name)).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCS) PublicURL(category Category, name string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectKey(category, name))
}

// Disabled rejects every upload. It stands in when no bucket is configured
// so that the rest of the API keeps working.
type Disabled struct{}

func (Disabled) Upload(context.Context, Category, string, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, Category, string) error {
	return ErrNotConfigured
}

package usecase

import (
	"context"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/pkg/logger"
	"i4e-backend/internal/repository"
	"i4e-backend/internal/search"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	autocompleteLimit  = 5
	candidateFactor    = 4
)

type CareerSearchItem struct {
	CareerID     int64    `json:"careerId"`
	Name         string   `json:"careerName"`
	Slug         string   `json:"slugUrl"`
	CategoryName string   `json:"careerCategoryName"`
	OtherNames   []string `json:"otherNames"`
	IsPopular    bool     `json:"isPopular"`
}

type SearchUsecase interface {
	Search(ctx context.Context, q string, limit int) ([]CareerSearchItem, error)
	Autocomplete(ctx context.Context, q string) ([]string, error)
}

type Search struct {
	careers repository.CareerRepository
	cache   CareerCache
	ttl     time.Duration
	log     *logger.Logger
}

func NewSearchUsecase(careers repository.CareerRepository, c CareerCache, ttl time.Duration, log *logger.Logger) *Search {
	return &Search{careers: careers, cache: c, ttl: ttl, log: log.With("usecase", "search")}
}

func (u *Search) Search(ctx context.Context, q string, limit int) ([]CareerSearchItem, error) {
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 0 || limit > maxSearchLimit {
		return nil, ErrInvalidInput
	}

	qc := search.ProcessQuery(q)
	if qc.Normalized == "" {
		return []CareerSearchItem{}, nil
	}

	key := CareerSearchCacheKey(qc.Normalized, limit)
	var cached []CareerSearchItem
	if u.readCache(ctx, key, &cached) {
		return cached, nil
	}

	ranked, err := u.rank(ctx, qc, limit)
	if err != nil {
		return nil, err
	}
	out := make([]CareerSearchItem, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, CareerSearchItem{
			CareerID:     c.ID,
			Name:         c.Name,
			Slug:         c.Slug,
			CategoryName: c.CategoryName,
			OtherNames:   c.OtherNames,
			IsPopular:    c.IsPopular,
		})
	}

	u.writeCache(ctx, key, out)
	return out, nil
}

func (u *Search) Autocomplete(ctx context.Context, q string) ([]string, error) {
	qc := search.ProcessQuery(q)
	if qc.Normalized == "" {
		return []string{}, nil
	}

	key := AutocompleteCacheKey(qc.Normalized)
	var cached []string
	if u.readCache(ctx, key, &cached) {
		return cached, nil
	}

	ranked, err := u.rank(ctx, qc, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.Name)
	}

	u.writeCache(ctx, key, out)
	return out, nil
}

func (u *Search) rank(ctx context.Context, qc search.QueryContext, limit int) ([]career.Career, error) {
	start := time.Now()
	candidates, err := u.careers.SearchCandidates(ctx, qc.Terms(), limit*candidateFactor)
	if err != nil {
		u.log.Error("career search failed", "q", qc.Normalized, "err", err)
		return nil, ErrInternal
	}
	ranked := search.RankCareers(candidates, qc.Variants)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	u.log.Debug("career search", "q", qc.Normalized, "variants", len(qc.Variants), "candidates", len(candidates), "results", len(ranked), "duration", time.Since(start))
	return ranked, nil
}

func (u *Search) readCache(ctx context.Context, key string, out any) bool {
	if u.cache == nil {
		return false
	}
	hit, err := u.cache.GetJSON(ctx, key, out)
	if err != nil {
		u.log.Warn("search cache read failed", "key", key, "err", err)
		return false
	}
	return hit
}

func (u *Search) writeCache(ctx context.Context, key string, value any) {
	if u.cache == nil {
		return
	}
	if err := u.cache.SetJSON(ctx, key, value, u.ttl); err != nil {
		u.log.Warn("search cache write failed", "key", key, "err", err)
	}
}

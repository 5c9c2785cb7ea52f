package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/pictocat/pictocat/internal/rewards"
)

const cacheKey = "catalog:v1"

//go:embed seed.json
var masterCatalog []byte

// MasterCatalog decodes the catalog shipped with the binary.
func MasterCatalog() ([]SeedImage, error) {
	var images []SeedImage
	if err := json.Unmarshal(masterCatalog, &images); err != nil {
		return nil, fmt.Errorf("decode master catalog: %w", err)
	}
	return images, nil
}

// Service serves the immutable image catalog, cached in Redis when available.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds a catalog service. cache may be nil.
func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns the full catalog ordered by id.
func (s *Service) List(ctx context.Context) ([]rewards.Image, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var images []rewards.Image
			decodeErr := json.Unmarshal(cached, &images)
			if decodeErr == nil {
				return images, nil
			}
			s.logger.Warn("catalog cache entry unreadable", slog.Any("error", decodeErr))
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("catalog cache lookup failed", slog.Any("error", err))
		}
	}

	// concurrent misses share one database read
	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]rewards.Image), nil
}

func (s *Service) load(ctx context.Context) ([]rewards.Image, error) {
	images, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(images) > 0 {
		payload, err := json.Marshal(images)
		if err == nil {
			err = s.cache.Set(ctx, cacheKey, payload, s.ttl).Err()
		}
		if err != nil {
			s.logger.Warn("catalog cache store failed", slog.Any("error", err))
		}
	}
	return images, nil
}

// StarterIDs returns the ids of the first n catalog images.
func (s *Service) StarterIDs(n int) func(ctx context.Context) ([]int, error) {
	return func(ctx context.Context) ([]int, error) {
		images, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		limit := min(n, len(images))
		ids := make([]int, 0, limit)
		for _, img := range images[:limit] {
			ids = append(ids, img.ID)
		}
		return ids, nil
	}
}

// Seed inserts the images that are not yet present, keyed by original id,
// and drops the cached catalog when anything changed.
func (s *Service) Seed(ctx context.Context, images []SeedImage) (SeedResult, error) {
	existing, err := s.repo.OriginalIDs(ctx)
	if err != nil {
		return SeedResult{}, err
	}

	inserted := 0
	for _, img := range images {
		if _, ok := existing[img.OriginalID]; ok {
			continue
		}
		if err := s.repo.Insert(ctx, img); err != nil {
			return SeedResult{}, fmt.Errorf("insert %s: %w", img.OriginalID, err)
		}
		existing[img.OriginalID] = struct{}{}
		inserted++
	}

	if inserted > 0 && s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Warn("catalog cache invalidation failed", slog.Any("error", err))
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	s.logger.Info("catalog seeded", slog.Int("inserted", inserted), slog.Int("total", total))
	return SeedResult{Inserted: inserted, Total: total}, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinPanel/internal/domain/models"
	drepo "FinPanel/internal/domain/repository"
)

const keyPrefix = "finpanel:series"

// SeriesCache stores raw series as JSON in any BytesCache.
type SeriesCache struct {
	backend BytesCache
	ttl     time.Duration
}

func NewSeriesCache(backend BytesCache, ttl time.Duration) drepo.SeriesCache {
	return &SeriesCache{backend: backend, ttl: ttl}
}

// Key identifies a series by source and the full column mapping so a
// changed mapping never reads a stale entry.
func Key(spec models.SeriesSpec) string {
	return strings.Join([]string{
		keyPrefix,
		spec.Source,
		spec.RemoteRef(),
		spec.ID,
		spec.DateColumn,
		strings.Join(spec.ValueColumns, "|"),
	}, ":")
}

func (c *SeriesCache) Get(ctx context.Context, key string) (*models.RawSeries, bool, error) {
	b, ok, err := c.backend.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var s models.RawSeries
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false, fmt.Errorf("decode cached series %s: %w", key, err)
	}
	return &s, true, nil
}

func (c *SeriesCache) Set(ctx context.Context, key string, s *models.RawSeries) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", s.ID, err)
	}
	return c.backend.SetBytes(ctx, key, b, c.ttl)
}

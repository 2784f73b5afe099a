package service

import (
	"context"
	"errors"
	"time"

	"github.com/timetable-ace/scheduler-api/internal/models"
	appErrors "github.com/timetable-ace/scheduler-api/pkg/errors"
)

const committedTimetableKey = "timetable:committed"

// cacheStore is the slice of the cache repository this service consumes.
type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// cacheMetrics records hit and miss counts. Nil disables instrumentation.
type cacheMetrics interface {
	IncCacheHit()
	IncCacheMiss()
}

// SnapshotCacheService mirrors the committed timetable into Redis so read
// endpoints can answer without taking the override engine's locks.
type SnapshotCacheService struct {
	store   cacheStore
	metrics cacheMetrics
	ttl     time.Duration
}

// NewSnapshotCacheService constructs the snapshot cache.
func NewSnapshotCacheService(store cacheStore, metrics cacheMetrics, ttl time.Duration) *SnapshotCacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SnapshotCacheService{store: store, metrics: metrics, ttl: ttl}
}

// SetCommitted stores the committed result under the snapshot key.
func (s *SnapshotCacheService) SetCommitted(ctx context.Context, result models.GenerationResult) error {
	return s.store.Set(ctx, committedTimetableKey, result, s.ttl)
}

// GetCommitted loads the cached committed result. ErrCacheMiss means the
// caller must fall back to the override engine.
func (s *SnapshotCacheService) GetCommitted(ctx context.Context) (models.GenerationResult, error) {
	var result models.GenerationResult
	if err := s.store.Get(ctx, committedTimetableKey, &result); err != nil {
		if s.metrics != nil && errors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.IncCacheMiss()
		}
		return models.GenerationResult{}, err
	}
	if s.metrics != nil {
		s.metrics.IncCacheHit()
	}
	return result, nil
}

// InvalidateCommitted drops the cached snapshot.
func (s *SnapshotCacheService) InvalidateCommitted(ctx context.Context) error {
	return s.store.Delete(ctx, committedTimetableKey)
}

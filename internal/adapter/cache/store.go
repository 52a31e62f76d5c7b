// Package cache provides an in-memory LRU decorator for building stores.
package cache

import (
	"context"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Store wraps a BuildingStore with a write-through LRU cache keyed by
// building name and year. Returned buildings share slices with the cache and
// must be treated as read-only.
type Store struct {
	inner   domain.BuildingStore
	cache   *lru.Cache[buildingKey, domain.Building] // nil when caching is off
	metrics *observability.Metrics
}

type buildingKey struct {
	name, year string
}

// NewStore creates a cache decorator around a building store. maxEntries <= 0
// disables caching.
func NewStore(inner domain.BuildingStore, maxEntries int, metrics *observability.Metrics) *Store {
	s := &Store{inner: inner, metrics: metrics}
	if maxEntries > 0 {
		// New only fails for a non-positive size.
		s.cache, _ = lru.New[buildingKey, domain.Building](maxEntries)
	}
	return s
}

func (s *Store) FindBuilding(ctx context.Context, name, year string) (domain.Building, error) {
	key := buildingKey{name, year}
	if s.cache != nil {
		if b, ok := s.cache.Get(key); ok {
			s.metrics.StoreCache.WithLabelValues("hit").Inc()
			return b, nil
		}
	}
	s.metrics.StoreCache.WithLabelValues("miss").Inc()

	b, err := s.inner.FindBuilding(ctx, name, year)
	if err != nil {
		// Not-found is not cached so a building created elsewhere is picked up.
		return b, err
	}
	if s.cache != nil {
		s.cache.Add(key, b)
	}
	return b, nil
}

func (s *Store) SaveBuilding(ctx context.Context, b domain.Building) error {
	key := buildingKey{b.Name, b.Year}
	err := s.inner.SaveBuilding(ctx, b)
	if s.cache == nil {
		return err
	}
	if err != nil {
		s.cache.Remove(key)
		return err
	}
	s.cache.Add(key, b)
	return nil
}

// Len returns the number of cached buildings.
func (s *Store) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

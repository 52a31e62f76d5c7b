// Package redisstore keeps building documents in Redis as JSON strings.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/go-redis/redis/v8"
)

// Store is a domain.BuildingStore backed by Redis.
type Store struct {
	client *redis.Client
	appID  string
}

// NewClient opens a Redis client. The connection is established lazily.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewStore creates a store that namespaces keys under the given app id.
func NewStore(client *redis.Client, appID string) *Store {
	return &Store{client: client, appID: appID}
}

// Key returns the Redis key of a building document.
func (s *Store) Key(name, year string) string {
	return fmt.Sprintf("apps:%s:buildings:%s:%s", s.appID, name, year)
}

func (s *Store) FindBuilding(ctx context.Context, name, year string) (domain.Building, error) {
	data, err := s.client.Get(ctx, s.Key(name, year)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Building{}, domain.ErrBuildingNotFound
	}
	if err != nil {
		return domain.Building{}, fmt.Errorf("redis get: %w", err)
	}

	var b domain.Building
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Building{}, fmt.Errorf("decode building %s: %w", name, err)
	}
	return b, nil
}

func (s *Store) SaveBuilding(ctx context.Context, b domain.Building) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode building %s: %w", b.Name, err)
	}
	if err := s.client.Set(ctx, s.Key(b.Name, b.Year), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CheckReadiness pings the server.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Package buildingstore opens the building document store selected by
// STORE_BACKEND.
package buildingstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/firestore"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/postgres"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/redisstore"
	"github.com/couchcryptid/fire-inspection-etl/internal/config"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Handle is an open building store.
type Handle struct {
	domain.BuildingStore
	Backend string

	ready sharedobs.ReadinessChecker
	close func() error
}

// CheckReadiness checks the backend connection. Backends without a
// connection to check are always ready.
func (h *Handle) CheckReadiness(ctx context.Context) error {
	if h.ready == nil {
		return nil
	}
	return h.ready.CheckReadiness(ctx)
}

// Close releases the backend connection.
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Open connects to the configured backend. It returns a nil Handle when
// STORE_BACKEND is none.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client := firestore.NewClient(firestore.Options{
			Project: cfg.FirestoreProject,
			APIKey:  cfg.FirestoreAPIKey,
			AppID:   cfg.FirestoreAppID,
			Timeout: cfg.FirestoreTimeout,
		}, logger)
		return &Handle{BuildingStore: client, Backend: cfg.StoreBackend}, nil

	case config.BackendRedis:
		s := redisstore.NewStore(redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.FirestoreAppID)
		return &Handle{BuildingStore: s, Backend: cfg.StoreBackend, ready: s, close: s.Close}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s := postgres.NewStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Handle{BuildingStore: s, Backend: cfg.StoreBackend, ready: s, close: db.Close}, nil

	case config.BackendNone, "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

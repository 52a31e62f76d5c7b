package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/observability"
	"github.com/google/uuid"
)

// Populator merges parsed reports into the building documents of one
// inspection year. It implements BatchLoader.
type Populator struct {
	store         domain.BuildingStore
	year          string
	createMissing bool
	logger        *slog.Logger
	metrics       *observability.Metrics

	updated  atomic.Int64
	created  atomic.Int64
	notFound atomic.Int64
}

// PopulateStats counts populator outcomes since it was created. Updated
// includes created buildings.
type PopulateStats struct {
	Updated  int
	Created  int
	NotFound int
}

// PopulatorOption customizes a Populator.
type PopulatorOption func(*Populator)

// WithCreateMissing makes the populator create a building document when none
// exists for a report's building instead of skipping the report.
func WithCreateMissing(create bool) PopulatorOption {
	return func(p *Populator) {
		p.createMissing = create
	}
}

// NewPopulator creates a Populator writing to store for the given year.
func NewPopulator(store domain.BuildingStore, year string, logger *slog.Logger, metrics *observability.Metrics, opts ...PopulatorOption) *Populator {
	p := &Populator{
		store:   store,
		year:    year,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadBatch merges each report into its building. Missing buildings are
// counted and skipped unless creation is enabled. Store failures abort the
// batch.
func (p *Populator) LoadBatch(ctx context.Context, reports []domain.InspectionReport) error {
	for _, r := range reports {
		if err := p.populate(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (p *Populator) populate(ctx context.Context, r domain.InspectionReport) error {
	b, err := p.find(ctx, r.BuildingName)
	created := false
	switch {
	case errors.Is(err, domain.ErrBuildingNotFound):
		if !p.createMissing {
			p.logger.Warn("building not found, skipping report",
				"building", r.BuildingName, "year", p.year, "source_id", r.SourceID)
			p.metrics.BuildingsNotFound.Inc()
			p.notFound.Add(1)
			return nil
		}
		b = domain.NewBuilding(uuid.NewString(), r.BuildingName, p.year)
		created = true
		p.logger.Info("creating building", "building", r.BuildingName, "year", p.year, "id", b.ID)
	case err != nil:
		return fmt.Errorf("find building %q: %w", r.BuildingName, err)
	}

	merged := domain.MergeReport(b, r, domain.Now())
	if err := p.save(ctx, merged); err != nil {
		return fmt.Errorf("save building %q: %w", r.BuildingName, err)
	}

	p.metrics.BuildingsUpdated.Inc()
	p.updated.Add(1)
	if created {
		p.created.Add(1)
	}
	p.logger.Info("building updated",
		"building", merged.Name,
		"id", merged.ID,
		"devices", len(r.FireAlarmDevices),
		"emergency_lights", len(r.EmergencyLights),
		"notes", len(r.Notes),
	)
	return nil
}

// Stats returns the outcome counts so far.
func (p *Populator) Stats() PopulateStats {
	return PopulateStats{
		Updated:  int(p.updated.Load()),
		Created:  int(p.created.Load()),
		NotFound: int(p.notFound.Load()),
	}
}

func (p *Populator) find(ctx context.Context, name string) (domain.Building, error) {
	start := time.Now()
	b, err := p.store.FindBuilding(ctx, name, p.year)
	p.metrics.StoreDuration.WithLabelValues("find").Observe(time.Since(start).Seconds())
	p.metrics.StoreRequests.WithLabelValues("find", outcome(err)).Inc()
	return b, err
}

func (p *Populator) save(ctx context.Context, b domain.Building) error {
	start := time.Now()
	err := p.store.SaveBuilding(ctx, b)
	p.metrics.StoreDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	p.metrics.StoreRequests.WithLabelValues("save", outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrBuildingNotFound):
		return "not_found"
	default:
		return "error"
	}
}

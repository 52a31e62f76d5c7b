package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/observability"
)

// ReportTransformer implements Transformer with a domain.Parser.
type ReportTransformer struct {
	parser  *domain.Parser
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ReportTransformer. A nil parser uses the built-in
// building table and default line limit.
func NewTransformer(parser *domain.Parser, metrics *observability.Metrics, logger *slog.Logger) *ReportTransformer {
	if parser == nil {
		parser = domain.NewParser()
	}
	return &ReportTransformer{
		parser:  parser,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawReport) (domain.InspectionReport, error) {
	report, err := t.parser.Parse(string(raw.Value), raw.SourceID())
	if err != nil {
		return domain.InspectionReport{}, err
	}

	t.metrics.DevicesExtracted.Add(float64(len(report.FireAlarmDevices)))
	t.metrics.EmergencyLightsExtracted.Add(float64(len(report.EmergencyLights)))
	t.metrics.NotesExtracted.Add(float64(len(report.Notes)))

	t.logger.Debug("report parsed",
		"source_id", report.SourceID,
		"building", report.BuildingName,
		"devices", len(report.FireAlarmDevices),
		"emergency_lights", len(report.EmergencyLights),
		"notes", len(report.Notes),
	)
	return report, nil
}

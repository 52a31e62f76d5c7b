package pipeline

import (
	"context"
	"errors"
	"runtime"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BatchParser parses a set of reports concurrently. It is used by the
// one-shot CLI where the whole report set is available up front.
type BatchParser struct {
	parser  *domain.Parser
	workers int
}

// NewBatchParser creates a BatchParser. workers <= 0 uses GOMAXPROCS.
func NewBatchParser(parser *domain.Parser, workers int) *BatchParser {
	if parser == nil {
		parser = domain.NewParser()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BatchParser{parser: parser, workers: workers}
}

// Failure records a report that could not be parsed.
type Failure struct {
	SourceID string
	Err      error
}

// ReportStats is the per-building line of a batch summary.
type ReportStats struct {
	BuildingName    string `json:"buildingName"`
	SourceID        string `json:"sourceId"`
	Devices         int    `json:"devices"`
	EmergencyLights int    `json:"emergencyLights"`
	Notes           int    `json:"notes"`
}

// Summary aggregates a finished batch.
type Summary struct {
	Total           int           `json:"total"`
	Parsed          int           `json:"parsed"`
	Unresolved      int           `json:"unresolved"`
	Failed          int           `json:"failed"`
	Devices         int           `json:"devices"`
	EmergencyLights int           `json:"emergencyLights"`
	Notes           int           `json:"notes"`
	Reports         []ReportStats `json:"reports"`
}

// BatchResult holds the outcome of ParseAll. Reports, Unresolved and Failures
// keep the order of the input.
type BatchResult struct {
	Reports    []domain.InspectionReport
	Unresolved []string
	Failures   []Failure
	Summary    Summary
}

type parseOutcome struct {
	report domain.InspectionReport
	err    error
}

// ParseAll parses every raw report. Individual parse failures are collected
// in the result; only context cancellation returns an error.
func (b *BatchParser) ParseAll(ctx context.Context, raws []domain.RawReport) (BatchResult, error) {
	outcomes := make([]parseOutcome, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := b.parser.Parse(string(raw.Value), raw.SourceID())
			outcomes[i] = parseOutcome{report: report, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Reports: make([]domain.InspectionReport, 0, len(raws))}
	for i, o := range outcomes {
		sourceID := raws[i].SourceID()
		switch {
		case o.err == nil:
			res.Reports = append(res.Reports, o.report)
		case errors.Is(o.err, domain.ErrUnresolvedBuildingName):
			res.Unresolved = append(res.Unresolved, sourceID)
		default:
			res.Failures = append(res.Failures, Failure{SourceID: sourceID, Err: o.err})
		}
	}
	res.Summary = summarize(len(raws), res)
	return res, nil
}

func summarize(total int, res BatchResult) Summary {
	s := Summary{
		Total:      total,
		Parsed:     len(res.Reports),
		Unresolved: len(res.Unresolved),
		Failed:     len(res.Failures),
		Reports:    make([]ReportStats, 0, len(res.Reports)),
	}
	for _, r := range res.Reports {
		s.Devices += len(r.FireAlarmDevices)
		s.EmergencyLights += len(r.EmergencyLights)
		s.Notes += len(r.Notes)
		s.Reports = append(s.Reports, ReportStats{
			BuildingName:    r.BuildingName,
			SourceID:        r.SourceID,
			Devices:         len(r.FireAlarmDevices),
			EmergencyLights: len(r.EmergencyLights),
			Notes:           len(r.Notes),
		})
	}
	return s
}

// Command parsereports parses a directory of plain-text fire inspection
// reports and writes the structured results as JSON and, optionally, as an
// Excel workbook. It uses the same parser as the ETL service.
//
// With -populate the parsed reports are merged into the building documents
// of the store selected by STORE_BACKEND. With -publish they are written to
// KAFKA_SINK_TOPIC. Both read the service's environment configuration.
//
// Usage:
//
//	go run ./cmd/parsereports \
//	  -dir data/reports/2025 \
//	  -out parsed-2025-data.json \
//	  -xlsx parsed-2025-data.xlsx
//
//	STORE_BACKEND=firestore FIRESTORE_PROJECT=... \
//	  go run ./cmd/parsereports -dir data/reports/2025 -out parsed.json -populate
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/buildingstore"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/reportdir"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/fire-inspection-etl/internal/config"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/observability"
	"github.com/couchcryptid/fire-inspection-etl/internal/pipeline"
)

// output is the JSON document written to -out.
type output struct {
	Summary pipeline.Summary          `json:"summary"`
	Reports []domain.InspectionReport `json:"reports"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("parsereports", flag.ContinueOnError)
	dir := fs.String("dir", "", "directory containing .txt inspection reports")
	out := fs.String("out", "", "output path for parsed JSON")
	xlsxOut := fs.String("xlsx", "", "optional output path for an Excel summary")
	buildings := fs.String("buildings", "", "optional YAML building name map (defaults to the built-in table)")
	workers := fs.Int("workers", 0, "parse concurrency (0 = GOMAXPROCS)")
	maxLines := fs.Int("max-lines", domain.DefaultMaxReportLines, "reject reports with more lines than this")
	populate := fs.Bool("populate", false, "merge parsed reports into building documents (STORE_BACKEND)")
	publish := fs.Bool("publish", false, "publish parsed reports to Kafka (KAFKA_SINK_TOPIC)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *out == "" {
		fs.Usage()
		return errors.New("missing required flags: -dir, -out")
	}

	opts := []domain.ParserOption{domain.WithMaxLines(*maxLines)}
	if *buildings != "" {
		names, err := domain.LoadBuildingNameMap(*buildings)
		if err != nil {
			return fmt.Errorf("load building names: %w", err)
		}
		opts = append(opts, domain.WithBuildingNameMap(names))
	}

	raws, err := reportdir.Scan(*dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Found %d reports in %s\n\n", len(raws), *dir)

	res, err := pipeline.NewBatchParser(domain.NewParser(opts...), *workers).ParseAll(ctx, raws)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, output{Summary: res.Summary, Reports: res.Reports}); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if *xlsxOut != "" {
		if err := xlsx.WriteSummary(*xlsxOut, res.Reports); err != nil {
			return err
		}
	}

	printSummary(stdout, res)
	fmt.Fprintf(stdout, "\nSaved parsed data to: %s\n", *out)
	if *xlsxOut != "" {
		fmt.Fprintf(stdout, "Saved workbook to: %s\n", *xlsxOut)
	}

	if !*populate && !*publish {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	if *populate {
		if err := populateBuildings(ctx, cfg, res.Reports, stdout, logger); err != nil {
			return err
		}
	}
	if *publish {
		if err := publishReports(ctx, cfg, res.Reports, stdout, logger); err != nil {
			return err
		}
	}
	return nil
}

func populateBuildings(ctx context.Context, cfg *config.Config, reports []domain.InspectionReport, stdout io.Writer, logger *slog.Logger) error {
	store, err := buildingstore.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open building store: %w", err)
	}
	if store == nil {
		return errors.New("-populate requires STORE_BACKEND to be firestore, redis or postgres")
	}
	defer store.Close()

	rule := strings.Repeat("=", 70)
	fmt.Fprintf(stdout, "\n%s\nUPDATING %s BUILDINGS WITH INSPECTION DATA (%s)\n%s\n", rule, cfg.InspectionYear, store.Backend, rule)

	p := pipeline.NewPopulator(store, cfg.InspectionYear, logger, observability.NewUnregisteredMetrics(),
		pipeline.WithCreateMissing(cfg.PopulateCreateMissing))
	for _, r := range reports {
		before := p.Stats().Updated
		if err := p.LoadBatch(ctx, []domain.InspectionReport{r}); err != nil {
			return err
		}
		if p.Stats().Updated > before {
			fmt.Fprintf(stdout, "Updating: %s\n", r.BuildingName)
		}
	}

	st := p.Stats()
	fmt.Fprintf(stdout, "\n%s\nCOMPLETE! Updated: %d, Skipped: %d", rule, st.Updated, st.NotFound)
	if st.Created > 0 {
		fmt.Fprintf(stdout, " (created %d)", st.Created)
	}
	fmt.Fprintf(stdout, "\n%s\n", rule)
	return nil
}

func publishReports(ctx context.Context, cfg *config.Config, reports []domain.InspectionReport, stdout io.Writer, logger *slog.Logger) error {
	if len(reports) == 0 {
		fmt.Fprintln(stdout, "\nNo reports to publish")
		return nil
	}
	w := kafka.NewWriter(cfg, logger)
	defer w.Close()

	if err := w.LoadBatch(ctx, reports); err != nil {
		return fmt.Errorf("publish reports: %w", err)
	}
	fmt.Fprintf(stdout, "\nPublished %d reports to %s\n", len(reports), cfg.KafkaSinkTopic)
	return nil
}

func printSummary(w io.Writer, res pipeline.BatchResult) {
	fmt.Fprintln(w, "=== Building Data Summary ===")
	for _, r := range res.Summary.Reports {
		fmt.Fprintf(w, "\n%s\n", r.BuildingName)
		fmt.Fprintf(w, "   File: %s\n", r.SourceID)
		fmt.Fprintf(w, "   Fire Alarm Devices: %d\n", r.Devices)
		fmt.Fprintf(w, "   Emergency Lights: %d\n", r.EmergencyLights)
		if r.Notes > 0 {
			fmt.Fprintf(w, "   Notes: %d\n", r.Notes)
		}
	}

	for _, id := range res.Unresolved {
		fmt.Fprintf(w, "\nCould not match building name from: %s\n", id)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "\nFailed to parse %s: %v\n", f.SourceID, f.Err)
	}

	s := res.Summary
	fmt.Fprintf(w, "\nParsed %d of %d reports (%d unresolved, %d failed)\n", s.Parsed, s.Total, s.Unresolved, s.Failed)
	fmt.Fprintf(w, "Totals: %d devices, %d emergency lights, %d notes\n", s.Devices, s.EmergencyLights, s.Notes)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

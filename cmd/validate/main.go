// Command validate checks a parsed-report JSON file (as written by
// parsereports) against the report directory it was produced from. It
// verifies coverage, re-parses every report to confirm the output is
// reproducible, and checks field constraints on every extracted item.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dir data/reports/2025 \
//	  -json parsed-2025-data.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/reportdir"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
)

const (
	minLocationLen = 2
	maxLocationLen = 149
	minNoteLen     = 10 // exclusive
	maxNoteLen     = 500
)

var zoneRe = regexp.MustCompile(`^(\d+|N/A|Local Only)?$`)

// parsedFile mirrors the parsereports output document.
type parsedFile struct {
	Summary pipeline.Summary          `json:"summary"`
	Reports []domain.InspectionReport `json:"reports"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "directory containing .txt inspection reports")
	jsonPath := flag.String("json", "", "parsed JSON produced by parsereports")
	buildings := flag.String("buildings", "", "optional YAML building name map used when parsing")
	flag.Parse()

	if *dir == "" || *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *jsonPath, *buildings); code != 0 {
		os.Exit(code)
	}
}

func run(dir, jsonPath, buildingsPath string) int {
	fmt.Println("=== Inspection Report Validation ===")
	fmt.Println()

	names := domain.DefaultBuildingNameMap()
	if buildingsPath != "" {
		m, err := domain.LoadBuildingNameMap(buildingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load building map: %v\n", err)
			return 1
		}
		names = m
	}

	raws, err := reportdir.Scan(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan reports: %v\n", err)
		return 1
	}

	parsed, err := loadParsed(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load parsed JSON: %v\n", err)
		return 1
	}

	res, err := pipeline.NewBatchParser(domain.NewParser(domain.WithBuildingNameMap(names)), 0).
		ParseAll(context.Background(), raws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: re-parse reports: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCoverage(raws, parsed, res),
		validateReproducible(parsed, res),
		validateFields(parsed),
		validateBuildingNames(parsed, names),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Reports: %d files, %d parsed in JSON, %d unresolved\n", len(raws), len(parsed.Reports), len(res.Unresolved))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadParsed(path string) (parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{}, err
	}
	var f parsedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return parsedFile{}, err
	}
	if f.Reports == nil {
		return parsedFile{}, errors.New("no reports array")
	}
	return f, nil
}

// ── Phase 1: Coverage ──
// Every report file is either in the JSON or unresolvable, and the summary
// counts agree with the report list.

func validateCoverage(raws []domain.RawReport, parsed parsedFile, res pipeline.BatchResult) *phase {
	p := &phase{name: "Phase 1: Coverage (files vs JSON)"}

	files := make(map[string]bool, len(raws))
	for _, r := range raws {
		files[r.SourceID()] = true
	}
	unresolved := make(map[string]bool, len(res.Unresolved))
	for _, id := range res.Unresolved {
		unresolved[id] = true
	}

	inJSON := make(map[string]bool, len(parsed.Reports))
	for i, r := range parsed.Reports {
		if inJSON[r.SourceID] {
			p.errorf("report %d: duplicate source id %q", i, r.SourceID)
		}
		inJSON[r.SourceID] = true
		if !files[r.SourceID] {
			p.errorf("report %d: source %q not found in report directory", i, r.SourceID)
		}
	}
	for _, r := range raws {
		id := r.SourceID()
		if !inJSON[id] && !unresolved[id] {
			p.errorf("file %q: parseable but missing from JSON", id)
		}
		if inJSON[id] && unresolved[id] {
			p.errorf("file %q: in JSON but building name does not resolve", id)
		}
	}

	s := parsed.Summary
	if s.Parsed != len(parsed.Reports) {
		p.errorf("summary.parsed = %d, JSON has %d reports", s.Parsed, len(parsed.Reports))
	}
	var devices, lights, notes int
	for _, r := range parsed.Reports {
		devices += len(r.FireAlarmDevices)
		lights += len(r.EmergencyLights)
		notes += len(r.Notes)
	}
	if s.Devices != devices || s.EmergencyLights != lights || s.Notes != notes {
		p.errorf("summary totals (%d/%d/%d) differ from report contents (%d/%d/%d)",
			s.Devices, s.EmergencyLights, s.Notes, devices, lights, notes)
	}
	return p
}

// ── Phase 2: Reproducibility ──
// Re-parsing each report must yield exactly the stored result.

func validateReproducible(parsed parsedFile, res pipeline.BatchResult) *phase {
	p := &phase{name: "Phase 2: Reproducibility (re-parse)"}

	fresh := make(map[string]domain.InspectionReport, len(res.Reports))
	for _, r := range res.Reports {
		fresh[r.SourceID] = r
	}
	for _, stored := range parsed.Reports {
		got, ok := fresh[stored.SourceID]
		if !ok {
			continue // reported by phase 1
		}
		if diff := cmp.Diff(stored, got); diff != "" {
			p.errorf("%s: stored result differs from re-parse (-stored +reparsed):\n%s", stored.SourceID, diff)
		}
	}
	for _, f := range res.Failures {
		p.errorf("%s: %v", f.SourceID, f.Err)
	}
	return p
}

// ── Phase 3: Field constraints ──

func validateFields(parsed parsedFile) *phase {
	p := &phase{name: "Phase 3: Field Constraints"}
	for _, r := range parsed.Reports {
		pf := func(format string, args ...any) {
			p.errorf("%s: "+format, append([]any{r.SourceID}, args...)...)
		}
		checkDevices(pf, r.FireAlarmDevices)
		checkLights(pf, r.EmergencyLights)
		checkNotes(pf, r.Notes)
	}
	return p
}

func checkDevices(pf func(string, ...any), devices []domain.Device) {
	for i, d := range devices {
		name, ok := domain.DeviceTypeName(d.Type)
		if !ok {
			pf("device %d: unknown type code %q", i, d.Type)
		} else if d.TypeName != name {
			pf("device %d: type name %q, expected %q for code %s", i, d.TypeName, name, d.Type)
		}
		if n := utf8.RuneCountInString(d.Location); n < minLocationLen || n > maxLocationLen {
			pf("device %d: location length %d outside [%d,%d]", i, n, minLocationLen, maxLocationLen)
		}
		if !zoneRe.MatchString(d.Zone) {
			pf("device %d: zone %q is not a number, N/A or Local Only", i, d.Zone)
		}
		if d.Status != domain.StatusPass {
			pf("device %d: status %q", i, d.Status)
		}
	}
}

func checkLights(pf func(string, ...any), lights []domain.EmergencyLight) {
	for i, l := range lights {
		if l.Device == "" {
			pf("emergency light %d: empty device", i)
		}
		if l.Circuit == "" && l.Location == "" {
			pf("emergency light %d: neither circuit nor location set", i)
		}
		if l.Status != domain.StatusPass {
			pf("emergency light %d: status %q", i, l.Status)
		}
	}
}

func checkNotes(pf func(string, ...any), notes []string) {
	for i, n := range notes {
		if l := utf8.RuneCountInString(n); l <= minNoteLen || l >= maxNoteLen {
			pf("note %d: length %d outside (%d,%d)", i, l, minNoteLen, maxNoteLen)
		}
	}
}

// ── Phase 4: Building names ──

func validateBuildingNames(parsed parsedFile, names *domain.BuildingNameMap) *phase {
	p := &phase{name: "Phase 4: Building Names"}

	canonical := make(map[string]bool)
	for _, a := range names.Aliases() {
		canonical[a.Name] = true
	}
	for _, r := range parsed.Reports {
		if !canonical[r.BuildingName] {
			p.errorf("%s: building %q is not a canonical name", r.SourceID, r.BuildingName)
			continue
		}
		if got, ok := names.Resolve(r.SourceID); !ok || got != r.BuildingName {
			p.errorf("%s: building %q, source id resolves to %q", r.SourceID, r.BuildingName, got)
		}
	}
	return p
}

package domain

import (
	"fmt"
	"strings"
)

// DefaultMaxReportLines bounds the size of a single report.
const DefaultMaxReportLines = 20000

// Section is the part of the report the parser is currently reading.
type Section int

const (
	// SectionHeader covers everything before the device table.
	SectionHeader Section = iota
	// SectionDevices is the annual test and inspection device table.
	SectionDevices
	// SectionEmergencyLights is the emergency and exit lighting table. It is
	// terminal: device parsing never resumes once it is entered.
	SectionEmergencyLights
)

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionDevices:
		return "devices"
	case SectionEmergencyLights:
		return "emergency_lights"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

const deviceSectionMarker = "ANNUAL TEST AND INSPECTION RECORD"

var emergencySectionMarkers = []string{
	"Annual Emergency Lights Test",
	"Lamp Test Pass",
	"Exit Lights",
	"Fixture #",
}

// NextSection returns the section after reading line and whether the line
// was a section marker. Marker lines carry no data.
func NextSection(current Section, line string) (Section, bool) {
	if strings.Contains(line, deviceSectionMarker) {
		if current == SectionHeader {
			return SectionDevices, true
		}
		return current, true
	}
	for _, marker := range emergencySectionMarkers {
		if strings.Contains(line, marker) {
			return SectionEmergencyLights, true
		}
	}
	return current, false
}

// Parser turns report text into InspectionReports. A Parser holds only
// read-only configuration and is safe for concurrent use.
type Parser struct {
	buildings *BuildingNameMap
	maxLines  int
}

// ParserOption customizes a Parser.
type ParserOption func(*Parser)

// WithBuildingNameMap replaces the built-in building alias table.
func WithBuildingNameMap(m *BuildingNameMap) ParserOption {
	return func(p *Parser) {
		if m != nil {
			p.buildings = m
		}
	}
}

// WithMaxLines sets the line limit. Values <= 0 keep the default.
func WithMaxLines(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxLines = n
		}
	}
}

// NewParser creates a Parser with the default alias table and line limit.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		buildings: DefaultBuildingNameMap(),
		maxLines:  DefaultMaxReportLines,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// ParseInspectionReport parses one report with the default Parser.
func ParseInspectionReport(content, sourceID string) (InspectionReport, error) {
	return defaultParser.Parse(content, sourceID)
}

// Parse extracts panel metadata, devices, emergency lights and notes from a
// report. It returns ErrUnresolvedBuildingName when sourceID matches no
// building alias and ErrReportTooLarge when the report exceeds the line limit.
// Unmatched optional fields are left empty.
func (p *Parser) Parse(content, sourceID string) (InspectionReport, error) {
	buildingName, ok := p.buildings.Resolve(sourceID)
	if !ok {
		return InspectionReport{}, fmt.Errorf("%w: %q", ErrUnresolvedBuildingName, sourceID)
	}

	content = normalizeLineEndings(content)
	lines := strings.Split(content, "\n")
	if len(lines) > p.maxLines {
		return InspectionReport{}, fmt.Errorf("%w: %d lines exceeds limit of %d", ErrReportTooLarge, len(lines), p.maxLines)
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	report := newInspectionReport(buildingName, sourceID)
	report.PanelInfo = extractPanelInfo(content)
	report.TestInfo = extractTestInfo(content)

	section := SectionHeader
	for i, line := range lines {
		var marker bool
		section, marker = NextSection(section, line)
		if marker {
			continue
		}

		switch section {
		case SectionDevices:
			if d, ok := parseDeviceLine(line); ok {
				report.FireAlarmDevices = append(report.FireAlarmDevices, d)
			}
		case SectionEmergencyLights:
			if l, ok := parseEmergencyLightLine(line); ok {
				report.EmergencyLights = append(report.EmergencyLights, l)
			}
		}

		if note, ok := extractNote(lines, i); ok {
			report.Notes = append(report.Notes, note)
		}
	}

	return report, nil
}

func normalizeLineEndings(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

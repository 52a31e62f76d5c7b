package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Building detail labels written by MergeReport.
const (
	DetailFireAlarmPanel = "Fire Alarm Panel"
	DetailPanelLocation  = "Panel Location"
	DetailCustomerID     = "Customer ID"
)

// Section ids used in building documents.
const (
	SectionIDFireAlarmDevices = "fireAlarmDevices"
	SectionIDEmergencyLights  = "emergencyLights"
	SectionIDAdditionalNotes  = "additionalNotes"
)

// Building is the application's per-year building document.
type Building struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Year            string            `json:"year"`
	BuildingDetails []BuildingDetail  `json:"buildingDetails"`
	Sections        []BuildingSection `json:"sections"`
	Data            BuildingData      `json:"data"`
	LastModified    string            `json:"lastModified,omitempty"`

	// Extra holds top-level keys owned by the app that are not modelled here.
	// They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// BuildingDetail is one labelled fact shown on the building page.
type BuildingDetail struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`

	Extra map[string]json.RawMessage `json:"-"`
}

// BuildingSection is a tab of the building page.
type BuildingSection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`

	Extra map[string]json.RawMessage `json:"-"`
}

// BuildingData holds the per-section item lists.
type BuildingData struct {
	FireAlarmDevices []DeviceEntry `json:"fireAlarmDevices,omitempty"`
	EmergencyLights  []LightEntry  `json:"emergencyLights,omitempty"`
	AdditionalNotes  []NoteEntry   `json:"additionalNotes,omitempty"`

	// Extra holds item lists of sections this service does not populate.
	Extra map[string]json.RawMessage `json:"-"`
}

// DeviceEntry is a fire alarm device as stored in a building document.
type DeviceEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Zone     string `json:"zone"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

// LightEntry is an emergency light as stored in a building document.
type LightEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Device   string `json:"device"`
	Circuit  string `json:"circuit"`
	Location string `json:"location"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

// NoteEntry is a free-text note as stored in a building document.
type NoteEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// BuildingStore reads and writes building documents.
type BuildingStore interface {
	// FindBuilding returns the building with the given name and year, or
	// ErrBuildingNotFound.
	FindBuilding(ctx context.Context, name, year string) (Building, error)

	// SaveBuilding writes b, replacing any stored document with the same ID.
	SaveBuilding(ctx context.Context, b Building) error
}

var notesSection = BuildingSection{ID: SectionIDAdditionalNotes, Name: "Additional Notes", Icon: "📝"}

// NewBuilding returns an empty building document with the standard sections.
func NewBuilding(id, name, year string) Building {
	return Building{
		ID:              id,
		Name:            name,
		Year:            year,
		BuildingDetails: []BuildingDetail{},
		Sections: []BuildingSection{
			{ID: SectionIDFireAlarmDevices, Name: "Fire Alarm Devices", Icon: "🚨"},
			{ID: SectionIDEmergencyLights, Name: "Emergency Lights", Icon: "💡"},
		},
	}
}

// MergeReport copies a parsed report into a building document. Panel and
// customer details are upserted by label. Device, light and note lists
// replace the stored ones only when the report has entries for them. The
// input building is not modified.
func MergeReport(b Building, r InspectionReport, now time.Time) Building {
	out := b
	out.BuildingDetails = append([]BuildingDetail(nil), b.BuildingDetails...)
	out.Sections = append([]BuildingSection(nil), b.Sections...)

	ms := now.UnixMilli()
	date := now.UTC().Format(time.DateOnly)

	if r.PanelInfo.Manufacturer != "" {
		value := fmt.Sprintf("%s - %s", r.PanelInfo.Manufacturer, r.PanelInfo.Model)
		out.BuildingDetails = upsertDetail(out.BuildingDetails, DetailFireAlarmPanel, value, fmt.Sprintf("%d_panel", ms))
	}
	if r.PanelInfo.Location != "" {
		out.BuildingDetails = upsertDetail(out.BuildingDetails, DetailPanelLocation, r.PanelInfo.Location, fmt.Sprintf("%d_loc", ms))
	}
	if r.TestInfo.CustomerID != "" {
		out.BuildingDetails = upsertDetail(out.BuildingDetails, DetailCustomerID, r.TestInfo.CustomerID, fmt.Sprintf("%d_cust", ms))
	}

	if len(r.FireAlarmDevices) > 0 {
		devices := make([]DeviceEntry, len(r.FireAlarmDevices))
		for i, d := range r.FireAlarmDevices {
			devices[i] = DeviceEntry{
				ID:       fmt.Sprintf("fa_%d_%d", ms, i),
				Name:     fmt.Sprintf("%s - %s", d.Location, d.TypeName),
				Location: d.Location,
				Type:     d.TypeName,
				Zone:     d.Zone,
				Status:   d.Status,
				Date:     date,
			}
		}
		out.Data.FireAlarmDevices = devices
	}

	if len(r.EmergencyLights) > 0 {
		lights := make([]LightEntry, len(r.EmergencyLights))
		for i, l := range r.EmergencyLights {
			lights[i] = LightEntry{
				ID:       fmt.Sprintf("em_%d_%d", ms, i),
				Name:     fmt.Sprintf("%s - %s", l.Device, l.Location),
				Device:   l.Device,
				Circuit:  l.Circuit,
				Location: l.Location,
				Status:   l.Status,
				Date:     date,
			}
		}
		out.Data.EmergencyLights = lights
	}

	if len(r.Notes) > 0 {
		notes := make([]NoteEntry, len(r.Notes))
		for i, n := range r.Notes {
			notes[i] = NoteEntry{
				ID:      fmt.Sprintf("note_%d_%d", ms, i),
				Name:    "Note",
				Content: n,
				Date:    date,
			}
		}
		out.Data.AdditionalNotes = notes
		if !hasSection(out.Sections, SectionIDAdditionalNotes) {
			out.Sections = append(out.Sections, notesSection)
		}
	}

	out.LastModified = now.UTC().Format(time.RFC3339)
	return out
}

func upsertDetail(details []BuildingDetail, label, value, id string) []BuildingDetail {
	for i := range details {
		if details[i].Label == label {
			details[i].Value = value
			return details
		}
	}
	return append(details, BuildingDetail{ID: id, Label: label, Value: value})
}

func hasSection(sections []BuildingSection, id string) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

package domain

import (
	"context"
	"time"
)

// StatusPass is the only status the parser assigns. Reports list devices that
// passed the annual test; failures surface as free-text notes instead.
const StatusPass = "Pass"

// DefaultLightLocation is used when an emergency-light row names a circuit but
// no location.
const DefaultLightLocation = "See circuit location"

// RawReport represents one unparsed inspection report as delivered by a source.
type RawReport struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SourceID returns the identifier used for building-name resolution: the
// "source_id" header when present, otherwise the message key.
func (r RawReport) SourceID() string {
	if id := r.Headers["source_id"]; id != "" {
		return id
	}
	return string(r.Key)
}

// Device is one row of the fire alarm device table.
type Device struct {
	Location string         `json:"location"`
	Type     DeviceTypeCode `json:"type"`
	TypeName string         `json:"typeName"`
	Zone     string         `json:"zone"`
	Status   string         `json:"status"`
}

// EmergencyLight is one row of the emergency lighting table.
type EmergencyLight struct {
	Device   string `json:"device"`
	Circuit  string `json:"circuit"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// PanelInfo describes the fire alarm control panel.
type PanelInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	ACPower      string `json:"acPower,omitempty"`
	Location     string `json:"location,omitempty"`
	KeyLocation  string `json:"keyLocation,omitempty"`
}

// TestInfo carries identifiers of the inspection itself.
type TestInfo struct {
	CustomerID string `json:"customerId,omitempty"`
}

// InspectionReport is the structured record extracted from one report.
type InspectionReport struct {
	BuildingName     string           `json:"buildingName"`
	SourceID         string           `json:"sourceId"`
	FireAlarmDevices []Device         `json:"fireAlarmDevices"`
	EmergencyLights  []EmergencyLight `json:"emergencyLights"`
	Notes            []string         `json:"notes"`
	PanelInfo        PanelInfo        `json:"panelInfo"`
	TestInfo         TestInfo         `json:"testInfo"`
}

func newInspectionReport(buildingName, sourceID string) InspectionReport {
	return InspectionReport{
		BuildingName:     buildingName,
		SourceID:         sourceID,
		FireAlarmDevices: []Device{},
		EmergencyLights:  []EmergencyLight{},
		Notes:            []string{},
	}
}

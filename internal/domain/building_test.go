package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() InspectionReport {
	r := newInspectionReport("Cardston Temple", cardstonSourceID)
	r.PanelInfo = PanelInfo{Manufacturer: "Edwards", Model: "2280", Location: "Main Electrical Room"}
	r.TestInfo = TestInfo{CustomerID: "5034876"}
	r.FireAlarmDevices = []Device{
		{Location: "SE Bishop Exit (14)", Type: DeviceManualPull, TypeName: "Manual Pull Station", Zone: "2", Status: StatusPass},
		{Location: "Bell 1", Type: DeviceBell, TypeName: "Bell", Status: StatusPass},
	}
	r.EmergencyLights = []EmergencyLight{
		{Device: "EM-3", Circuit: "B-11", Location: "Gym Over Basketball Hoop", Status: StatusPass},
	}
	r.Notes = []string{"Replace broken smoke detector in hallway"}
	return r
}

func TestMergeReport(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	ms := now.UnixMilli()

	got := MergeReport(NewBuilding("b1", "Cardston Temple", "2025"), sampleReport(), now)

	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, "2025-06-01T15:04:05Z", got.LastModified)
	assert.Equal(t, []BuildingDetail{
		{ID: fmt.Sprintf("%d_panel", ms), Label: DetailFireAlarmPanel, Value: "Edwards - 2280"},
		{ID: fmt.Sprintf("%d_loc", ms), Label: DetailPanelLocation, Value: "Main Electrical Room"},
		{ID: fmt.Sprintf("%d_cust", ms), Label: DetailCustomerID, Value: "5034876"},
	}, got.BuildingDetails)

	require.Len(t, got.Data.FireAlarmDevices, 2)
	assert.Equal(t, DeviceEntry{
		ID:       fmt.Sprintf("fa_%d_0", ms),
		Name:     "SE Bishop Exit (14) - Manual Pull Station",
		Location: "SE Bishop Exit (14)",
		Type:     "Manual Pull Station",
		Zone:     "2",
		Status:   StatusPass,
		Date:     "2025-06-01",
	}, got.Data.FireAlarmDevices[0])
	assert.Equal(t, fmt.Sprintf("fa_%d_1", ms), got.Data.FireAlarmDevices[1].ID)

	require.Len(t, got.Data.EmergencyLights, 1)
	assert.Equal(t, LightEntry{
		ID:       fmt.Sprintf("em_%d_0", ms),
		Name:     "EM-3 - Gym Over Basketball Hoop",
		Device:   "EM-3",
		Circuit:  "B-11",
		Location: "Gym Over Basketball Hoop",
		Status:   StatusPass,
		Date:     "2025-06-01",
	}, got.Data.EmergencyLights[0])

	require.Len(t, got.Data.AdditionalNotes, 1)
	assert.Equal(t, NoteEntry{
		ID:      fmt.Sprintf("note_%d_0", ms),
		Name:    "Note",
		Content: "Replace broken smoke detector in hallway",
		Date:    "2025-06-01",
	}, got.Data.AdditionalNotes[0])

	require.Len(t, got.Sections, 3)
	assert.Equal(t, SectionIDAdditionalNotes, got.Sections[2].ID)
}

func TestMergeReport_UpsertsExistingDetails(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	b := NewBuilding("b1", "Cardston Temple", "2025")
	b.BuildingDetails = []BuildingDetail{
		{ID: "addr", Label: "Address", Value: "348 3rd St W"},
		{ID: "cust", Label: DetailCustomerID, Value: "1"},
	}

	got := MergeReport(b, sampleReport(), now)

	require.Len(t, got.BuildingDetails, 4)
	assert.Equal(t, BuildingDetail{ID: "addr", Label: "Address", Value: "348 3rd St W"}, got.BuildingDetails[0])
	assert.Equal(t, BuildingDetail{ID: "cust", Label: DetailCustomerID, Value: "5034876"}, got.BuildingDetails[1])
	assert.Equal(t, "1", b.BuildingDetails[1].Value, "input building must not change")
}

func TestMergeReport_EmptyReportKeepsData(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	b := NewBuilding("b1", "Cardston Temple", "2025")
	b.Data.FireAlarmDevices = []DeviceEntry{{ID: "old", Name: "Foyer - Bell"}}

	got := MergeReport(b, newInspectionReport("Cardston Temple", cardstonSourceID), now)

	assert.Empty(t, got.BuildingDetails)
	assert.Equal(t, b.Data.FireAlarmDevices, got.Data.FireAlarmDevices)
	assert.Nil(t, got.Data.EmergencyLights)
	assert.Len(t, got.Sections, 2)
	assert.Equal(t, "2025-06-01T00:00:00Z", got.LastModified)
}

func TestMergeReport_NotesSectionAddedOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	once := MergeReport(NewBuilding("b1", "Cardston Temple", "2025"), sampleReport(), now)
	twice := MergeReport(once, sampleReport(), now.Add(time.Hour))

	assert.Len(t, twice.Sections, 3)
	assert.Len(t, twice.BuildingDetails, 3)
}

func TestMergeReport_DatesAreUTC(t *testing.T) {
	loc := time.FixedZone("MDT", -6*60*60)
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, loc)

	got := MergeReport(NewBuilding("b1", "Cardston Temple", "2025"), sampleReport(), now)
	assert.Equal(t, "2025-06-02T00:00:00Z", got.LastModified)
	assert.Equal(t, "2025-06-02", got.Data.FireAlarmDevices[0].Date)
	assert.Equal(t, "2025-06-02", got.Data.EmergencyLights[0].Date)
	assert.Equal(t, "2025-06-02", got.Data.AdditionalNotes[0].Date)
}

const storedBuildingJSON = `{
  "id": "b1",
  "name": "Cardston Temple",
  "year": "2025",
  "address": "348 3rd St W",
  "buildingDetails": [{"id": "d1", "label": "Custodian", "value": "J. Smith", "pinned": true}],
  "sections": [
    {"id": "fireAlarmDevices", "name": "Fire Alarm Devices", "icon": "🚨", "order": 3},
    {"id": "sprinklers", "name": "Sprinklers", "icon": "💧"}
  ],
  "data": {
    "fireAlarmDevices": [{"id": "old", "name": "old", "location": "old", "type": "Bell", "zone": "", "status": "Pass", "date": "2024-05-01", "notes": ""}],
    "sprinklers": [{"id": "sp_1", "name": "Riser 1"}]
  }
}`

func TestBuildingJSON_KeepsUnknownFields(t *testing.T) {
	var b Building
	require.NoError(t, json.Unmarshal([]byte(storedBuildingJSON), &b))

	assert.JSONEq(t, `"348 3rd St W"`, string(b.Extra["address"]))
	assert.JSONEq(t, `true`, string(b.BuildingDetails[0].Extra["pinned"]))
	assert.JSONEq(t, `3`, string(b.Sections[0].Extra["order"]))
	assert.Nil(t, b.Sections[1].Extra)
	assert.JSONEq(t, `[{"id": "sp_1", "name": "Riser 1"}]`, string(b.Data.Extra["sprinklers"]))
	require.Len(t, b.Data.FireAlarmDevices, 1)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, storedBuildingJSON, string(out))
}

func TestMergeReport_KeepsUnknownFields(t *testing.T) {
	var b Building
	require.NoError(t, json.Unmarshal([]byte(storedBuildingJSON), &b))

	merged := MergeReport(b, sampleReport(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	out, err := json.Marshal(merged)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "348 3rd St W", doc["address"])

	data := doc["data"].(map[string]any)
	assert.Len(t, data["sprinklers"], 1)
	assert.Len(t, data["fireAlarmDevices"], 2)

	sections := doc["sections"].([]any)
	require.Len(t, sections, 3)
	assert.InDelta(t, 3, sections[0].(map[string]any)["order"], 0)
	assert.Equal(t, "sprinklers", sections[1].(map[string]any)["id"])

	details := doc["buildingDetails"].([]any)
	assert.Equal(t, true, details[0].(map[string]any)["pinned"])
}

func TestBuildingJSON_NoExtraWhenAllKnown(t *testing.T) {
	b := MergeReport(NewBuilding("b1", "Cardston Temple", "2025"), sampleReport(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var got Building
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, b, got)
}

func TestSetClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fake.Now(), Now())
	fake.Advance(time.Minute)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), Now())
}

package domain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardstonSourceID = "5034876_2025_Cardston Temple_Fire Alarm System.txt"

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParseInspectionReport_Fixture(t *testing.T) {
	content := loadFixture(t, cardstonSourceID)

	report, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)

	assert.Equal(t, "Cardston Temple", report.BuildingName)
	assert.Equal(t, cardstonSourceID, report.SourceID)

	assert.Equal(t, PanelInfo{
		Manufacturer: "Edwards",
		Model:        "2280",
		ACPower:      "Panel A #12",
		Location:     "Main Electrical Room",
		KeyLocation:  "Lock box at main entrance",
	}, report.PanelInfo)
	assert.Equal(t, "5034876", report.TestInfo.CustomerID)

	wantDevices := []Device{
		{Location: "SE Bishop Exit (14)", Type: DeviceManualPull, TypeName: "Manual Pull Station", Zone: "2", Status: StatusPass},
		{Location: "E Ent (1)", Type: DeviceManualPull, TypeName: "Manual Pull Station", Zone: "1", Status: StatusPass},
		{Location: "Library Closet (5)", Type: DeviceHeatFixed, TypeName: "Heat Detector (Fixed Temp)", Zone: "2", Status: StatusPass},
		{Location: "Gym B-6 Rm (39)", Type: DeviceHeatRateOfRise, TypeName: "Heat Detector (Rate of Rise)", Zone: "1", Status: StatusPass},
		{Location: "N Stair Well (26)", Type: DeviceSmokeDetector, TypeName: "Smoke Detector", Zone: "6", Status: StatusPass},
		{Location: "Bell 1", Type: DeviceBell, TypeName: "Bell", Zone: "", Status: StatusPass},
		{Location: "Bell 1", Type: DeviceBell, TypeName: "Bell", Zone: "", Status: StatusPass},
		{Location: "Main Hall", Type: DeviceHornStrobe, TypeName: "Horn/Strobe", Zone: "Local Only", Status: StatusPass},
		{Location: "Duct Return", Type: DeviceDuctSmoke, TypeName: "Duct Smoke Detector", Zone: "N/A", Status: StatusPass},
	}
	if diff := cmp.Diff(wantDevices, report.FireAlarmDevices); diff != "" {
		t.Errorf("devices mismatch (-want +got):\n%s", diff)
	}

	wantLights := []EmergencyLight{
		{Device: "EM-1", Circuit: "A-1", Location: "Classroom C-101", Status: StatusPass},
		{Device: "EM-3", Circuit: "B-11", Location: "Gym Over Basketball Hoop", Status: StatusPass},
		{Device: DefaultLightDevice, Circuit: "B-19", Location: "Chapel West Front", Status: StatusPass},
		{Device: "EXIT LITES", Circuit: "C-13", Location: DefaultLightLocation, Status: StatusPass},
	}
	if diff := cmp.Diff(wantLights, report.EmergencyLights); diff != "" {
		t.Errorf("emergency lights mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{
		"Replace broken smoke detector in hallway near the north stairwell",
		"Replace broken smoke detector in hallway near the north stairwell",
		"Battery pack on the east exit sign is weak",
	}, report.Notes)
}

func TestParseInspectionReport_Idempotent(t *testing.T) {
	content := loadFixture(t, cardstonSourceID)

	first, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)
	second, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parse differs (-first +second):\n%s", diff)
	}
}

func TestParseInspectionReport_LineEndings(t *testing.T) {
	content := loadFixture(t, cardstonSourceID)
	unix, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)

	t.Run("CRLF", func(t *testing.T) {
		crlf := strings.ReplaceAll(content, "\n", "\r\n")
		got, err := ParseInspectionReport(crlf, cardstonSourceID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(unix, got))
	})

	t.Run("BOM", func(t *testing.T) {
		got, err := ParseInspectionReport("\uFEFF"+content, cardstonSourceID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(unix, got))
	})
}

func TestParseInspectionReport_Concurrent(t *testing.T) {
	content := loadFixture(t, cardstonSourceID)
	want, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]InspectionReport, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ParseInspectionReport(content, cardstonSourceID)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Empty(t, cmp.Diff(want, got))
	}
}

func TestParseInspectionReport_UnresolvedBuilding(t *testing.T) {
	_, err := ParseInspectionReport("Customer ID: 1", "9999_2025_Unknown Hall.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedBuildingName))
	assert.Contains(t, err.Error(), "Unknown Hall")
}

func TestParseInspectionReport_TooLarge(t *testing.T) {
	p := NewParser(WithMaxLines(3))

	_, err := p.Parse("a\nb\nc\nd", cardstonSourceID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportTooLarge)

	_, err = p.Parse("a\nb\nc", cardstonSourceID)
	assert.NoError(t, err)
}

func TestParseInspectionReport_EmptyContent(t *testing.T) {
	report, err := ParseInspectionReport("", cardstonSourceID)
	require.NoError(t, err)

	assert.Equal(t, "Cardston Temple", report.BuildingName)
	assert.NotNil(t, report.FireAlarmDevices)
	assert.NotNil(t, report.EmergencyLights)
	assert.NotNil(t, report.Notes)
	assert.Empty(t, report.FireAlarmDevices)
	assert.Empty(t, report.EmergencyLights)
	assert.Empty(t, report.Notes)
	assert.Equal(t, PanelInfo{}, report.PanelInfo)
	assert.Equal(t, TestInfo{}, report.TestInfo)
}

func TestParseInspectionReport_DeviceRowsOutsideSection(t *testing.T) {
	content := strings.Join([]string{
		"SE Bishop Exit (14)    H    2",
		"ANNUAL TEST AND INSPECTION RECORD",
		"E Ent (1)    H    1",
	}, "\n")

	report, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)
	require.Len(t, report.FireAlarmDevices, 1)
	assert.Equal(t, "E Ent (1)", report.FireAlarmDevices[0].Location)
}

func TestParseInspectionReport_EmergencySectionIsTerminal(t *testing.T) {
	content := strings.Join([]string{
		"ANNUAL TEST AND INSPECTION RECORD",
		"Foyer    H    1",
		"Exit Lights",
		"EM-1    A-1    Foyer",
		"ANNUAL TEST AND INSPECTION RECORD",
		"Office    H    2",
	}, "\n")

	report, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)

	require.Len(t, report.FireAlarmDevices, 1)
	assert.Equal(t, "Foyer", report.FireAlarmDevices[0].Location)
	require.Len(t, report.EmergencyLights, 1)
	assert.Equal(t, "EM-1", report.EmergencyLights[0].Device)
}

func TestParseInspectionReport_MarkerLinesSkipNotes(t *testing.T) {
	content := "Exit Lights - replace broken fixture cover\nEM-1    A-1    Foyer"

	report, err := ParseInspectionReport(content, cardstonSourceID)
	require.NoError(t, err)
	assert.Empty(t, report.Notes)
	assert.Len(t, report.EmergencyLights, 1)
}

func TestParseInspectionReport_CustomBuildingMap(t *testing.T) {
	m, err := NewBuildingNameMap([]BuildingAlias{{Key: "Lethbridge", Name: "Lethbridge Stake Center"}})
	require.NoError(t, err)
	p := NewParser(WithBuildingNameMap(m))

	report, err := p.Parse("", "1_2025_Lethbridge_Fire Alarm.txt")
	require.NoError(t, err)
	assert.Equal(t, "Lethbridge Stake Center", report.BuildingName)

	_, err = p.Parse("", cardstonSourceID)
	assert.ErrorIs(t, err, ErrUnresolvedBuildingName)
}

func TestNextSection(t *testing.T) {
	tests := []struct {
		name       string
		current    Section
		line       string
		want       Section
		wantMarker bool
	}{
		{"header stays", SectionHeader, "Customer ID: 1", SectionHeader, false},
		{"device marker", SectionHeader, "ANNUAL TEST AND INSPECTION RECORD", SectionDevices, true},
		{"device marker in devices", SectionDevices, "ANNUAL TEST AND INSPECTION RECORD", SectionDevices, true},
		{"device marker after lights", SectionEmergencyLights, "ANNUAL TEST AND INSPECTION RECORD", SectionEmergencyLights, true},
		{"annual lights", SectionDevices, "Annual Emergency Lights Test", SectionEmergencyLights, true},
		{"lamp test", SectionHeader, "Lamp Test Pass", SectionEmergencyLights, true},
		{"exit lights", SectionDevices, "Exit Lights", SectionEmergencyLights, true},
		{"fixture header", SectionDevices, "Fixture #   Circuit   Location", SectionEmergencyLights, true},
		{"lowercase is not a marker", SectionHeader, "annual test and inspection record", SectionHeader, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, marker := NextSection(tt.current, tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMarker, marker)
		})
	}
}

func TestSectionString(t *testing.T) {
	assert.Equal(t, "header", SectionHeader.String())
	assert.Equal(t, "devices", SectionDevices.String())
	assert.Equal(t, "emergency_lights", SectionEmergencyLights.String())
	assert.Equal(t, "section(7)", Section(7).String())
}

// Package xlsx exports parsed inspection reports as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary         = "Summary"
	SheetDevices         = "Devices"
	SheetEmergencyLights = "Emergency Lights"
	SheetNotes           = "Notes"
)

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// WriteSummary writes reports to an .xlsx file at path.
func WriteSummary(path string, reports []domain.InspectionReport) error {
	f, err := build(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook to w.
func Write(w io.Writer, reports []domain.InspectionReport) error {
	f, err := build(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(reports []domain.InspectionReport) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets(reports) {
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func sheets(reports []domain.InspectionReport) []sheet {
	summary := sheet{
		name:    SheetSummary,
		headers: []string{"Building", "Source", "Panel", "Panel Location", "Customer ID", "Devices", "Emergency Lights", "Notes"},
		widths:  []float64{30, 50, 25, 30, 14, 10, 18, 10},
	}
	devices := sheet{
		name:    SheetDevices,
		headers: []string{"Building", "Location", "Code", "Type", "Zone", "Status"},
		widths:  []float64{30, 40, 8, 30, 10, 10},
	}
	lights := sheet{
		name:    SheetEmergencyLights,
		headers: []string{"Building", "Device", "Circuit", "Location", "Status"},
		widths:  []float64{30, 20, 10, 40, 10},
	}
	notes := sheet{
		name:    SheetNotes,
		headers: []string{"Building", "Note"},
		widths:  []float64{30, 100},
	}

	for _, r := range reports {
		panel := ""
		if r.PanelInfo.Manufacturer != "" {
			panel = r.PanelInfo.Manufacturer + " - " + r.PanelInfo.Model
		}
		summary.rows = append(summary.rows, []any{
			r.BuildingName, r.SourceID, panel, r.PanelInfo.Location, r.TestInfo.CustomerID,
			len(r.FireAlarmDevices), len(r.EmergencyLights), len(r.Notes),
		})
		for _, d := range r.FireAlarmDevices {
			devices.rows = append(devices.rows, []any{r.BuildingName, d.Location, string(d.Type), d.TypeName, d.Zone, d.Status})
		}
		for _, l := range r.EmergencyLights {
			lights.rows = append(lights.rows, []any{r.BuildingName, l.Device, l.Circuit, l.Location, l.Status})
		}
		for _, n := range r.Notes {
			notes.rows = append(notes.rows, []any{r.BuildingName, n})
		}
	}
	return []sheet{summary, devices, lights, notes}
}

package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Calls"

var XLSXHeader = append(append([]string{}, CSVHeader...), "Number Of Trials", "Active", "Updated At")

var columnWidths = []float64{
	8,  // ID
	25, // Patient Name
	18, // Appointment ID
	15, // Clinic
	18, // Appointment Time
	20, // Agent Name
	14, // Status
	40, // Comment
	26, // Created At
	16, // Number Of Trials
	10, // Active
	26, // Updated At
}

// FormatXLSX renders calls into a single-sheet workbook with the CSV columns
// plus trial count, active flag and last update.
func FormatXLSX(calls []*model.Call, generatedAt time.Time) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(XLSXHeader))
	for i, h := range XLSXHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(XLSXHeader))
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, "", fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, "", fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, c := range calls {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		row := []any{
			c.ID,
			c.PatientName,
			c.AppointmentID,
			c.Clinic,
			c.AppointmentTime,
			c.AgentName,
			string(c.Status),
			c.CommentText(),
			formatTimestamp(c.CreatedAt),
			c.NumberOfTrials,
			strconv.FormatBool(c.IsActive),
			formatTimestamp(c.UpdatedAt),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), FileName(generatedAt, "xlsx"), nil
}

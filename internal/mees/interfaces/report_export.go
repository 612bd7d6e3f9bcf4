package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	mees "esg-reporting/internal/mees/domain"
)

// BuildReportPDF renders a MEES report with its per-unit breakdown.
func BuildReportPDF(report *mees.Report) ([]byte, error) {
	if report == nil {
		return nil, mees.ErrNilReport
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "MEES Compliance Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Building: %s", report.BuildingID),
		fmt.Sprintf("Scenario: %s", report.Scenario),
		fmt.Sprintf("Version: %d", report.Version),
		fmt.Sprintf("Status: %s", report.Status),
		fmt.Sprintf("Generated: %s", report.CreatedAt.Format(time.RFC3339)),
	}
	if report.FrozenAt != nil {
		lines = append(lines, fmt.Sprintf("Frozen: %s", report.FrozenAt.Format(time.RFC3339)))
	}
	if report.SnapshotHash != "" {
		lines = append(lines, fmt.Sprintf("Snapshot: %s", report.SnapshotHash))
	}
	for _, line := range lines {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}

	summary := report.Summary
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Compliance")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Units: %d", summary.TotalUnits))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("At risk 2027 (EPC C): %d units, %.1f%%, %s %.2f",
		summary.UnitsAtRisk2027, summary.PercentageAtRisk2027, report.Currency, summary.RentAtRisk2027))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("At risk 2030 (EPC B): %d units, %.1f%%, %s %.2f",
		summary.UnitsAtRisk2030, summary.PercentageAtRisk2030, report.Currency, summary.RentAtRisk2030))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rent protected (%s): %.2f", report.Currency, report.Rent.RentProtected))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("ESG uplift (%s): %.2f", report.Currency, report.Rent.RentUplift))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total benefit (%s): %.2f", report.Currency, report.Rent.TotalBenefit))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	headers := []struct {
		title string
		width float64
	}{
		{"Unit", 25}, {"EPC", 12}, {"Post", 12}, {"Rent", 25}, {"Protected", 25}, {"Uplift", 22}, {"Reason", 69},
	}
	for _, header := range headers {
		pdf.CellFormat(header.width, 6, header.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range report.Rent.Breakdown {
		pdf.CellFormat(25, 6, tr(row.UnitID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(12, 6, string(row.CurrentEPC), "1", 0, "C", false, 0, "")
		pdf.CellFormat(12, 6, string(row.PostEPC), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", row.CurrentRent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", row.RentProtected), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%.2f", row.RentUplift), "1", 0, "R", false, 0, "")
		pdf.CellFormat(69, 6, tr(row.Reason), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders a MEES report as a summary and a breakdown sheet.
func BuildReportXLSX(report *mees.Report) ([]byte, error) {
	if report == nil {
		return nil, mees.ErrNilReport
	}
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	unitsSheet := "units"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(unitsSheet); err != nil {
		return nil, err
	}

	summary := report.Summary
	rows := [][2]any{
		{"MEES Compliance Report", nil},
		{"Building", report.BuildingID},
		{"Scenario", string(report.Scenario)},
		{"Version", report.Version},
		{"Status", report.Status},
		{"Currency", report.Currency},
		{"Snapshot", report.SnapshotHash},
		{"Total units", summary.TotalUnits},
		{"Units at risk 2027", summary.UnitsAtRisk2027},
		{"Percentage at risk 2027", summary.PercentageAtRisk2027},
		{"Rent at risk 2027", summary.RentAtRisk2027},
		{"Units at risk 2030", summary.UnitsAtRisk2030},
		{"Percentage at risk 2030", summary.PercentageAtRisk2030},
		{"Rent at risk 2030", summary.RentAtRisk2030},
		{"Total rent", summary.TotalRent},
		{"EPC A uplift %", report.Rent.Params.EPCAUpliftPercent},
		{"EPC B uplift %", report.Rent.Params.EPCBUpliftPercent},
		{"Rent protected", report.Rent.RentProtected},
		{"Rent uplift", report.Rent.RentUplift},
		{"Total benefit", report.Rent.TotalBenefit},
	}
	for i, row := range rows {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row[0])
		if row[1] != nil {
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
		}
	}

	headers := []string{"Unit", "Current EPC", "Post EPC", "Annual rent", "At risk 2027", "At risk 2030", "Rent protected", "Rent uplift", "Total benefit", "Reason"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(unitsSheet, cell, header)
	}
	for i, row := range report.Rent.Breakdown {
		values := []any{
			row.UnitID, string(row.CurrentEPC), string(row.PostEPC), row.CurrentRent,
			row.AtRisk2027, row.AtRisk2030, row.RentProtected, row.RentUplift, row.TotalBenefit, row.Reason,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(unitsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

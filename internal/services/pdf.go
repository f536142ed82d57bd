package services

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/projectsoft/obras-api/internal/models"
)

// RenderReportPDF renders a report as a PDF document: a header page with
// the report details and summary, then one page per activity with its
// measurements and, when present, the embedded photograph.
func RenderReportPDF(report *models.DailyReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 25)
	pdf.CellFormat(0, 14, "Daily Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Date: %s", report.Date.Format("2006-01-02")), "", 1, "L", false, 0, "")
	if report.CreatedBy != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Created by: %s", report.CreatedBy.Name), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Status: %s", report.Status), "", 1, "L", false, 0, "")
	if report.ApprovedBy != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Reviewed by: %s", report.ApprovedBy.Name), "", 1, "L", false, 0, "")
		if report.ApprovedAt != nil {
			pdf.CellFormat(0, 8, fmt.Sprintf("Reviewed at: %s", report.ApprovedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
		}
	}
	if report.RejectionReason != "" {
		pdf.CellFormat(0, 8, fmt.Sprintf("Rejection reason: %s", report.RejectionReason), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	summary := report.Summary
	if summary == "" {
		summary = "No summary"
	}
	pdf.MultiCell(0, 6, summary, "", "L", false)

	if len(report.Activities) == 0 {
		pdf.Ln(4)
		pdf.CellFormat(0, 8, "No recorded activities", "", 1, "L", false, 0, "")
	}

	for i, activity := range report.Activities {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Activity %d", i+1), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "", 12)
		civ := "N/A"
		if activity.CIV != nil {
			civ = activity.CIV.Number
		}
		pdf.CellFormat(0, 7, fmt.Sprintf("CIV: %s", civ), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Description: %s", activity.Activity), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Start location: %s", activity.StartLocation), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("End location: %s", activity.EndLocation), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Item: %s", activity.Item), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Measurements", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, fmt.Sprintf("  Length: %.2f m", activity.Length), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("  Width: %.2f m", activity.Width), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("  Height: %.2f m", activity.Height), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Total: %.3f m3", activity.GrossVolume), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Discounts", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, fmt.Sprintf("  Length: %.2f m", activity.DiscountLength), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("  Width: %.2f m", activity.DiscountWidth), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("  Height: %.2f m", activity.DiscountHeight), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Total discount: %.3f m3", activity.DiscountVolume), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Final total: %.3f m3", activity.NetVolume), "", 1, "L", false, 0, "")

		if activity.Notes != "" {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 7, "Notes", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 12)
			pdf.MultiCell(0, 6, activity.Notes, "", "L", false)
		}

		embedActivityPhoto(pdf, activity.Photo)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// embedActivityPhoto adds the activity photograph to the current page.
// Image failures are logged and leave a note on the page; they never
// fail the whole document.
func embedActivityPhoto(pdf *fpdf.Fpdf, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Error adding image: %v", err)
		pdf.Ln(2)
		pdf.CellFormat(0, 7, "Could not load image", "", 1, "L", false, 0, "")
		return
	}

	pdf.Ln(4)
	options := fpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(path, options)
	if info == nil || !pdf.Ok() {
		log.Printf("Error adding image: %v", pdf.Error())
		pdf.ClearError()
		pdf.CellFormat(0, 7, "Could not load image", "", 1, "L", false, 0, "")
		return
	}
	pdf.ImageOptions(path, 55, pdf.GetY(), 100, 0, true, options, 0, "")
}

package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"complaintdesk/internal/models"
)

// ReportGenerator строит сводный PDF по жалобам для админки.
type ReportGenerator struct {
	appName string
}

func NewReportGenerator(appName string) *ReportGenerator {
	if appName == "" {
		appName = "ComplaintDesk"
	}
	return &ReportGenerator{appName: appName}
}

func (g *ReportGenerator) ComplaintsSummary(complaints []*models.Complaint, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Complaints report", false)
	pdf.SetAuthor(g.appName, false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Complaints report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated %s, %d complaint(s)",
		generatedAt.Format("02.01.2006 15:04"), len(complaints)), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	// ===== Разбивка по статусам
	byStatus := map[string]int{}
	for _, c := range complaints {
		byStatus[c.Status]++
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "By status", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, status := range []string{
		models.ComplaintStatusPending,
		models.ComplaintStatusInProgress,
		models.ComplaintStatusResolved,
		models.ComplaintStatusRejected,
	} {
		if n := byStatus[status]; n > 0 {
			pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d", status, n), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(2)
	g.hr(pdf)
	pdf.Ln(2)

	// ===== Таблица
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 7, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 7, "Title", "1", 0, "L", false, 0, "")
	pdf.CellFormat(48, 7, "Categories", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Filed", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range complaints {
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", c.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 6, truncate(c.Title, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(48, 6, truncate(strings.Join(c.Categories, ", "), 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, c.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, c.CreatedAt.Format("02.01.2006"), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(15, y, 195, y)
	pdf.SetXY(x, y+1)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// Package pdf renders participant rosters for activity exports.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/trailbook/backend/internal/models"
)

// Roster renders a participant list for the activity as a PDF document.
func Roster(activity *models.Activity, participants []models.Participant) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(activity.Name, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, activity.Name, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, fmt.Sprintf("Start time: %s", activity.StartTime.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, fmt.Sprintf("Participants: %d", len(participants)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(12, 8, "#", "1", 0, "C", true, 0, "")
	doc.CellFormat(70, 8, "Name", "1", 0, "L", true, 0, "")
	doc.CellFormat(70, 8, "Email", "1", 0, "L", true, 0, "")
	doc.CellFormat(38, 8, "Registered", "1", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for i, p := range participants {
		doc.CellFormat(12, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		doc.CellFormat(70, 8, p.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(70, 8, p.Email, "1", 0, "L", false, 0, "")
		doc.CellFormat(38, 8, p.RegisteredAt.Format("2006-01-02"), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render roster pdf: %w", err)
	}
	return buf.Bytes(), nil
}

package evaluation

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"hrdesk/internal/domain/auth"
)

// ExportPDF renders a completed evaluation as a signed summary sheet.
func (s *Service) ExportPDF(ctx context.Context, actor auth.UserContext, evaluationID string) ([]byte, error) {
	ev, err := s.Get(ctx, actor, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusCompleted {
		return nil, conflict("only completed evaluations can be exported")
	}

	owner, err := s.profile(ctx, ev.OwnerID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.GetCycleByID(ctx, ev.CycleID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", owner.FullName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", owner.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s (%s %d)", cycle.Name, ev.Stage, cycle.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s", ev.Type))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Scores")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Performance: %.2f", ev.ScorePerf))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Results: %.2f", ev.ScoreResult))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Competency: %.2f", ev.ScoreComp))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f (Grade %s)", ev.ScoreTotal, ev.Grade))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Sign-off")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	if ev.OwnerSigned != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Submitted by employee on %s", ev.OwnerSigned.Format("2006-01-02")))
		pdf.Ln(7)
	}
	if ev.ManagerSigned != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Approved by manager on %s", ev.ManagerSigned.Format("2006-01-02")))
		pdf.Ln(7)
	}
	if ev.MDSigned != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Approved by managing director on %s", ev.MDSigned.Format("2006-01-02")))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render evaluation pdf: %w", err)
	}
	return buf.Bytes(), nil
}

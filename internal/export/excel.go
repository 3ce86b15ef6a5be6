package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yoockh/talentpool/internal/models"
)

const (
	SummarySheet      = "Summary"
	ApplicationsSheet = "Applications"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var applicationHeaders = []string{
	"Application ID", "Candidate ID", "Status", "Resume Score", "Interview Score", "Applied At", "Feedback Notes",
}

// ApplicationsWorkbook renders a job's applications as an XLSX document,
// highest résumé score first.
func ApplicationsWorkbook(job *models.Job, apps []models.Application, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ApplicationsSheet); err != nil {
		return nil, err
	}

	if err := writeSummary(f, job, apps, generatedAt); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeApplications(f, apps); err != nil {
		return nil, fmt.Errorf("failed to create applications sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, job *models.Job, apps []models.Application, generatedAt time.Time) error {
	_ = f.SetColWidth(SummarySheet, "A", "A", 22)
	_ = f.SetColWidth(SummarySheet, "B", "B", 50)

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := map[models.ApplicationStatus]int{}
	for _, a := range apps {
		counts[a.Status]++
	}

	rows := [][2]any{
		{"Job Title", job.Title},
		{"Job Status", string(job.Status)},
		{"Generated", generatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Total Applications", len(apps)},
	}
	for _, s := range models.ApplicationStatuses {
		rows = append(rows, [2]any{"Status: " + string(s), counts[s]})
	}

	for i, r := range rows {
		a, _ := excelize.CoordinatesToCellName(1, i+1)
		b, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(SummarySheet, a, r[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, b, r[1]); err != nil {
			return err
		}
		_ = f.SetCellStyle(SummarySheet, a, a, labelStyle)
	}
	return nil
}

func writeApplications(f *excelize.File, apps []models.Application) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(ApplicationsSheet, "A1", &applicationHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(applicationHeaders), 1)
	_ = f.SetCellStyle(ApplicationsSheet, "A1", last, headerStyle)
	_ = f.SetColWidth(ApplicationsSheet, "A", "B", 38)
	_ = f.SetColWidth(ApplicationsSheet, "G", "G", 60)

	sorted := make([]models.Application, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scoreOf(sorted[i].ResumeScore) > scoreOf(sorted[j].ResumeScore)
	})

	for i, a := range sorted {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			a.ID,
			a.CandidateID,
			string(a.Status),
			optional(a.ResumeScore),
			optional(a.InterviewScore),
			a.AppliedAt.UTC().Format(time.RFC3339),
			deref(a.FeedbackNotes),
		}
		if err := f.SetSheetRow(ApplicationsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func scoreOf(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

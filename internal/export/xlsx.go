// Package export writes simulation results to spreadsheet workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sigsim/internal/simulation"
)

const (
	TrialsSheet  = "Trials"
	SummarySheet = "Summary"
)

// TrialHeaders are the column headers of the Trials sheet.
var TrialHeaders = []any{"index", "p_value", "statistic", "dof", "attempts", "sample_size"}

// DefaultPath returns the workbook path for a run inside dir.
func DefaultPath(dir, runID string) string {
	return filepath.Join(dir, "sigsim-"+runID+".xlsx")
}

// WriteXLSX writes one row per trial and the run summary to path, creating
// the parent directory if needed.
func WriteXLSX(path string, trials []simulation.Trial, summary *simulation.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TrialsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(TrialsSheet, "A1", &TrialHeaders); err != nil {
		return err
	}
	for i, t := range trials {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{i, t.PValue, t.Statistic, t.DoF, t.Attempts, t.SampleSize}
		if err := f.SetSheetRow(TrialsSheet, cell, &row); err != nil {
			return fmt.Errorf("write trial %d: %w", i, err)
		}
	}

	if summary != nil {
		if _, err := f.NewSheet(SummarySheet); err != nil {
			return err
		}
		for i, row := range summaryRows(summary) {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
				return err
			}
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	return f.SaveAs(path)
}

func summaryRows(s *simulation.Summary) [][]any {
	rows := [][]any{
		{"run_id", s.RunID},
		{"test", s.Test},
		{"strategy", s.Strategy},
		{"iterations", s.Iterations},
		{"workers", s.Workers},
		{"alpha", s.Alpha},
		{"rejections", s.Rejections},
		{"rejection_rate", s.RejectionRate},
		{"retried_trials", s.RetriedTrials},
		{"p_value_p5", s.PValues.P5},
		{"p_value_p25", s.PValues.P25},
		{"p_value_p50", s.PValues.P50},
		{"p_value_p75", s.PValues.P75},
		{"p_value_p95", s.PValues.P95},
		{"mean_statistic", s.MeanStatistic},
	}
	if s.Power != nil {
		rows = append(rows,
			[]any{"mean_dof", s.MeanDoF},
			[]any{"noncentrality", s.Power.Noncentrality},
			[]any{"theoretical_power", s.Power.Power},
		)
	}
	return rows
}

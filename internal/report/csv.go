// Package report renders session report entries as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/physiotrainer/internal/models"
)

// FileName is the suggested download name for an export.
const FileName = "physio_session_report.csv"

// DateTimeLayout is the timestamp format of the DateTime column.
const DateTimeLayout = "2006-01-02 15:04:05"

// Columns is the CSV header row.
var Columns = []string{
	"DateTime",
	"Name",
	"Age",
	"Weight(kg)",
	"Gender",
	"Category",
	"Type",
	"Exercise",
	"Target Reps",
	"Completed Reps",
	"Hold Time(s)",
	"Total Session Time(s)",
	"Status",
}

// WriteCSV writes the header and one row per entry, in order.
func WriteCSV(w io.Writer, entries []models.ReportEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row flattens an entry into CSV fields matching Columns.
func Row(e models.ReportEntry) []string {
	return []string{
		e.DateTime.Format(DateTimeLayout),
		e.Name,
		strconv.Itoa(e.Age),
		formatWeight(e.WeightKg),
		e.Gender,
		e.Category,
		e.Type,
		e.Exercise,
		strconv.Itoa(e.TargetReps),
		strconv.Itoa(e.CompletedReps),
		strconv.Itoa(e.HoldSeconds),
		strconv.Itoa(e.TotalSessionSeconds),
		string(e.Status),
	}
}

// formatWeight always keeps one decimal place for whole numbers ("50.0").
func formatWeight(kg float64) string {
	s := strconv.FormatFloat(kg, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/claude/physiotrainer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []models.ReportEntry {
	return []models.ReportEntry{
		{
			DateTime:            time.Date(2026, 3, 1, 9, 1, 25, 0, time.UTC),
			Name:                "Asha",
			Age:                 34,
			WeightKg:            50,
			Gender:              models.GenderFemale,
			Category:            "Hip, Knee, & Leg",
			Type:                "Strengthening",
			Exercise:            "Straight Leg Raises (SLR)",
			TargetReps:          5,
			CompletedReps:       5,
			HoldSeconds:         15,
			TotalSessionSeconds: 85,
			Status:              models.StatusCompleted,
		},
		{
			DateTime:            time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC),
			Name:                "Ravi, Jr.",
			Age:                 61,
			WeightKg:            72.25,
			Gender:              models.GenderMale,
			Category:            "Balance & Coordination",
			Type:                "Exercises",
			Exercise:            "Sit-to-Stand",
			TargetReps:          5,
			CompletedReps:       2,
			HoldSeconds:         15,
			TotalSessionSeconds: 46,
			Status:              models.StatusStopped,
		},
	}
}

// TestWriteCSV verifies header order, one row per entry, and quoting of commas.
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{
		"2026-03-01 09:01:25", "Asha", "34", "50.0", "Female",
		"Hip, Knee, & Leg", "Strengthening", "Straight Leg Raises (SLR)",
		"5", "5", "15", "85", "Completed",
	}, records[1])
	assert.Equal(t, "Ravi, Jr.", records[2][1])
	assert.Equal(t, "72.25", records[2][3])
	assert.Equal(t, "Stopped by User", records[2][12])
}

// TestWriteCSVEmpty verifies an empty report still yields the header row.
func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "DateTime,Name,Age,Weight(kg),Gender,Category,Type,Exercise,Target Reps,Completed Reps,Hold Time(s),Total Session Time(s),Status\n", buf.String())
}

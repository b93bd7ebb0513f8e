package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/physiotrainer/internal/models"
	"github.com/google/uuid"
)

// AppendReport adds a finished session to the end of the report list and
// returns its position (1-based).
func (d *DB) AppendReport(ctx context.Context, e models.ReportEntry) (int64, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO session_reports (id, session_id, date_time, name, age, weight_kg, gender,
		 category, type, exercise, target_reps, completed_reps, hold_seconds,
		 total_session_seconds, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID.String(), e.SessionID.String(), e.DateTime.Format(time.RFC3339Nano),
		e.Name, e.Age, e.WeightKg, e.Gender,
		e.Category, e.Type, e.Exercise, e.TargetReps, e.CompletedReps, e.HoldSeconds,
		e.TotalSessionSeconds, string(e.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting report: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading report position: %w", err)
	}
	return seq, nil
}

// ListReports returns every report in the order it was appended.
func (d *DB) ListReports(ctx context.Context) ([]models.ReportEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, session_id, date_time, name, age, weight_kg, gender,
		 category, type, exercise, target_reps, completed_reps, hold_seconds,
		 total_session_seconds, status
		 FROM session_reports
		 ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	result := []models.ReportEntry{}
	for rows.Next() {
		var (
			e                   models.ReportEntry
			id, sessionID, when string
			status              string
		)
		if err := rows.Scan(&id, &sessionID, &when, &e.Name, &e.Age, &e.WeightKg, &e.Gender,
			&e.Category, &e.Type, &e.Exercise, &e.TargetReps, &e.CompletedReps, &e.HoldSeconds,
			&e.TotalSessionSeconds, &status); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing report id %q: %w", id, err)
		}
		if e.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("parsing session id %q: %w", sessionID, err)
		}
		if e.DateTime, err = time.Parse(time.RFC3339Nano, when); err != nil {
			return nil, fmt.Errorf("parsing report time %q: %w", when, err)
		}
		e.Status = models.Status(status)
		result = append(result, e)
	}
	return result, rows.Err()
}

// CountReports returns the number of stored reports.
func (d *DB) CountReports(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

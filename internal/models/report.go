package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gender values accepted in user details.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
	GenderOther  = "Other"
)

// Status is the terminal outcome of a session.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusStopped   Status = "Stopped by User"
)

// UserInfo holds the details entered before a session starts.
type UserInfo struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	WeightKg float64 `json:"weight_kg"`
	Gender   string  `json:"gender"`
}

// Bounds accepted for user details.
const (
	MinAge      = 1
	MaxAge      = 100
	MinWeightKg = 10.0
	MaxWeightKg = 200.0
)

// Validate checks age, weight and gender against the accepted inputs. The
// name may be empty.
func (u UserInfo) Validate() error {
	if u.Age < MinAge || u.Age > MaxAge {
		return fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	if u.WeightKg < MinWeightKg || u.WeightKg > MaxWeightKg {
		return fmt.Errorf("weight_kg must be between %.0f and %.0f", MinWeightKg, MaxWeightKg)
	}
	switch u.Gender {
	case GenderFemale, GenderMale, GenderOther:
		return nil
	}
	return fmt.Errorf("gender must be one of %s, %s, %s", GenderFemale, GenderMale, GenderOther)
}

// ReportEntry is one finalized session record. Entries are appended once and
// never modified.
type ReportEntry struct {
	ID                  uuid.UUID `json:"id"`
	SessionID           uuid.UUID `json:"session_id"`
	DateTime            time.Time `json:"date_time"`
	Name                string    `json:"name"`
	Age                 int       `json:"age"`
	WeightKg            float64   `json:"weight_kg"`
	Gender              string    `json:"gender"`
	Category            string    `json:"category"`
	Type                string    `json:"type"`
	Exercise            string    `json:"exercise"`
	TargetReps          int       `json:"target_reps"`
	CompletedReps       int       `json:"completed_reps"`
	HoldSeconds         int       `json:"hold_seconds"`
	TotalSessionSeconds int       `json:"total_session_seconds"`
	Status              Status    `json:"status"`
}

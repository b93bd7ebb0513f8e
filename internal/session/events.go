package session

import (
	"github.com/claude/physiotrainer/internal/models"
	"github.com/google/uuid"
)

// Phase is the externally visible state of a session.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseCountingDown Phase = "counting_down"
	PhaseHolding      Phase = "holding"
	PhasePaused       Phase = "paused"
	PhaseCompleted    Phase = "completed"
	PhaseStopped      Phase = "stopped"
)

// Cue is an audio cue the host should play. Cues are fire-and-forget.
type Cue string

const (
	CueStart    Cue = "start"
	CueRep      Cue = "rep"
	CueComplete Cue = "complete"
)

// Update is the display state computed from the stored timestamps.
// Cues and Report are only set by Tick and Stop.
type Update struct {
	SessionID      uuid.UUID           `json:"session_id"`
	Phase          Phase               `json:"phase"`
	Instruction    string              `json:"instruction"`
	Feedback       string              `json:"feedback"`
	Progress       float64             `json:"progress"`
	RepCount       int                 `json:"rep_count"`
	TargetReps     int                 `json:"target_reps"`
	SessionSeconds int                 `json:"session_seconds"`
	StartRemaining int                 `json:"start_remaining"`
	HoldRemaining  int                 `json:"hold_remaining"`
	Exercise       *models.Exercise    `json:"exercise,omitempty"`
	Cues           []Cue               `json:"cues"`
	Report         *models.ReportEntry `json:"report,omitempty"`
	// Replaced is the ID of a running session that Start discarded
	// without a report.
	Replaced       *uuid.UUID          `json:"replaced_session_id,omitempty"`
}

// Active reports whether the update describes a running session.
func (u Update) Active() bool {
	switch u.Phase {
	case PhaseCountingDown, PhaseHolding, PhasePaused:
		return true
	}
	return false
}

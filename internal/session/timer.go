// Package session implements the polled exercise session state machine:
// start delay, countdown, timed rep holds, pause/resume and completion.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/physiotrainer/internal/models"
	"github.com/google/uuid"
)

// ErrNotActive is returned by Pause and Stop when no session is running.
var ErrNotActive = errors.New("no active session")

const (
	instructionIdle   = "Select exercise and click Start"
	feedbackIdle      = "Select exercise and click Start Camera"
	feedbackReady     = "Get Ready..."
	feedbackPaused    = "Session paused."
	feedbackCompleted = "Exercise Completed Successfully!"
	feedbackStopped   = "Session stopped."
)

// Config holds the timing rules of a session.
type Config struct {
	StartDelay   time.Duration
	HoldDuration time.Duration
	TargetReps   int
}

// DefaultConfig returns a 10s start delay, 15s holds and 5 target reps.
func DefaultConfig() Config {
	return Config{
		StartDelay:   10 * time.Second,
		HoldDuration: 15 * time.Second,
		TargetReps:   5,
	}
}

// Selection is what the user chose before pressing Start.
type Selection struct {
	User     models.UserInfo
	Category string
	Type     string
	Exercise models.Exercise
}

// Timer is the session state machine. Every event and tick is applied under
// one mutex, so hosts may call it from concurrent goroutines.
type Timer struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time
	log *slog.Logger

	active    bool
	paused    bool
	sessionID uuid.UUID
	selection Selection

	startTime  time.Time
	pauseStart time.Time
	totalPause time.Duration

	repCount         int
	repStart         time.Time
	repElapsedFrozen time.Duration
	frozenElapsed    time.Duration

	startCued   bool
	lastCuedRep int
}

// New creates an idle Timer. A nil clock means time.Now; zero config fields
// take their defaults.
func New(cfg Config, now func() time.Time, log *slog.Logger) *Timer {
	def := DefaultConfig()
	if cfg.StartDelay < 0 {
		cfg.StartDelay = def.StartDelay
	}
	if cfg.HoldDuration <= 0 {
		cfg.HoldDuration = def.HoldDuration
	}
	if cfg.TargetReps <= 0 {
		cfg.TargetReps = def.TargetReps
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Timer{cfg: cfg, now: now, log: log}
}

// Config returns the timing rules in effect.
func (t *Timer) Config() Config {
	return t.cfg
}

// Start resets all counters and begins the countdown. Starting while a session
// is running discards it without a report.
func (t *Timer) Start(sel Selection) Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	var replaced *uuid.UUID
	if t.active {
		t.log.Info("session restarted", "session_id", t.sessionID, "reps", t.repCount)
		id := t.sessionID
		replaced = &id
	}

	now := t.now()
	t.active = true
	t.paused = false
	t.sessionID = uuid.New()
	t.selection = sel
	t.startTime = now
	t.pauseStart = time.Time{}
	t.totalPause = 0
	t.repCount = 0
	t.repStart = time.Time{}
	t.repElapsedFrozen = 0
	t.frozenElapsed = 0
	t.startCued = false
	t.lastCuedRep = 0

	t.log.Info("session started",
		"session_id", t.sessionID,
		"exercise", sel.Exercise.Name,
		"category", sel.Category,
		"type", sel.Type,
	)
	u := t.viewLocked(now)
	u.Replaced = replaced
	return u
}

// TogglePause pauses a running session or resumes a paused one.
func (t *Timer) TogglePause() (Update, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.idleView(), ErrNotActive
	}

	now := t.now()
	if !t.paused {
		t.frozenElapsed = t.effectiveElapsedLocked(now)
		t.repElapsedFrozen = t.repElapsedLocked(now)
		t.pauseStart = now
		t.paused = true
		t.log.Info("session paused", "session_id", t.sessionID, "elapsed", t.frozenElapsed)
		return t.viewLocked(now), nil
	}

	t.paused = false
	if !t.pauseStart.IsZero() {
		if d := now.Sub(t.pauseStart); d > 0 {
			t.totalPause += d
		}
		t.pauseStart = time.Time{}
	}
	// The hold clock continues from the frozen value instead of restarting.
	if !t.repStart.IsZero() {
		t.repStart = now.Add(-t.repElapsedFrozen)
	}
	t.log.Info("session resumed", "session_id", t.sessionID, "total_pause", t.totalPause)
	return t.viewLocked(now), nil
}

// Stop ends a running session and returns its report with status
// "Stopped by User".
func (t *Timer) Stop() (Update, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.idleView(), ErrNotActive
	}

	now := t.now()
	u := t.viewLocked(now)
	entry := t.finishLocked(now, models.StatusStopped)
	u.Phase = PhaseStopped
	u.Feedback = feedbackStopped
	u.Report = &entry
	return u, nil
}

// Tick advances the session from the current clock reading. It is meant to be
// polled at a fixed interval while a session is active.
func (t *Timer) Tick() Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.idleView()
	}

	now := t.now()
	var cues []Cue

	if t.effectiveElapsedLocked(now) >= t.cfg.StartDelay {
		if !t.startCued {
			cues = append(cues, CueStart)
			t.startCued = true
		}
		if t.repStart.IsZero() && !t.paused {
			t.repStart = now
		}
		if !t.paused && !t.repStart.IsZero() && t.repElapsedLocked(now) >= t.cfg.HoldDuration {
			t.repCount++
			t.repStart = now
			if t.repCount != t.lastCuedRep {
				cues = append(cues, CueRep)
				t.lastCuedRep = t.repCount
			}
		}
	}

	u := t.viewLocked(now)
	u.Cues = cues

	if t.repCount >= t.cfg.TargetReps {
		u.Cues = append(u.Cues, CueComplete, CueComplete)
		entry := t.finishLocked(now, models.StatusCompleted)
		u.Phase = PhaseCompleted
		u.Feedback = feedbackCompleted
		u.Report = &entry
	}
	return u
}

// Snapshot returns the current display state without advancing the session.
func (t *Timer) Snapshot() Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.idleView()
	}
	return t.viewLocked(t.now())
}

func (t *Timer) finishLocked(now time.Time, status models.Status) models.ReportEntry {
	total := t.effectiveElapsedLocked(now)
	entry := models.ReportEntry{
		ID:                  uuid.New(),
		SessionID:           t.sessionID,
		DateTime:            now,
		Name:                t.selection.User.Name,
		Age:                 t.selection.User.Age,
		WeightKg:            t.selection.User.WeightKg,
		Gender:              t.selection.User.Gender,
		Category:            t.selection.Category,
		Type:                t.selection.Type,
		Exercise:            t.selection.Exercise.Name,
		TargetReps:          t.cfg.TargetReps,
		CompletedReps:       t.repCount,
		HoldSeconds:         wholeSeconds(t.cfg.HoldDuration),
		TotalSessionSeconds: wholeSeconds(total),
		Status:              status,
	}

	t.active = false
	t.paused = false
	t.pauseStart = time.Time{}

	t.log.Info("session finished",
		"session_id", t.sessionID,
		"status", string(status),
		"reps", t.repCount,
		"total_seconds", entry.TotalSessionSeconds,
	)
	return entry
}

// effectiveElapsedLocked is the session clock: wall time since start minus all
// pauses. It is frozen while paused and never negative.
func (t *Timer) effectiveElapsedLocked(now time.Time) time.Duration {
	if t.paused {
		return t.frozenElapsed
	}
	return clamp(now.Sub(t.startTime) - t.totalPause)
}

func (t *Timer) repElapsedLocked(now time.Time) time.Duration {
	if t.paused {
		return t.repElapsedFrozen
	}
	if t.repStart.IsZero() {
		return 0
	}
	return clamp(now.Sub(t.repStart))
}

func (t *Timer) viewLocked(now time.Time) Update {
	elapsed := t.effectiveElapsedLocked(now)
	ex := t.selection.Exercise
	u := Update{
		SessionID:      t.sessionID,
		RepCount:       t.repCount,
		TargetReps:     t.cfg.TargetReps,
		SessionSeconds: wholeSeconds(elapsed),
		Progress:       t.progressLocked(),
		Exercise:       &ex,
	}

	if elapsed < t.cfg.StartDelay {
		u.Phase = PhaseCountingDown
		u.StartRemaining = ceilSeconds(t.cfg.StartDelay - elapsed)
		u.Instruction = fmt.Sprintf("STARTING IN %d", u.StartRemaining)
		u.Feedback = feedbackReady
	} else {
		u.Phase = PhaseHolding
		u.HoldRemaining = ceilSeconds(clamp(t.cfg.HoldDuration - t.repElapsedLocked(now)))
		u.Instruction = fmt.Sprintf("HOLD %ds", u.HoldRemaining)
		u.Feedback = fmt.Sprintf("Reps: %d/%d | Session Time: %ds", t.repCount, t.cfg.TargetReps, u.SessionSeconds)
	}

	if t.paused {
		u.Phase = PhasePaused
		u.Instruction = "PAUSED"
		u.Feedback = feedbackPaused
	}
	return u
}

func (t *Timer) idleView() Update {
	return Update{
		Phase:       PhaseIdle,
		Instruction: instructionIdle,
		Feedback:    feedbackIdle,
		TargetReps:  t.cfg.TargetReps,
	}
}

func (t *Timer) progressLocked() float64 {
	p := float64(t.repCount) / float64(t.cfg.TargetReps)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func wholeSeconds(d time.Duration) int {
	return int(clamp(d) / time.Second)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

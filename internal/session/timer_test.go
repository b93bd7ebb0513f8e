package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/physiotrainer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTimer(t *testing.T) (*Timer, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(DefaultConfig(), clk.now, log), clk
}

func testSelection() Selection {
	return Selection{
		User:     models.UserInfo{Name: "Asha", Age: 34, WeightKg: 61.5, Gender: models.GenderFemale},
		Category: "Spine (Neck & Back)",
		Type:     "Strengthening / Stability",
		Exercise: models.Exercise{Name: "Glute Bridges", Duration: "10 reps (hold 3 sec)"},
	}
}

func countCues(cues []Cue, want Cue) int {
	n := 0
	for _, c := range cues {
		if c == want {
			n++
		}
	}
	return n
}

// tickFor advances the clock in 500ms steps for d, ticking after each step,
// and returns every update produced.
func tickFor(tm *Timer, clk *fakeClock, d time.Duration) []Update {
	var updates []Update
	for step := time.Duration(0); step < d; step += 500 * time.Millisecond {
		clk.advance(500 * time.Millisecond)
		updates = append(updates, tm.Tick())
	}
	return updates
}

// TestFullSessionCompletes walks a whole session at the polling cadence:
// countdown for 10s, five 15s holds, completion at 85s.
func TestFullSessionCompletes(t *testing.T) {
	tm, clk := newTestTimer(t)
	start := tm.Start(testSelection())
	assert.Equal(t, PhaseCountingDown, start.Phase)
	assert.Equal(t, "STARTING IN 10", start.Instruction)

	updates := tickFor(tm, clk, 85*time.Second)
	require.Len(t, updates, 170)

	// t=9.5s is the last countdown tick.
	u := updates[18]
	assert.Equal(t, PhaseCountingDown, u.Phase)
	assert.Equal(t, "STARTING IN 1", u.Instruction)

	// t=10s begins the hold phase with the start cue.
	u = updates[19]
	assert.Equal(t, PhaseHolding, u.Phase)
	assert.Equal(t, "HOLD 15s", u.Instruction)
	assert.Equal(t, []Cue{CueStart}, u.Cues)

	// t=25s counts the first rep.
	assert.Equal(t, 0, updates[48].RepCount)
	assert.Equal(t, 1, updates[49].RepCount)
	assert.Equal(t, []Cue{CueRep}, updates[49].Cues)

	last := updates[len(updates)-1]
	assert.Equal(t, PhaseCompleted, last.Phase)
	assert.Equal(t, 5, last.RepCount)
	assert.Equal(t, 1.0, last.Progress)
	assert.Equal(t, []Cue{CueRep, CueComplete, CueComplete}, last.Cues)
	require.NotNil(t, last.Report)
	assert.Equal(t, models.StatusCompleted, last.Report.Status)
	assert.Equal(t, 5, last.Report.CompletedReps)
	assert.Equal(t, 5, last.Report.TargetReps)
	assert.Equal(t, 15, last.Report.HoldSeconds)
	assert.Equal(t, 85, last.Report.TotalSessionSeconds)
	assert.Equal(t, "Asha", last.Report.Name)
	assert.Equal(t, "Glute Bridges", last.Report.Exercise)
	assert.Equal(t, start.SessionID, last.Report.SessionID)

	var all []Cue
	for _, u := range updates {
		all = append(all, u.Cues...)
	}
	assert.Equal(t, 1, countCues(all, CueStart), "exactly one start cue")
	assert.Equal(t, 5, countCues(all, CueRep), "one cue per rep")
	assert.Equal(t, 2, countCues(all, CueComplete))

	// Session is back to idle.
	after := tm.Tick()
	assert.Equal(t, PhaseIdle, after.Phase)
	assert.Nil(t, after.Report)
}

// TestRepCountMonotonic verifies reps never decrease and never exceed the target.
func TestRepCountMonotonic(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())

	prev := 0
	for _, u := range tickFor(tm, clk, 200*time.Second) {
		if !u.Active() && u.Phase != PhaseCompleted {
			continue
		}
		assert.GreaterOrEqual(t, u.RepCount, prev)
		assert.LessOrEqual(t, u.RepCount, 5)
		assert.LessOrEqual(t, u.Progress, 1.0)
		prev = u.RepCount
	}
	assert.Equal(t, 5, prev)
}

// TestPauseDuringCountdown verifies a pause during the start delay does not
// shorten it: 5 more unpaused seconds are still required.
func TestPauseDuringCountdown(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	tickFor(tm, clk, 5*time.Second)

	p, err := tm.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, PhasePaused, p.Phase)
	assert.Equal(t, "PAUSED", p.Instruction)

	for _, u := range tickFor(tm, clk, 20*time.Second) {
		assert.Equal(t, PhasePaused, u.Phase)
		assert.Equal(t, 5, u.SessionSeconds)
		assert.Empty(t, u.Cues)
	}

	r, err := tm.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, PhaseCountingDown, r.Phase)
	assert.Equal(t, "STARTING IN 5", r.Instruction)

	updates := tickFor(tm, clk, 5*time.Second)
	assert.Equal(t, "STARTING IN 1", updates[8].Instruction)
	assert.Equal(t, PhaseHolding, updates[9].Phase)
	assert.Equal(t, []Cue{CueStart}, updates[9].Cues)
	assert.Equal(t, 10, updates[9].SessionSeconds)
}

// TestHoldResumesFromFrozenRemaining verifies the rep hold clock continues
// from where it was paused instead of restarting at the full hold.
func TestHoldResumesFromFrozenRemaining(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	tickFor(tm, clk, 10*time.Second) // hold starts at t=10
	updates := tickFor(tm, clk, 6*time.Second)
	assert.Equal(t, "HOLD 9s", updates[len(updates)-1].Instruction)

	_, err := tm.TogglePause()
	require.NoError(t, err)
	paused := tickFor(tm, clk, 100*time.Second)
	assert.Equal(t, 9, paused[len(paused)-1].HoldRemaining)
	assert.Equal(t, 0, paused[len(paused)-1].RepCount)

	resumed, err := tm.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, "HOLD 9s", resumed.Instruction)

	updates = tickFor(tm, clk, 9*time.Second)
	assert.Equal(t, 0, updates[len(updates)-2].RepCount)
	assert.Equal(t, 1, updates[len(updates)-1].RepCount)
	assert.Equal(t, 25, updates[len(updates)-1].SessionSeconds)
}

// TestStopMidHold verifies a user stop records partial reps with the stopped status.
func TestStopMidHold(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	updates := tickFor(tm, clk, 46*time.Second) // reps at 25s and 40s, 6s into rep 3
	require.Equal(t, 2, updates[len(updates)-1].RepCount)

	u, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, PhaseStopped, u.Phase)
	require.NotNil(t, u.Report)
	assert.Equal(t, 2, u.Report.CompletedReps)
	assert.Equal(t, models.StatusStopped, u.Report.Status)
	assert.Equal(t, 46, u.Report.TotalSessionSeconds)

	assert.Equal(t, PhaseIdle, tm.Snapshot().Phase)
	_, err = tm.Stop()
	assert.ErrorIs(t, err, ErrNotActive)
}

// TestStopWhilePausedExcludesOpenPause verifies the pause still in progress at
// stop time is not counted as session time.
func TestStopWhilePausedExcludesOpenPause(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	tickFor(tm, clk, 30*time.Second)
	_, err := tm.TogglePause()
	require.NoError(t, err)
	clk.advance(10 * time.Minute)

	u, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 30, u.Report.TotalSessionSeconds)
	assert.Equal(t, 1, u.Report.CompletedReps)
}

// TestMultiplePausesExcluded verifies several pause intervals are all excluded
// from the session clock.
func TestMultiplePausesExcluded(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())

	active := 0 * time.Second
	for i, run := range []time.Duration{3 * time.Second, 7 * time.Second, 12 * time.Second} {
		tickFor(tm, clk, run)
		active += run
		_, err := tm.TogglePause()
		require.NoError(t, err)
		clk.advance(time.Duration(i+1) * 17 * time.Second)
		_, err = tm.TogglePause()
		require.NoError(t, err)
	}

	u := tm.Snapshot()
	assert.Equal(t, int(active/time.Second), u.SessionSeconds)
}

// TestCuesNotRepeatedOnSameInstant verifies polling twice at the same clock
// reading fires neither the start cue nor the rep cue twice.
func TestCuesNotRepeatedOnSameInstant(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	clk.advance(10 * time.Second)

	assert.Equal(t, []Cue{CueStart}, tm.Tick().Cues)
	assert.Empty(t, tm.Tick().Cues)

	clk.advance(15 * time.Second)
	first := tm.Tick()
	second := tm.Tick()
	assert.Equal(t, []Cue{CueRep}, first.Cues)
	assert.Empty(t, second.Cues)
	assert.Equal(t, 1, second.RepCount)
}

// TestSnapshotHasNoSideEffects verifies Snapshot never fires cues or counts reps.
func TestSnapshotHasNoSideEffects(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	clk.advance(10 * time.Second)

	s := tm.Snapshot()
	assert.Equal(t, PhaseHolding, s.Phase)
	assert.Empty(t, s.Cues)

	assert.Equal(t, []Cue{CueStart}, tm.Tick().Cues)
}

// TestIdleRejectsPauseAndStop verifies events against an idle timer are rejected.
func TestIdleRejectsPauseAndStop(t *testing.T) {
	tm, _ := newTestTimer(t)

	u, err := tm.TogglePause()
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, PhaseIdle, u.Phase)

	_, err = tm.Stop()
	assert.ErrorIs(t, err, ErrNotActive)

	idle := tm.Tick()
	assert.Equal(t, PhaseIdle, idle.Phase)
	assert.Equal(t, "Select exercise and click Start", idle.Instruction)
	assert.Equal(t, 0.0, idle.Progress)
}

// TestRestartResetsCounters verifies Start on an active session begins a fresh one.
func TestRestartResetsCounters(t *testing.T) {
	tm, clk := newTestTimer(t)
	first := tm.Start(testSelection())
	tickFor(tm, clk, 30*time.Second)
	require.Equal(t, 1, tm.Snapshot().RepCount)

	assert.Nil(t, first.Replaced)

	second := tm.Start(testSelection())
	assert.NotEqual(t, first.SessionID, second.SessionID)
	require.NotNil(t, second.Replaced)
	assert.Equal(t, first.SessionID, *second.Replaced)
	assert.Equal(t, 0, second.RepCount)
	assert.Equal(t, "STARTING IN 10", second.Instruction)

	clk.advance(10 * time.Second)
	assert.Equal(t, []Cue{CueStart}, tm.Tick().Cues, "start cue fires again for the new session")
}

// TestClockSkewClampsToZero verifies a clock reading before the start time
// does not produce negative elapsed values.
func TestClockSkewClampsToZero(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start(testSelection())
	clk.advance(-5 * time.Second)

	u := tm.Tick()
	assert.Equal(t, 0, u.SessionSeconds)
	assert.Equal(t, "STARTING IN 10", u.Instruction)

	stopped, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 0, stopped.Report.TotalSessionSeconds)
}

// TestNewAppliesDefaults verifies zero config values fall back to defaults.
func TestNewAppliesDefaults(t *testing.T) {
	tm := New(Config{}, nil, nil)
	cfg := tm.Config()
	assert.Equal(t, time.Duration(0), cfg.StartDelay)
	assert.Equal(t, 15*time.Second, cfg.HoldDuration)
	assert.Equal(t, 5, cfg.TargetReps)
}

// TestCustomConfig verifies a shorter configuration completes on its own schedule.
func TestCustomConfig(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	tm := New(Config{StartDelay: 2 * time.Second, HoldDuration: 3 * time.Second, TargetReps: 2}, clk.now, nil)
	tm.Start(testSelection())

	updates := tickFor(tm, clk, 8*time.Second)
	last := updates[len(updates)-1]
	assert.Equal(t, PhaseCompleted, last.Phase)
	require.NotNil(t, last.Report)
	assert.Equal(t, 2, last.Report.CompletedReps)
	assert.Equal(t, 8, last.Report.TotalSessionSeconds)
	assert.Equal(t, 3, last.Report.HoldSeconds)
}

package runner

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/physiotrainer/internal/audio"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastTimer() *session.Timer {
	return session.New(session.Config{
		StartDelay:   0,
		HoldDuration: 20 * time.Millisecond,
		TargetReps:   2,
	}, nil, quietLog())
}

func selection() session.Selection {
	return session.Selection{
		User:     models.UserInfo{Name: "Mei", Age: 29, WeightKg: 55, Gender: models.GenderFemale},
		Category: "Knee Rehab",
		Type:     "Strengthening",
		Exercise: models.Exercise{Name: "Wall Sit"},
	}
}

// TestRunCompletes verifies the runner ticks a short session to completion
// and plays every cue.
func TestRunCompletes(t *testing.T) {
	var out bytes.Buffer
	rec := &audio.Recorder{}
	r := New(fastTimer(), rec, &out, 2*time.Millisecond, quietLog())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry, err := r.Run(ctx, selection(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, entry.Status)
	assert.Equal(t, 2, entry.CompletedReps)
	assert.Equal(t, "Mei", entry.Name)

	assert.Equal(t, []session.Cue{
		session.CueStart,
		session.CueRep,
		session.CueRep,
		session.CueComplete,
		session.CueComplete,
	}, rec.Cues())
	assert.Contains(t, out.String(), "Exercise Completed Successfully!")
}

// TestRunStopCommand verifies a stop command ends the session with a
// "Stopped by User" report.
func TestRunStopCommand(t *testing.T) {
	var out bytes.Buffer
	timer := session.New(session.DefaultConfig(), nil, quietLog())
	r := New(timer, nil, &out, time.Millisecond, quietLog())

	cmds := make(chan Command, 2)
	cmds <- CommandPause
	cmds <- CommandStop

	entry, err := r.Run(context.Background(), selection(), cmds)
	require.NoError(t, err)
	assert.Equal(t, models.StatusStopped, entry.Status)
	assert.Zero(t, entry.CompletedReps)
	assert.Contains(t, out.String(), "PAUSED")
	assert.False(t, timer.Snapshot().Active())
}

// TestRunContextCancel verifies cancelling the context stops the session.
func TestRunContextCancel(t *testing.T) {
	timer := session.New(session.DefaultConfig(), nil, quietLog())
	r := New(timer, nil, io.Discard, time.Millisecond, quietLog())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	entry, err := r.Run(ctx, selection(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusStopped, entry.Status)
}

// TestRunClosedCommandChannel verifies a closed command channel does not
// end the session early.
func TestRunClosedCommandChannel(t *testing.T) {
	cmds := make(chan Command)
	close(cmds)

	r := New(fastTimer(), nil, io.Discard, 2*time.Millisecond, quietLog())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry, err := r.Run(ctx, selection(), cmds)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, entry.Status)
}

// TestReadCommands verifies line parsing and that the channel closes at EOF.
func TestReadCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []Command
	for cmd := range ReadCommands(ctx, strings.NewReader("p\nhello\n S \nq\n")) {
		got = append(got, cmd)
	}
	assert.Equal(t, []Command{CommandPause, CommandStop, CommandStop}, got)
}

// TestReadCommandsCancel verifies the reader goroutine exits when the
// context ends before its command is received.
func TestReadCommandsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cmds := ReadCommands(ctx, strings.NewReader("p\np\n"))
	cancel()

	// Drain until closed; at most the pending commands arrive.
	n := 0
	for range cmds {
		n++
	}
	assert.LessOrEqual(t, n, 2)
}

// TestRender verifies the rendered line carries the instruction and
// feedback text and a progress bar.
func TestRender(t *testing.T) {
	line := Render(session.Update{
		Phase:       session.PhaseHolding,
		Instruction: "HOLD 12s",
		Feedback:    "Reps: 2/5 | Session Time: 43s",
		Progress:    0.4,
	})
	assert.Contains(t, line, "HOLD 12s")
	assert.Contains(t, line, "Reps: 2/5 | Session Time: 43s")
	assert.Contains(t, line, strings.Repeat("#", 8))
	assert.Contains(t, line, strings.Repeat("-", 12))
}

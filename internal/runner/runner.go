// Package runner drives one guided session from a terminal.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/claude/physiotrainer/internal/audio"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/session"
)

// Command is a user action read from the terminal.
type Command int

const (
	CommandPause Command = iota // toggles pause
	CommandStop
)

var (
	instructionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF66"))
	pausedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAA00"))
	feedbackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barFull          = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF66"))
	barEmpty         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const barWidth = 20

// Runner ticks a session.Timer at a fixed interval and renders each update.
type Runner struct {
	timer    *session.Timer
	player   audio.Player
	out      io.Writer
	interval time.Duration
	log      *slog.Logger
	last     string
}

// New creates a Runner. player may be nil.
func New(timer *session.Timer, player audio.Player, out io.Writer, interval time.Duration, log *slog.Logger) *Runner {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{timer: timer, player: player, out: out, interval: interval, log: log}
}

// Run starts a session for sel and ticks it until it completes, a stop
// command arrives, or ctx is done. Cancelling ctx stops the session like a
// stop command. The finished session's report is returned in every case.
func (r *Runner) Run(ctx context.Context, sel session.Selection, cmds <-chan Command) (models.ReportEntry, error) {
	r.render(r.timer.Start(sel))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.stop()

		case cmd, ok := <-cmds:
			if !ok {
				cmds = nil
				continue
			}
			r.log.Debug("terminal command", "command", cmd)
			switch cmd {
			case CommandPause:
				u, err := r.timer.TogglePause()
				if err != nil {
					return models.ReportEntry{}, fmt.Errorf("toggling pause: %w", err)
				}
				r.render(u)
			case CommandStop:
				return r.stop()
			}

		case <-ticker.C:
			u := r.timer.Tick()
			audio.PlayAll(r.player, u.Cues)
			r.render(u)
			if u.Report != nil {
				return *u.Report, nil
			}
		}
	}
}

func (r *Runner) stop() (models.ReportEntry, error) {
	u, err := r.timer.Stop()
	if err != nil {
		return models.ReportEntry{}, fmt.Errorf("stopping session: %w", err)
	}
	r.render(u)
	return *u.Report, nil
}

// render writes u when its visible text changed since the last frame.
func (r *Runner) render(u session.Update) {
	frame := Render(u)
	if frame == r.last {
		return
	}
	r.last = frame
	fmt.Fprintln(r.out, frame)
}

// Render formats an update as a single terminal line.
func Render(u session.Update) string {
	style := instructionStyle
	if u.Phase == session.PhasePaused {
		style = pausedStyle
	}
	filled := int(u.Progress * barWidth)
	bar := barFull.Render(strings.Repeat("#", filled)) + barEmpty.Render(strings.Repeat("-", barWidth-filled))
	return fmt.Sprintf("%s  [%s]  %s", style.Render(u.Instruction), bar, feedbackStyle.Render(u.Feedback))
}

// ReadCommands turns lines from in into commands: "p" pauses or resumes,
// "s" or "q" stops. The channel is closed at EOF or when ctx is done.
func ReadCommands(ctx context.Context, in io.Reader) <-chan Command {
	cmds := make(chan Command)
	go func() {
		defer close(cmds)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			var cmd Command
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "p":
				cmd = CommandPause
			case "s", "q":
				cmd = CommandStop
			default:
				continue
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()
	return cmds
}

// Package audio turns session cues into short tones.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/claude/physiotrainer/internal/session"
)

// Tone describes the beep the browser synthesizes for every cue.
type Tone struct {
	Waveform    string  `json:"waveform"`
	FrequencyHz float64 `json:"frequency_hz"`
	DurationMs  int     `json:"duration_ms"`
	Gain        float64 `json:"gain"`
}

// DefaultTone is a 200ms, 900Hz sine at low volume.
var DefaultTone = Tone{
	Waveform:    "sine",
	FrequencyHz: 900,
	DurationMs:  int((200 * time.Millisecond) / time.Millisecond),
	Gain:        0.15,
}

// Player plays a cue without waiting for playback to finish.
type Player interface {
	Play(cue session.Cue)
}

// PlayAll plays each cue in order.
func PlayAll(p Player, cues []session.Cue) {
	if p == nil {
		return
	}
	for _, c := range cues {
		p.Play(c)
	}
}

// Bell rings the terminal bell.
type Bell struct {
	w io.Writer
}

// NewBell creates a Bell writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Play writes the BEL control character.
func (b *Bell) Play(session.Cue) {
	_, _ = b.w.Write([]byte{'\a'})
}

// Recorder keeps every cue it is asked to play.
type Recorder struct {
	mu   sync.Mutex
	cues []session.Cue
}

// Play records the cue.
func (r *Recorder) Play(cue session.Cue) {
	r.mu.Lock()
	r.cues = append(r.cues, cue)
	r.mu.Unlock()
}

// Cues returns a copy of the recorded cues.
func (r *Recorder) Cues() []session.Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Cue(nil), r.cues...)
}

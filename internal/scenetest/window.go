// Package scenetest provides a scripted scene.Window for tests.
package scenetest

import (
	"image/color"
	"time"

	"github.com/bluebones-team/psyscene/scene"
)

// Frame is the refresh period of the fake display.
const Frame = 16 * time.Millisecond

// Op is one recorded drawing call.
type Op struct {
	Kind  string // "text", "fixation", "image", "flip"
	Text  string
	Color color.RGBA
	At    time.Duration
}

// Window is a fake display whose clock advances one Frame per flip.
// Scripted presses become visible once the clock reaches their time.
type Window struct {
	Ops      []Op
	Flips    int
	ImageErr error

	now        time.Duration
	pending    []scene.KeyPress
	frameStart int

	// Responder, when set, sees the drawing calls of every flipped frame
	// while no scripted press is waiting, and may schedule one.
	Responder func(frame []Op) (key string, after time.Duration, ok bool)
}

func NewWindow() *Window {
	return &Window{}
}

// Press schedules a key press after the given delay from now.
func (w *Window) Press(name string, after time.Duration) {
	w.pending = append(w.pending, scene.KeyPress{Name: name, Time: w.now + after})
}

func (w *Window) Clear() {}

func (w *Window) DrawText(text string, c color.RGBA) {
	w.Ops = append(w.Ops, Op{Kind: "text", Text: text, Color: c, At: w.now})
}

func (w *Window) DrawFixation() {
	w.Ops = append(w.Ops, Op{Kind: "fixation", At: w.now})
}

func (w *Window) DrawImage(path string) error {
	if w.ImageErr != nil {
		return w.ImageErr
	}
	w.Ops = append(w.Ops, Op{Kind: "image", Text: path, At: w.now})
	return nil
}

func (w *Window) Flip() time.Duration {
	frame := append([]Op(nil), w.Ops[w.frameStart:]...)
	w.now += Frame
	w.Flips++
	w.Ops = append(w.Ops, Op{Kind: "flip", At: w.now})
	w.frameStart = len(w.Ops)
	if len(w.pending) == 0 && w.Responder != nil {
		if name, after, ok := w.Responder(frame); ok {
			w.Press(name, after)
		}
	}
	return w.now
}

func (w *Window) PollKeys() []scene.KeyPress {
	var out, keep []scene.KeyPress
	for _, k := range w.pending {
		if k.Time <= w.now {
			out = append(out, k)
		} else {
			keep = append(keep, k)
		}
	}
	w.pending = keep
	return out
}

func (w *Window) Now() time.Duration {
	return w.now
}

// Trigger records trigger box calls.
type Trigger struct {
	Calls []string
}

func (t *Trigger) Set(lines string)   { t.Calls = append(t.Calls, "set:"+lines) }
func (t *Trigger) Unset(lines string) { t.Calls = append(t.Calls, "unset:"+lines) }

// Sounds records played sounds.
type Sounds struct {
	Played []string
}

func (s *Sounds) Play(name string) error {
	s.Played = append(s.Played, name)
	return nil
}

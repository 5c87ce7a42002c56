package scene

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrAborted is returned by Show when the participant presses escape.
var ErrAborted = errors.New("experiment aborted")

// Stage names a point in the show cycle where hooks run.
type Stage string

const (
	// StageSetup runs before the first frame is drawn.
	StageSetup Stage = "setup"
	// StageDrawn runs right after the first flip.
	StageDrawn Stage = "drawn"
	// StageFrame runs before every later frame.
	StageFrame Stage = "frame"
)

// Keys recorded by every show.
const (
	ShowTime     = "show_time"
	CloseTime    = "close_time"
	ResponseTime = "response_time"
	Keys         = "keys"
)

// AnyKey passed to CloseOn closes the scene on any key but escape.
const AnyKey = "any"

// Params are the values passed to one show and readable through Get.
type Params map[string]any

// Scene is a display unit shown until one of its close keys is pressed or
// its duration elapses.
type Scene struct {
	ctx       *Context
	drawables []Drawable
	closeKeys []string
	duration  time.Duration
	trigger   string
	hooks     map[Stage][]func(*Scene)
	data      Params
}

// CloseOn adds keys that end the scene.
func (s *Scene) CloseOn(keys ...string) *Scene {
	s.closeKeys = append(s.closeKeys, keys...)
	return s
}

// Duration sets how long the scene stays up when no close key is pressed.
func (s *Scene) Duration(d time.Duration) *Scene {
	s.duration = d
	return s
}

// Hook registers fn to run at stage.
func (s *Scene) Hook(stage Stage, fn func(*Scene)) *Scene {
	s.hooks[stage] = append(s.hooks[stage], fn)
	return s
}

// Trigger raises the given trigger box lines at onset and lowers them when
// the scene closes.
func (s *Scene) Trigger(lines string) *Scene {
	s.trigger = lines
	return s
}

// Show presents the scene with its configured duration.
func (s *Scene) Show(p Params) error {
	return s.show(s.duration, p)
}

// ShowFor presents the scene for d, overriding the configured duration.
func (s *Scene) ShowFor(d time.Duration, p Params) error {
	return s.show(d, p)
}

// Get returns a value of the last show: a parameter or one of ShowTime,
// CloseTime, ResponseTime and Keys.
func (s *Scene) Get(name string) any {
	return s.data[name]
}

// GetString returns a string parameter of the last show.
func (s *Scene) GetString(name string) string {
	v, _ := s.data[name].(string)
	return v
}

// Time returns a duration value of the last show, zero when unset.
func (s *Scene) Time(name string) time.Duration {
	v, _ := s.data[name].(time.Duration)
	return v
}

// Keys returns the keys that closed the last show.
func (s *Scene) Keys() []KeyPress {
	v, _ := s.data[Keys].([]KeyPress)
	return v
}

// RT is the response time relative to onset of the last show.
func (s *Scene) RT() time.Duration {
	return s.Time(ResponseTime) - s.Time(ShowTime)
}

func (s *Scene) show(d time.Duration, p Params) error {
	w := s.ctx.Win
	s.data = make(Params, len(p)+4)
	for k, v := range p {
		s.data[k] = v
	}

	s.run(StageSetup)
	// Presses made before onset do not count as responses, but escape
	// still aborts.
	for _, k := range w.PollKeys() {
		if k.Name == KeyEscape {
			s.data[CloseTime] = k.Time
			return ErrAborted
		}
	}
	if err := s.draw(); err != nil {
		return err
	}
	onset := w.Flip()
	s.data[ShowTime] = onset
	if s.trigger != "" && s.ctx.Trigger != nil {
		s.ctx.Trigger.Set(s.trigger)
		defer s.ctx.Trigger.Unset(s.trigger)
	}
	s.run(StageDrawn)
	s.ctx.Logger.Debug("scene shown", "onset", onset, "duration", d, "close_on", s.closeKeys)

	if d <= 0 && len(s.closeKeys) == 0 {
		s.data[CloseTime] = onset
		return nil
	}

	for {
		for _, k := range w.PollKeys() {
			if k.Name == KeyEscape {
				s.data[CloseTime] = k.Time
				return ErrAborted
			}
			if slices.Contains(s.closeKeys, k.Name) || slices.Contains(s.closeKeys, AnyKey) {
				s.data[Keys] = []KeyPress{k}
				s.data[ResponseTime] = k.Time
				s.data[CloseTime] = k.Time
				return nil
			}
		}
		if now := w.Now(); d > 0 && now-onset >= d {
			s.data[CloseTime] = now
			return nil
		}
		s.run(StageFrame)
		if err := s.draw(); err != nil {
			return err
		}
		w.Flip()
	}
}

func (s *Scene) draw() error {
	s.ctx.Win.Clear()
	for _, d := range s.drawables {
		if err := d.Draw(s.ctx.Win); err != nil {
			return fmt.Errorf("draw %T: %w", d, err)
		}
	}
	return nil
}

func (s *Scene) run(stage Stage) {
	for _, fn := range s.hooks[stage] {
		fn(s)
	}
}

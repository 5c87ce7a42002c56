package scene

import (
	"image/color"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/internal/logging"
)

// Context ties a window to the experiment handler that records trials.
type Context struct {
	Win     Window
	Exp     *data.ExperimentHandler
	Trigger Trigger
	Sounds  Sounder
	Logger  *slog.Logger
	Rand    *rand.Rand

	// TextColor is used by Text and TextStim.
	TextColor color.RGBA

	// OnProgress, when set, is told after each recorded trial.
	OnProgress func(n, total int)
}

// Option configures a Context.
type Option func(*Context)

// WithTrigger attaches a trigger box.
func WithTrigger(t Trigger) Option {
	return func(c *Context) {
		c.Trigger = t
	}
}

// WithSounds attaches a sound bank used for feedback.
func WithSounds(s Sounder) Option {
	return func(c *Context) {
		c.Sounds = s
	}
}

// WithLogger sets the logger scenes report to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.Logger = l
	}
}

// WithRand sets the random source for colours and blank durations.
func WithRand(r *rand.Rand) Option {
	return func(c *Context) {
		c.Rand = r
	}
}

// WithTextColor sets the colour of text stimuli.
func WithTextColor(col color.RGBA) Option {
	return func(c *Context) {
		c.TextColor = col
	}
}

// WithProgress sets the callback run after each recorded trial.
func WithProgress(fn func(n, total int)) Option {
	return func(c *Context) {
		c.OnProgress = fn
	}
}

// New returns a Context drawing on win and recording into exp. Without
// options it logs nowhere, draws white text and seeds its own generator.
func New(win Window, exp *data.ExperimentHandler, opts ...Option) *Context {
	c := &Context{
		Win:       win,
		Exp:       exp,
		Logger:    logging.NewNop(),
		Rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		TextColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scene creates a scene drawing the given stimuli in order.
func (c *Context) Scene(drawables ...Drawable) *Scene {
	return &Scene{
		ctx:       c,
		drawables: drawables,
		hooks:     map[Stage][]func(*Scene){},
	}
}

// TextStim creates a text stimulus in the context's text colour.
func (c *Context) TextStim() *TextStim {
	return &TextStim{Color: c.TextColor}
}

// Text creates a scene showing a fixed message.
func (c *Context) Text(msg string) *Scene {
	return c.Scene(&TextStim{Text: msg, Color: c.TextColor})
}

// Fixation creates a fixation cross scene shown for d.
func (c *Context) Fixation(d time.Duration) *Scene {
	return c.Scene(Fixation{}).Duration(d)
}

// Blank creates an empty screen shown for d.
func (c *Context) Blank(d time.Duration) *Scene {
	return c.Scene().Duration(d)
}

// Image creates a scene showing the image at path.
func (c *Context) Image(path string) *Scene {
	return c.Scene(&ImageStim{Path: path})
}

// AddLine records one trial from alternating keys and values.
func (c *Context) AddLine(kv ...any) error {
	line, err := data.Pairs(kv...)
	if err != nil {
		return err
	}
	c.Exp.AddLine(line)
	c.Logger.Debug("line added", "fields", len(line))
	return nil
}

// Progress reports that trial n of total has been recorded.
func (c *Context) Progress(n, total int) {
	if c.OnProgress != nil {
		c.OnProgress(n, total)
	}
}

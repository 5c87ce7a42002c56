package tasks_test

import (
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/internal/scenetest"
	"github.com/bluebones-team/psyscene/scene"
	"github.com/bluebones-team/psyscene/tasks"
)

var (
	green = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

const reactionDelay = 250 * time.Millisecond

// answer responds to every frame that shows text: instruction screens get
// space, stimuli get the key chosen by pick after reactionDelay.
func answer(pick func(c color.RGBA) string) func([]scenetest.Op) (string, time.Duration, bool) {
	return func(frame []scenetest.Op) (string, time.Duration, bool) {
		for _, op := range frame {
			if op.Kind != "text" {
				continue
			}
			if strings.HasPrefix(op.Text, "Please") {
				return "space", 10 * time.Millisecond, true
			}
			return pick(op.Color), reactionDelay, true
		}
		return "", 0, false
	}
}

func setup(t *testing.T, opts ...scene.Option) (*scenetest.Window, *scene.Context, *data.TrialHandler[int]) {
	t.Helper()
	w := scenetest.NewWindow()
	exp := data.NewExperimentHandler("rt", data.Entry{{Key: "user_id", Value: "zs123"}})
	trials, err := data.NewTrialHandler([]int{5, 17, 63}, 1, data.Sequential, nil)
	require.NoError(t, err)
	exp.AddLoop("trials", trials)

	opts = append([]scene.Option{scene.WithRand(rand.New(rand.NewPCG(11, 12)))}, opts...)
	return w, scene.New(w, exp, opts...), trials
}

func TestSimpleRT(t *testing.T) {
	var progress [][2]int
	w, ctx, trials := setup(t, scene.WithProgress(func(n, total int) {
		progress = append(progress, [2]int{n, total})
	}))
	w.Responder = answer(func(color.RGBA) string { return "space" })

	entries, err := tasks.SimpleRT(ctx, trials)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	for i, want := range []string{"5", "17", "63"} {
		text, _ := entries[i].Get("text")
		assert.Equal(t, want, text)
		rt, _ := entries[i].Get("rt")
		assert.InDelta(t, reactionDelay.Seconds(), rt, 1e-9)
		_, hasColor := entries[i].Get("color")
		assert.False(t, hasColor)
		user, _ := entries[i].Get("user_id")
		assert.Equal(t, "zs123", user)
	}

	// Guide first, then one fixation per trial before each reaction text.
	var sequence []string
	for _, op := range w.Ops {
		if op.Kind == "flip" {
			continue
		}
		if n := len(sequence); n > 0 && sequence[n-1] == op.Kind+op.Text {
			continue
		}
		sequence = append(sequence, op.Kind+op.Text)
	}
	assert.Equal(t, []string{
		"textPlease press space when the stimulus appears.",
		"fixation", "text5",
		"fixation", "text17",
		"fixation", "text63",
	}, sequence)
}

func TestIdentificationRT(t *testing.T) {
	w, ctx, trials := setup(t)
	w.Responder = answer(func(color.RGBA) string { return "space" })

	entries, err := tasks.IdentificationRT(ctx, trials)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		c, ok := e.Get("color")
		require.True(t, ok)
		assert.Contains(t, []string{"red", "green"}, c)
		rt, _ := e.Get("rt")
		assert.InDelta(t, reactionDelay.Seconds(), rt, 1e-9)

		// The stimulus is drawn in the colour that was recorded.
		want, ok := scene.NamedColor(c.(string))
		require.True(t, ok)
		text, _ := e.Get("text")
		var drawn int
		for _, op := range w.Ops {
			if op.Kind == "text" && op.Text == text {
				assert.Equal(t, want, op.Color, "trial %s", text)
				drawn++
			}
		}
		assert.Positive(t, drawn, "trial %s", text)
	}
}

type timing struct {
	fixation time.Duration
	blank    time.Duration
}

// trialTimings reads the fixation and blank durations of each trial from
// the drawing log. The fixation lasts from its first to its last draw plus
// one frame. The blank draws nothing: it starts one frame after the last
// fixation draw and ends when the stimulus text is first drawn, one frame
// after its final flip.
func trialTimings(ops []scenetest.Op) []timing {
	var (
		out         []timing
		first, last time.Duration
		inFixation  bool
	)
	for _, op := range ops {
		switch op.Kind {
		case "fixation":
			if !inFixation {
				first = op.At
				inFixation = true
			}
			last = op.At
		case "text":
			if inFixation {
				out = append(out, timing{
					fixation: last - first,
					blank:    op.At - last - 2*scenetest.Frame,
				})
				inFixation = false
			}
		}
	}
	return out
}

func TestTrialTimings(t *testing.T) {
	picks := map[string]func(color.RGBA) string{
		"simple":         func(color.RGBA) string { return "space" },
		"identification": func(color.RGBA) string { return "space" },
		"selection": func(c color.RGBA) string {
			if c == green {
				return "f"
			}
			return "j"
		},
	}
	for _, name := range tasks.Names() {
		t.Run(name, func(t *testing.T) {
			task, err := tasks.Lookup(name)
			require.NoError(t, err)
			w, ctx, trials := setup(t)
			w.Responder = answer(picks[name])

			_, err = task(ctx, trials)
			require.NoError(t, err)

			got := trialTimings(w.Ops)
			require.Len(t, got, trials.Len())
			for i, tm := range got {
				assert.GreaterOrEqual(t, tm.fixation, time.Second, "trial %d", i)
				assert.Less(t, tm.fixation, time.Second+scenetest.Frame, "trial %d", i)
				// Blank durations are drawn from [0, 1s) and rounded up to
				// whole frames.
				assert.GreaterOrEqual(t, tm.blank, time.Duration(0), "trial %d", i)
				assert.Less(t, tm.blank, time.Second+scenetest.Frame, "trial %d", i)
				assert.Zero(t, tm.blank%scenetest.Frame, "trial %d", i)
			}
		})
	}
}

func TestSelectionRT(t *testing.T) {
	t.Run("correct responses", func(t *testing.T) {
		w, ctx, trials := setup(t)
		w.Responder = answer(func(c color.RGBA) string {
			if c == green {
				return "f"
			}
			return "j"
		})

		entries, err := tasks.SelectionRT(ctx, trials)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for _, e := range entries {
			correct, _ := e.Get("correct")
			assert.Equal(t, true, correct)
		}
	})

	t.Run("wrong responses play feedback", func(t *testing.T) {
		sounds := &scenetest.Sounds{}
		w, ctx, trials := setup(t, scene.WithSounds(sounds))
		w.Responder = answer(func(c color.RGBA) string {
			if c == green {
				return "j"
			}
			return "f"
		})

		entries, err := tasks.SelectionRT(ctx, trials)
		require.NoError(t, err)
		for _, e := range entries {
			correct, _ := e.Get("correct")
			assert.Equal(t, false, correct)
		}
		assert.Equal(t, []string{tasks.FeedbackError, tasks.FeedbackError, tasks.FeedbackError}, sounds.Played)
	})
}

func TestSelectionGuide(t *testing.T) {
	assert.Equal(t,
		"Please\npress f when the green stimulus appears.\npress j when the red stimulus appears.",
		tasks.SelectionGuide())
}

func TestAbortStopsTask(t *testing.T) {
	w, ctx, trials := setup(t)
	w.Responder = func(frame []scenetest.Op) (string, time.Duration, bool) {
		return scene.KeyEscape, 0, true
	}

	_, err := tasks.SimpleRT(ctx, trials)
	assert.ErrorIs(t, err, scene.ErrAborted)
	assert.Empty(t, ctx.Exp.Entries())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"simple", "identification", "selection"} {
		fn, err := tasks.Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}

	_, err := tasks.Lookup("go-nogo")
	assert.ErrorIs(t, err, tasks.ErrUnknownTask)
	assert.Equal(t, []string{"identification", "selection", "simple"}, tasks.Names())
}

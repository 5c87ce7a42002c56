// Package tasks holds the reaction-time paradigms.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/scene"
)

// FeedbackError is the sound played after a wrong selection response.
const FeedbackError = "error"

// reactionTrigger marks reaction onset on the trigger box.
const reactionTrigger = "1"

// randomBlank returns a duration uniformly drawn from [0, 1s).
func randomBlank(ctx *scene.Context) time.Duration {
	return time.Duration(ctx.Rand.Float64() * float64(time.Second))
}

// SimpleRT is the simple reaction time task.
func SimpleRT[T any](ctx *scene.Context, trials *data.TrialHandler[T]) ([]data.Entry, error) {
	stim := ctx.TextStim()
	reaction := ctx.Scene(stim).CloseOn("space").Trigger(reactionTrigger).
		Hook(scene.StageSetup, func(s *scene.Scene) {
			stim.Text = s.GetString("text")
		})

	guide := ctx.Text("Please press space when the stimulus appears.").CloseOn("space")
	fixation := ctx.Fixation(time.Second)
	blank := ctx.Blank(0)

	if err := guide.Show(nil); err != nil {
		return nil, err
	}
	for v := range trials.All() {
		text := fmt.Sprint(v)

		if err := fixation.Show(nil); err != nil {
			return nil, err
		}
		if err := blank.ShowFor(randomBlank(ctx), nil); err != nil {
			return nil, err
		}
		if err := reaction.Show(scene.Params{"text": text}); err != nil {
			return nil, err
		}
		if err := ctx.AddLine(
			"text", text,
			"rt", reaction.RT().Seconds(),
		); err != nil {
			return nil, err
		}
		ctx.Progress(trials.ThisN+1, trials.Len())
	}
	return ctx.Exp.Entries(), nil
}

// IdentificationRT is the identification reaction time task: respond only
// to green stimuli.
func IdentificationRT[T any](ctx *scene.Context, trials *data.TrialHandler[T]) ([]data.Entry, error) {
	colors := []string{"red", "green"}
	stim := ctx.TextStim()
	reaction := ctx.Scene(stim).CloseOn("space").Trigger(reactionTrigger).
		Hook(scene.StageSetup, func(s *scene.Scene) {
			stim.Text = s.GetString("text")
			stim.SetColor(s.GetString("color"))
		})

	guide := ctx.Text("Please press space when the green stimulus appears.").CloseOn("space")
	fixation := ctx.Fixation(time.Second)
	blank := ctx.Blank(0)

	if err := guide.Show(nil); err != nil {
		return nil, err
	}
	for v := range trials.All() {
		text := fmt.Sprint(v)
		color := colors[ctx.Rand.IntN(len(colors))]

		if err := fixation.Show(nil); err != nil {
			return nil, err
		}
		if err := blank.ShowFor(randomBlank(ctx), nil); err != nil {
			return nil, err
		}
		if err := reaction.Show(scene.Params{"text": text, "color": color}); err != nil {
			return nil, err
		}
		if err := ctx.AddLine(
			"text", text,
			"color", color,
			"rt", reaction.RT().Seconds(),
		); err != nil {
			return nil, err
		}
		ctx.Progress(trials.ThisN+1, trials.Len())
	}
	return ctx.Exp.Entries(), nil
}

// selectionKeys maps each response key to the colour it answers.
var selectionKeys = []struct{ key, color string }{
	{"f", "green"},
	{"j", "red"},
}

// SelectionGuide is the instruction text of the selection task.
func SelectionGuide() string {
	lines := make([]string, len(selectionKeys))
	for i, kc := range selectionKeys {
		lines[i] = fmt.Sprintf("press %s when the %s stimulus appears.", kc.key, kc.color)
	}
	return "Please\n" + strings.Join(lines, "\n")
}

// SelectionRT is the two-alternative selection reaction time task.
func SelectionRT[T any](ctx *scene.Context, trials *data.TrialHandler[T]) ([]data.Entry, error) {
	keyColor := make(map[string]string, len(selectionKeys))
	keys := make([]string, 0, len(selectionKeys))
	colors := make([]string, 0, len(selectionKeys))
	for _, kc := range selectionKeys {
		keyColor[kc.key] = kc.color
		keys = append(keys, kc.key)
		colors = append(colors, kc.color)
	}

	stim := ctx.TextStim()
	reaction := ctx.Scene(stim).CloseOn(keys...).Trigger(reactionTrigger).
		Hook(scene.StageSetup, func(s *scene.Scene) {
			stim.Text = s.GetString("text")
			stim.SetColor(s.GetString("color"))
		})

	guide := ctx.Text(SelectionGuide()).CloseOn("space")
	fixation := ctx.Fixation(time.Second)
	blank := ctx.Blank(0)

	if err := guide.Show(nil); err != nil {
		return nil, err
	}
	for v := range trials.All() {
		text := fmt.Sprint(v)
		color := colors[ctx.Rand.IntN(len(colors))]

		if err := fixation.Show(nil); err != nil {
			return nil, err
		}
		if err := blank.ShowFor(randomBlank(ctx), nil); err != nil {
			return nil, err
		}
		if err := reaction.Show(scene.Params{"text": text, "color": color}); err != nil {
			return nil, err
		}
		pressed := reaction.Keys()
		if len(pressed) == 0 {
			return nil, fmt.Errorf("trial %d: reaction closed without a key", trials.ThisN)
		}
		correct := keyColor[pressed[0].Name] == color
		if !correct && ctx.Sounds != nil {
			if err := ctx.Sounds.Play(FeedbackError); err != nil {
				ctx.Logger.Warn("feedback sound failed", "error", err)
			}
		}
		if err := ctx.AddLine(
			"text", text,
			"color", color,
			"rt", reaction.RT().Seconds(),
			"correct", correct,
		); err != nil {
			return nil, err
		}
		ctx.Progress(trials.ThisN+1, trials.Len())
	}
	return ctx.Exp.Entries(), nil
}

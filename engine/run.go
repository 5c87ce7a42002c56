package engine

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/scene"
	"github.com/bluebones-team/psyscene/tasks"
)

// dlpBaud is the DLP-IO8-G line speed.
const dlpBaud = 9600

// startTrigger marks the start of the task on the trigger box.
const startTrigger = "2"

// Run opens the display, runs the configured task and saves the results.
// Results gathered before an abort are still written.
func Run(cfg *Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	task, err := tasks.Lookup(cfg.Task)
	if err != nil {
		return err
	}

	flags := sdl.INIT_VIDEO | sdl.INIT_EVENTS
	if cfg.FeedbackSound != "" {
		flags |= sdl.INIT_AUDIO
	}
	if err := sdl.Init(flags); err != nil {
		return fmt.Errorf("SDL_Init: %w", err)
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return fmt.Errorf("TTF_Init: %w", err)
	}
	defer ttf.Quit()

	win, err := OpenWindow(cfg, logger)
	if err != nil {
		return err
	}
	defer win.Close()

	rng := NewRand(cfg.Seed)
	exp, trials, err := NewHandlers(cfg, rng)
	if err != nil {
		return err
	}

	opts := []scene.Option{
		scene.WithLogger(logger),
		scene.WithRand(rng),
		scene.WithTextColor(color.RGBA(cfg.TextColor)),
	}

	var dlp *DLPIO8G
	if cfg.DLPDevice != "" {
		dlp, err = NewDLPIO8G(cfg.DLPDevice, dlpBaud, logger)
		if err != nil {
			logger.Warn("failed to initialize DLP device", "device", cfg.DLPDevice, "error", err)
		} else {
			defer dlp.Close()
			opts = append(opts, scene.WithTrigger(dlp))
		}
	}

	if cfg.FeedbackSound != "" {
		bank, err := OpenSoundBank()
		if err == nil {
			err = bank.Load(tasks.FeedbackError, cfg.FeedbackSound)
			if err == nil {
				defer bank.Close()
				opts = append(opts, scene.WithSounds(bank))
			} else {
				bank.Close()
			}
		}
		if err != nil {
			logger.Warn("feedback sound disabled", "path", cfg.FeedbackSound, "error", err)
		}
	}

	opts = append(opts, scene.WithProgress(progressTo(os.Stdout)))
	ctx := scene.New(win, exp, opts...)
	logger.Info("starting task", "task", cfg.Task, "trials", trials.Len(), "participant", cfg.Participant)
	return runSession(ctx, cfg, task, trials, os.Stdout)
}

// pulser is a trigger that can mark an instant, like the DLP-IO8-G.
type pulser interface {
	Pulse(lines string, ms int)
}

// runSession shows the start splash, the task and the end splash, then
// writes the timestamped results file. Whatever was recorded before an
// error is saved and the error is returned.
func runSession(ctx *scene.Context, cfg *Config, task tasks.Func, trials *data.TrialHandler[int], out io.Writer) error {
	runErr := showSplash(ctx, cfg.StartSplash)
	if runErr == nil {
		if p, ok := ctx.Trigger.(pulser); ok {
			p.Pulse(startTrigger, 5)
		}
		_, runErr = task(ctx, trials)
	}
	if runErr == nil {
		runErr = showSplash(ctx, cfg.EndSplash)
	}
	fmt.Fprintln(out)
	if runErr != nil {
		ctx.Logger.Warn("run stopped early", "task", cfg.Task, "trials_done", len(ctx.Exp.Entries()), "error", runErr)
	}

	outputName := TimestampedName(cfg.OutputFile, time.Now())
	written, err := ctx.Exp.SaveAsWideText(outputName, data.WideTextOptions{})
	if err != nil {
		return errors.Join(runErr, fmt.Errorf("save results: %w", err))
	}
	fmt.Fprintf(out, "Results saved to %s\n", written)
	return runErr
}

// progressTo prints the running trial count on a single line.
func progressTo(w io.Writer) func(n, total int) {
	return func(n, total int) {
		fmt.Fprintf(w, "\rTrial: %d/%d ", n, total)
	}
}

// NewHandlers samples the trial values and builds the handlers for cfg.
func NewHandlers(cfg *Config, rng *rand.Rand) (*data.ExperimentHandler, *data.TrialHandler[int], error) {
	population := make([]int, TrialPopulation)
	for i := range population {
		population[i] = i
	}
	values, err := data.Sample(rng, population, cfg.Trials)
	if err != nil {
		return nil, nil, err
	}
	method, err := data.ParseMethod(cfg.Method)
	if err != nil {
		return nil, nil, err
	}
	trials, err := data.NewTrialHandler(values, cfg.Reps, method, rng)
	if err != nil {
		return nil, nil, err
	}

	exp := data.NewExperimentHandler(cfg.Task, data.Entry{{Key: "user_id", Value: cfg.Participant}})
	exp.AddLoop("trials", trials)
	return exp, trials, nil
}

// NewRand seeds a generator; seed 0 picks a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// TimestampedName inserts _YYYYMMDD-HHMMSS before the extension of name.
func TimestampedName(name string, t time.Time) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + t.Format("20060102-150405") + ext
}

func showSplash(ctx *scene.Context, path string) error {
	if path == "" {
		return nil
	}
	return ctx.Image(path).CloseOn(scene.AnyKey).Show(nil)
}

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bluebones-team/psyscene/engine"
	"github.com/bluebones-team/psyscene/internal/logging"
	"github.com/bluebones-team/psyscene/scene"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a reaction time task",
	Long: `Runs one task (simple, identification or selection) full screen and
writes the trial records to the output file, suffixed with a timestamp.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), args)
		if err != nil {
			return err
		}
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		err = runEngine(cfg, logger)
		if errors.Is(err, scene.ErrAborted) {
			logger.Info("run aborted by participant, partial results saved")
		}
		return err
	},
}

// runEngine is replaced in tests.
var runEngine = engine.Run

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

func addRunFlags(f *pflag.FlagSet) {
	f.StringP("config", "c", "", "YAML experiment file")
	f.StringP("output", "o", "results.csv", "Output results file (.csv, otherwise tab separated)")
	f.IntP("trials", "n", 10, "Number of trial values sampled from 0-99")
	f.Int("reps", 1, "Repetitions of the trial list")
	f.String("method", "sequential", "Trial order: sequential, random, fullRandom")
	f.Uint64("seed", 0, "Random seed (0 = random)")
	f.StringP("participant", "p", "anonymous", "Participant id stored as user_id")
	f.Int("width", 1920, "Screen width")
	f.Int("height", 1080, "Screen height")
	f.Bool("fullscreen", true, "Enable fullscreen")
	f.Bool("no-vsync", false, "Disable VSync")
	f.String("font", "", "TTF font file")
	f.String("dlp", "", "DLP-IO8-G device")
	f.String("feedback-sound", "", "WAV played after a wrong selection response")
	f.String("start-splash", "", "Start splash image")
	f.String("end-splash", "", "End splash image")
}

// loadConfig builds the run configuration: defaults, then the YAML file,
// then every flag the user set explicitly.
func loadConfig(flags *pflag.FlagSet, args []string) (*engine.Config, error) {
	cfg := engine.DefaultConfig()

	if path, _ := flags.GetString("config"); path != "" {
		if err := engine.LoadConfig(path, cfg); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		cfg.Task = args[0]
	}

	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("output", &cfg.OutputFile)
	str("method", &cfg.Method)
	str("participant", &cfg.Participant)
	str("font", &cfg.FontFile)
	str("dlp", &cfg.DLPDevice)
	str("feedback-sound", &cfg.FeedbackSound)
	str("start-splash", &cfg.StartSplash)
	str("end-splash", &cfg.EndSplash)
	str("log-level", &cfg.LogLevel)
	num("trials", &cfg.Trials)
	num("reps", &cfg.Reps)
	num("width", &cfg.ScreenWidth)
	num("height", &cfg.ScreenHeight)
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("fullscreen") {
		cfg.Fullscreen, _ = flags.GetBool("fullscreen")
	}
	if flags.Changed("no-vsync") {
		noVSync, _ := flags.GetBool("no-vsync")
		cfg.VSync = !noVSync
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

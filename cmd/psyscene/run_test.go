package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebones-team/psyscene/engine"
	"github.com/bluebones-team/psyscene/scene"
	"github.com/bluebones-team/psyscene/tasks"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("run", pflag.ContinueOnError)
	addRunFlags(f)
	f.String("log-level", "info", "")
	require.NoError(t, f.Parse(args))
	return f
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(parse(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "simple", cfg.Task)
	assert.Equal(t, 10, cfg.Trials)
	assert.Equal(t, "results.csv", cfg.OutputFile)
	assert.True(t, cfg.VSync)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
task: identification
trials: 20
participant: zs123
text_color: yellow
`), 0o644))

	cfg, err := loadConfig(parse(t, "--config", path, "--trials", "5", "--no-vsync"), []string{"selection"})
	require.NoError(t, err)
	assert.Equal(t, "selection", cfg.Task)
	assert.Equal(t, 5, cfg.Trials)
	assert.Equal(t, "zs123", cfg.Participant)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "results.csv"), cfg.OutputFile)
	assert.Equal(t, uint8(255), cfg.TextColor.R)
	assert.Equal(t, uint8(0), cfg.TextColor.B)
	assert.False(t, cfg.VSync)
}

func TestLoadConfig_OutputFlagStaysRelative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_file: data/out.tsv\n"), 0o644))

	cfg, err := loadConfig(parse(t, "--config", path), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "out.tsv"), cfg.OutputFile)

	cfg, err = loadConfig(parse(t, "--config", path, "--output", "mine.csv"), nil)
	require.NoError(t, err)
	assert.Equal(t, "mine.csv", cfg.OutputFile)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(parse(t), []string{"stroop"})
	assert.ErrorIs(t, err, tasks.ErrUnknownTask)

	_, err = loadConfig(parse(t, "--trials", "101"), nil)
	assert.Error(t, err)

	_, err = loadConfig(parse(t, "--method", "shuffle"), nil)
	assert.Error(t, err)
}

func TestRunCmd_AbortIsAnError(t *testing.T) {
	var got *engine.Config
	runEngine = func(cfg *engine.Config, _ *slog.Logger) error {
		got = cfg
		return scene.ErrAborted
	}
	t.Cleanup(func() {
		runEngine = engine.Run
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"run", "selection", "--trials", "3", "--log-level", "error"})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, scene.ErrAborted)
	require.NotNil(t, got)
	assert.Equal(t, "selection", got.Task)
	assert.Equal(t, 3, got.Trials)
}

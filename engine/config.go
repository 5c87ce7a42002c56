package engine

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"gopkg.in/yaml.v3"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/scene"
	"github.com/bluebones-team/psyscene/tasks"
)

// TrialPopulation is the size of the value range trials are sampled from.
const TrialPopulation = 100

// Color is an RGBA colour that decodes from a name or "R,G,B[,A]".
type Color color.RGBA

func (c Color) SDL() sdl.Color {
	return sdl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts colour names ("red", "darkgrey") or comma separated
// components. Alpha defaults to 255.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := scene.NamedColor(s); ok {
		return Color(c), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	var v [4]uint8
	v[3] = 255
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		v[i] = uint8(n)
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// Config holds the settings of one run, read from YAML and flags.
type Config struct {
	Task          string `yaml:"task"`
	OutputFile    string `yaml:"output_file"`
	Participant   string `yaml:"participant"`
	StartSplash   string `yaml:"start_splash"`
	EndSplash     string `yaml:"end_splash"`
	FontFile      string `yaml:"font_file"`
	DLPDevice     string `yaml:"dlp_device"`
	FeedbackSound string `yaml:"feedback_sound"`
	LogLevel      string `yaml:"log_level"`

	Trials int    `yaml:"trials"`
	Reps   int    `yaml:"reps"`
	Method string `yaml:"method"`
	Seed   uint64 `yaml:"seed"`

	ScreenWidth  int     `yaml:"screen_width"`
	ScreenHeight int     `yaml:"screen_height"`
	ScaleFactor  float32 `yaml:"scale_factor"`
	Fullscreen   bool    `yaml:"fullscreen"`
	VSync        bool    `yaml:"vsync"`
	Monitor      Monitor `yaml:"monitor"`
	// TextHeight and FixationSize are in degrees of visual angle.
	TextHeight   float64 `yaml:"text_height"`
	FixationSize float64 `yaml:"fixation_size"`

	BGColor       Color `yaml:"bg_color"`
	TextColor     Color `yaml:"text_color"`
	FixationColor Color `yaml:"fixation_color"`
}

// DefaultConfig returns the settings used when neither file nor flag sets them.
func DefaultConfig() *Config {
	return &Config{
		Task:          "simple",
		OutputFile:    "results.csv",
		Participant:   "anonymous",
		LogLevel:      "info",
		Trials:        10,
		Reps:          1,
		Method:        string(data.Sequential),
		ScreenWidth:   1920,
		ScreenHeight:  1080,
		ScaleFactor:   1.0,
		Fullscreen:    true,
		VSync:         true,
		Monitor:       DefaultMonitor(),
		TextHeight:    1.0,
		FixationSize:  1.0,
		BGColor:       Color{R: 128, G: 128, B: 128, A: 255},
		TextColor:     Color{R: 255, G: 255, B: 255, A: 255},
		FixationColor: Color{R: 255, G: 255, B: 255, A: 255},
	}
}

// LoadConfig overlays the YAML file at path onto cfg. Unknown keys are an
// error so typos do not silently fall back to defaults. Relative file
// paths, the default output file included, are taken from the directory
// holding the YAML file.
func LoadConfig(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.OutputFile, &cfg.StartSplash, &cfg.EndSplash, &cfg.FontFile, &cfg.FeedbackSound} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return nil
}

// Validate checks the settings Run depends on.
func (cfg *Config) Validate() error {
	if _, err := tasks.Lookup(cfg.Task); err != nil {
		return err
	}
	if _, err := data.ParseMethod(cfg.Method); err != nil {
		return err
	}
	if cfg.Trials < 1 || cfg.Trials > TrialPopulation {
		return fmt.Errorf("trials must be between 1 and %d, got %d", TrialPopulation, cfg.Trials)
	}
	if cfg.Reps < 1 {
		return fmt.Errorf("reps must be at least 1, got %d", cfg.Reps)
	}
	if cfg.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	if cfg.ScreenWidth <= 0 || cfg.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.Monitor.WidthCM <= 0 || cfg.Monitor.DistanceCM <= 0 {
		return fmt.Errorf("monitor width and distance must be positive")
	}
	return nil
}

package engine

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/bluebones-team/psyscene/scene"
)

// lineSpacing is the gap between wrapped text lines relative to line height.
const lineSpacing = 0.2

// Window is the SDL3 implementation of scene.Window.
type Window struct {
	cfg      *Config
	window   *sdl.Window
	renderer *sdl.Renderer
	font     *ttf.Font
	cache    *TextureCache
	logger   *slog.Logger

	crossSize float32
	start     uint64
}

// OpenWindow creates the presentation window. SDL and TTF must already be
// initialised.
func OpenWindow(cfg *Config, logger *slog.Logger) (*Window, error) {
	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}

	window, renderer, err := sdl.CreateWindowAndRenderer("psyscene", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	textPx := cfg.Monitor.DegToPix(cfg.TextHeight, cfg.ScreenWidth)
	var font *ttf.Font
	if fontPath != "" {
		font, err = ttf.OpenFont(fontPath, float32(textPx))
		if err != nil {
			logger.Warn("failed to load font", "path", fontPath, "error", err)
			font = nil
		}
	}
	if font == nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("no usable font (set font_file)")
	}

	w := &Window{
		cfg:       cfg,
		window:    window,
		renderer:  renderer,
		font:      font,
		cache:     NewTextureCache(renderer, font),
		logger:    logger,
		crossSize: float32(cfg.Monitor.DegToPix(cfg.FixationSize, cfg.ScreenWidth) / 2),
		start:     sdl.TicksNS(),
	}
	logger.Debug("window opened",
		"width", cfg.ScreenWidth, "height", cfg.ScreenHeight,
		"text_px", textPx, "refresh_hz", w.refreshRate())
	return w, nil
}

func (w *Window) refreshRate() float32 {
	rr := float32(60.0)
	display := sdl.GetDisplayForWindow(w.window)
	mode, err := display.CurrentDisplayMode()
	if err == nil && mode.RefreshRate > 0 {
		rr = mode.RefreshRate
	}
	return rr
}

func (w *Window) Close() {
	w.cache.Destroy()
	w.font.Close()
	w.renderer.Destroy()
	w.window.Destroy()
}

func (w *Window) Clear() {
	bg := w.cfg.BGColor
	w.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	w.renderer.Clear()
}

// DrawText renders text centred on screen, one texture per line.
func (w *Window) DrawText(text string, c color.RGBA) {
	col := Color(c).SDL()
	lines := strings.Split(text, "\n")
	entries := make([]*CacheEntry, 0, len(lines))
	var total float32
	for _, line := range lines {
		if line == "" {
			line = " "
		}
		entry, err := w.cache.Text(line, col)
		if err != nil {
			w.logger.Warn("text not drawn", "text", line, "error", err)
			continue
		}
		entries = append(entries, entry)
		total += entry.H
	}
	if len(entries) == 0 {
		return
	}
	gap := entries[0].H * lineSpacing
	total += gap * float32(len(entries)-1)

	y := (float32(w.cfg.ScreenHeight) - total) / 2
	for _, e := range entries {
		dst := sdl.FRect{
			X: (float32(w.cfg.ScreenWidth) - e.W) / 2,
			Y: y,
			W: e.W,
			H: e.H,
		}
		w.renderer.RenderTexture(e.Texture, nil, &dst)
		y += e.H + gap
	}
}

func (w *Window) DrawFixation() {
	c := w.cfg.FixationColor
	w.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	mx, my := float32(w.cfg.ScreenWidth)/2, float32(w.cfg.ScreenHeight)/2
	w.renderer.RenderLine(mx-w.crossSize, my, mx+w.crossSize, my)
	w.renderer.RenderLine(mx, my-w.crossSize, mx, my+w.crossSize)
}

func (w *Window) DrawImage(path string) error {
	entry, err := w.cache.Image(path)
	if err != nil {
		return err
	}
	scale := w.cfg.ScaleFactor
	dst := sdl.FRect{
		X: (float32(w.cfg.ScreenWidth) - entry.W*scale) / 2.0,
		Y: (float32(w.cfg.ScreenHeight) - entry.H*scale) / 2.0,
		W: entry.W * scale,
		H: entry.H * scale,
	}
	w.renderer.RenderTexture(entry.Texture, nil, &dst)
	return nil
}

// Flip presents the frame. With vsync on, Present returns at the retrace.
func (w *Window) Flip() time.Duration {
	w.renderer.Present()
	return w.Now()
}

func (w *Window) PollKeys() []scene.KeyPress {
	var out []scene.KeyPress
	for {
		var ev sdl.Event
		if !sdl.PollEvent(&ev) {
			break
		}
		switch ev.Type {
		case sdl.EVENT_QUIT:
			out = append(out, scene.KeyPress{Name: scene.KeyEscape, Time: w.Now()})
		case sdl.EVENT_KEY_DOWN:
			ke := ev.KeyboardEvent()
			if ke.Repeat {
				continue
			}
			out = append(out, scene.KeyPress{
				Name: keyName(ke.Key.KeyName()),
				Time: w.since(ke.Timestamp),
			})
		}
	}
	return out
}

func (w *Window) Now() time.Duration {
	return w.since(sdl.TicksNS())
}

func (w *Window) since(ns uint64) time.Duration {
	if ns < w.start {
		return 0
	}
	return time.Duration(ns - w.start)
}

// keyName maps SDL key names ("Space", "F") to the lower-case names scenes
// close on ("space", "f").
func keyName(sdlName string) string {
	return strings.ReplaceAll(strings.ToLower(sdlName), " ", "")
}

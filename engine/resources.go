package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	// System paths
	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

type resourceKind int

const (
	kindText resourceKind = iota
	kindImage
)

func cacheKey(kind resourceKind, c sdl.Color, name string) string {
	if kind == kindImage {
		return fmt.Sprintf("%d:%s", kind, name)
	}
	return fmt.Sprintf("%d:%d,%d,%d,%d:%s", kind, c.R, c.G, c.B, c.A, name)
}

type CacheEntry struct {
	Texture *sdl.Texture
	W, H    float32
}

// TextureCache keeps rendered text lines and loaded images alive for the
// whole run so repeated trials do not re-render.
type TextureCache struct {
	renderer *sdl.Renderer
	font     *ttf.Font
	entries  map[string]*CacheEntry
}

func NewTextureCache(renderer *sdl.Renderer, font *ttf.Font) *TextureCache {
	return &TextureCache{
		renderer: renderer,
		font:     font,
		entries:  make(map[string]*CacheEntry),
	}
}

// Text returns a texture holding one line of text.
func (c *TextureCache) Text(line string, color sdl.Color) (*CacheEntry, error) {
	key := cacheKey(kindText, color, line)
	if entry, ok := c.entries[key]; ok {
		return entry, nil
	}
	if c.font == nil {
		return nil, fmt.Errorf("no font loaded")
	}

	surf, err := c.font.RenderTextBlended(line, color)
	if err != nil {
		return nil, fmt.Errorf("render text %q: %w", line, err)
	}
	defer surf.Destroy()
	tex, err := c.renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return nil, fmt.Errorf("texture for %q: %w", line, err)
	}

	entry := &CacheEntry{Texture: tex, W: float32(surf.W), H: float32(surf.H)}
	c.entries[key] = entry
	return entry, nil
}

// Image returns the texture of the image file at path.
func (c *TextureCache) Image(path string) (*CacheEntry, error) {
	key := cacheKey(kindImage, sdl.Color{}, path)
	if entry, ok := c.entries[key]; ok {
		return entry, nil
	}

	tex, err := img.LoadTexture(c.renderer, path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	w, h, _ := tex.Size()
	entry := &CacheEntry{Texture: tex, W: w, H: h}
	c.entries[key] = entry
	return entry, nil
}

func (c *TextureCache) Destroy() {
	for _, entry := range c.entries {
		if entry.Texture != nil {
			entry.Texture.Destroy()
		}
	}
	c.entries = make(map[string]*CacheEntry)
}

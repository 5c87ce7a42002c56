package scene

import (
	"image/color"
	"strings"
	"time"

	"golang.org/x/image/colornames"
)

// KeyEscape aborts whatever scene is on screen.
const KeyEscape = "escape"

// KeyPress is a key-down event stamped on the window clock.
type KeyPress struct {
	Name string
	Time time.Duration
}

// Window is the presentation surface scenes draw on.
// Times are measured on one monotonic clock starting at window creation.
type Window interface {
	// Clear starts a new frame filled with the background colour.
	Clear()
	DrawText(text string, c color.RGBA)
	DrawFixation()
	DrawImage(path string) error
	// Flip presents the frame and returns the time it reached the screen.
	Flip() time.Duration
	// PollKeys drains the pending key presses, oldest first.
	PollKeys() []KeyPress
	Now() time.Duration
}

// Trigger drives TTL lines of an external trigger box.
type Trigger interface {
	Set(lines string)
	Unset(lines string)
}

// Sounder plays a preloaded sound by name.
type Sounder interface {
	Play(name string) error
}

// NamedColor resolves CSS/SVG colour names such as "red" or "green".
func NamedColor(name string) (color.RGBA, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

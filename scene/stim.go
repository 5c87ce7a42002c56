package scene

import "image/color"

// Drawable is anything a scene renders each frame.
type Drawable interface {
	Draw(w Window) error
}

// TextStim is a centred line of text. Hooks mutate Text and Color between
// shows.
type TextStim struct {
	Text  string
	Color color.RGBA
}

func (s *TextStim) Draw(w Window) error {
	if s.Text == "" {
		return nil
	}
	w.DrawText(s.Text, s.Color)
	return nil
}

// SetColor sets the colour by name and reports whether the name is known.
func (s *TextStim) SetColor(name string) bool {
	c, ok := NamedColor(name)
	if ok {
		s.Color = c
	}
	return ok
}

// Fixation is the central cross.
type Fixation struct{}

func (Fixation) Draw(w Window) error {
	w.DrawFixation()
	return nil
}

// ImageStim shows an image file centred on screen.
type ImageStim struct {
	Path string
}

func (s *ImageStim) Draw(w Window) error {
	return w.DrawImage(s.Path)
}

package tasks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bluebones-team/psyscene/data"
	"github.com/bluebones-team/psyscene/scene"
)

// ErrUnknownTask is returned by Lookup for unregistered names.
var ErrUnknownTask = errors.New("unknown task")

// Func runs one paradigm over integer trial values.
type Func func(ctx *scene.Context, trials *data.TrialHandler[int]) ([]data.Entry, error)

var registry = map[string]Func{
	"simple":         SimpleRT[int],
	"identification": IdentificationRT[int],
	"selection":      SelectionRT[int],
}

// Lookup returns the task registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownTask, name, Names())
	}
	return fn, nil
}

// Names lists the registered tasks alphabetically.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

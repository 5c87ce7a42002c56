package data

import (
	"fmt"
	"slices"
)

// Field is one named value of a record.
type Field struct {
	Key   string
	Value any
}

// Entry is an ordered record, one per trial.
type Entry []Field

// Get returns the value stored under key.
func (e Entry) Get(key string) (any, bool) {
	for _, f := range e {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set overwrites key in place or appends it.
func (e *Entry) Set(key string, value any) {
	for i := range *e {
		if (*e)[i].Key == key {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, Field{Key: key, Value: value})
}

// Pairs builds an entry from alternating keys and values.
func Pairs(kv ...any) (Entry, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("odd number of key/value arguments: %d", len(kv))
	}
	e := make(Entry, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("argument %d: key must be a string, got %T", i, kv[i])
		}
		e.Set(key, kv[i+1])
	}
	return e, nil
}

type namedLoop struct {
	name string
	loop Loop
}

// ExperimentHandler accumulates trial records and exports them.
type ExperimentHandler struct {
	Name      string
	ExtraInfo Entry

	loops   []namedLoop
	current Entry
	entries []Entry
}

func NewExperimentHandler(name string, extraInfo Entry) *ExperimentHandler {
	return &ExperimentHandler{Name: name, ExtraInfo: extraInfo}
}

// AddLoop registers a loop whose counters are stored as "<name>.<counter>".
func (h *ExperimentHandler) AddLoop(name string, l Loop) {
	h.loops = append(h.loops, namedLoop{name: name, loop: l})
}

func (h *ExperimentHandler) AddData(key string, value any) {
	h.current.Set(key, value)
}

// NextEntry closes the current record. Loop counters and extra info are
// appended after the data fields.
func (h *ExperimentHandler) NextEntry() {
	e := slices.Clone(h.current)
	for _, nl := range h.loops {
		for _, f := range nl.loop.LoopState() {
			e.Set(nl.name+"."+f.Key, f.Value)
		}
	}
	for _, f := range h.ExtraInfo {
		if _, ok := e.Get(f.Key); !ok {
			e = append(e, f)
		}
	}
	h.entries = append(h.entries, e)
	h.current = nil
}

// AddLine stores all fields of line as one record.
func (h *ExperimentHandler) AddLine(line Entry) {
	for _, f := range line {
		h.AddData(f.Key, f.Value)
	}
	h.NextEntry()
}

// Entries returns the completed records.
func (h *ExperimentHandler) Entries() []Entry {
	return slices.Clone(h.entries)
}

// Columns returns every key in first-seen order, extra info keys last.
func (h *ExperimentHandler) Columns() []string {
	var cols []string
	seen := map[string]bool{}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	extra := map[string]bool{}
	for _, f := range h.ExtraInfo {
		extra[f.Key] = true
	}
	for _, e := range h.entries {
		for _, f := range e {
			if !extra[f.Key] {
				add(f.Key)
			}
		}
	}
	for _, f := range h.ExtraInfo {
		add(f.Key)
	}
	return cols
}

package data

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
)

// Method is the ordering applied to the trial list.
type Method string

const (
	Sequential Method = "sequential"
	Random     Method = "random"
	FullRandom Method = "fullRandom"
)

var ErrUnknownMethod = errors.New("unknown trial method")

// ParseMethod accepts the three method names.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Sequential, Random, FullRandom:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Loop is anything whose counters get copied into each experiment entry.
type Loop interface {
	LoopState() Entry
}

// TrialHandler yields the trial values of one run, repeated nReps times.
type TrialHandler[T any] struct {
	list   []T
	nReps  int
	method Method
	seq    []T

	ThisN      int
	ThisRepN   int
	ThisTrialN int
	Finished   bool
}

// NewTrialHandler builds the full presentation order up front.
// rng may be nil for the sequential method.
func NewTrialHandler[T any](list []T, nReps int, method Method, rng *rand.Rand) (*TrialHandler[T], error) {
	if nReps < 1 {
		return nil, fmt.Errorf("nReps must be at least 1, got %d", nReps)
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if method != Sequential && rng == nil {
		return nil, fmt.Errorf("method %s needs a random source", method)
	}

	seq := make([]T, 0, len(list)*nReps)
	for rep := 0; rep < nReps; rep++ {
		block := append([]T(nil), list...)
		if method == Random {
			rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
		}
		seq = append(seq, block...)
	}
	if method == FullRandom {
		rng.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	}

	return &TrialHandler[T]{
		list:       list,
		nReps:      nReps,
		method:     method,
		seq:        seq,
		ThisN:      -1,
		ThisRepN:   -1,
		ThisTrialN: -1,
	}, nil
}

// Len is the total number of trials over all repetitions.
func (h *TrialHandler[T]) Len() int { return len(h.seq) }

func (h *TrialHandler[T]) Method() Method { return h.method }

// All iterates the trial values once. Counters are updated before each yield
// so entries recorded inside the loop carry the current position.
func (h *TrialHandler[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if h.Finished {
			return
		}
		per := len(h.list)
		for n, v := range h.seq {
			h.ThisN = n
			if per > 0 {
				h.ThisRepN = n / per
				h.ThisTrialN = n % per
			}
			if !yield(v) {
				return
			}
		}
		h.Finished = true
	}
}

// Sample returns n distinct values from the list, in random order.
func Sample[T any](rng *rand.Rand, list []T, n int) ([]T, error) {
	if n < 0 || n > len(list) {
		return nil, fmt.Errorf("sample larger than population: %d of %d", n, len(list))
	}
	out := make([]T, n)
	for i, j := range rng.Perm(len(list))[:n] {
		out[i] = list[j]
	}
	return out, nil
}

// LoopState implements Loop.
func (h *TrialHandler[T]) LoopState() Entry {
	return Entry{
		{Key: "thisN", Value: h.ThisN},
		{Key: "thisRepN", Value: h.ThisRepN},
		{Key: "thisTrialN", Value: h.ThisTrialN},
	}
}

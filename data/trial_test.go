package data_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebones-team/psyscene/data"
)

func collect[T any](h *data.TrialHandler[T]) []T {
	var out []T
	for v := range h.All() {
		out = append(out, v)
	}
	return out
}

func TestTrialHandler_Sequential(t *testing.T) {
	h, err := data.NewTrialHandler([]int{3, 1, 2}, 2, data.Sequential, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, h.Len())
	assert.Equal(t, []int{3, 1, 2, 3, 1, 2}, collect(h))
	assert.True(t, h.Finished)
	assert.Equal(t, 5, h.ThisN)
	assert.Equal(t, 1, h.ThisRepN)
	assert.Equal(t, 2, h.ThisTrialN)

	// A finished handler yields nothing more.
	assert.Empty(t, collect(h))
}

func TestTrialHandler_RandomKeepsEachRepAPermutation(t *testing.T) {
	list := []string{"a", "b", "c", "d", "e"}
	rng := rand.New(rand.NewPCG(1, 2))
	h, err := data.NewTrialHandler(list, 3, data.Random, rng)
	require.NoError(t, err)

	got := collect(h)
	require.Len(t, got, 15)
	for rep := 0; rep < 3; rep++ {
		block := slices.Clone(got[rep*5 : rep*5+5])
		slices.Sort(block)
		assert.Equal(t, list, block, "rep %d", rep)
	}
}

func TestTrialHandler_FullRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	h, err := data.NewTrialHandler([]int{1, 2}, 4, data.FullRandom, rng)
	require.NoError(t, err)

	got := collect(h)
	slices.Sort(got)
	assert.Equal(t, []int{1, 1, 1, 1, 2, 2, 2, 2}, got)
}

func TestTrialHandler_Errors(t *testing.T) {
	t.Run("zero reps", func(t *testing.T) {
		_, err := data.NewTrialHandler([]int{1}, 0, data.Sequential, nil)
		assert.Error(t, err)
	})
	t.Run("unknown method", func(t *testing.T) {
		_, err := data.NewTrialHandler([]int{1}, 1, data.Method("shuffled"), nil)
		assert.ErrorIs(t, err, data.ErrUnknownMethod)
	})
	t.Run("random without source", func(t *testing.T) {
		_, err := data.NewTrialHandler([]int{1}, 1, data.Random, nil)
		assert.Error(t, err)
	})
}

func TestTrialHandler_BreakKeepsPosition(t *testing.T) {
	h, err := data.NewTrialHandler([]int{10, 20, 30}, 1, data.Sequential, nil)
	require.NoError(t, err)

	for v := range h.All() {
		if v == 20 {
			break
		}
	}
	assert.False(t, h.Finished)
	assert.Equal(t, 1, h.ThisN)
	assert.Equal(t, data.Entry{
		{Key: "thisN", Value: 1},
		{Key: "thisRepN", Value: 0},
		{Key: "thisTrialN", Value: 1},
	}, h.LoopState())
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pop := make([]int, 100)
	for i := range pop {
		pop[i] = i
	}

	got, err := data.Sample(rng, pop, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)

	seen := map[int]bool{}
	for _, v := range got {
		assert.False(t, seen[v], "duplicate %d", v)
		assert.True(t, v >= 0 && v < 100)
		seen[v] = true
	}

	_, err = data.Sample(rng, pop, 101)
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := data.ParseMethod("fullRandom")
	require.NoError(t, err)
	assert.Equal(t, data.FullRandom, m)

	_, err = data.ParseMethod("FULL")
	assert.ErrorIs(t, err, data.ErrUnknownMethod)
}

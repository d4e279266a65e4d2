package track

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/roller/trackgen/internal/data"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPickIndex(t *testing.T) {
	tests := []struct {
		name    string
		weights []int
		draw    int
		want    int
	}{
		{"first bracket start", []int{10, 20, 30}, 0, 0},
		{"first bracket end", []int{10, 20, 30}, 9, 0},
		{"second bracket start", []int{10, 20, 30}, 10, 1},
		{"second bracket end", []int{10, 20, 30}, 29, 1},
		{"last bracket", []int{10, 20, 30}, 59, 2},
		{"skips zero weight", []int{5, 0, 5}, 5, 2},
		{"skips negative weight", []int{-3, 4}, 0, 1},
		{"out of range falls back to last", []int{1, 1}, 7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickIndex(tt.weights, tt.draw))
		})
	}
}

func TestPickIndexFrequencyConverges(t *testing.T) {
	weights := []int{1, 3, 6}
	total := lo.Sum(weights)
	rng := rand.New(rand.NewPCG(7, 11))

	const draws = 200_000
	counts := make([]int, len(weights))
	for i := 0; i < draws; i++ {
		counts[pickIndex(weights, rng.IntN(total))]++
	}
	for i, w := range weights {
		want := float64(w) / float64(total)
		got := float64(counts[i]) / draws
		assert.InDelta(t, want, got, 0.01, "index %d", i)
	}
}

func newTestSelector(t *testing.T, seed uint64) *Selector {
	t.Helper()
	catalog, err := data.NewConnectorCatalog(fullCatalog())
	require.NoError(t, err)
	return NewSelector(catalog, data.ConnectorStraightMedium, rand.New(rand.NewPCG(seed, seed)), zap.NewNop())
}

func TestSelectorAntiRepetition(t *testing.T) {
	s := newTestSelector(t, 1)
	mediumTypes := []data.ConnectorType{
		data.ConnectorStraightMedium,
		data.ConnectorMediumToSmall,
		data.ConnectorMediumToLarge,
	}

	var picked []data.ConnectorType
	for i := 0; i < len(mediumTypes); i++ {
		ct, err := s.Next(data.WidthMedium, i)
		require.NoError(t, err)
		picked = append(picked, ct)
	}
	assert.ElementsMatch(t, mediumTypes, picked, "each candidate gets a turn before any repeats")

	// The set is exhausted: the next pick clears it and may choose anything.
	ct, err := s.Next(data.WidthMedium, 3)
	require.NoError(t, err)
	assert.Contains(t, mediumTypes, ct)
	assert.Equal(t, []data.ConnectorType{ct}, s.Recent())
}

func TestSelectorNeverStarves(t *testing.T) {
	s := newTestSelector(t, 42)
	seen := map[data.ConnectorType]int{}
	for i := 0; i < 300; i++ {
		ct, err := s.Next(data.WidthLarge, i)
		require.NoError(t, err)
		seen[ct]++
	}
	for _, ct := range []data.ConnectorType{data.ConnectorStraightLarge, data.ConnectorLargeToMedium, data.ConnectorSplit} {
		assert.GreaterOrEqual(t, seen[ct], 90, "%s", ct)
	}
}

func TestSelectorMissingWidthUsesFallback(t *testing.T) {
	catalog, err := data.NewConnectorCatalog([]data.ConnectorSpec{
		connector(data.ConnectorStraightMedium, data.WidthMedium, data.WidthMedium, 10),
	})
	require.NoError(t, err)
	s := NewSelector(catalog, data.ConnectorStraightMedium, rand.New(rand.NewPCG(1, 2)), zap.NewNop())

	ct, err := s.Next(data.WidthSmall, 1)
	assert.True(t, errors.Is(err, ErrMissingCatalogEntry))
	assert.Equal(t, data.ConnectorStraightMedium, ct)
	assert.Empty(t, s.Recent())
}

func TestSelectorWeightFunc(t *testing.T) {
	s := newTestSelector(t, 3)
	s.SetWeightFunc(func(spec *data.ConnectorSpec, index int) int {
		if spec.Type == data.ConnectorSplit {
			return 0
		}
		return spec.SpawnWeight
	})

	for i := 0; i < 50; i++ {
		ct, err := s.Next(data.WidthLarge, i)
		require.NoError(t, err)
		assert.NotEqual(t, data.ConnectorSplit, ct, "zero weight drops the candidate")
	}

	s.Clear()
	s.SetWeightFunc(func(*data.ConnectorSpec, int) int { return 0 })
	ct, err := s.Next(data.WidthLarge, 0)
	require.NoError(t, err)
	assert.Equal(t, data.ConnectorSplit, ct, "no positive weight falls back to the last candidate")
}

func TestSelectorCapsHugeWeights(t *testing.T) {
	s := newTestSelector(t, 5)
	s.SetWeightFunc(func(*data.ConnectorSpec, int) int { return math.MaxInt64/2 + 1 })

	seen := map[data.ConnectorType]bool{}
	for i := 0; i < 30; i++ {
		var ct data.ConnectorType
		require.NotPanics(t, func() {
			var err error
			ct, err = s.Next(data.WidthLarge, i)
			require.NoError(t, err)
		})
		seen[ct] = true
	}
	assert.Len(t, seen, 3, "capped weights are equal, so every large connector appears")
}

func TestSelectorKeepsExclusionWhileUnusedWeighZero(t *testing.T) {
	s := newTestSelector(t, 9)
	// split only becomes eligible from index 4.
	s.SetWeightFunc(func(spec *data.ConnectorSpec, index int) int {
		if spec.Type == data.ConnectorSplit && index < 4 {
			return 0
		}
		return spec.SpawnWeight
	})
	others := []data.ConnectorType{data.ConnectorStraightLarge, data.ConnectorLargeToMedium}

	var picked []data.ConnectorType
	for i := 1; i <= 2; i++ {
		ct, err := s.Next(data.WidthLarge, i)
		require.NoError(t, err)
		picked = append(picked, ct)
	}
	assert.ElementsMatch(t, others, picked)

	// Only split is unused and it weighs zero: draw from the used ones but
	// keep them excluded.
	ct, err := s.Next(data.WidthLarge, 3)
	require.NoError(t, err)
	assert.Contains(t, others, ct)
	assert.ElementsMatch(t, others, s.Recent())

	ct, err = s.Next(data.WidthLarge, 4)
	require.NoError(t, err)
	assert.Equal(t, data.ConnectorSplit, ct, "the unused connector gets its turn")

	// Every variant has now been used, so the set clears on the next pick.
	ct, err = s.Next(data.WidthLarge, 5)
	require.NoError(t, err)
	assert.Equal(t, []data.ConnectorType{ct}, s.Recent())
}

func TestSeedFromString(t *testing.T) {
	a1, a2 := SeedFromString("daily-2026-10-15")
	b1, b2 := SeedFromString("daily-2026-10-15")
	c1, c2 := SeedFromString("daily-2026-10-16")
	assert.Equal(t, a1, b1)
	assert.Equal(t, a2, b2)
	assert.False(t, a1 == c1 && a2 == c2)

	r1, r2 := NewRand("x"), NewRand("x")
	for i := 0; i < 10; i++ {
		assert.Equal(t, r1.Uint64(), r2.Uint64())
	}
}

package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCryptoSourceRange(t *testing.T) {
	src := NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(20)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 20)
	}
}

func TestCryptoSourcePanicsOnNonPositive(t *testing.T) {
	src := NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
	assert.Panics(t, func() { src.Intn(-5) })
}

func TestSeededSourceDeterministic(t *testing.T) {
	a := NewSeededSource(42)
	b := NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSourceRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		n := rapid.IntRange(1, 10000).Draw(t, "n")
		src := NewSeededSource(seed)
		v := src.Intn(n)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, n)
	})
}

func TestSampleAcceptsFirstMatch(t *testing.T) {
	src := NewSeededSource(7)
	v, err := Sample(src, 100, 1000, func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.Zero(t, v%2)
}

func TestSampleExhaustsAttempts(t *testing.T) {
	src := NewSeededSource(7)
	_, err := Sample(src, 100, 50, func(int) bool { return false })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 50 attempts")
}

func TestSampleUnconditionalNeverFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		n := rapid.IntRange(1, 500).Draw(t, "n")
		src := NewSeededSource(seed)
		v, err := Sample(src, n, 1, func(int) bool { return true })
		require.NoError(t, err)
		assert.Less(t, v, n)
	})
}

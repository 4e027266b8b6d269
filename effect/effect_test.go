package effect_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/loopmix/effect"
	"github.com/pipelined/loopmix/mock"
	"github.com/pipelined/loopmix/signal"
)

// ones returns a bar of unity samples, so processed values read directly
// as the applied gain ratio.
func ones(numChannels, size int) signal.Float64 {
	floats := make([][]float64, numChannels)
	for i := range floats {
		floats[i] = make([]float64, size)
		for j := range floats[i] {
			floats[i][j] = 1
		}
	}
	return floats
}

func TestFadeInProgression(t *testing.T) {
	fade := effect.NewFadeIn()

	// gain sequence -30 -> -20 -> -10 -> 0: done after exactly 3 calls
	prev := 0.0
	for call := 1; call <= 3; call++ {
		assert.False(t, fade.Done(), "call %d", call)
		out := fade.Process(ones(2, 64))
		for i := range out {
			for j := range out[i] {
				ratio := out[i][j]
				assert.True(t, ratio <= 1.0, "ratio above unity on call %d", call)
				if j > 0 {
					assert.True(t, out[i][j] >= out[i][j-1], "ramp not monotonic on call %d", call)
				}
			}
		}
		// successive bars never decrease in level
		assert.True(t, out[0][0] >= prev, "bar %d starts below previous bar", call)
		prev = out[0][len(out[0])-1]
	}
	assert.True(t, fade.Done())
	assert.Equal(t, 0.0, fade.GainDB())
}

func TestFadeInFinalRamp(t *testing.T) {
	fade := effect.NewFadeIn()
	var out signal.Float64
	for i := 0; i < 3; i++ {
		out = fade.Process(ones(2, 16))
	}
	// the last produced ramp ends at unity gain
	last := out[0][len(out[0])-1]
	assert.Equal(t, 1.0, last)
}

func TestFadeInRampEndpoints(t *testing.T) {
	fade := effect.NewFadeIn()
	out := fade.Process(ones(1, 100))

	start := math.Pow(10, -30.0/20)
	end := math.Pow(10, -20.0/20)
	assert.InDelta(t, start, out[0][0], 1e-12)
	assert.InDelta(t, end, out[0][99], 1e-12)
}

func TestFadeInSameRampAcrossChannels(t *testing.T) {
	fade := effect.NewFadeIn()
	out := fade.Process(ones(2, 32))
	assert.Equal(t, out[0], out[1])
}

func TestFadeInLeavesInputUntouched(t *testing.T) {
	fade := effect.NewFadeIn()
	in := ones(2, 8)
	_ = fade.Process(in)
	assert.Equal(t, ones(2, 8), in)
}

func TestChainAppliesHeadOnly(t *testing.T) {
	first := &mock.Effect{DoneAfter: 2, Gain: 0.5}
	second := &mock.Effect{DoneAfter: 1, Gain: 0.25}
	chain := effect.NewChain(first, second)

	out := chain.Apply(ones(1, 4))
	assert.Equal(t, 0.5, out[0][0])
	assert.Equal(t, 1, first.Steps)
	assert.Zero(t, second.Steps)
	assert.Equal(t, 2, chain.Len())
}

func TestChainPopsOnCompletion(t *testing.T) {
	first := &mock.Effect{DoneAfter: 2}
	second := &mock.Effect{DoneAfter: 1}
	chain := effect.NewChain(first, second)

	// first completes on its 2nd call: popped then, not before
	chain.Apply(ones(1, 4))
	assert.Equal(t, 2, chain.Len())
	chain.Apply(ones(1, 4))
	assert.Equal(t, 1, chain.Len())

	// second completes within a single application
	chain.Apply(ones(1, 4))
	assert.Equal(t, 0, chain.Len())
	assert.Equal(t, 1, second.Steps)
}

func TestChainEmptyPassthrough(t *testing.T) {
	chain := effect.NewChain()
	in := ones(2, 4)
	out := chain.Apply(in)
	assert.Equal(t, signal.Float64(in), out)
}

func TestChainClear(t *testing.T) {
	e := &mock.Effect{DoneAfter: 10}
	chain := effect.NewChain(e)
	chain.Push(&mock.Effect{DoneAfter: 1})
	require.Equal(t, 2, chain.Len())

	chain.Clear()
	assert.Zero(t, chain.Len())
	chain.Apply(ones(1, 4))
	assert.Zero(t, e.Steps)
}

func TestFadeInCompletesViaChain(t *testing.T) {
	chain := effect.NewChain(effect.NewFadeIn())
	for i := 0; i < 2; i++ {
		chain.Apply(ones(2, 8))
		assert.Equal(t, 1, chain.Len())
	}
	chain.Apply(ones(2, 8))
	assert.Zero(t, chain.Len())
}

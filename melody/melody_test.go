package melody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonecraft/theory"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a := Generate("C", theory.Ionian, 4, 4, 4, 5, cfg)
	b := Generate("C", theory.Ionian, 4, 4, 4, 5, cfg)
	assert.Equal(t, a, b)
}

func TestGenerateStaysWithinTotalTicks(t *testing.T) {
	cfg := DefaultConfig()
	events := Generate("C", theory.Ionian, 2, 4, 4, 1, cfg)
	require.NotEmpty(t, events)
	totalTicks := 2 * 1920
	for _, e := range events {
		assert.GreaterOrEqual(t, e.StartTick, 0)
		assert.Less(t, e.StartTick, totalTicks)
		assert.GreaterOrEqual(t, e.Velocity, 80)
		assert.LessOrEqual(t, e.Velocity, 120)
	}
}

func TestGenerateZeroLeapAndStepProducesNoMotion(t *testing.T) {
	cfg := Config{Octave: 5, StepwiseBias: 0, LeapProbability: 0}
	events := Generate("C", theory.Ionian, 2, 4, 4, 2, cfg)
	require.NotEmpty(t, events)
	first := events[0].Pitch
	for _, e := range events {
		assert.Equal(t, first, e.Pitch, "expected constant pitch with zero motion probabilities")
	}
}

package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicksPerBar(t *testing.T) {
	cases := []struct {
		num, den, want int
	}{
		{4, 4, 1920},
		{3, 4, 1440},
		{6, 8, 1440},
		{7, 8, 1680},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, TicksPerBar(c.num, c.den), "TicksPerBar(%d,%d)", c.num, c.den)
	}
}

func TestBeatsToTicksRoundTrip(t *testing.T) {
	assert.Equal(t, PPQ, BeatsToTicks(1.0))
	assert.Equal(t, 2.0, TicksToBeats(960))
}

func TestClipStartTick(t *testing.T) {
	assert.Equal(t, 3840, ClipStartTick(2, 4, 4))
}

func TestSecondsToTicksAtTempo(t *testing.T) {
	// At 120bpm, 1 beat = 0.5s, so 1s = 2 beats = 960 ticks.
	assert.Equal(t, 960, SecondsToTicks(1.0, 120))
}

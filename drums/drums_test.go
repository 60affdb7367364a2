package drums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePatternDeterministic(t *testing.T) {
	dm := DefaultDrumMap()
	p := DefaultParams()
	p.Swing = 0
	a := GeneratePattern(2, 4, 4, 1, dm, p)
	b := GeneratePattern(2, 4, 4, 1, dm, p)
	assert.Equal(t, a, b)
}

func TestGeneratePatternBoomBapDensity1(t *testing.T) {
	dm := DefaultDrumMap()
	p := DefaultParams()
	p.Style = "boom_bap"
	p.Density = 1.0
	p.Swing = 0

	events := GeneratePattern(2, 4, 4, 1, dm, p)
	require.NotEmpty(t, events)

	ticksPerBar := 1920
	for _, e := range events {
		assert.GreaterOrEqual(t, e.StartTick, 0)
		assert.Less(t, e.StartTick, 2*ticksPerBar+480)
		assert.GreaterOrEqual(t, e.Velocity, 0)
		assert.LessOrEqual(t, e.Velocity, 140)
	}
}

func TestGenerateKickPatternStyles(t *testing.T) {
	for style, steps := range styleBaseSteps {
		events := GenerateKickPattern(1, 1920, style, 1, 1.0, 0.0, "kick")
		if len(steps) > 0 {
			assert.NotEmptyf(t, events, "style %q produced no kick events at density 1.0", style)
		}
	}
}

func TestGenerateSnarePatternOnBackbeat(t *testing.T) {
	events := GenerateSnarePattern(1, 1920, "boom_bap", 1, 1.0, 0.0)
	require.Len(t, events, 2)
	stepTicks := 1920 / 16
	wantTicks := map[int]bool{4 * stepTicks: true, 12 * stepTicks: true}
	for _, e := range events {
		assert.Truef(t, wantTicks[e.StartTick], "snare hit at unexpected tick %d", e.StartTick)
	}
}

func TestGenerateFillPatternHitCount(t *testing.T) {
	dm := DefaultDrumMap()
	events := GenerateFillPattern(0, 1920, "boom_bap", 1, dm)
	assert.GreaterOrEqual(t, len(events), 4)
	assert.LessOrEqual(t, len(events), 8)
	for _, e := range events {
		assert.GreaterOrEqual(t, e.StartTick, 960)
		assert.Less(t, e.StartTick, 1920+240)
	}
}

func TestApplySwingOnlyShiftsOffbeat(t *testing.T) {
	assert.Equal(t, 1000, ApplySwing(1000, 0, 0.5, 480), "on-beat step should be unaffected by swing")
	assert.NotEqual(t, 1000, ApplySwing(1000, 1, 0.5, 480), "off-beat step should be shifted by swing")
}

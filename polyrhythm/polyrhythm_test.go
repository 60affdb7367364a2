package polyrhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCMResolutionThreeFourFive(t *testing.T) {
	cycles := []CycleSpec{{Steps: 3}, {Steps: 4}, {Steps: 5}}
	assert.Equal(t, 60, LCMResolution(cycles))
}

func TestLCMResolutionEmpty(t *testing.T) {
	assert.Equal(t, 1, LCMResolution(nil))
}

func TestRenderToEventsStaysWithinClip(t *testing.T) {
	cycle := CycleSpec{Steps: 8, Pulses: 3, CycleBeats: 4}
	events := RenderToEvents(cycle, 0, 2, 120, 4, 4, 1, 60, 100)
	require.NotEmpty(t, events)
	clipEndTick := 2 * 1920
	for _, e := range events {
		assert.GreaterOrEqual(t, e.StartTick, 0)
		assert.Lessf(t, e.StartTick, clipEndTick, "event start_tick out of clip bounds")
		assert.GreaterOrEqual(t, e.Velocity, 0)
		assert.LessOrEqual(t, e.Velocity, 137)
	}
}

func TestRenderToEventsDeterministic(t *testing.T) {
	cycle := CycleSpec{Steps: 8, Pulses: 3, CycleBeats: 4}
	a := RenderToEvents(cycle, 0, 4, 120, 4, 4, 99, 60, 100)
	b := RenderToEvents(cycle, 0, 4, 120, 4, 4, 99, 60, 100)
	assert.Equal(t, a, b)
}

func TestRenderLanesToEventsSoloIsAllOrNone(t *testing.T) {
	lanes := []LaneSpec{
		{Cycle: CycleSpec{Steps: 4, Pulses: 2, CycleBeats: 4}, LaneID: "a", ClipID: "clip", Pitch: 60, Velocity: 100, OrderIndex: 0},
		{Cycle: CycleSpec{Steps: 4, Pulses: 2, CycleBeats: 4}, LaneID: "b", ClipID: "clip", Pitch: 64, Velocity: 100, OrderIndex: 1, Solo: true},
	}
	events := RenderLanesToEvents(lanes, 0, 2, 120, 4, 4, 7)
	for _, e := range events {
		assert.NotEqualf(t, 60, e.Pitch, "soloed lane should exclude non-solo lane's pitch 60")
	}
	assert.NotEmpty(t, events, "expected soloed lane to still produce events")
}

func TestLCMGridForLanesFloorsAt16(t *testing.T) {
	lanes := []LaneSpec{
		{Cycle: CycleSpec{Steps: 3}},
		{Cycle: CycleSpec{Steps: 2}},
	}
	grid := LCMGridForLanes(lanes, 4, 4)
	assert.Equal(t, 16, grid.GridStepsPerBar, "GridStepsPerBar should be floored to 16")
	assert.Equal(t, 6, grid.LCMSteps)
}

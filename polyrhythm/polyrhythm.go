// Package polyrhythm renders Euclidean-cycle lanes to note events on an
// LCM-aligned grid, so cycles of different step counts (3 over 4, 5 over 4,
// ...) line up at shared bar boundaries.
package polyrhythm

import (
	"math"
	"sort"

	"tonecraft/euclid"
	"tonecraft/seedrand"
	"tonecraft/timebase"
)

// CycleSpec describes one Euclidean cycle: pulses distributed across steps,
// repeating every cycleBeats beats.
type CycleSpec struct {
	Steps      int
	Pulses     int
	CycleBeats float64
	Rotation   int
	Swing      *float64 // nil means no swing
}

// NormalizedRotation returns Rotation reduced into [0, Steps).
func (c CycleSpec) NormalizedRotation() int {
	if c.Steps <= 0 {
		return 0
	}
	r := c.Rotation % c.Steps
	if r < 0 {
		r += c.Steps
	}
	return r
}

// Event is a rendered note event prior to becoming a model.Note.
type Event struct {
	Pitch        int
	Velocity     int
	StartTick    int
	DurationTick int
}

// LCMResolution returns the least common multiple of every cycle's step
// count, or 1 if cycles is empty.
func LCMResolution(cycles []CycleSpec) int {
	if len(cycles) == 0 {
		return 1
	}
	lcm := cycles[0].Steps
	for _, c := range cycles[1:] {
		lcm = lcm * c.Steps / gcd(lcm, c.Steps)
	}
	return lcm
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// GenerateEuclideanPattern delegates to the shared Bjorklund implementation.
func GenerateEuclideanPattern(steps, pulses, rotation int) []bool {
	ints := euclid.Bjorklund(steps, pulses, rotation)
	out := make([]bool, len(ints))
	for i, v := range ints {
		out[i] = v != 0
	}
	return out
}

// RenderToEvents renders a single cycle across a clip of clipLengthBars
// bars, repeating the cycle as many times as fit, applying swing to
// off-beat steps and a deterministic +/-10 velocity jitter per hit.
func RenderToEvents(cycle CycleSpec, clipStartBar, clipLengthBars, projectBPM, tsNum, tsDen int, seed int64, pitch, velocity int) []Event {
	rng := seedrand.Stream(seed)

	ticksPerBar := timebase.TicksPerBar(tsNum, tsDen)
	clipStartTick := clipStartBar * ticksPerBar
	clipEndTick := clipStartTick + clipLengthBars*ticksPerBar

	pattern := GenerateEuclideanPattern(cycle.Steps, cycle.Pulses, cycle.NormalizedRotation())
	if cycle.Steps == 0 {
		return nil
	}

	cycleTicks := int(cycle.CycleBeats * timebase.PPQ)
	if cycleTicks <= 0 {
		return nil
	}
	stepTicks := cycleTicks / cycle.Steps

	var events []Event
	maxCycles := int(float64(clipLengthBars*ticksPerBar)/float64(cycleTicks)) + 1

	totalCycles := 0
	for totalCycles*cycleTicks < clipLengthBars*ticksPerBar {
		for stepIdx, active := range pattern {
			cycleOffset := totalCycles * cycleTicks
			stepOffset := stepIdx * stepTicks
			eventTick := clipStartTick + cycleOffset + stepOffset

			if eventTick >= clipEndTick {
				break
			}

			if active {
				if cycle.Swing != nil && *cycle.Swing > 0 && stepIdx%2 == 1 {
					eventTick += int(float64(stepTicks) * *cycle.Swing * 0.5)
				}

				duration := stepTicks / 2
				minDuration := timebase.PPQ / 32
				if duration < minDuration {
					duration = minDuration
				}

				events = append(events, Event{
					Pitch:        pitch,
					Velocity:     velocity + seedrand.IntRange(rng, -10, 10),
					StartTick:    eventTick,
					DurationTick: duration,
				})
			}
		}

		totalCycles++
		if totalCycles >= maxCycles {
			break
		}
	}

	return events
}

// LaneSpec binds a cycle to an identified lane with its own pitch,
// velocity, mute/solo flags and ordering.
type LaneSpec struct {
	Cycle       CycleSpec
	LaneID      string
	ClipID      string
	Pitch       int
	Velocity    int
	Mute        bool
	Solo        bool
	OrderIndex  int
	SeedOffset  int64
	HumanizeMs  *int
}

// GridSpec describes the shared LCM-aligned grid for a set of lanes.
type GridSpec struct {
	TicksPerBar     int
	TicksPerStep    int
	GridStepsPerBar int
	LCMSteps        int
}

// DeterministicSeed derives a lane's PRNG seed from the project base seed,
// the clip and lane identity, and a caller-chosen offset.
func DeterministicSeed(baseSeed int64, clipID, laneID string, seedOffset int64) int64 {
	return seedrand.XOR(baseSeed, baseSeed, clipID, laneID, seedOffset) ^ seedOffset
}

// LCMGridForLanes computes the grid every lane's events should be
// considered against: the LCM of all lane step counts, floored at 16th-note
// resolution.
func LCMGridForLanes(lanes []LaneSpec, tsNum, tsDen int) GridSpec {
	ticksPerBar := timebase.TicksPerBar(tsNum, tsDen)

	if len(lanes) == 0 {
		return GridSpec{
			TicksPerBar:     ticksPerBar,
			TicksPerStep:    timebase.PPQ / 4,
			GridStepsPerBar: 16,
			LCMSteps:        16,
		}
	}

	lcmSteps := lanes[0].Cycle.Steps
	for _, lane := range lanes[1:] {
		lcmSteps = lcmSteps * lane.Cycle.Steps / gcd(lcmSteps, lane.Cycle.Steps)
	}

	gridStepsPerBar := lcmSteps
	if gridStepsPerBar < 16 {
		gridStepsPerBar = 16
	}

	return GridSpec{
		TicksPerBar:     ticksPerBar,
		TicksPerStep:    ticksPerBar / gridStepsPerBar,
		GridStepsPerBar: gridStepsPerBar,
		LCMSteps:        lcmSteps,
	}
}

// RenderLanesToEvents renders every un-muted, solo-respecting lane and
// merges the results, sorted by start tick, then lane order, then pitch.
// Solo semantics are all-or-none: if any lane is soloed, only soloed lanes
// sound.
func RenderLanesToEvents(lanes []LaneSpec, clipStartBar, clipLengthBars, projectBPM, tsNum, tsDen int, baseSeed int64) []Event {
	hasSolo := false
	for _, lane := range lanes {
		if lane.Solo {
			hasSolo = true
			break
		}
	}

	type ordered struct {
		Event
		order int
	}
	var all []ordered

	ticksPerBar := timebase.TicksPerBar(tsNum, tsDen)
	clipStartTick := clipStartBar * ticksPerBar
	clipEndTick := clipStartTick + clipLengthBars*ticksPerBar

	for _, lane := range lanes {
		if lane.Mute {
			continue
		}
		if hasSolo && !lane.Solo {
			continue
		}

		laneSeed := DeterministicSeed(baseSeed, lane.ClipID, lane.LaneID, lane.SeedOffset)
		laneEvents := RenderToEvents(lane.Cycle, clipStartBar, clipLengthBars, projectBPM, tsNum, tsDen, laneSeed, lane.Pitch, lane.Velocity)

		if lane.HumanizeMs != nil && *lane.HumanizeMs > 0 {
			rng := seedrand.Stream(laneSeed)
			humanizeTicks := int(float64(*lane.HumanizeMs) / 1000 * (timebase.PPQ * float64(projectBPM) / 60))
			for i := range laneEvents {
				offset := seedrand.IntRange(rng, -humanizeTicks, humanizeTicks)
				newTick := laneEvents[i].StartTick + offset
				maxTick := clipEndTick - laneEvents[i].DurationTick
				newTick = clampInt(newTick, clipStartTick, maxTick)
				laneEvents[i].StartTick = newTick
			}
		}

		for _, e := range laneEvents {
			all = append(all, ordered{Event: e, order: lane.OrderIndex})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].StartTick != all[j].StartTick {
			return all[i].StartTick < all[j].StartTick
		}
		if all[i].order != all[j].order {
			return all[i].order < all[j].order
		}
		return all[i].Pitch < all[j].Pitch
	})

	out := make([]Event, len(all))
	for i, o := range all {
		out[i] = o.Event
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return int(math.Max(float64(lo), math.Min(float64(v), float64(hi))))
}

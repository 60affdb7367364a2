// Package timebase converts between ticks, bars, beats and seconds on the
// engine's fixed PPQ=480 timeline.
package timebase

import "math"

// PPQ is the number of ticks per quarter note, fixed across the engine.
const PPQ = 480

// TicksPerBar returns the number of ticks in one bar of the given time
// signature.
func TicksPerBar(num, den int) int {
	quarterNotesPerBar := float64(num) * 4 / float64(den)
	return int(quarterNotesPerBar * PPQ)
}

// TicksToSeconds converts a tick count to seconds at the given tempo.
func TicksToSeconds(ticks int, bpm int) float64 {
	secondsPerTick := 60.0 / (float64(bpm) * PPQ)
	return float64(ticks) * secondsPerTick
}

// SecondsToTicks converts seconds to the nearest tick at the given tempo,
// rounding half to even.
func SecondsToTicks(seconds float64, bpm int) int {
	ticksPerSecond := float64(bpm) * PPQ / 60.0
	return roundHalfEven(seconds * ticksPerSecond)
}

// BeatsToTicks converts a beat count (1 beat = 1 quarter note) to ticks,
// rounding half to even.
func BeatsToTicks(beats float64) int {
	return roundHalfEven(beats * PPQ)
}

// TicksToBeats converts ticks to a fractional beat count.
func TicksToBeats(ticks int) float64 {
	return float64(ticks) / PPQ
}

// ClipStartTick returns the absolute tick at which a clip beginning at
// startBar begins, for the given time signature.
func ClipStartTick(startBar, num, den int) int {
	return startBar * TicksPerBar(num, den)
}

// AbsoluteTick returns the absolute tick for a position relativeTick ticks
// into a clip starting at clipStartBar.
func AbsoluteTick(clipStartBar, relativeTick, num, den int) int {
	return ClipStartTick(clipStartBar, num, den) + relativeTick
}

// roundHalfEven implements banker's rounding, matching Python's round()
// semantics used throughout the reference implementation's boundary
// conversions.
func roundHalfEven(v float64) int {
	floor := math.Floor(v)
	diff := v - floor
	switch {
	case diff < 0.5:
		return int(floor)
	case diff > 0.5:
		return int(floor) + 1
	default:
		if int(floor)%2 == 0 {
			return int(floor)
		}
		return int(floor) + 1
	}
}

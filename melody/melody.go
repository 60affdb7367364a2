// Package melody generates scale-constrained motif lines: stepwise motion
// biased over leaps and repeats, four rhythmic onset patterns, and a
// velocity range typical of a lead or countermelody part.
package melody

import (
	"sort"

	"tonecraft/seedrand"
	"tonecraft/theory"
	"tonecraft/timebase"
)

// Event is a single melody note prior to becoming a model.Note.
type Event struct {
	Pitch        int
	Velocity     int
	StartTick    int
	DurationTick int
}

// onsetPatterns are 8-step rhythmic templates (1=onset, 0=rest) applied
// over the first half of each bar.
var onsetPatterns = [][8]int{
	{1, 0, 1, 0, 1, 0, 1, 0}, // steady eighths
	{1, 0, 0, 0, 1, 0, 1, 0}, // dotted
	{1, 0, 0, 0, 0, 0, 1, 0}, // long-short
	{1, 1, 0, 1, 0, 1, 0, 0}, // syncopated
}

// Config bundles the tunable knobs of a melody generation run.
type Config struct {
	Octave         int
	StepwiseBias   float64
	LeapProbability float64
}

// DefaultConfig returns the engine's baseline melody parameters.
func DefaultConfig() Config {
	return Config{Octave: 5, StepwiseBias: 0.7, LeapProbability: 0.2}
}

// Generate produces a scale-constrained melody spanning bars bars,
// choosing a rhythmic onset pattern per bar and walking a three-octave
// scale-note range by stepwise motion, occasional leaps, or held notes.
func Generate(tonic string, mode theory.Mode, bars, tsNum, tsDen int, seed int64, cfg Config) []Event {
	rng := seedrand.Stream(seed)

	degrees := theory.ScaleDegrees(tonic, mode, cfg.Octave)
	scaleNotes := make([]int, 0, 21)
	for _, d := range degrees {
		scaleNotes = append(scaleNotes, d)
	}
	for _, d := range degrees {
		scaleNotes = append(scaleNotes, d+12)
	}
	for _, d := range degrees {
		scaleNotes = append(scaleNotes, d-12)
	}
	sort.Ints(scaleNotes)

	ticksPerBar := timebase.TicksPerBar(tsNum, tsDen)
	totalTicks := bars * ticksPerBar

	var events []Event
	currentNoteIdx := len(scaleNotes) / 2

	sixteenthTicks := ticksPerBar / 16

	currentTick := 0
	for currentTick < totalTicks {
		pattern := onsetPatterns[rng.Intn(len(onsetPatterns))]
		barStartTick := (currentTick / ticksPerBar) * ticksPerBar

		for step, isOnset := range pattern {
			tick := barStartTick + step*sixteenthTicks
			if tick >= totalTicks {
				break
			}
			if isOnset == 0 {
				continue
			}

			switch {
			case rng.Float64() < cfg.StepwiseBias:
				direction := 1
				if rng.Float64() <= 0.5 {
					direction = -1
				}
				currentNoteIdx = clampIdx(currentNoteIdx+direction, len(scaleNotes))
			case rng.Float64() < cfg.LeapProbability:
				leapSizes := []int{2, 3, 4}
				leapSize := leapSizes[rng.Intn(len(leapSizes))]
				direction := 1
				if rng.Float64() <= 0.5 {
					direction = -1
				}
				currentNoteIdx = clampIdx(currentNoteIdx+direction*leapSize, len(scaleNotes))
			}

			currentPitch := scaleNotes[currentNoteIdx]

			durationChoices := []int{sixteenthTicks * 2, sixteenthTicks * 4, sixteenthTicks * 8}
			duration := durationChoices[rng.Intn(len(durationChoices))]

			events = append(events, Event{
				Pitch:        currentPitch,
				Velocity:     80 + int(rng.Float64()*40),
				StartTick:    tick,
				DurationTick: duration,
			})
		}

		currentTick += ticksPerBar
	}

	return events
}

func clampIdx(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx >= length {
		return length - 1
	}
	return idx
}

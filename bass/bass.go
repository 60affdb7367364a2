// Package bass generates a root-following bassline with syncopated beat-3
// approach notes and occasional fills, tracking a chord progression bar by
// bar.
package bass

import (
	"tonecraft/progression"
	"tonecraft/seedrand"
	"tonecraft/theory"
	"tonecraft/timebase"
)

// Event is a single bass note prior to becoming a model.Note.
type Event struct {
	Pitch        int
	Velocity     int
	StartTick    int
	DurationTick int
}

// Generate produces a bassline: beat 1 always plays the chord root, beat 3
// usually plays the root or a whole-step-below approach note (optionally
// syncopated early), and roughly one bar in five adds a 16th-note fill.
func Generate(tonic string, mode theory.Mode, bars, tsNum, tsDen int, chordProgression []progression.ChordEvent, seed int64, octave int, syncopation float64) []Event {
	rng := seedrand.Stream(seed)

	ticksPerBar := timebase.TicksPerBar(tsNum, tsDen)

	chordByBar := map[int]progression.ChordEvent{}
	for _, chord := range chordProgression {
		for barOffset := 0; barOffset < chord.LengthBars; barOffset++ {
			chordByBar[chord.StartBar+barOffset] = chord
		}
	}

	var events []Event
	for bar := 0; bar < bars; bar++ {
		chord, ok := chordByBar[bar]
		if !ok {
			if len(chordProgression) == 0 {
				continue
			}
			chord = chordProgression[0]
		}

		degree := theory.RomanToDegree(chord.RomanNumeral)
		chordNotes := theory.ChordNotes(tonic, mode, degree, theory.Triad, octave)
		root := chordNotes[0]

		beat1Tick := bar * ticksPerBar
		beat3Tick := bar*ticksPerBar + ticksPerBar/2

		events = append(events, Event{
			Pitch:        root,
			Velocity:     100,
			StartTick:    beat1Tick,
			DurationTick: ticksPerBar / 2,
		})

		if rng.Float64() > 0.2 {
			tick := beat3Tick
			if rng.Float64() < syncopation {
				tick = beat3Tick - timebase.PPQ/8
			}

			approachPitch := root
			if rng.Float64() < 0.3 {
				approachPitch = root - 2
			}

			events = append(events, Event{
				Pitch:        approachPitch,
				Velocity:     90,
				StartTick:    tick,
				DurationTick: ticksPerBar / 4,
			})
		}

		if rng.Float64() < 0.2 {
			fillTick := bar*ticksPerBar + 3*ticksPerBar/4
			events = append(events, Event{
				Pitch:        root,
				Velocity:     85,
				StartTick:    fillTick,
				DurationTick: timebase.PPQ / 4,
			})
		}
	}

	return events
}

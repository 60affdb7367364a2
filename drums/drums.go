// Package drums implements the producer-grade drum pattern engine: style
// base patterns, swing, density, bar-to-bar variation, ghost notes,
// fills and syncopation, every decision seeded deterministically.
package drums

import (
	"fmt"
	"sort"

	"tonecraft/seedrand"
	"tonecraft/timebase"
)

// DrumMap maps drum roles to MIDI notes.
type DrumMap struct {
	KickNote     int
	SnareNote    int
	ClapNote     int
	ClosedHatNote int
	OpenHatNote  int
	RimNote      int
	PercNotes    []int
}

// DefaultDrumMap is the General MIDI drum kit mapping.
func DefaultDrumMap() DrumMap {
	return DrumMap{
		KickNote:      36,
		SnareNote:     38,
		ClapNote:      39,
		ClosedHatNote: 42,
		OpenHatNote:   46,
		RimNote:       37,
	}
}

// GetNote returns the MIDI note for a drum role, defaulting to the kick
// note for unknown roles.
func (m DrumMap) GetNote(role string) int {
	switch role {
	case "kick":
		return m.KickNote
	case "snare":
		return m.SnareNote
	case "clap":
		return m.ClapNote
	case "closed_hat":
		return m.ClosedHatNote
	case "open_hat":
		return m.OpenHatNote
	case "rim":
		return m.RimNote
	default:
		return m.KickNote
	}
}

// HatMode selects the hi-hat generation strategy.
type HatMode string

const (
	HatStraight8  HatMode = "straight_8"
	HatStraight16 HatMode = "straight_16"
	HatSkipStep   HatMode = "skip_step"
	HatRoll       HatMode = "roll"
)

// Event is one drum hit prior to becoming a model.Note.
type Event struct {
	Pitch        int
	Velocity     int
	StartTick    int
	DurationTick int
	Role         string
}

var styleBaseSteps = map[string][]int{
	"boom_bap": {0, 6, 8, 14},
	"trap":     {0, 8, 12},
	"drill":    {0, 4, 8, 12},
	"lofi":     {0, 8},
	"minimal":  {0},
}

func baseStepsForStyle(style string) []int {
	if steps, ok := styleBaseSteps[style]; ok {
		return steps
	}
	return []int{0, 8}
}

// deterministicSeed derives a per-bar, per-role, per-parameter seed.
func deterministicSeed(baseSeed int64, barIndex int, role, param string) int64 {
	return seedrand.Seed(baseSeed, barIndex, role, param)
}

// ApplySwing delays odd-indexed (off-beat) steps by half a step's worth of
// swing, leaving even steps untouched.
func ApplySwing(tick, stepIndex int, swingAmt float64, stepTicks int) int {
	if swingAmt == 0.0 {
		return tick
	}
	if stepIndex%2 == 1 {
		return tick + int(swingAmt*float64(stepTicks)*0.5)
	}
	return tick
}

// GenerateKickPattern produces style-aware kick hits with per-bar pauses,
// density thinning, and +/-1 step variation.
func GenerateKickPattern(bars, ticksPerBar int, style string, seed int64, density, pauseProbability float64, pauseScope string) []Event {
	stepTicks := ticksPerBar / 16
	baseSteps := baseStepsForStyle(style)

	var events []Event
	for bar := 0; bar < bars; bar++ {
		barRng := seedrand.Stream(deterministicSeed(seed, bar, "kick", "pattern"))

		if (pauseScope == "kick" || pauseScope == "all") && barRng.Float64() < pauseProbability {
			continue
		}

		for _, baseStep := range baseSteps {
			if barRng.Float64() > density {
				continue
			}

			step := baseStep
			varRng := seedrand.Stream(deterministicSeed(seed, bar, "kick", fmt.Sprintf("variation_%d", baseStep)))
			if varRng.Float64() < 0.2 {
				if varRng.Intn(2) == 0 {
					step -= 1
				} else {
					step += 1
				}
				step = clamp(step, 0, 15)
			}

			tick := bar*ticksPerBar + step*stepTicks

			var velocity int
			if step%4 == 0 {
				velocity = 110 + int(varRng.Float64()*17)
			} else {
				velocity = 90 + int(varRng.Float64()*20)
			}

			events = append(events, Event{
				Pitch:        36,
				Velocity:     velocity,
				StartTick:    tick,
				DurationTick: stepTicks / 2,
				Role:         "kick",
			})
		}
	}
	return events
}

// GenerateSnarePattern produces backbeat snare hits on steps 4 and 12.
func GenerateSnarePattern(bars, ticksPerBar int, style string, seed int64, density, pauseProbability float64) []Event {
	stepTicks := ticksPerBar / 16
	baseSteps := []int{4, 12}

	var events []Event
	for bar := 0; bar < bars; bar++ {
		barRng := seedrand.Stream(deterministicSeed(seed, bar, "snare", "pattern"))

		if barRng.Float64() < pauseProbability {
			continue
		}

		for _, step := range baseSteps {
			if barRng.Float64() > density {
				continue
			}

			tick := bar*ticksPerBar + step*stepTicks
			velocity := 100 + int(barRng.Float64()*20)

			events = append(events, Event{
				Pitch:        38,
				Velocity:     velocity,
				StartTick:    tick,
				DurationTick: stepTicks / 2,
				Role:         "snare",
			})
		}
	}
	return events
}

// GenerateHatPattern produces hi-hats in one of four modes, with swing
// applied to off-beat steps.
func GenerateHatPattern(bars, ticksPerBar int, style string, seed int64, mode HatMode, density, swing, rollProbability float64, rollSubdivision string) []Event {
	stepTicks := ticksPerBar / 16

	var events []Event
	for bar := 0; bar < bars; bar++ {
		barRng := seedrand.Stream(deterministicSeed(seed, bar, "hats", "pattern"))

		var steps []int
		switch mode {
		case HatStraight8:
			steps = []int{0, 2, 4, 6, 8, 10, 12, 14}
		case HatSkipStep:
			for _, s := range []int{0, 2, 4, 6, 8, 10, 12, 14} {
				if barRng.Float64() < density {
					steps = append(steps, s)
				}
			}
		case HatRoll:
			for i := 0; i < 16; i += 2 {
				if barRng.Float64() < density {
					steps = append(steps, i)
				}
			}
			if barRng.Float64() < rollProbability {
				rollStart := seedrand.IntRange(barRng, 8, 12)
				if rollSubdivision == "1/32" {
					steps = append(steps, rollStart, rollStart+1, rollStart+2, rollStart+3)
				} else {
					for i := 0; i < 6; i++ {
						steps = append(steps, rollStart+i)
					}
				}
			}
		default: // straight_16
			for i := 0; i < 16; i++ {
				steps = append(steps, i)
			}
		}

		for _, step := range steps {
			if barRng.Float64() > density {
				continue
			}

			tick := bar*ticksPerBar + step*stepTicks
			tick = ApplySwing(tick, step, swing, stepTicks)

			velocity := 70 + int(barRng.Float64()*40)

			events = append(events, Event{
				Pitch:        42,
				Velocity:     velocity,
				StartTick:    tick,
				DurationTick: stepTicks / 2,
				Role:         "closed_hat",
			})
		}
	}
	return events
}

// GenerateGhostNotes fills gaps between main snare hits with quiet snares.
func GenerateGhostNotes(bars, ticksPerBar int, seed int64, snareEvents []Event, density float64) []Event {
	stepTicks := ticksPerBar / 16

	snareSteps := map[int]bool{}
	for _, e := range snareEvents {
		step := (e.StartTick % ticksPerBar) / stepTicks
		snareSteps[step] = true
	}

	var events []Event
	for bar := 0; bar < bars; bar++ {
		barRng := seedrand.Stream(deterministicSeed(seed, bar, "ghost", "pattern"))

		for step := 0; step < 16; step++ {
			if snareSteps[step] {
				continue
			}
			if barRng.Float64() < density {
				tick := bar*ticksPerBar + step*stepTicks
				velocity := 40 + int(barRng.Float64()*20)

				events = append(events, Event{
					Pitch:        38,
					Velocity:     velocity,
					StartTick:    tick,
					DurationTick: stepTicks / 2,
					Role:         "ghost",
				})
			}
		}
	}
	return events
}

// GenerateFillPattern produces a 4-8 hit alternating snare/kick fill over
// the second half of bar.
func GenerateFillPattern(bar, ticksPerBar int, style string, seed int64, drumMap DrumMap) []Event {
	rng := seedrand.Stream(seed)

	fillStartTick := bar*ticksPerBar + ticksPerBar/2
	fillLengthTicks := ticksPerBar / 2

	numHits := 4 + rng.Intn(5)
	events := make([]Event, 0, numHits)
	for i := 0; i < numHits; i++ {
		offset := int(float64(i) / float64(numHits) * float64(fillLengthTicks))
		tick := fillStartTick + offset

		if i%2 == 0 {
			events = append(events, Event{
				Pitch:        drumMap.GetNote("snare"),
				Velocity:     100 + seedrand.IntRange(rng, -10, 10),
				StartTick:    tick,
				DurationTick: timebase.PPQ / 8,
				Role:         "snare",
			})
		} else {
			events = append(events, Event{
				Pitch:        drumMap.GetNote("kick"),
				Velocity:     110 + seedrand.IntRange(rng, -10, 10),
				StartTick:    tick,
				DurationTick: timebase.PPQ / 8,
				Role:         "kick",
			})
		}
	}
	return events
}

// Params bundles the tunable knobs of a drum pattern generation run.
type Params struct {
	Style               string
	Swing               float64
	Density             float64
	HatMode             HatMode
	GhostNotes          bool
	PauseProbability    float64
	PauseScope          string
	VariationIntensity  float64
	FillProbability     float64
	Syncopation         float64
	GhostNoteProbability float64
	HatSubdivision      string
}

// DefaultParams returns the engine's baseline pattern parameters.
func DefaultParams() Params {
	return Params{
		Style:                "boom_bap",
		HatMode:              HatStraight16,
		Density:              0.7,
		PauseScope:           "kick",
		GhostNotes:           true,
		GhostNoteProbability: 0.3,
		HatSubdivision:       "1/16",
	}
}

// GeneratePattern renders a complete multi-bar drum pattern: kick, snare,
// hats, optional ghost notes, an optional fill on the last bar, and
// syncopation shifting every off-beat hit.
func GeneratePattern(bars, tsNum, tsDen int, seed int64, drumMap DrumMap, p Params) []Event {
	ticksPerBar := int(float64(tsNum) * 4 / float64(tsDen) * timebase.PPQ)

	kickEvents := GenerateKickPattern(bars, ticksPerBar, p.Style, seed, p.Density, p.PauseProbability, p.PauseScope)
	snareEvents := GenerateSnarePattern(bars, ticksPerBar, p.Style, seed, p.Density, p.PauseProbability)
	hatEvents := GenerateHatPattern(bars, ticksPerBar, p.Style, seed, p.HatMode, p.Density, p.Swing, 0.1, "1/32")

	for i := range kickEvents {
		kickEvents[i].Pitch = drumMap.GetNote("kick")
	}
	for i := range snareEvents {
		snareEvents[i].Pitch = drumMap.GetNote("snare")
	}
	for i := range hatEvents {
		hatEvents[i].Pitch = drumMap.GetNote("closed_hat")
	}

	var all []Event
	all = append(all, kickEvents...)
	all = append(all, snareEvents...)
	all = append(all, hatEvents...)

	if p.GhostNotes && p.GhostNoteProbability > 0 {
		ghostEvents := GenerateGhostNotes(bars, ticksPerBar, seed, snareEvents, p.GhostNoteProbability)
		for i := range ghostEvents {
			ghostEvents[i].Pitch = drumMap.GetNote("snare")
		}
		all = append(all, ghostEvents...)
	}

	if p.FillProbability > 0 {
		fillSeed := deterministicSeed(seed, bars-1, "fill", "pattern")
		fillRng := seedrand.Stream(fillSeed)
		if fillRng.Float64() < p.FillProbability {
			all = append(all, GenerateFillPattern(bars-1, ticksPerBar, p.Style, fillSeed, drumMap)...)
		}
	}

	if p.Syncopation > 0 {
		syncOffset := int(p.Syncopation * timebase.PPQ / 8)
		quarter := float64(ticksPerBar) / 4
		for i := range all {
			beatPosition := float64(all[i].StartTick%ticksPerBar) / quarter
			if fracPart(beatPosition) > 0.1 {
				all[i].StartTick += syncOffset
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTick < all[j].StartTick })
	return all
}

func fracPart(v float64) float64 {
	return v - float64(int(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

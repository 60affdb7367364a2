// Package chordrender is the single canonical renderer turning a chord
// event and project context into concrete notes: voicing, inversion,
// pattern realization, velocity curves, humanization and duration gating.
package chordrender

import (
	"math"
	"sort"

	"tonecraft/seedrand"
	"tonecraft/theory"
	"tonecraft/timebase"
)

// Note is a single rendered note.
type Note struct {
	Pitch        int
	StartTick    int
	DurationTick int
	Velocity     int
}

// Voicing selects the octave-placement preset applied to a chord's pitch
// classes.
type Voicing string

const (
	VoicingRoot   Voicing = "root"
	VoicingOpen   Voicing = "open"
	VoicingDrop2  Voicing = "drop2"
	VoicingSmooth Voicing = "smooth"
)

// PatternType selects how a chord's voices are spread across its duration.
type PatternType string

const (
	PatternBlock  PatternType = "block"
	PatternStrum  PatternType = "strum"
	PatternComp   PatternType = "comp"
	PatternArp    PatternType = "arp"
)

// StrumDirection orders a strum's note onsets.
type StrumDirection string

const (
	StrumDown      StrumDirection = "down"
	StrumUp        StrumDirection = "up"
	StrumAlternate StrumDirection = "alternate"
	StrumRandom    StrumDirection = "random"
)

// VelocityCurve shapes per-note velocity across a chord's voices.
type VelocityCurve string

const (
	CurveFlat  VelocityCurve = "flat"
	CurveDown  VelocityCurve = "down"
	CurveUp    VelocityCurve = "up"
	CurveSwell VelocityCurve = "swell"
	CurveDip   VelocityCurve = "dip"
)

// CompPattern describes a comping rhythm: which 1/N-grid steps fire, their
// accent multipliers, and swing.
type CompPattern struct {
	GridDenominator int
	Steps           []bool
	Accent          []float64
	Swing           float64
}

// ChordEvent is the subset of model.ChordEvent's fields the renderer needs.
type ChordEvent struct {
	ID              string
	RomanNumeral    string
	StartTick       int
	DurationTick    int
	Intensity       float64
	Voicing         Voicing
	Inversion       int
	PatternType     PatternType
	StrumBeats      float64
	StrumDirection  StrumDirection
	StrumSpread     float64
	HumanizeBeats   float64
	DurationGate    float64
	VelocityCurve   VelocityCurve
	VelocityJitter  int
	CompPattern     *CompPattern
	Retrigger       bool
}

// ProjectContext is the subset of project fields the renderer needs.
type ProjectContext struct {
	Tonic      string
	Mode       theory.Mode
	BPM        int
	TsNum      int
	TsDen      int
}

// Voice applies a voicing preset and inversion to a set of chord tones.
// When previousVoicing is non-empty and voicing is smooth, the octave is
// chosen to minimize total voice-leading distance via greedy
// nearest-neighbor assignment, and every voice is kept; the root preset
// always uses the octave nearest the range midpoint, never the smoothing
// cost. The root, open and drop2 presets drop voices that fall outside
// [low, high], so a range narrower than the chord can leave no voice at
// all. When no octave fits the range (low above high, for instance), every
// voice is placed in the octave nearest the range midpoint with no range
// filter, so a non-empty chord never comes back empty in that case.
func Voice(chordTones []int, voicing Voicing, inversion, low, high int, previousVoicing []int) []int {
	if len(chordTones) == 0 {
		return nil
	}

	pcSet := map[int]bool{}
	for _, p := range chordTones {
		pcSet[mod12(p)] = true
	}
	pitchClasses := make([]int, 0, len(pcSet))
	for pc := range pcSet {
		pitchClasses = append(pitchClasses, pc)
	}
	sort.Ints(pitchClasses)

	rotated := make([]int, len(pitchClasses))
	copy(rotated, pitchClasses)
	for i := 0; i < inversion; i++ {
		if len(rotated) == 0 {
			break
		}
		first := rotated[0]
		rotated = append(rotated[1:], first+12)
	}

	maxPC, minPC := rotated[0], rotated[0]
	for _, pc := range rotated {
		if pc > maxPC {
			maxPC = pc
		}
		if pc < minPC {
			minPC = pc
		}
	}
	minOctave := floorDiv(low-maxPC, 12)
	maxOctave := floorDiv(high-minPC, 12)

	if minOctave > maxOctave {
		octave := floorDiv(low+high, 24)
		out := make([]int, len(rotated))
		for i, pc := range rotated {
			out[i] = pc + octave*12
		}
		return out
	}

	switch voicing {
	case VoicingOpen:
		if len(rotated) >= 3 {
			octaveRoot := minOctave
			octaveUpper := minOctave + 1
			result := []int{
				rotated[0] + octaveRoot*12,
				rotated[1] + octaveUpper*12,
				rotated[2] + octaveUpper*12,
			}
			return filterRange(result, low, high)
		}
	case VoicingDrop2:
		if len(rotated) >= 2 {
			result := make([]int, 0, len(rotated))
			for i, pc := range rotated {
				octave := minOctave + 1
				if i == 1 {
					octave = minOctave
				}
				pitch := pc + octave*12
				if pitch >= low && pitch <= high {
					result = append(result, pitch)
				}
			}
			return result
		}
	case VoicingSmooth:
		if len(previousVoicing) > 0 {
			return smoothOctave(rotated, previousVoicing, minOctave, maxOctave)
		}
	}

	return midpointOctave(rotated, minOctave, maxOctave, low, high)
}

// midpointOctave picks, among octaves that keep every voice within
// [low, high], the one whose pitches sum to the smallest total distance
// from the range's midpoint. Falls back to the in-range filter of the
// nearest-to-midpoint octave if none keeps every voice in range.
func midpointOctave(pitchClasses []int, minOctave, maxOctave, low, high int) []int {
	midpoint := float64(low+high) / 2

	bestOctave := minOctave
	bestCost := math.Inf(1)
	bestFullyInRange := false
	for octave := minOctave; octave <= maxOctave; octave++ {
		cost := 0.0
		fullyInRange := true
		for _, pc := range pitchClasses {
			pitch := pc + octave*12
			cost += math.Abs(float64(pitch) - midpoint)
			if pitch < low || pitch > high {
				fullyInRange = false
			}
		}
		better := (fullyInRange && !bestFullyInRange) ||
			(fullyInRange == bestFullyInRange && cost < bestCost)
		if better {
			bestCost = cost
			bestOctave = octave
			bestFullyInRange = fullyInRange
		}
	}

	out := make([]int, 0, len(pitchClasses))
	for _, pc := range pitchClasses {
		pitch := pc + bestOctave*12
		if pitch >= low && pitch <= high {
			out = append(out, pitch)
		}
	}
	return out
}

// smoothOctave picks the octave (within [minOctave, maxOctave]) minimizing
// the greedy nearest-neighbor voice-leading distance to previousVoicing.
func smoothOctave(pitchClasses, previousVoicing []int, minOctave, maxOctave int) []int {
	bestOctave := minOctave
	bestCost := math.Inf(1)
	for octave := minOctave; octave <= maxOctave; octave++ {
		candidate := make([]int, len(pitchClasses))
		for i, pc := range pitchClasses {
			candidate[i] = pc + octave*12
		}
		cost := greedyVoiceLeadingCost(candidate, previousVoicing)
		if cost < bestCost {
			bestCost = cost
			bestOctave = octave
		}
	}
	out := make([]int, len(pitchClasses))
	for i, pc := range pitchClasses {
		out[i] = pc + bestOctave*12
	}
	return out
}

func greedyVoiceLeadingCost(candidate, previous []int) float64 {
	claimed := make([]bool, len(previous))
	total := 0.0
	for _, c := range candidate {
		bestDist := math.Inf(1)
		bestIdx := -1
		for i, p := range previous {
			if claimed[i] {
				continue
			}
			d := math.Abs(float64(c - p))
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			claimed[bestIdx] = true
			total += bestDist
		}
	}
	return total
}

func filterRange(pitches []int, low, high int) []int {
	out := make([]int, 0, len(pitches))
	for _, p := range pitches {
		if p >= low && p <= high {
			out = append(out, p)
		}
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

// ApplyVelocityCurve scales a base velocity by a per-index curve factor.
func ApplyVelocityCurve(baseVelocity, noteIndex, totalNotes int, curve VelocityCurve) int {
	if curve == CurveFlat || totalNotes == 1 {
		return baseVelocity
	}

	var factor float64
	n := float64(totalNotes)
	i := float64(noteIndex)
	switch curve {
	case CurveDown:
		factor = 1.0 - (i/(n-1))*0.3
	case CurveUp:
		factor = 0.7 + (i/(n-1))*0.3
	case CurveSwell:
		center := (n - 1) / 2
		distance := math.Abs(i - center)
		factor = 1.0 - (distance/center)*0.2
	case CurveDip:
		center := (n - 1) / 2
		distance := math.Abs(i - center)
		factor = 0.8 + (distance/center)*0.2
	default:
		factor = 1.0
	}

	v := int(float64(baseVelocity) * factor)
	return clampInt(v, 1, 127)
}

type noteStart struct {
	voiceIdx int
	tick     int
	accent   float64
}

// Render converts a chord event plus its project context into rendered
// notes: chord tones, voicing/inversion, pattern-dependent onset times,
// humanization, velocity curve/jitter, and duration gating.
func Render(event ChordEvent, ctx ProjectContext, seed int64, previousVoicing []int) []Note {
	degree := theory.RomanToDegree(event.RomanNumeral)
	quality := theory.Triad
	if containsRune(event.RomanNumeral, '7') {
		quality = theory.Seventh
	}
	chordTones := theory.ChordNotes(ctx.Tonic, ctx.Mode, degree, quality, 4)

	voicingPitches := Voice(chordTones, event.Voicing, event.Inversion, 48, 72, previousVoicing)
	if len(voicingPitches) == 0 {
		return nil
	}

	baseStartTick := event.StartTick
	durationTicks := event.DurationTick
	intensity := event.Intensity
	durationGate := event.DurationGate

	strumTicks := int(event.StrumBeats * timebase.PPQ)
	humanizeTicks := int(event.HumanizeBeats * timebase.PPQ)

	rngStrum := seedrand.Stream(seedrand.Seed(seed, event.ID, "strum"))
	rngHumanize := seedrand.Stream(seedrand.Seed(seed, event.ID, "humanize"))
	rngVelocity := seedrand.Stream(seedrand.Seed(seed, event.ID, "velocity"))

	var starts []noteStart
	switch event.PatternType {
	case PatternStrum:
		starts = strumStarts(voicingPitches, event, baseStartTick, strumTicks, rngStrum)
	case PatternComp:
		starts = compStarts(voicingPitches, event, baseStartTick, durationTicks)
	default: // block, arp and unknown pattern types all render as block; no arp subdivision is carried
		starts = make([]noteStart, len(voicingPitches))
		for i := range voicingPitches {
			starts[i] = noteStart{voiceIdx: i, tick: baseStartTick, accent: 1.0}
		}
	}

	notes := make([]Note, 0, len(starts))
	for _, s := range starts {
		pitch := voicingPitches[s.voiceIdx]
		noteStartTick := s.tick

		if event.HumanizeBeats > 0 {
			offset := seedrand.IntRange(rngHumanize, -humanizeTicks, humanizeTicks)
			noteStartTick += offset
			noteStartTick = clampInt(noteStartTick, baseStartTick, baseStartTick+durationTicks)
		}

		baseVelocity := int(100 * intensity * s.accent)
		velocity := ApplyVelocityCurve(baseVelocity, s.voiceIdx, len(voicingPitches), event.VelocityCurve)

		if event.VelocityJitter > 0 {
			velocity += seedrand.IntRange(rngVelocity, -event.VelocityJitter, event.VelocityJitter)
		}
		velocity = clampInt(velocity, 1, 127)

		gatedDuration := int(float64(durationTicks) * durationGate)

		notes = append(notes, Note{
			Pitch:        pitch,
			StartTick:    noteStartTick,
			DurationTick: gatedDuration,
			Velocity:     velocity,
		})
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartTick != notes[j].StartTick {
			return notes[i].StartTick < notes[j].StartTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})

	return notes
}

func strumStarts(voicingPitches []int, event ChordEvent, baseStartTick, strumTicks int, rngStrum interface {
	Intn(int) int
}) []noteStart {
	spread := event.StrumSpread
	if spread == 0 {
		spread = 1.0
	}
	effectiveStrumTicks := int(float64(strumTicks) * spread)

	indices := make([]int, len(voicingPitches))
	for i := range indices {
		indices[i] = i
	}

	switch event.StrumDirection {
	case StrumUp:
		reverse(indices)
	case StrumAlternate:
		type pv struct {
			idx   int
			pitch int
		}
		sorted := make([]pv, len(voicingPitches))
		for i, p := range voicingPitches {
			sorted[i] = pv{i, p}
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].pitch < sorted[j].pitch })
		half := len(sorted) / 2
		var low, high []int
		for i, s := range sorted {
			if i < half {
				low = append(low, s.idx)
			} else {
				high = append(high, s.idx)
			}
		}
		indices = indices[:0]
		maxLen := len(low)
		if len(high) > maxLen {
			maxLen = len(high)
		}
		for i := 0; i < maxLen; i++ {
			if i < len(low) {
				indices = append(indices, low[i])
			}
			if i < len(high) {
				indices = append(indices, high[len(high)-1-i])
			}
		}
	case StrumRandom:
		shuffle(indices, rngStrum)
	}

	starts := make([]noteStart, 0, len(indices))
	for i, idx := range indices {
		tick := baseStartTick
		if len(indices) > 1 && effectiveStrumTicks > 0 {
			position := float64(i) / float64(len(indices)-1)
			tick = baseStartTick + int(position*float64(effectiveStrumTicks))
		}
		starts = append(starts, noteStart{voiceIdx: idx, tick: tick, accent: 1.0})
	}
	return starts
}

func compStarts(voicingPitches []int, event ChordEvent, baseStartTick, durationTicks int) []noteStart {
	comp := event.CompPattern
	if comp == nil {
		comp = &CompPattern{GridDenominator: 8, Steps: []bool{true, false, true, false, true, false, true, false}, Accent: []float64{1, 1, 1, 1, 1, 1, 1, 1}}
	}
	gridDenom := comp.GridDenominator
	if gridDenom == 0 {
		gridDenom = 4
	}
	ticksPerStep := timebase.PPQ * 4 / gridDenom

	swingOffset := 0
	if comp.Swing > 0 {
		swingOffset = int(comp.Swing * float64(ticksPerStep) / 2)
	}

	var starts []noteStart
	for stepIdx, on := range comp.Steps {
		if !on {
			continue
		}
		stepTick := baseStartTick + stepIdx*ticksPerStep
		if stepIdx%2 == 1 {
			stepTick += swingOffset
		}
		if stepTick >= baseStartTick+durationTicks {
			continue
		}
		accent := 1.0
		if stepIdx < len(comp.Accent) {
			accent = comp.Accent[stepIdx]
		}
		for voiceIdx := range voicingPitches {
			starts = append(starts, noteStart{voiceIdx: voiceIdx, tick: stepTick, accent: accent})
		}
	}

	if !event.Retrigger {
		seen := map[int]bool{}
		filtered := starts[:0]
		for _, s := range starts {
			if seen[s.voiceIdx] {
				continue
			}
			seen[s.voiceIdx] = true
			filtered = append(filtered, s)
		}
		starts = filtered
	}

	return starts
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func shuffle(s []int, rng interface{ Intn(int) int }) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

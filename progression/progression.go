// Package progression generates diatonic chord progressions by
// circle-of-fifths motion or common progression tables, and scores
// candidate progressions for ranking.
package progression

import (
	"fmt"
	"sort"
	"strings"

	"tonecraft/seedrand"
	"tonecraft/theory"
)

// ChordEvent is a single chord slot in a progression, prior to voicing or
// rendering.
type ChordEvent struct {
	RomanNumeral string
	ChordName    string
	StartBar     int
	LengthBars   int

	PatternType   string
	Intensity     float64
	Voicing       string
	Inversion     int
	DurationGate  float64
	VelocityCurve string
}

var ionianProgressions = [][]string{
	{"I", "V", "vi", "IV"},
	{"I", "vi", "IV", "V"},
	{"vi", "IV", "I", "V"},
	{"I", "IV", "V", "I"},
}

var ionianCadences = [][]string{
	{"V", "I"},
	{"ii", "V", "I"},
}

var aeolianProgressions = [][]string{
	{"i", "iv", "V", "i"},
	{"i", "VI", "III", "VII"},
	{"i", "v", "iv", "i"},
}

var aeolianCadences = [][]string{
	{"V", "i"},
	{"iv", "V", "i"},
}

// Generate builds a chord progression of the given length, alternating
// circle-of-fifths motion with common-progression lookup, and closing with
// a cadence when cadenceEnding is set.
func Generate(tonic string, mode theory.Mode, bars int, seed int64, startOn string, preferCircleMotion, cadenceEnding bool) []ChordEvent {
	rng := seedrand.Stream(seed)

	var commonProgressions [][]string
	var cadenceOptions [][]string
	if mode == theory.Ionian {
		commonProgressions = ionianProgressions
		cadenceOptions = ionianCadences
	} else {
		commonProgressions = aeolianProgressions
		cadenceOptions = aeolianCadences
	}

	var firstChord string
	if startOn == "vi" && mode == theory.Ionian {
		firstChord = "vi"
	} else if mode == theory.Ionian {
		firstChord = "I"
	} else {
		firstChord = "i"
	}

	var events []ChordEvent
	currentBar := 0

	for currentBar < bars {
		if cadenceEnding && currentBar >= bars-2 {
			cadence := cadenceOptions[rng.Intn(len(cadenceOptions))]
			for _, chordRoman := range cadence {
				if currentBar >= bars {
					break
				}
				events = append(events, ChordEvent{
					RomanNumeral: chordRoman,
					ChordName:    theory.RomanToChordName(chordRoman, tonic, mode),
					StartBar:     currentBar,
					LengthBars:   1,
				})
				currentBar++
			}
			break
		}

		var chordRoman string
		if preferCircleMotion && rng.Float64() > 0.3 {
			if len(events) > 0 {
				lastDegree := theory.RomanToDegree(events[len(events)-1].RomanNumeral)
				var nextDegree int
				if rng.Float64() > 0.5 {
					nextDegree = mod7(lastDegree+3) + 1
				} else {
					nextDegree = mod7(lastDegree-3) + 1
				}
				chordRoman = degreeToRoman(nextDegree, mode)
			} else {
				chordRoman = firstChord
			}
		} else {
			if len(events) > 0 && currentBar < bars-1 {
				prog := commonProgressions[rng.Intn(len(commonProgressions))]
				idx := (currentBar / 2) % len(prog)
				chordRoman = prog[idx]
			} else {
				chordRoman = firstChord
			}
		}

		length := 2
		if rng.Float64() > 0.3 {
			length = 1
		}
		if currentBar+length > bars {
			length = bars - currentBar
		}

		events = append(events, ChordEvent{
			RomanNumeral: chordRoman,
			ChordName:    theory.RomanToChordName(chordRoman, tonic, mode),
			StartBar:     currentBar,
			LengthBars:   length,
		})
		currentBar += length
	}

	return events
}

func mod7(n int) int {
	n %= 7
	if n < 0 {
		n += 7
	}
	return n
}

func degreeToRoman(degree int, mode theory.Mode) string {
	var mapping map[int]string
	if mode == theory.Ionian {
		mapping = map[int]string{1: "I", 2: "ii", 3: "iii", 4: "IV", 5: "V", 6: "vi", 7: "vii"}
	} else {
		mapping = map[int]string{1: "i", 2: "ii", 3: "III", 4: "iv", 5: "v", 6: "VI", 7: "VII"}
	}
	if roman, ok := mapping[degree]; ok {
		return roman
	}
	return "I"
}

// Candidate is a scored progression with a presentation title and
// explanation.
type Candidate struct {
	Progression []ChordEvent
	Score       float64
	Title       string
	Explanation string
}

// Locks maps a chord index in the progression to a required roman numeral.
type Locks map[int]string

// CandidateSeed derives a deterministic seed for the candidateIndex-th
// progression of a generation run.
func CandidateSeed(runID string, candidateIndex int, baseSeed int64) int64 {
	return seedrand.SignedSeed(runID, candidateIndex, baseSeed)
}

// Score rates a progression: lock violations are penalized heavily,
// immediate chord repetition lightly; strong cadences, harmonic-rhythm
// alignment to the target and chord variety (scaled by complexity) all add
// to the score. Scores are never negative.
func Score(prog []ChordEvent, locks Locks, harmonicRhythmTarget string, tension, complexity float64) float64 {
	if len(prog) == 0 {
		return 0.0
	}

	score := 1.0

	for idx, required := range locks {
		if idx < len(prog) && prog[idx].RomanNumeral != required {
			score -= 10.0
		}
	}

	for i := 1; i < len(prog); i++ {
		if prog[i-1].RomanNumeral == prog[i].RomanNumeral {
			score -= 0.1
		}
	}

	numerals := make([]string, len(prog))
	for i, c := range prog {
		numerals[i] = c.RomanNumeral
	}
	tail := "-" + strings.Join(numerals, "-")
	if strings.HasSuffix(tail, "-ii-V-I") {
		score += 0.7
	} else if strings.HasSuffix(tail, "-V-I") {
		score += 0.5
	}

	last := prog[len(prog)-1]
	denom := last.StartBar + last.LengthBars
	if denom < 1 {
		denom = 1
	}
	avgChordsPerBar := float64(len(prog)) / float64(denom)

	var target float64
	switch harmonicRhythmTarget {
	case "2chords/bar":
		target = 2.0
	case "1chord/bar":
		target = 1.0
	default:
		target = 0.5
	}
	rhythmScore := 1.0 - absFloat(avgChordsPerBar-target)*0.2
	score += rhythmScore

	unique := map[string]bool{}
	for _, c := range prog {
		unique[c.RomanNumeral] = true
	}
	complexityScore := minFloat(1.0, float64(len(unique))/float64(len(prog))) * complexity
	score += complexityScore

	if score < 0 {
		return 0
	}
	return score
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// GenerateCandidatesParams bundles the knobs for multi-candidate generation.
type GenerateCandidatesParams struct {
	Tonic          string
	Mode           theory.Mode
	Bars           int
	TimeSigNum     int
	TimeSigDen     int
	HarmonicRhythm string
	Complexity     float64
	Tension        float64
	Style          string
	CadenceEnding  bool
}

// GenerateCandidates produces numCandidates scored progressions with
// per-candidate deterministic seeding, applying style-dependent pattern
// defaults before scoring, sorted descending by score.
func GenerateCandidates(p GenerateCandidatesParams, locks Locks, seed int64, runID string, numCandidates int) []Candidate {
	candidates := make([]Candidate, 0, numCandidates)

	for i := 0; i < numCandidates; i++ {
		var candidateSeed int64
		if runID != "" {
			candidateSeed = CandidateSeed(runID, i, seed)
		} else {
			candidateSeed = seed + int64(i)*1000
		}

		prog := Generate(p.Tonic, p.Mode, p.Bars, candidateSeed, "I", true, p.CadenceEnding)

		for idx := range prog {
			switch p.Style {
			case "guitar":
				prog[idx].PatternType = "strum"
			case "piano":
				prog[idx].PatternType = "comp"
			default:
				prog[idx].PatternType = "block"
				prog[idx].DurationGate = 0.95
			}
			if prog[idx].Intensity == 0 {
				prog[idx].Intensity = 0.85
			}
			if prog[idx].Voicing == "" {
				prog[idx].Voicing = "root"
			}
			if prog[idx].DurationGate == 0 {
				prog[idx].DurationGate = 0.85
			}
			if prog[idx].VelocityCurve == "" {
				prog[idx].VelocityCurve = "flat"
			}
		}

		score := Score(prog, locks, p.HarmonicRhythm, p.Tension, p.Complexity)

		title := fmt.Sprintf("Candidate %d", i+1)
		switch {
		case i == 0:
			title = "Primary"
		case score > 1.5:
			title = "Strong"
		case score < 0.5:
			title = "Experimental"
		}

		explanation := fmt.Sprintf("Score: %.2f", score)
		if len(locks) > 0 {
			explanation += fmt.Sprintf(", %d locked positions", len(locks))
		}

		candidates = append(candidates, Candidate{
			Progression: prog,
			Score:       score,
			Title:       title,
			Explanation: explanation,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	return candidates
}

// Package theory implements pitch-class, key, mode and chord-spelling
// primitives used by every generator.
package theory

import "strings"

// Mode is one of the seven diatonic modes.
type Mode string

const (
	Ionian     Mode = "ionian"
	Dorian     Mode = "dorian"
	Phrygian   Mode = "phrygian"
	Lydian     Mode = "lydian"
	Mixolydian Mode = "mixolydian"
	Aeolian    Mode = "aeolian"
	Locrian    Mode = "locrian"
)

// ModeIntervals holds the seven semitone offsets from the tonic for each
// mode, scale degrees 1..7.
var ModeIntervals = map[Mode][7]int{
	Ionian:     {0, 2, 4, 5, 7, 9, 11},
	Dorian:     {0, 2, 3, 5, 7, 9, 10},
	Phrygian:   {0, 1, 3, 5, 7, 8, 10},
	Lydian:     {0, 2, 4, 6, 7, 9, 11},
	Mixolydian: {0, 2, 4, 5, 7, 9, 10},
	Aeolian:    {0, 2, 3, 5, 7, 8, 10},
	Locrian:    {0, 1, 3, 5, 6, 8, 10},
}

// NoteNames are the sharp spellings for pitch classes 0..11.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// romanToDegree maps roman numerals, with quality suffixes already
// stripped, to a scale degree 1..7.
var romanToDegree = map[string]int{
	"I": 1, "i": 1, "ii": 2, "II": 2, "iii": 3, "III": 3,
	"IV": 4, "iv": 4, "V": 5, "v": 5, "vi": 6, "VI": 6, "vii": 7, "VII": 7,
}

// CircleOfFifths maps a tonic spelling to its dominant and subdominant key.
var CircleOfFifths = map[string]struct{ Dominant, Subdominant string }{
	"C":  {"G", "F"},
	"G":  {"D", "C"},
	"D":  {"A", "G"},
	"A":  {"E", "D"},
	"E":  {"B", "A"},
	"B":  {"F#", "E"},
	"F#": {"C#", "B"},
	"C#": {"G#", "F#"},
	"G#": {"D#", "C#"},
	"D#": {"A#", "G#"},
	"A#": {"F", "D#"},
	"F":  {"C", "Bb"},
	"Bb": {"F", "Eb"},
	"Eb": {"Bb", "Ab"},
	"Ab": {"Eb", "Db"},
	"Db": {"Ab", "Gb"},
	"Gb": {"Db", "Cb"},
}

// ParseTonic parses a tonic spelling ("C", "F#", "Bb", and the enharmonic
// edge cases "Cb"/"Fb") into a pitch class 0..11.
func ParseTonic(tonic string) int {
	upper := strings.ToUpper(tonic)
	switch upper {
	case "CB":
		return 11 // B
	case "FB":
		return 4 // E
	}
	if upper == "" {
		return 0
	}

	base := rune(upper[0])
	accidental := upper[1:]

	pitchMap := map[rune]int{
		'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
	}
	basePC, ok := pitchMap[base]
	if !ok {
		return 0
	}

	switch accidental {
	case "#", "SHARP":
		return mod12(basePC + 1)
	case "B", "FLAT":
		return mod12(basePC - 1)
	default:
		return basePC
	}
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

func mod7(n int) int {
	n %= 7
	if n < 0 {
		n += 7
	}
	return n
}

// ScaleDegrees returns the seven MIDI pitches of tonic/mode's scale degrees
// starting at the given octave (octave 4, degree 1 == MIDI 60 for C ionian).
func ScaleDegrees(tonic string, mode Mode, octave int) [7]int {
	tonicPC := ParseTonic(tonic)
	intervals := ModeIntervals[mode]
	baseMIDI := 12*(octave+1) + tonicPC

	var out [7]int
	for i, interval := range intervals {
		out[i] = baseMIDI + interval
	}
	return out
}

// PitchClassToMIDI places a pitch class in the given octave.
func PitchClassToMIDI(pitchClass, octave int) int {
	return 12*octave + mod12(pitchClass)
}

// RomanToDegree strips quality suffixes ("7", "m", "M", "dim", "aug", "sus")
// from a roman numeral and returns the scale degree 1..7. Unknown numerals
// default to degree 1.
func RomanToDegree(roman string) int {
	end := 0
	for end < len(roman) && strings.IndexByte("IViv", roman[end]) >= 0 {
		end++
	}
	if degree, ok := romanToDegree[roman[:end]]; ok {
		return degree
	}
	return 1
}

// Quality is a chord quality: triad or seventh.
type Quality string

const (
	Triad   Quality = "triad"
	Seventh Quality = "7th"
)

// ChordNotes stacks thirds from a scale degree: triad = {d, d+2, d+4},
// seventh = {d, d+2, d+4, d+6} (scale-degree indices); a tone whose index
// runs past the seventh degree is taken from the next octave up.
func ChordNotes(tonic string, mode Mode, degree int, quality Quality, octave int) []int {
	scale := ScaleDegrees(tonic, mode, octave)
	degreeIdx := mod7(degree - 1)
	tone := func(offset int) int {
		idx := degreeIdx + offset
		return scale[idx%7] + 12*(idx/7)
	}

	switch quality {
	case Seventh:
		return []int{tone(0), tone(2), tone(4), tone(6)}
	default:
		return []int{tone(0), tone(2), tone(4)}
	}
}

// RelativeKey returns the relative major/minor of tonic/mode: ionian's
// relative minor sits on scale degree 6, aeolian's relative major on degree
// 3. Any other mode is returned unchanged.
func RelativeKey(tonic string, mode Mode) (string, Mode) {
	switch mode {
	case Ionian:
		scale := ScaleDegrees(tonic, mode, 5)
		pc := mod12(scale[5] - 60)
		return NoteNames[pc], Aeolian
	case Aeolian:
		scale := ScaleDegrees(tonic, mode, 5)
		pc := mod12(scale[2] - 60)
		return NoteNames[pc], Ionian
	default:
		return tonic, mode
	}
}

// RomanToChordName renders a textual chord name ("Am", "G7") for a roman
// numeral in a given key, using mode-dependent quality tables.
func RomanToChordName(roman, tonic string, mode Mode) string {
	degree := RomanToDegree(roman)
	tonicPC := tonicPitchClass(tonic)

	var intervals [7]int
	if mode == Ionian {
		intervals = ModeIntervals[Ionian]
	} else {
		intervals = ModeIntervals[Aeolian]
	}
	rootPC := mod12(tonicPC + intervals[degree-1])
	rootName := NoteNames[rootPC]

	var qualities map[int]string
	if mode == Ionian {
		qualities = map[int]string{1: "", 2: "m", 3: "m", 4: "", 5: "", 6: "m", 7: "dim"}
	} else {
		qualities = map[int]string{1: "m", 2: "dim", 3: "", 4: "m", 5: "m", 6: "", 7: ""}
	}

	quality := qualities[degree]
	if strings.Contains(roman, "7") {
		quality += "7"
	}
	return rootName + quality
}

func tonicPitchClass(tonic string) int {
	names := map[string]int{
		"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5, "F#": 6,
		"G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
		"Bb": 10, "Eb": 3, "Ab": 8, "Db": 1, "Gb": 6,
	}
	if pc, ok := names[tonic]; ok {
		return pc
	}
	return 0
}

package chordrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonecraft/theory"
)

func TestVoiceRootPrefersMidpointOctave(t *testing.T) {
	got := Voice([]int{60, 64, 67}, VoicingRoot, 0, 48, 72, nil)
	want := []int{60, 64, 67}
	assert.Equal(t, want, got)
}

func TestVoiceNeverEmptyWhenRangeInverted(t *testing.T) {
	got := Voice([]int{60, 64, 67}, VoicingRoot, 0, 80, 70, nil)
	require.NotEmpty(t, got, "voicing fallback must never return an empty slice for a non-empty chord")
}

func TestRenderBlockPatternS6(t *testing.T) {
	event := ChordEvent{
		ID:            "c1",
		RomanNumeral:  "I",
		StartTick:     0,
		DurationTick:  1920,
		Intensity:     1.0,
		Voicing:       VoicingRoot,
		Inversion:     0,
		PatternType:   PatternBlock,
		DurationGate:  0.85,
		VelocityCurve: CurveFlat,
	}
	ctx := ProjectContext{Tonic: "C", Mode: theory.Ionian, BPM: 120, TsNum: 4, TsDen: 4}

	notes := Render(event, ctx, 1, nil)
	require.Len(t, notes, 3)

	gotPitches := map[int]bool{}
	for _, n := range notes {
		gotPitches[n.Pitch] = true
		assert.Equal(t, 0, n.StartTick)
		assert.Equal(t, 1632, n.DurationTick)
		assert.Equal(t, 100, n.Velocity)
	}
	wantPitches := map[int]bool{60: true, 64: true, 67: true}
	assert.Equal(t, wantPitches, gotPitches)
}

func TestApplyVelocityCurveFlatIsIdentity(t *testing.T) {
	assert.Equal(t, 100, ApplyVelocityCurve(100, 0, 3, CurveFlat), "flat curve should be identity")
}

func TestApplyVelocityCurveDownDescends(t *testing.T) {
	first := ApplyVelocityCurve(100, 0, 3, CurveDown)
	last := ApplyVelocityCurve(100, 2, 3, CurveDown)
	assert.Lessf(t, last, first, "down curve should descend: first=%d last=%d", first, last)
}

func TestRenderCompPatternRetriggerFalseKeepsFirstHitOnly(t *testing.T) {
	event := ChordEvent{
		ID:           "c2",
		RomanNumeral: "I",
		StartTick:    0,
		DurationTick: 1920,
		Intensity:    1.0,
		Voicing:      VoicingRoot,
		PatternType:  PatternComp,
		DurationGate: 1.0,
		CompPattern: &CompPattern{
			GridDenominator: 8,
			Steps:           []bool{true, false, true, false, true, false, true, false},
			Accent:          []float64{1, 1, 1, 1, 1, 1, 1, 1},
		},
		Retrigger: false,
	}
	ctx := ProjectContext{Tonic: "C", Mode: theory.Ionian, BPM: 120, TsNum: 4, TsDen: 4}

	notes := Render(event, ctx, 1, nil)
	require.Len(t, notes, 3, "expected one note per voice, first hit only")
}

func TestRenderSortedByStartTickThenPitch(t *testing.T) {
	event := ChordEvent{
		ID:             "c3",
		RomanNumeral:   "I",
		StartTick:      0,
		DurationTick:   1920,
		Intensity:      1.0,
		Voicing:        VoicingRoot,
		PatternType:    PatternStrum,
		StrumBeats:     1.0,
		StrumDirection: StrumDown,
		DurationGate:   1.0,
	}
	ctx := ProjectContext{Tonic: "C", Mode: theory.Ionian, BPM: 120, TsNum: 4, TsDen: 4}
	notes := Render(event, ctx, 1, nil)
	for i := 1; i < len(notes); i++ {
		assert.GreaterOrEqual(t, notes[i].StartTick, notes[i-1].StartTick, "notes not sorted by start_tick")
		if notes[i].StartTick == notes[i-1].StartTick {
			assert.Greater(t, notes[i].Pitch, notes[i-1].Pitch, "notes sharing a start_tick not sorted by pitch")
		}
	}
}

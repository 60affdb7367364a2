package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonecraft/chordrender"
	"tonecraft/model"
	"tonecraft/tcerr"
	"tonecraft/theory"
)

func testProject() model.Project {
	return model.Project{ID: "p1", BPM: 120, TimeSignatureNum: 4, TimeSignatureDen: 4, Bars: 8, KeyTonic: "C", Mode: theory.Ionian, Seed: 1}
}

func TestSegmentSeedIsDeterministic(t *testing.T) {
	a := SegmentSeed(1, "p1", 0, KindChords)
	b := SegmentSeed(1, "p1", 0, KindChords)
	assert.Equal(t, a, b, "SegmentSeed is not stable across calls")
}

func TestSegmentSeedDiffersByKind(t *testing.T) {
	a := SegmentSeed(1, "p1", 0, KindChords)
	b := SegmentSeed(1, "p1", 0, KindBass)
	assert.NotEqual(t, a, b, "SegmentSeed should differ by kind")
}

func TestRegenerateSeedDiffersByVariation(t *testing.T) {
	a := RegenerateSeed("p1", "c1", KindMelody, 1, 0.1)
	b := RegenerateSeed("p1", "c1", KindMelody, 1, 0.9)
	assert.NotEqual(t, a, b, "RegenerateSeed should differ by variation amount")
}

func TestGenerateBeatsSegmentProducesNotes(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleDrums, MIDIChannel: 9}
	result := GenerateBeatsSegment(project, track, 0, 2, 1, BeatsParams{Kit: "gm_boom_bap", Pattern: "straight", Density: 0.8}, false)
	assert.NotEmpty(t, result.Notes, "expected beats segment to produce notes")
	assert.NotEmpty(t, result.Clip.ID, "committed clip should have an assigned ID")
}

func TestGenerateBeatsSegmentPreviewHasNoPersistedID(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleDrums, MIDIChannel: 9}
	result := GenerateBeatsSegment(project, track, 0, 1, 1, BeatsParams{Kit: "gm_boom_bap", Pattern: "straight", Density: 0.8}, true)
	assert.Equal(t, "preview_clip", result.Clip.ID, "preview clip should use a sentinel id")
	for _, n := range result.Notes {
		assert.Empty(t, n.ID, "preview notes should not be assigned persisted IDs")
	}
}

func TestGenerateChordsSegmentProducesChordEventsAndNotes(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleChords}
	p := ChordsParams{Key: "C", Mode: theory.Ionian, ProgressionStyle: "circle_fifths", Intensity: 1.0, Voicing: chordrender.VoicingRoot, StrumBeats: 0.5}
	result := GenerateChordsSegment(project, track, 0, 4, 1, p, false)
	require.NotEmpty(t, result.ChordEvents, "expected chord events")
	assert.NotEmpty(t, result.Notes, "expected rendered notes from the chord progression")
	assert.Equal(t, model.BeatsToMs(0.5, project.BPM), result.ChordEvents[0].StrumMs, "strum_ms should be derived from strum_beats via bpm")
}

func TestGenerateChordsCandidatesPicksHighestScoredAndRecordsRun(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleChords}
	p := ChordsParams{Key: "C", Mode: theory.Ionian, ProgressionStyle: "circle_fifths", Intensity: 1.0, Voicing: chordrender.VoicingRoot}
	result, run, err := GenerateChordsCandidates(project, track, 0, 4, 1, p, "run-1", 3, false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ChordEvents)
	assert.Equal(t, 3, run.CandidatesConsidered)
	require.NotNil(t, run.ChosenCandidateIndex)
	assert.Equal(t, 0, *run.ChosenCandidateIndex)
	assert.Equal(t, "chords", run.Kind)
}

func TestGenerateChordsCandidatesRejectsNonPositiveCount(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleChords}
	p := ChordsParams{Key: "C", Mode: theory.Ionian}
	_, _, err := GenerateChordsCandidates(project, track, 0, 4, 1, p, "run-1", 0, false)
	assert.True(t, tcerr.Is(err, tcerr.GenerationFailure))
}

func TestGenerateBassSegmentFollowsProgression(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleBass, MIDIChannel: 1}
	result := GenerateBassSegment(project, track, 0, 4, 1, BassParams{Octave: 3, RhythmicDensity: 0.3, Intensity: 1.0}, false)
	assert.NotEmpty(t, result.Notes, "expected bass segment to produce notes")
}

func TestGenerateMelodySegmentRespectsIntensityScaling(t *testing.T) {
	project := testProject()
	track := model.Track{ID: "t1", Role: model.RoleMelody, MIDIChannel: 2}
	result := GenerateMelodySegment(project, track, 0, 2, 1, MelodyParams{Range: "wide", Leapiness: 0.3, Intensity: 0.5}, false)
	require.NotEmpty(t, result.Notes, "expected melody segment to produce notes")
	for _, n := range result.Notes {
		assert.GreaterOrEqual(t, n.Velocity, 1)
		assert.LessOrEqual(t, n.Velocity, 127)
	}
}

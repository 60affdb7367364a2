package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tonecraft/chordrender"
	"tonecraft/tcerr"
	"tonecraft/theory"
)

func TestBeatsToMsAndBackRoundTrips(t *testing.T) {
	ms := BeatsToMs(2.0, 120)
	assert.Equal(t, 1000.0, ms, "2 beats at 120bpm is 1000ms")
	assert.Equal(t, 2.0, MsToBeats(ms, 120))
}

func TestBeatsToMsZeroBPMIsZero(t *testing.T) {
	assert.Equal(t, 0.0, BeatsToMs(2.0, 0))
	assert.Equal(t, 0.0, MsToBeats(1000, 0))
}

func TestProjectValidateRejectsOutOfRangeBPM(t *testing.T) {
	p := Project{BPM: 10, TimeSignatureNum: 4, TimeSignatureDen: 4, Bars: 8, Mode: theory.Ionian}
	err := p.Validate()
	assert.Error(t, err, "expected error for bpm below 20")
	assert.True(t, tcerr.Is(err, tcerr.InvariantViolation))
}

func TestProjectValidateAcceptsInRangeValues(t *testing.T) {
	p := Project{BPM: 120, TimeSignatureNum: 4, TimeSignatureDen: 4, Bars: 8, Mode: theory.Aeolian}
	assert.NoError(t, p.Validate())
}

func TestTrackValidateRequiresChannel9ForDrums(t *testing.T) {
	tr := Track{Role: RoleDrums, MIDIChannel: 0, MIDIProgram: 0}
	assert.Error(t, tr.Validate(), "expected error for drum track not on channel 9")
	tr.MIDIChannel = 9
	assert.NoError(t, tr.Validate())
}

func TestNoteValidateRejectsZeroDuration(t *testing.T) {
	n := Note{Pitch: 60, Velocity: 100, StartTick: 0, DurationTick: 0, Probability: 1}
	assert.Error(t, n.Validate(), "expected error for zero duration_tick")
}

func TestChordEventApplyMutationRejectsChangeWhenLocked(t *testing.T) {
	c := ChordEvent{ID: "c1", RomanNumeral: "I", IsLocked: true}
	next := c
	next.RomanNumeral = "V"
	err := c.ApplyMutation(next)
	assert.Error(t, err, "expected locked chord event to reject mutation")
	assert.True(t, tcerr.Is(err, tcerr.StoreConflict))
}

func TestChordEventApplyMutationAllowsUnlocking(t *testing.T) {
	c := ChordEvent{ID: "c1", RomanNumeral: "I", IsLocked: true}
	next := c
	next.IsLocked = false
	assert.NoError(t, c.ApplyMutation(next), "unlocking should always be permitted")
}

func TestChordEventApplyMutationAllowsNoOpWhenUnlocked(t *testing.T) {
	c := ChordEvent{ID: "c1", RomanNumeral: "I", IsLocked: false, Voicing: chordrender.VoicingRoot}
	next := c
	next.Voicing = chordrender.VoicingDrop2
	assert.NoError(t, c.ApplyMutation(next), "unlocked event should accept any mutation")
}

func TestPolyrhythmProfileValidateRejectsRotationOutOfRange(t *testing.T) {
	p := PolyrhythmProfile{Steps: 8, Pulses: 3, Rotation: 8, CycleBeats: 1}
	assert.Error(t, p.Validate(), "expected error for rotation == steps")
}

func TestClipPolyrhythmLaneValidateRequiresProfileID(t *testing.T) {
	l := ClipPolyrhythmLane{PolyrhythmProfileID: ""}
	assert.Error(t, l.Validate(), "expected error for missing polyrhythm_profile_id")
}

func TestNewIDProducesDistinctValues(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b, "NewID produced a duplicate value")
}

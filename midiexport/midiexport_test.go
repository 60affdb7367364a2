package midiexport

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/gomidi/midi/v2/smf"

	"tonecraft/model"
)

func singleNoteTrack() ExportTrack {
	return ExportTrack{
		Track: model.Track{ID: "t1", Name: "Chords", MIDIChannel: 0, MIDIProgram: 0},
		Clips: []ExportClip{
			{
				Clip: model.Clip{ID: "c1", StartBar: 0},
				Notes: []model.Note{
					{Pitch: 60, Velocity: 100, StartTick: 0, DurationTick: 480},
				},
			},
		},
	}
}

func TestExportProjectToMIDIRoundTripsSingleNote(t *testing.T) {
	project := model.Project{BPM: 120, TimeSignatureNum: 4, TimeSignatureDen: 4, Bars: 1}
	data, err := ExportProjectToMIDI(project, []ExportTrack{singleNoteTrack()})
	require.NoError(t, err)

	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	var found bool
	for _, tr := range s.Tracks {
		tick := uint32(0)
		for _, ev := range tr {
			tick += ev.Delta
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) {
				if key == 60 && tick == 0 {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "expected a note_on for pitch 60 at delta/absolute tick 0")
}

func TestExportTrackToMIDIAppliesOffsets(t *testing.T) {
	et := singleNoteTrack()
	et.Track.StartOffsetTicks = 10
	data, err := ExportTrackToMIDI(et, 1920)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "expected non-empty MIDI bytes")
}

func TestSanitizeFilenameStripsInvalidChars(t *testing.T) {
	got := SanitizeFilename(`weird:/name*?`)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "untitled", got)
	for _, c := range []rune(got) {
		assert.NotContainsf(t, []rune{':', '/', '*', '?'}, c, "sanitized name still contains invalid char: %q", got)
	}
}

func TestSanitizeFilenameEmptyBecomesUntitled(t *testing.T) {
	assert.Equal(t, "untitled", SanitizeFilename("   "))
}

func TestExportProjectToZIPProducesOnePartPerTrack(t *testing.T) {
	project := model.Project{BPM: 120, TimeSignatureNum: 4, TimeSignatureDen: 4, Bars: 1}
	tracks := []ExportTrack{singleNoteTrack()}
	data, err := ExportProjectToZIP(project, tracks, SplitByTrack)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 1, "expected 1 part for 1 track")
}

func TestGenerateZipFilenameIncludesTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	got := GenerateZipFilename("My Project", at)
	want := "My Project_20240115_143022.zip"
	assert.Equal(t, want, got)
}

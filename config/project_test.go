package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonecraft/orchestrator"
)

const sampleProjectYAML = `
project:
  name: Demo
  bpm: 120
  time_signature: "4/4"
  bars: 8
  key: C
  mode: ionian
  seed: 42
tracks:
  - name: Drums
    role: drums
    clips:
      - start_bar: 0
        length_bars: 4
        kind: beats
        params:
          kit: gm_boom_bap
          pattern: straight
          density: 0.8
  - name: Chords
    role: chords
    midi_channel: 0
    clips:
      - start_bar: 0
        length_bars: 8
        kind: chords
        params:
          progression_style: circle_fifths
          intensity: 1.0
`

func writeSampleProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProjectYAML), 0644))
	return path
}

func TestLoadProjectDefinitionParsesProjectAndTracks(t *testing.T) {
	path := writeSampleProject(t)
	def, err := LoadProjectDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", def.Project.Name)
	assert.Equal(t, int64(42), def.Project.Seed)
	require.Len(t, def.Tracks, 2)
	assert.Equal(t, "drums", def.Tracks[0].Role)
}

func TestParseTimeSignature(t *testing.T) {
	num, den, err := ParseTimeSignature("4/4")
	require.NoError(t, err)
	assert.Equal(t, 4, num)
	assert.Equal(t, 4, den)

	_, _, err = ParseTimeSignature("bad")
	assert.Error(t, err)
}

func TestProjectDefinitionToProjectUsesSeedOverrideWhenUnset(t *testing.T) {
	def := &ProjectDefinition{Project: ProjectSpec{
		Name: "NoSeed", BPM: 100, TimeSignature: "3/4", Bars: 4, Key: "D", Mode: "dorian",
	}}
	p, err := def.ToProject(99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), p.Seed)
	assert.Equal(t, 3, p.TimeSignatureNum)
}

func TestTrackSpecToTrackForcesDrumsToChannel9(t *testing.T) {
	spec := TrackSpec{Name: "Kit", Role: "drums", MIDIChannel: 2}
	tr, err := spec.ToTrack("p1")
	require.NoError(t, err)
	assert.Equal(t, 9, tr.MIDIChannel)
}

func TestClipSpecSegmentKindLowercases(t *testing.T) {
	c := ClipSpec{Kind: "Chords"}
	assert.Equal(t, orchestrator.KindChords, c.SegmentKind())
}

func TestClipSpecBeatsParamsFallsBackWhenMissing(t *testing.T) {
	c := ClipSpec{}
	p := c.BeatsParams()
	assert.Equal(t, "gm_boom_bap", p.Kit)
	assert.Equal(t, 0.8, p.Density)
}

func TestClipSpecChordsParamsPrefersBeatsFieldsByDefault(t *testing.T) {
	c := ClipSpec{Params: map[string]any{"strum_beats": 0.25}}
	p := c.ChordsParams("C", "ionian", 120)
	assert.Equal(t, 0.25, p.StrumBeats)
}

func TestClipSpecChordsParamsAcceptsDeprecatedMsFieldsAndConvertsViaBPM(t *testing.T) {
	c := ClipSpec{Params: map[string]any{"strum_ms": 250.0, "humanize_ms": 50.0}}
	p := c.ChordsParams("C", "ionian", 120)
	assert.InDelta(t, 0.5, p.StrumBeats, 1e-9, "250ms at 120bpm is half a beat")
	assert.InDelta(t, 0.1, p.HumanizeBeats, 1e-9, "50ms at 120bpm is a tenth of a beat")
}

func TestClipSpecNumCandidatesDefaultsToZero(t *testing.T) {
	c := ClipSpec{}
	assert.Equal(t, 0, c.NumCandidates())
	c.Params = map[string]any{"num_candidates": 5}
	assert.Equal(t, 5, c.NumCandidates())
}

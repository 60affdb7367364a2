package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tonecraft/chordrender"
	"tonecraft/model"
	"tonecraft/orchestrator"
	"tonecraft/theory"
)

// ProjectDefinition is the YAML front-end to the generation engine: a
// project plus its tracks and the clips to generate on them, successor to
// the guitar-tab BTML format the teacher's parser read.
type ProjectDefinition struct {
	Project ProjectSpec `yaml:"project"`
	Tracks  []TrackSpec `yaml:"tracks"`
}

// ProjectSpec describes the project-level fields of model.Project.
type ProjectSpec struct {
	Name          string `yaml:"name"`
	BPM           int    `yaml:"bpm"`
	TimeSignature string `yaml:"time_signature"`
	Bars          int    `yaml:"bars"`
	Key           string `yaml:"key"`
	Mode          string `yaml:"mode"`
	Seed          int64  `yaml:"seed"`
}

// TrackSpec describes a track and the clips generated on it.
type TrackSpec struct {
	Name        string     `yaml:"name"`
	Role        string     `yaml:"role"`
	MIDIChannel int        `yaml:"midi_channel"`
	MIDIProgram int        `yaml:"midi_program"`
	Clips       []ClipSpec `yaml:"clips"`
}

// ClipSpec describes one generation request within a track.
type ClipSpec struct {
	StartBar   int            `yaml:"start_bar"`
	LengthBars int            `yaml:"length_bars"`
	Kind       string         `yaml:"kind"`
	Params     map[string]any `yaml:"params"`
}

// LoadProjectDefinition reads and parses a project YAML file.
func LoadProjectDefinition(path string) (*ProjectDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	var def ProjectDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}
	if def.Project.TimeSignature == "" {
		def.Project.TimeSignature = "4/4"
	}
	if def.Project.Mode == "" {
		def.Project.Mode = "ionian"
	}
	return &def, nil
}

// ParseTimeSignature splits a "4/4"-style signature into numerator and
// denominator.
func ParseTimeSignature(sig string) (int, int, error) {
	parts := strings.SplitN(sig, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time signature %q", sig)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time signature numerator %q: %w", parts[0], err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time signature denominator %q: %w", parts[1], err)
	}
	return num, den, nil
}

// ToProject builds a model.Project from the spec, applying the seed override
// when the definition itself leaves seed unset (zero).
func (d *ProjectDefinition) ToProject(seedOverride int64) (model.Project, error) {
	num, den, err := ParseTimeSignature(d.Project.TimeSignature)
	if err != nil {
		return model.Project{}, err
	}
	seed := d.Project.Seed
	if seed == 0 {
		seed = seedOverride
	}
	p := model.Project{
		ID:               model.NewID(),
		Name:             d.Project.Name,
		BPM:              d.Project.BPM,
		TimeSignatureNum: num,
		TimeSignatureDen: den,
		Bars:             d.Project.Bars,
		KeyTonic:         d.Project.Key,
		Mode:             theory.Mode(strings.ToLower(d.Project.Mode)),
		Seed:             seed,
	}
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// ToTrack builds a model.Track from the spec.
func (t *TrackSpec) ToTrack(projectID string) (model.Track, error) {
	role := model.TrackRole(strings.ToLower(t.Role))
	channel := t.MIDIChannel
	if role == model.RoleDrums {
		channel = 9
	}
	track := model.Track{
		ID:          model.NewID(),
		ProjectID:   projectID,
		Name:        t.Name,
		Role:        role,
		MIDIChannel: channel,
		MIDIProgram: t.MIDIProgram,
	}
	if err := track.Validate(); err != nil {
		return model.Track{}, err
	}
	return track, nil
}

// SegmentKind maps the clip's YAML "kind" field to an orchestrator.SegmentKind.
func (c *ClipSpec) SegmentKind() orchestrator.SegmentKind {
	return orchestrator.SegmentKind(strings.ToLower(c.Kind))
}

// paramString / paramFloat / paramBool / paramInt read an optional typed
// value out of a clip's opaque params map, returning the fallback when the
// key is absent or of the wrong type.
func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

func paramBool(params map[string]any, key string, fallback bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

func paramInt(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

// BeatsParams extracts a drums segment's parameters from the clip's opaque
// params map.
func (c *ClipSpec) BeatsParams() orchestrator.BeatsParams {
	return orchestrator.BeatsParams{
		Kit:             paramString(c.Params, "kit", "gm_boom_bap"),
		Pattern:         paramString(c.Params, "pattern", "straight"),
		Swing:           paramFloat(c.Params, "swing", 0),
		Density:         paramFloat(c.Params, "density", 0.8),
		GhostNotes:      paramBool(c.Params, "ghost_notes", false),
		MuteProbability: paramFloat(c.Params, "mute_probability", 0),
		KickVariation:   paramFloat(c.Params, "kick_variation", 0),
	}
}

// NumCandidates returns the clip's requested candidate count for the
// multi-candidate progression scorer, or 0 when the clip asks for a plain
// single-shot generate.
func (c *ClipSpec) NumCandidates() int {
	return paramInt(c.Params, "num_candidates", 0)
}

// ChordsParams extracts a chords segment's parameters. strum_ms/humanize_ms
// are accepted as deprecated input aliases for strum_beats/humanize_beats
// (spec.md §9's backward-compat fields) and take precedence when present,
// converted via the project's bpm.
func (c *ClipSpec) ChordsParams(key string, mode theory.Mode, bpm int) orchestrator.ChordsParams {
	strumBeats := paramFloat(c.Params, "strum_beats", 0)
	if _, ok := c.Params["strum_ms"]; ok {
		strumBeats = model.MsToBeats(paramFloat(c.Params, "strum_ms", 0), bpm)
	}
	humanizeBeats := paramFloat(c.Params, "humanize_beats", 0)
	if _, ok := c.Params["humanize_ms"]; ok {
		humanizeBeats = model.MsToBeats(paramFloat(c.Params, "humanize_ms", 0), bpm)
	}

	return orchestrator.ChordsParams{
		Key:              key,
		Mode:             mode,
		ProgressionStyle: paramString(c.Params, "progression_style", "diatonic"),
		CadenceStrength:  paramFloat(c.Params, "cadence_strength", 0.5),
		Intensity:        paramFloat(c.Params, "intensity", 1.0),
		Voicing:          chordrender.Voicing(paramString(c.Params, "voicing", string(chordrender.VoicingRoot))),
		InversionBias:    paramFloat(c.Params, "inversion_bias", 0),
		StrumBeats:       strumBeats,
		HumanizeBeats:    humanizeBeats,
	}
}

// BassParams extracts a bass segment's parameters.
func (c *ClipSpec) BassParams() orchestrator.BassParams {
	return orchestrator.BassParams{
		Style:           paramString(c.Params, "style", "root"),
		Octave:          paramInt(c.Params, "octave", 3),
		RhythmicDensity: paramFloat(c.Params, "rhythmic_density", 0.3),
		Intensity:       paramFloat(c.Params, "intensity", 1.0),
	}
}

// MelodyParams extracts a melody segment's parameters.
func (c *ClipSpec) MelodyParams() orchestrator.MelodyParams {
	return orchestrator.MelodyParams{
		Range:           paramString(c.Params, "range", "medium"),
		MotifRepetition: paramFloat(c.Params, "motif_repetition", 0),
		Leapiness:       paramFloat(c.Params, "leapiness", 0.3),
		Intensity:       paramFloat(c.Params, "intensity", 1.0),
	}
}

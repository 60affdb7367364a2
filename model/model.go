// Package model defines the engine's domain value records: projects,
// tracks, clips, notes, chord events, polyrhythm profiles and lanes, drum
// maps, and generation-run audit records. These are plain data — no
// persistence, no ORM relationships, no HTTP concerns.
package model

import (
	"reflect"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"tonecraft/chordrender"
	"tonecraft/tcerr"
	"tonecraft/theory"
)

// Params is an opaque key/value bag attached to a clip, consumed by the
// orchestrator when regenerating a clip's content. Stored and transmitted
// as YAML so forward-compatible fields survive round-trips without a
// schema migration.
type Params map[string]any

// MarshalYAML lets Params serialize as a plain mapping.
func (p Params) MarshalYAML() (any, error) {
	return map[string]any(p), nil
}

// UnmarshalYAML accepts any mapping node.
func (p *Params) UnmarshalYAML(value *yaml.Node) error {
	raw := map[string]any{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = raw
	return nil
}

// TrackRole identifies a track's generated content kind.
type TrackRole string

const (
	RoleDrums  TrackRole = "drums"
	RoleChords TrackRole = "chords"
	RoleBass   TrackRole = "bass"
	RoleMelody TrackRole = "melody"
)

// GridMode selects how a clip's content is gridded.
type GridMode string

const (
	GridStandard         GridMode = "standard"
	GridEuclidean        GridMode = "euclidean"
	GridPolyrhythm       GridMode = "polyrhythm"
	GridPolyrhythmMulti  GridMode = "polyrhythm_multi"
)

// Project is the root entity: global tempo, signature, bar count, key, and
// the base determinism seed shared by every generator invocation.
type Project struct {
	ID               string
	Name             string
	BPM              int
	TimeSignatureNum int
	TimeSignatureDen int
	Bars             int
	KeyTonic         string
	Mode             theory.Mode
	Seed             int64
}

// Validate checks Project's field invariants (spec.md §3).
func (p Project) Validate() error {
	if p.BPM < 20 || p.BPM > 300 {
		return fieldError("bpm", "must be in [20,300]")
	}
	if p.TimeSignatureNum < 1 || p.TimeSignatureNum > 32 {
		return fieldError("time_signature_num", "must be in [1,32]")
	}
	if p.TimeSignatureDen < 1 || p.TimeSignatureDen > 32 {
		return fieldError("time_signature_den", "must be in [1,32]")
	}
	if p.Bars < 1 || p.Bars > 256 {
		return fieldError("bars", "must be in [1,256]")
	}
	if !validMode(p.Mode) {
		return fieldError("mode", "must be one of the seven diatonic modes")
	}
	return nil
}

func validMode(m theory.Mode) bool {
	_, ok := theory.ModeIntervals[m]
	return ok
}

// Track belongs to a project and carries its own MIDI channel, program,
// and mute/solo state.
type Track struct {
	ID               string
	ProjectID        string
	Name             string
	Role             TrackRole
	MIDIChannel      int
	MIDIProgram      int
	IsMuted          bool
	IsSoloed         bool
	StartOffsetTicks int
}

// Validate checks Track's field invariants.
func (t Track) Validate() error {
	if t.MIDIChannel < 0 || t.MIDIChannel > 15 {
		return fieldError("midi_channel", "must be in [0,15]")
	}
	if t.MIDIProgram < 0 || t.MIDIProgram > 127 {
		return fieldError("midi_program", "must be in [0,127]")
	}
	if t.Role == RoleDrums && t.MIDIChannel != 9 {
		return fieldError("midi_channel", "drum tracks must use channel 9")
	}
	return nil
}

// Clip is a bounded span of a track's timeline, owning notes, chord
// events, and polyrhythm lanes.
type Clip struct {
	ID                   string
	TrackID              string
	StartBar             int
	LengthBars           int
	GridMode             GridMode
	PolyrhythmProfileID  *string
	DrumMapProfileID     *string
	IsMuted              bool
	IsSoloed             bool
	StartOffsetTicks     int
	Intensity            float64
	Params               Params
}

// Validate checks Clip's field invariants.
func (c Clip) Validate() error {
	if c.StartBar < 0 {
		return fieldError("start_bar", "must be non-negative")
	}
	if c.LengthBars < 1 {
		return fieldError("length_bars", "must be >= 1")
	}
	if c.Intensity < 0 || c.Intensity > 2 {
		return fieldError("intensity", "must be in [0,2]")
	}
	return nil
}

// Note is a single rendered or hand-authored MIDI event, relative to its
// clip's start.
type Note struct {
	ID           string
	ClipID       string
	Pitch        int
	Velocity     int
	StartTick    int
	DurationTick int
	Probability  float64
}

// Validate checks Note's field invariants.
func (n Note) Validate() error {
	if n.Pitch < 0 || n.Pitch > 127 {
		return fieldError("pitch", "must be in [0,127]")
	}
	if n.Velocity < 1 || n.Velocity > 127 {
		return fieldError("velocity", "must be in [1,127]")
	}
	if n.StartTick < 0 {
		return fieldError("start_tick", "must be >= 0")
	}
	if n.DurationTick < 1 {
		return fieldError("duration_tick", "must be >= 1")
	}
	if n.Probability < 0 || n.Probability > 1 {
		return fieldError("probability", "must be in [0,1]")
	}
	return nil
}

// ChordEvent is a chord slot inside a clip, carrying every parameter the
// chordrender package needs.
type ChordEvent struct {
	ID             string
	ClipID         string
	StartTick      int
	DurationTick   int
	DurationBeats  float64
	RomanNumeral   string
	ChordName      string
	Intensity      float64
	Voicing        chordrender.Voicing
	Inversion      int
	StrumBeats     float64
	HumanizeBeats  float64
	// StrumMs and HumanizeMs are the deprecated millisecond-denominated
	// predecessors of StrumBeats/HumanizeBeats. Accepted on input and always
	// emitted on output, converted via the project's BPM; *_beats is
	// canonical and callers should prefer it.
	StrumMs        float64
	HumanizeMs     float64
	OffsetBeats    float64
	PatternType    chordrender.PatternType
	DurationGate   float64
	VelocityCurve  chordrender.VelocityCurve
	StrumDirection chordrender.StrumDirection
	StrumSpread    float64
	StrumCurve     string
	CompPattern    *chordrender.CompPattern
	HitParams      Params
	Retrigger      bool
	VelocityJitter int
	TimingJitterMs int
	IsEnabled      bool
	IsLocked       bool
	GridQuantum    *int
}

// Validate checks ChordEvent's field invariants.
func (c ChordEvent) Validate() error {
	if c.StrumBeats < 0 {
		return fieldError("strum_beats", "must be >= 0")
	}
	if c.HumanizeBeats < 0 || c.HumanizeBeats > 0.5 {
		return fieldError("humanize_beats", "must be in [0,0.5]")
	}
	if c.Inversion < 0 || c.Inversion > 3 {
		return fieldError("inversion", "must be in [0,3]")
	}
	if c.DurationGate < 0.1 || c.DurationGate > 1.0 {
		return fieldError("duration_gate", "must be in [0.1,1.0]")
	}
	return nil
}

// BeatsToMs converts a beat duration to milliseconds at the given bpm, for
// populating the deprecated *_ms fields from their *_beats counterparts.
func BeatsToMs(beats float64, bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return beats * 60000 / float64(bpm)
}

// MsToBeats converts a millisecond duration to beats at the given bpm, for
// accepting the deprecated *_ms fields on input.
func MsToBeats(ms float64, bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return ms * float64(bpm) / 60000
}

// ApplyMutation validates a proposed mutation against the lock invariant:
// a locked event rejects every change except clearing the lock itself.
func (c ChordEvent) ApplyMutation(next ChordEvent) error {
	if !c.IsLocked {
		return nil
	}
	allowed := c
	allowed.IsLocked = false
	nextUnlocked := next
	nextUnlocked.IsLocked = false
	if !reflect.DeepEqual(allowed, nextUnlocked) || next.IsLocked {
		return tcerr.Field(tcerr.StoreConflict, "is_locked", "locked chord event only permits clearing is_locked")
	}
	return nil
}

// PolyrhythmProfile is a reusable Euclidean-cycle definition lanes refer
// to.
type PolyrhythmProfile struct {
	ID         string
	Name       string
	Steps      int
	Pulses     int
	Rotation   int
	CycleBeats float64
	Swing      *float64
	HumanizeMs *int
}

// Validate checks PolyrhythmProfile's field invariants.
func (p PolyrhythmProfile) Validate() error {
	if p.Steps < 1 || p.Steps > 128 {
		return fieldError("steps", "must be in [1,128]")
	}
	if p.Pulses < 1 || p.Pulses > 128 {
		return fieldError("pulses", "must be in [1,128]")
	}
	if p.Rotation < 0 || p.Rotation >= p.Steps {
		return fieldError("rotation", "must be in [0,steps)")
	}
	if p.CycleBeats < 0.1 || p.CycleBeats > 32 {
		return fieldError("cycle_beats", "must be in [0.1,32]")
	}
	if p.Swing != nil && (*p.Swing < 0 || *p.Swing > 1) {
		return fieldError("swing", "must be in [0,1]")
	}
	if p.HumanizeMs != nil && (*p.HumanizeMs < 0 || *p.HumanizeMs > 100) {
		return fieldError("humanize_ms", "must be in [0,100]")
	}
	return nil
}

// ClipPolyrhythmLane binds a polyrhythm profile to a clip with its own
// pitch, velocity, ordering, and mute/solo state.
type ClipPolyrhythmLane struct {
	ID                  string
	ClipID              string
	PolyrhythmProfileID string
	LaneName            string
	InstrumentRole      *string
	Pitch               int
	Velocity            int
	Mute                bool
	Solo                bool
	OrderIndex          int
	SeedOffset          int64
}

// Validate checks ClipPolyrhythmLane's field invariants.
func (l ClipPolyrhythmLane) Validate() error {
	if l.PolyrhythmProfileID == "" {
		return fieldError("polyrhythm_profile_id", "a lane's profile must exist")
	}
	if l.OrderIndex < 0 {
		return fieldError("order_index", "must be non-negative")
	}
	return nil
}

// DrumMapProfile names a reusable mapping of drum roles to MIDI notes.
type DrumMapProfile struct {
	ID            string
	Name          string
	KickNote      int
	SnareNote     int
	ClapNote      int
	ClosedHatNote int
	OpenHatNote   int
	RimNote       int
	PercNotes     []int
}

// GenerationRun is an immutable audit record of one generation invocation.
// CandidatesConsidered and ChosenCandidateIndex are only populated when the
// run came from the multi-candidate progression scorer rather than a
// single-shot generate; ChosenCandidateIndex is nil otherwise.
type GenerationRun struct {
	ID                   string
	ProjectID            string
	Kind                 string
	SeedUsed             int64
	Params               Params
	Timestamp            int64
	CandidatesConsidered int
	ChosenCandidateIndex *int
}

// NewID returns a freshly generated v4 UUID string for any entity.
func NewID() string {
	return uuid.NewString()
}

func fieldError(field, constraint string) error {
	return tcerr.Field(tcerr.InvariantViolation, field, constraint)
}

// Package orchestrator binds the individual generator packages (drums,
// progression, melody, bass, chordrender) to clips, deriving a
// deterministic sub-seed per segment or regeneration from the project's
// base seed, and supports a preview mode that renders content without
// assigning persisted IDs.
package orchestrator

import (
	"fmt"

	"tonecraft/bass"
	"tonecraft/chordrender"
	"tonecraft/drums"
	"tonecraft/melody"
	"tonecraft/model"
	"tonecraft/progression"
	"tonecraft/seedrand"
	"tonecraft/tcerr"
	"tonecraft/theory"
	"tonecraft/timebase"
)

// SegmentKind identifies which generator a segment request targets.
type SegmentKind string

const (
	KindBeats  SegmentKind = "beats"
	KindChords SegmentKind = "chords"
	KindBass   SegmentKind = "bass"
	KindMelody SegmentKind = "melody"
)

// SegmentSeed derives the deterministic seed for a freshly generated
// segment from the project's base seed, project ID, start bar, and kind.
func SegmentSeed(baseSeed int64, projectID string, startBar int, kind SegmentKind) int64 {
	return seedrand.SignedSeed(baseSeed, projectID, startBar, string(kind))
}

// RegenerateSeed derives the deterministic seed for a regeneration pass,
// additionally keyed by the clip being regenerated and a variation knob so
// repeated regenerate calls at different variation amounts diverge.
func RegenerateSeed(projectID, clipID string, kind SegmentKind, baseSeed int64, variation float64) int64 {
	return seedrand.SignedSeed(projectID, clipID, string(kind), baseSeed, variation)
}

// BeatsParams configures a beats (drums) segment.
type BeatsParams struct {
	Kit                string
	Pattern            string
	Swing              float64
	Density            float64
	GhostNotes         bool
	MuteProbability    float64
	KickVariation      float64
}

var kitStyle = map[string]string{
	"gm_hiphop":   "boom_bap",
	"gm_trap":     "trap",
	"gm_boom_bap": "boom_bap",
	"gm_blank":    "minimal",
}

var patternHatMode = map[string]drums.HatMode{
	"straight":   drums.HatStraight16,
	"syncopated": drums.HatSkipStep,
	"euclidean":  drums.HatStraight8,
	"polyrhythm": drums.HatRoll,
}

// ChordsParams configures a chords segment.
type ChordsParams struct {
	Key              string
	Mode             theory.Mode
	ProgressionStyle string
	CadenceStrength  float64
	Intensity        float64
	Voicing          chordrender.Voicing
	InversionBias    float64
	StrumBeats       float64
	HumanizeBeats    float64
}

// BassParams configures a bass segment.
type BassParams struct {
	Style           string
	Octave          int
	RhythmicDensity float64
	Intensity       float64
}

// MelodyParams configures a melody segment.
type MelodyParams struct {
	Range           string
	MotifRepetition float64
	Leapiness       float64
	Intensity       float64
}

var melodyRangeOctave = map[string]int{
	"narrow": 5,
	"medium": 5,
	"wide":   6,
}

// SegmentResult is the content produced by a segment generation or
// regeneration call: a clip plus its notes and (for chords) chord events.
type SegmentResult struct {
	Clip        model.Clip
	Notes       []model.Note
	ChordEvents []model.ChordEvent
}

// GenerateBeatsSegment renders a drum pattern into a clip's notes.
func GenerateBeatsSegment(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p BeatsParams, preview bool) SegmentResult {
	style, ok := kitStyle[p.Kit]
	if !ok {
		style = "boom_bap"
	}
	hatMode, ok := patternHatMode[p.Pattern]
	if !ok {
		hatMode = drums.HatStraight16
	}

	drumMap := drums.DefaultDrumMap()
	params := drums.DefaultParams()
	params.Style = style
	params.HatMode = hatMode
	params.Swing = p.Swing
	params.Density = p.Density
	params.GhostNotes = p.GhostNotes
	params.PauseProbability = p.MuteProbability
	params.PauseScope = "kick"
	params.VariationIntensity = p.KickVariation

	events := drums.GeneratePattern(lengthBars, project.TimeSignatureNum, project.TimeSignatureDen, seed, drumMap, params)

	clip := newClip(track.ID, startBar, lengthBars, model.GridStandard, preview)
	notes := make([]model.Note, len(events))
	for i, e := range events {
		notes[i] = model.Note{
			ID:           noteID(preview),
			ClipID:       clip.ID,
			Pitch:        e.Pitch,
			Velocity:     e.Velocity,
			StartTick:    e.StartTick,
			DurationTick: e.DurationTick,
			Probability:  1.0,
		}
	}

	return SegmentResult{Clip: clip, Notes: notes}
}

// GenerateChordsSegment builds a chord progression, renders each chord to
// notes via chordrender, and returns both the chord events and notes.
func GenerateChordsSegment(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p ChordsParams, preview bool) SegmentResult {
	preferCircle := p.ProgressionStyle == "circle_fifths"
	cadenceEnding := p.CadenceStrength > 0.5

	prog := progression.Generate(p.Key, p.Mode, lengthBars, seed, "I", preferCircle, cadenceEnding)

	return renderChordProgression(project, track, startBar, lengthBars, seed, p, prog, preview)
}

// GenerateChordsCandidates scores numCandidates progressions for the same
// slot and renders the highest-scoring one, returning both the rendered
// segment and a GenerationRun recording how many candidates were weighed
// and which one won. Returns a GenerationFailure error when numCandidates
// is not positive, since there is nothing to score.
func GenerateChordsCandidates(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p ChordsParams, runID string, numCandidates int, preview bool) (SegmentResult, model.GenerationRun, error) {
	if numCandidates < 1 {
		return SegmentResult{}, model.GenerationRun{}, tcerr.Field(tcerr.GenerationFailure, "num_candidates", "must be >= 1")
	}

	candParams := progression.GenerateCandidatesParams{
		Tonic:         p.Key,
		Mode:          p.Mode,
		Bars:          lengthBars,
		TimeSigNum:    project.TimeSignatureNum,
		TimeSigDen:    project.TimeSignatureDen,
		Complexity:    p.Intensity,
		Style:         p.ProgressionStyle,
		CadenceEnding: p.CadenceStrength > 0.5,
	}
	candidates := progression.GenerateCandidates(candParams, nil, seed, runID, numCandidates)
	if len(candidates) == 0 {
		return SegmentResult{}, model.GenerationRun{}, tcerr.New(tcerr.GenerationFailure, "candidate scorer produced no candidates")
	}

	chosen := 0 // candidates are sorted descending by score; index 0 wins
	prog := make([]progression.ChordEvent, len(candidates[chosen].Progression))
	copy(prog, candidates[chosen].Progression)
	result := renderChordProgression(project, track, startBar, lengthBars, seed, p, prog, preview)

	run := model.GenerationRun{
		ProjectID:            project.ID,
		Kind:                 string(KindChords),
		SeedUsed:             seed,
		CandidatesConsidered: len(candidates),
		ChosenCandidateIndex: &chosen,
	}
	return result, run, nil
}

func renderChordProgression(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p ChordsParams, prog []progression.ChordEvent, preview bool) SegmentResult {
	ticksPerBar := timebase.TicksPerBar(project.TimeSignatureNum, project.TimeSignatureDen)
	beatsPerBar := float64(project.TimeSignatureNum) * 4 / float64(project.TimeSignatureDen)

	clip := newClip(track.ID, startBar, lengthBars, model.GridStandard, preview)

	ctx := chordrender.ProjectContext{
		Tonic: p.Key,
		Mode:  p.Mode,
		BPM:   project.BPM,
		TsNum: project.TimeSignatureNum,
		TsDen: project.TimeSignatureDen,
	}

	inversion := int(p.InversionBias*2) - 1
	if inversion < 0 {
		inversion = 0
	}

	var chordEvents []model.ChordEvent
	var notes []model.Note
	var previousVoicing []int

	for _, chord := range prog {
		durationTicks := chord.LengthBars * ticksPerBar
		durationBeats := float64(chord.LengthBars) * beatsPerBar

		ce := model.ChordEvent{
			ID:            noteID(preview),
			ClipID:        clip.ID,
			StartTick:     chord.StartBar * ticksPerBar,
			DurationTick:  durationTicks,
			DurationBeats: durationBeats,
			RomanNumeral:  chord.RomanNumeral,
			ChordName:     chord.ChordName,
			Intensity:     p.Intensity,
			Voicing:       p.Voicing,
			Inversion:     inversion,
			PatternType:   chordrender.PatternBlock,
			StrumBeats:    p.StrumBeats,
			HumanizeBeats: p.HumanizeBeats,
			DurationGate:  0.85,
			VelocityCurve: chordrender.CurveFlat,
			IsEnabled:     true,
			IsLocked:      false,
		}
		ce.StrumMs = model.BeatsToMs(ce.StrumBeats, project.BPM)
		ce.HumanizeMs = model.BeatsToMs(ce.HumanizeBeats, project.BPM)
		chordEvents = append(chordEvents, ce)

		renderEvent := chordrender.ChordEvent{
			ID:             ce.ID,
			RomanNumeral:   ce.RomanNumeral,
			StartTick:      ce.StartTick,
			DurationTick:   ce.DurationTick,
			Intensity:      ce.Intensity,
			Voicing:        ce.Voicing,
			Inversion:      ce.Inversion,
			PatternType:    ce.PatternType,
			DurationGate:   ce.DurationGate,
			VelocityCurve:  ce.VelocityCurve,
			StrumBeats:     ce.StrumBeats,
			StrumDirection: chordrender.StrumDown,
		}
		rendered := chordrender.Render(renderEvent, ctx, seed, previousVoicing)
		if len(rendered) > 0 {
			previousVoicing = previousVoicing[:0]
			for _, n := range rendered {
				previousVoicing = append(previousVoicing, n.Pitch)
				notes = append(notes, model.Note{
					ID:           noteID(preview),
					ClipID:       clip.ID,
					Pitch:        n.Pitch,
					Velocity:     n.Velocity,
					StartTick:    n.StartTick,
					DurationTick: n.DurationTick,
					Probability:  1.0,
				})
			}
		}
	}

	return SegmentResult{Clip: clip, Notes: notes, ChordEvents: chordEvents}
}

// GenerateBassSegment renders a bassline following a freshly generated
// chord progression.
func GenerateBassSegment(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p BassParams, preview bool) SegmentResult {
	prog := progression.Generate(project.KeyTonic, project.Mode, lengthBars, seed, "I", false, false)
	events := bass.Generate(project.KeyTonic, project.Mode, lengthBars, project.TimeSignatureNum, project.TimeSignatureDen, prog, seed, p.Octave, p.RhythmicDensity)

	clip := newClip(track.ID, startBar, lengthBars, model.GridStandard, preview)
	notes := make([]model.Note, len(events))
	for i, e := range events {
		notes[i] = model.Note{
			ID:           noteID(preview),
			ClipID:       clip.ID,
			Pitch:        e.Pitch,
			Velocity:     clampVelocity(int(float64(e.Velocity) * p.Intensity)),
			StartTick:    e.StartTick,
			DurationTick: e.DurationTick,
			Probability:  1.0,
		}
	}

	return SegmentResult{Clip: clip, Notes: notes}
}

// GenerateMelodySegment renders a scale-constrained melodic line.
func GenerateMelodySegment(project model.Project, track model.Track, startBar, lengthBars int, seed int64, p MelodyParams, preview bool) SegmentResult {
	octave, ok := melodyRangeOctave[p.Range]
	if !ok {
		octave = 5
	}
	cfg := melody.DefaultConfig()
	cfg.Octave = octave
	cfg.StepwiseBias = 1.0 - p.Leapiness
	cfg.LeapProbability = p.Leapiness

	events := melody.Generate(project.KeyTonic, project.Mode, lengthBars, project.TimeSignatureNum, project.TimeSignatureDen, seed, cfg)

	clip := newClip(track.ID, startBar, lengthBars, model.GridStandard, preview)
	notes := make([]model.Note, len(events))
	for i, e := range events {
		notes[i] = model.Note{
			ID:           noteID(preview),
			ClipID:       clip.ID,
			Pitch:        e.Pitch,
			Velocity:     clampVelocity(int(float64(e.Velocity) * p.Intensity)),
			StartTick:    e.StartTick,
			DurationTick: e.DurationTick,
			Probability:  1.0,
		}
	}

	return SegmentResult{Clip: clip, Notes: notes}
}

func newClip(trackID string, startBar, lengthBars int, gridMode model.GridMode, preview bool) model.Clip {
	id := "preview_clip"
	if !preview {
		id = model.NewID()
	}
	return model.Clip{
		ID:         id,
		TrackID:    trackID,
		StartBar:   startBar,
		LengthBars: lengthBars,
		GridMode:   gridMode,
		Intensity:  1.0,
	}
}

func noteID(preview bool) string {
	if preview {
		return ""
	}
	return model.NewID()
}

func clampVelocity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}

// DescribeSeed renders a seed alongside its originating kind for log
// messages.
func DescribeSeed(kind SegmentKind, seed int64) string {
	return fmt.Sprintf("%s seed=%d", kind, seed)
}

// Package midiexport renders a project's tracks and clips to Standard
// MIDI File (Format 1) bytes, and bundles per-track or per-clip files
// into a ZIP archive.
package midiexport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"tonecraft/model"
	"tonecraft/playback"
	"tonecraft/timebase"
)

// ExportClip pairs a clip with its rendered notes.
type ExportClip struct {
	Clip  model.Clip
	Notes []model.Note
}

// ExportTrack pairs a track with its clips, each carrying its own notes.
type ExportTrack struct {
	Track model.Track
	Clips []ExportClip
}

type midiEvent struct {
	tick    uint32
	message midi.Message
}

// ExportProjectToMIDI renders every playable track of the project into a
// single Format-1 Standard MIDI File.
func ExportProjectToMIDI(project model.Project, tracks []ExportTrack) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(timebase.PPQ)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(float64(project.BPM)))
	tempoTrack.Close(0)
	s.Add(tempoTrack)

	ticksPerBar := timebase.TicksPerBar(project.TimeSignatureNum, project.TimeSignatureDen)

	plainTracks := make([]model.Track, len(tracks))
	for i, t := range tracks {
		plainTracks[i] = t.Track
	}
	filteredIDs := map[string]bool{}
	for _, t := range playback.FilterTracksForPlayback(plainTracks) {
		filteredIDs[t.ID] = true
	}

	for _, et := range tracks {
		if !filteredIDs[et.Track.ID] {
			continue
		}
		midiTrack, err := renderTrack(et, ticksPerBar, 0)
		if err != nil {
			return nil, err
		}
		s.Add(midiTrack)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportTrackToMIDI renders a single track (and its playable clips) to a
// standalone Standard MIDI File, applying clip and track tick offsets.
func ExportTrackToMIDI(et ExportTrack, ticksPerBar int) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(timebase.PPQ)

	midiTrack, err := renderTrack(et, ticksPerBar, et.Track.StartOffsetTicks)
	if err != nil {
		return nil, err
	}
	s.Add(midiTrack)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTrack(et ExportTrack, ticksPerBar, trackOffset int) (smf.Track, error) {
	var midiTrack smf.Track
	midiTrack.Add(0, midi.ProgramChange(uint8(et.Track.MIDIChannel), uint8(et.Track.MIDIProgram)))

	filteredClips := playback.FilterClipsForPlayback(clipsOf(et.Clips))
	filteredIDs := map[string]bool{}
	for _, c := range filteredClips {
		filteredIDs[c.ID] = true
	}

	var events []midiEvent
	for _, ec := range et.Clips {
		if !filteredIDs[ec.Clip.ID] {
			continue
		}
		clipStartTick := ec.Clip.StartBar * ticksPerBar
		for _, note := range ec.Notes {
			baseTick := clipStartTick + note.StartTick
			startTick := applyOffsetsToTick(baseTick, ec.Clip.StartOffsetTicks, trackOffset)
			if startTick < 0 {
				startTick = 0
			}
			duration := note.DurationTick
			if duration < 1 {
				duration = 1
			}
			events = append(events,
				midiEvent{tick: uint32(startTick), message: midi.NoteOn(uint8(et.Track.MIDIChannel), uint8(note.Pitch), uint8(note.Velocity))},
				midiEvent{tick: uint32(startTick + duration), message: midi.NoteOff(uint8(et.Track.MIDIChannel), uint8(note.Pitch))},
			)
		}
	}

	sortEventsStable(events)

	currentTick := uint32(0)
	for _, evt := range events {
		delta := uint32(0)
		if evt.tick > currentTick {
			delta = evt.tick - currentTick
		}
		midiTrack.Add(delta, evt.message)
		currentTick = evt.tick
	}

	midiTrack.Close(0)
	return midiTrack, nil
}

func applyOffsetsToTick(baseTick, clipOffset, trackOffset int) int {
	return baseTick + clipOffset + trackOffset
}

func clipsOf(clips []ExportClip) []model.Clip {
	out := make([]model.Clip, len(clips))
	for i, c := range clips {
		out[i] = c.Clip
	}
	return out
}

func sortEventsStable(events []midiEvent) {
	// insertion sort preserves relative order of equal-tick events, which
	// matters for note_off-before-note_on ordering at shared tick values.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].tick < events[j-1].tick; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are unsafe in a filesystem path
// and clamps the result's length.
func SanitizeFilename(name string) string {
	cleaned := invalidFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, " .")
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// SplitBy selects how ExportProjectToZIP divides a project into parts.
type SplitBy string

const (
	SplitByTrack SplitBy = "track"
	SplitByClip  SplitBy = "clip"
)

// ExportProjectToZIP bundles every playable track (or clip) as its own
// MIDI file inside a single ZIP archive.
func ExportProjectToZIP(project model.Project, tracks []ExportTrack, splitBy SplitBy) ([]byte, error) {
	ticksPerBar := timebase.TicksPerBar(project.TimeSignatureNum, project.TimeSignatureDen)

	plainTracks := make([]model.Track, len(tracks))
	for i, t := range tracks {
		plainTracks[i] = t.Track
	}
	filteredIDs := map[string]bool{}
	for _, t := range playback.FilterTracksForPlayback(plainTracks) {
		filteredIDs[t.ID] = true
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	partIndex := 0
	switch splitBy {
	case SplitByClip:
		for _, et := range tracks {
			if !filteredIDs[et.Track.ID] {
				continue
			}
			for _, ec := range playback.FilterClipsForPlayback(clipsOf(et.Clips)) {
				partIndex++
				singleClipTrack := et
				singleClipTrack.Clips = clipsMatching(et.Clips, ec.ID)
				midiBytes, err := ExportTrackToMIDI(singleClipTrack, ticksPerBar)
				if err != nil {
					return nil, err
				}
				filename := fmt.Sprintf("part_%02d_%s_%s.mid", partIndex,
					SanitizeFilename(et.Track.Name), SanitizeFilename(fmt.Sprintf("bar_%d", ec.StartBar)))
				w, err := zw.Create(filename)
				if err != nil {
					return nil, err
				}
				if _, err := w.Write(midiBytes); err != nil {
					return nil, err
				}
			}
		}
	default:
		for _, et := range tracks {
			if !filteredIDs[et.Track.ID] {
				continue
			}
			partIndex++
			midiBytes, err := ExportTrackToMIDI(et, ticksPerBar)
			if err != nil {
				return nil, err
			}
			filename := fmt.Sprintf("part_%02d_%s.mid", partIndex, SanitizeFilename(et.Track.Name))
			w, err := zw.Create(filename)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(midiBytes); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clipsMatching(clips []ExportClip, clipID string) []ExportClip {
	for _, c := range clips {
		if c.Clip.ID == clipID {
			return []ExportClip{c}
		}
	}
	return nil
}

// GenerateZipFilename produces a timestamped archive name for a project.
func GenerateZipFilename(projectName string, at time.Time) string {
	return fmt.Sprintf("%s_%s.zip", SanitizeFilename(projectName), at.Format("20060102_150405"))
}

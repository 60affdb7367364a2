// Package playback implements the mute/solo filtering rules shared by
// tracks, clips, and polyrhythm lanes: a muted entity never plays, and a
// solo on any sibling silences every non-soloed sibling.
package playback

import "tonecraft/model"

// ShouldPlayTrack reports whether track should sound given the mute/solo
// state of every track in allTracks.
func ShouldPlayTrack(track model.Track, allTracks []model.Track) bool {
	if track.IsMuted {
		return false
	}
	hasAnySolo := false
	for _, t := range allTracks {
		if t.IsSoloed {
			hasAnySolo = true
			break
		}
	}
	if hasAnySolo {
		return track.IsSoloed
	}
	return true
}

// ShouldPlayClip reports whether clip should sound given the mute/solo
// state of every clip in its track (allClipsInTrack).
func ShouldPlayClip(clip model.Clip, allClipsInTrack []model.Clip) bool {
	if clip.IsMuted {
		return false
	}
	hasAnySolo := false
	for _, c := range allClipsInTrack {
		if c.IsSoloed {
			hasAnySolo = true
			break
		}
	}
	if hasAnySolo {
		return clip.IsSoloed
	}
	return true
}

// ShouldPlayLane reports whether lane should sound given the mute/solo
// state of every lane in its clip (allLanesInClip).
func ShouldPlayLane(lane model.ClipPolyrhythmLane, allLanesInClip []model.ClipPolyrhythmLane) bool {
	if lane.Mute {
		return false
	}
	hasAnySolo := false
	for _, l := range allLanesInClip {
		if l.Solo {
			hasAnySolo = true
			break
		}
	}
	if hasAnySolo {
		return lane.Solo
	}
	return true
}

// FilterTracksForPlayback returns the subset of tracks that should play.
func FilterTracksForPlayback(tracks []model.Track) []model.Track {
	out := make([]model.Track, 0, len(tracks))
	for _, t := range tracks {
		if ShouldPlayTrack(t, tracks) {
			out = append(out, t)
		}
	}
	return out
}

// FilterClipsForPlayback returns the subset of clips (all from the same
// track) that should play.
func FilterClipsForPlayback(clips []model.Clip) []model.Clip {
	out := make([]model.Clip, 0, len(clips))
	for _, c := range clips {
		if ShouldPlayClip(c, clips) {
			out = append(out, c)
		}
	}
	return out
}

// FilterLanesForPlayback returns the subset of lanes (all from the same
// clip) that should play.
func FilterLanesForPlayback(lanes []model.ClipPolyrhythmLane) []model.ClipPolyrhythmLane {
	out := make([]model.ClipPolyrhythmLane, 0, len(lanes))
	for _, l := range lanes {
		if ShouldPlayLane(l, lanes) {
			out = append(out, l)
		}
	}
	return out
}

package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tonecraft/model"
)

func TestShouldPlayTrackMutedNeverPlays(t *testing.T) {
	tracks := []model.Track{{ID: "a", IsMuted: true}}
	assert.False(t, ShouldPlayTrack(tracks[0], tracks), "muted track should never play")
}

func TestShouldPlayTrackSoloIsAllOrNone(t *testing.T) {
	tracks := []model.Track{
		{ID: "a", IsSoloed: true},
		{ID: "b"},
		{ID: "c"},
	}
	assert.True(t, ShouldPlayTrack(tracks[0], tracks), "soloed track should play")
	assert.False(t, ShouldPlayTrack(tracks[1], tracks), "non-soloed track should be silenced when any sibling is soloed")
	assert.False(t, ShouldPlayTrack(tracks[2], tracks), "non-soloed track should be silenced when any sibling is soloed")
}

func TestShouldPlayTrackNoSoloPlaysAllUnmuted(t *testing.T) {
	tracks := []model.Track{{ID: "a"}, {ID: "b", IsMuted: true}}
	assert.True(t, ShouldPlayTrack(tracks[0], tracks), "unmuted track with no solo anywhere should play")
	assert.False(t, ShouldPlayTrack(tracks[1], tracks), "muted track should not play even with no solo anywhere")
}

func TestFilterTracksForPlaybackAppliesSoloAcrossAll(t *testing.T) {
	tracks := []model.Track{
		{ID: "a", IsSoloed: true},
		{ID: "b"},
	}
	got := FilterTracksForPlayback(tracks)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "a", got[0].ID)
	}
}

func TestShouldPlayClipSoloIsAllOrNone(t *testing.T) {
	clips := []model.Clip{
		{ID: "x", IsSoloed: true},
		{ID: "y"},
	}
	assert.False(t, ShouldPlayClip(clips[1], clips), "non-soloed clip should be silenced when a sibling is soloed")
}

func TestShouldPlayLaneSoloIsAllOrNone(t *testing.T) {
	lanes := []model.ClipPolyrhythmLane{
		{ID: "l1", Solo: true},
		{ID: "l2"},
	}
	assert.False(t, ShouldPlayLane(lanes[1], lanes), "non-soloed lane should be silenced when a sibling is soloed")
	assert.True(t, ShouldPlayLane(lanes[0], lanes), "soloed lane should play")
}

func TestFilterLanesForPlaybackMutedExcludedEvenWithoutSolo(t *testing.T) {
	lanes := []model.ClipPolyrhythmLane{
		{ID: "l1", Mute: true},
		{ID: "l2"},
	}
	got := FilterLanesForPlayback(lanes)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "l2", got[0].ID)
	}
}

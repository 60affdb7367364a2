// Package store is an in-memory reference implementation of the domain
// store contract: typed records supporting read-by-id, list-by-parent,
// insert, update, delete, and atomic delete-then-insert per clip. No HTTP
// framework or persistence backend is wired here — this models the
// boundary an HTTP adapter would call against.
package store

import (
	"sync"

	"tonecraft/model"
	"tonecraft/tcerr"
)

// ErrNotFound is returned when a record lookup fails. It carries
// tcerr.NotFound, so callers can also discriminate via tcerr.Is.
var ErrNotFound error = tcerr.New(tcerr.NotFound, "not found")

// ErrLocked is returned when a mutation targets a locked chord event.
var ErrLocked error = tcerr.New(tcerr.StoreConflict, "chord event is locked")

// Store is the in-memory domain store: one mutex-guarded map per entity
// kind, matching spec.md §3's record set.
type Store struct {
	mu sync.Mutex

	projects           map[string]model.Project
	tracks             map[string]model.Track
	clips              map[string]model.Clip
	notes              map[string]model.Note
	chordEvents        map[string]model.ChordEvent
	polyrhythmProfiles map[string]model.PolyrhythmProfile
	lanes              map[string]model.ClipPolyrhythmLane
	drumMapProfiles    map[string]model.DrumMapProfile
	generationRuns     map[string]model.GenerationRun
}

// New returns an empty store.
func New() *Store {
	return &Store{
		projects:           map[string]model.Project{},
		tracks:             map[string]model.Track{},
		clips:              map[string]model.Clip{},
		notes:              map[string]model.Note{},
		chordEvents:        map[string]model.ChordEvent{},
		polyrhythmProfiles: map[string]model.PolyrhythmProfile{},
		lanes:              map[string]model.ClipPolyrhythmLane{},
		drumMapProfiles:    map[string]model.DrumMapProfile{},
		generationRuns:     map[string]model.GenerationRun{},
	}
}

// --- Project ---

func (s *Store) InsertProject(p model.Project) (model.Project, error) {
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = model.NewID()
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(id string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

func (s *Store) UpdateProject(p model.Project) (model.Project, error) {
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return model.Project{}, ErrNotFound
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) ListProjects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out
}

// --- Track ---

func (s *Store) InsertTrack(t model.Track) (model.Track, error) {
	if err := t.Validate(); err != nil {
		return model.Track{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = model.NewID()
	}
	s.tracks[t.ID] = t
	return t, nil
}

func (s *Store) GetTrack(id string) (model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok {
		return model.Track{}, ErrNotFound
	}
	return t, nil
}

func (s *Store) UpdateTrack(t model.Track) (model.Track, error) {
	if err := t.Validate(); err != nil {
		return model.Track{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[t.ID]; !ok {
		return model.Track{}, ErrNotFound
	}
	s.tracks[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tracks, id)
	return nil
}

// ListTracksByProject returns every track belonging to projectID.
func (s *Store) ListTracksByProject(projectID string) []model.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Track
	for _, t := range s.tracks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// --- Clip ---

func (s *Store) InsertClip(c model.Clip) (model.Clip, error) {
	if err := c.Validate(); err != nil {
		return model.Clip{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = model.NewID()
	}
	s.clips[c.ID] = c
	return c, nil
}

func (s *Store) GetClip(id string) (model.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[id]
	if !ok {
		return model.Clip{}, ErrNotFound
	}
	return c, nil
}

func (s *Store) UpdateClip(c model.Clip) (model.Clip, error) {
	if err := c.Validate(); err != nil {
		return model.Clip{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[c.ID]; !ok {
		return model.Clip{}, ErrNotFound
	}
	s.clips[c.ID] = c
	return c, nil
}

func (s *Store) DeleteClip(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[id]; !ok {
		return ErrNotFound
	}
	delete(s.clips, id)
	for noteID, n := range s.notes {
		if n.ClipID == id {
			delete(s.notes, noteID)
		}
	}
	for ceID, ce := range s.chordEvents {
		if ce.ClipID == id {
			delete(s.chordEvents, ceID)
		}
	}
	return nil
}

// ListClipsByTrack returns every clip belonging to trackID.
func (s *Store) ListClipsByTrack(trackID string) []model.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Clip
	for _, c := range s.clips {
		if c.TrackID == trackID {
			out = append(out, c)
		}
	}
	return out
}

// --- Note ---

func (s *Store) InsertNote(n model.Note) (model.Note, error) {
	if err := n.Validate(); err != nil {
		return model.Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = model.NewID()
	}
	s.notes[n.ID] = n
	return n, nil
}

// ListNotesByClip returns every note belonging to clipID.
func (s *Store) ListNotesByClip(clipID string) []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Note
	for _, n := range s.notes {
		if n.ClipID == clipID {
			out = append(out, n)
		}
	}
	return out
}

// ReplaceClipNotes atomically deletes every existing note for clipID and
// inserts the replacement set, matching spec.md §5's "regeneration first
// deletes prior content then inserts new content" ordering requirement. If
// any replacement note fails validation, the store is left unchanged.
func (s *Store) ReplaceClipNotes(clipID string, replacement []model.Note) ([]model.Note, error) {
	for _, n := range replacement {
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notes {
		if n.ClipID == clipID {
			delete(s.notes, id)
		}
	}

	out := make([]model.Note, len(replacement))
	for i, n := range replacement {
		if n.ID == "" {
			n.ID = model.NewID()
		}
		n.ClipID = clipID
		s.notes[n.ID] = n
		out[i] = n
	}
	return out, nil
}

// --- ChordEvent ---

func (s *Store) InsertChordEvent(ce model.ChordEvent) (model.ChordEvent, error) {
	if err := ce.Validate(); err != nil {
		return model.ChordEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ce.ID == "" {
		ce.ID = model.NewID()
	}
	s.chordEvents[ce.ID] = ce
	return ce, nil
}

func (s *Store) GetChordEvent(id string) (model.ChordEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ce, ok := s.chordEvents[id]
	if !ok {
		return model.ChordEvent{}, ErrNotFound
	}
	return ce, nil
}

// UpdateChordEvent enforces the lock invariant: a locked event rejects any
// mutation other than clearing is_locked.
func (s *Store) UpdateChordEvent(next model.ChordEvent) (model.ChordEvent, error) {
	if err := next.Validate(); err != nil {
		return model.ChordEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.chordEvents[next.ID]
	if !ok {
		return model.ChordEvent{}, ErrNotFound
	}
	if err := current.ApplyMutation(next); err != nil {
		return model.ChordEvent{}, ErrLocked
	}
	s.chordEvents[next.ID] = next
	return next, nil
}

func (s *Store) DeleteChordEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ce, ok := s.chordEvents[id]
	if !ok {
		return ErrNotFound
	}
	if ce.IsLocked {
		return ErrLocked
	}
	delete(s.chordEvents, id)
	return nil
}

// ListChordEventsByClip returns every chord event belonging to clipID.
func (s *Store) ListChordEventsByClip(clipID string) []model.ChordEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChordEvent
	for _, ce := range s.chordEvents {
		if ce.ClipID == clipID {
			out = append(out, ce)
		}
	}
	return out
}

// ReplaceClipChordEvents atomically deletes every unlocked chord event for
// clipID and inserts the replacement set; locked events are preserved.
func (s *Store) ReplaceClipChordEvents(clipID string, replacement []model.ChordEvent) ([]model.ChordEvent, error) {
	for _, ce := range replacement {
		if err := ce.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ce := range s.chordEvents {
		if ce.ClipID == clipID && !ce.IsLocked {
			delete(s.chordEvents, id)
		}
	}

	out := make([]model.ChordEvent, len(replacement))
	for i, ce := range replacement {
		if ce.ID == "" {
			ce.ID = model.NewID()
		}
		ce.ClipID = clipID
		s.chordEvents[ce.ID] = ce
		out[i] = ce
	}
	return out, nil
}

// --- PolyrhythmProfile ---

func (s *Store) InsertPolyrhythmProfile(p model.PolyrhythmProfile) (model.PolyrhythmProfile, error) {
	if err := p.Validate(); err != nil {
		return model.PolyrhythmProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = model.NewID()
	}
	s.polyrhythmProfiles[p.ID] = p
	return p, nil
}

func (s *Store) GetPolyrhythmProfile(id string) (model.PolyrhythmProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.polyrhythmProfiles[id]
	if !ok {
		return model.PolyrhythmProfile{}, ErrNotFound
	}
	return p, nil
}

// --- ClipPolyrhythmLane ---

// InsertLane validates that the referenced profile exists before
// inserting the lane, matching spec.md §3's "lane's profile must exist"
// invariant.
func (s *Store) InsertLane(l model.ClipPolyrhythmLane) (model.ClipPolyrhythmLane, error) {
	if err := l.Validate(); err != nil {
		return model.ClipPolyrhythmLane{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polyrhythmProfiles[l.PolyrhythmProfileID]; !ok {
		return model.ClipPolyrhythmLane{}, ErrNotFound
	}
	if l.ID == "" {
		l.ID = model.NewID()
	}
	s.lanes[l.ID] = l
	return l, nil
}

// ListLanesByClip returns every lane belonging to clipID.
func (s *Store) ListLanesByClip(clipID string) []model.ClipPolyrhythmLane {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ClipPolyrhythmLane
	for _, l := range s.lanes {
		if l.ClipID == clipID {
			out = append(out, l)
		}
	}
	return out
}

// --- DrumMapProfile ---

func (s *Store) InsertDrumMapProfile(d model.DrumMapProfile) (model.DrumMapProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = model.NewID()
	}
	s.drumMapProfiles[d.ID] = d
	return d, nil
}

func (s *Store) GetDrumMapProfile(id string) (model.DrumMapProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drumMapProfiles[id]
	if !ok {
		return model.DrumMapProfile{}, ErrNotFound
	}
	return d, nil
}

// --- GenerationRun ---

// InsertGenerationRun records an immutable audit entry; generation runs
// are never updated once created.
func (s *Store) InsertGenerationRun(r model.GenerationRun) (model.GenerationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = model.NewID()
	}
	s.generationRuns[r.ID] = r
	return r, nil
}

func (s *Store) GetGenerationRun(id string) (model.GenerationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.generationRuns[id]
	if !ok {
		return model.GenerationRun{}, ErrNotFound
	}
	return r, nil
}

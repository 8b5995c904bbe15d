package run

// Character is a generated cast member.
type Character struct {
	ID          int64
	Name        string
	Description string
	ImageURL    string
}

// Scene groups an ordered run of shots.
type Scene struct {
	ID          int64
	Order       int
	Description string
}

// Shot is one storyboard frame with optional generated media.
type Shot struct {
	ID          int64
	SceneID     int64
	Order       int
	Description string
	Prompt      string
	ImageURL    string
	VideoURL    string
	Duration    float64
}

// Artifact collection names as they appear in data_cleared events.
const (
	KindCharacters = "characters"
	KindScenes     = "scenes"
	KindShots      = "shots"
)

var knownKinds = map[string]struct{}{
	KindCharacters: {},
	KindScenes:     {},
	KindShots:      {},
}

// Characters returns a copy of the character collection.
func (s *Store) Characters() []Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Character, len(s.characters))
	copy(out, s.characters)
	return out
}

// Scenes returns a copy of the scene collection.
func (s *Store) Scenes() []Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Scene, len(s.scenes))
	copy(out, s.scenes)
	return out
}

// Shots returns a copy of the shot collection.
func (s *Store) Shots() []Shot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Shot, len(s.shots))
	copy(out, s.shots)
	return out
}

// UpsertCharacter inserts or updates by id, preserving arrival order.
func (s *Store) UpsertCharacter(c Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.characters {
		if s.characters[i].ID == c.ID {
			s.characters[i] = c
			s.notify()
			return
		}
	}
	s.characters = append(s.characters, c)
	s.notify()
}

// RemoveCharacter deletes by id. Unknown ids are a no-op.
func (s *Store) RemoveCharacter(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.characters {
		if s.characters[i].ID == id {
			s.characters = append(s.characters[:i], s.characters[i+1:]...)
			s.notify()
			return
		}
	}
}

// UpsertScene inserts or updates by id.
func (s *Store) UpsertScene(sc Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.scenes {
		if s.scenes[i].ID == sc.ID {
			s.scenes[i] = sc
			s.notify()
			return
		}
	}
	s.scenes = append(s.scenes, sc)
	s.notify()
}

// RemoveScene deletes a scene and cascades to its shots, which cannot
// outlive their parent.
func (s *Store) RemoveScene(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			s.scenes = append(s.scenes[:i], s.scenes[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return
	}
	kept := s.shots[:0]
	for _, sh := range s.shots {
		if sh.SceneID != id {
			kept = append(kept, sh)
		}
	}
	s.shots = kept
	s.notify()
}

// UpsertShot inserts or updates by id.
func (s *Store) UpsertShot(sh Shot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shots {
		if s.shots[i].ID == sh.ID {
			s.shots[i] = sh
			s.notify()
			return
		}
	}
	s.shots = append(s.shots, sh)
	s.notify()
}

// RemoveShot deletes by id.
func (s *Store) RemoveShot(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shots {
		if s.shots[i].ID == id {
			s.shots = append(s.shots[:i], s.shots[i+1:]...)
			s.notify()
			return
		}
	}
}

// ClearCollections empties the named collections. Scope names come off the
// wire as free-form strings, so anything outside the known kinds is
// reported back to the caller instead of trusted.
func (s *Store) ClearCollections(kinds []string) []string {
	var unknown []string
	cleared := false
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kinds {
		if _, ok := knownKinds[k]; !ok {
			unknown = append(unknown, k)
			continue
		}
		switch k {
		case KindCharacters:
			s.characters = nil
		case KindScenes:
			s.scenes = nil
		case KindShots:
			s.shots = nil
		}
		cleared = true
	}
	if cleared {
		s.notify()
	}
	return unknown
}

// ReplaceArtifacts swaps in a server snapshot of all three collections.
func (s *Store) ReplaceArtifacts(chars []Character, scenes []Scene, shots []Shot) {
	s.mu.Lock()
	s.characters = append([]Character(nil), chars...)
	s.scenes = append([]Scene(nil), scenes...)
	s.shots = append([]Shot(nil), shots...)
	s.notify()
	s.mu.Unlock()
}

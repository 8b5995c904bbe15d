package run

import (
	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

// SeedSnapshot replaces the narrative fields and artifact collections with
// a freshly fetched backend snapshot. The message log is seeded separately
// because its REST shape differs from the stream shape.
func (s *Store) SeedSnapshot(title, story, summary, videoURL string, chars []wire.Character, scenes []wire.Scene, shots []wire.Shot) {
	cc := make([]Character, 0, len(chars))
	for _, c := range chars {
		cc = append(cc, characterFromWire(c))
	}
	sc := make([]Scene, 0, len(scenes))
	for _, v := range scenes {
		sc = append(sc, sceneFromWire(v))
	}
	sh := make([]Shot, 0, len(shots))
	for _, v := range shots {
		sh = append(sh, shotFromWire(v))
	}

	s.mu.Lock()
	s.state.Title = title
	s.state.Story = story
	s.state.Summary = summary
	s.state.VideoURL = videoURL
	s.characters = cc
	s.scenes = sc
	s.shots = sh
	s.notify()
	s.mu.Unlock()
}

// LayoutSnapshot bundles everything the layout engine depends on, read
// under one lock so a mid-event recompute never sees a torn state.
type LayoutSnapshot struct {
	Title      string
	Summary    string
	Characters []Character
	Shots      []Shot
	VideoURL   string
}

// ForLayout returns the layout inputs as one consistent snapshot.
func (s *Store) ForLayout() LayoutSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := LayoutSnapshot{
		Title:    s.state.Title,
		Summary:  s.state.Summary,
		VideoURL: s.state.VideoURL,
	}
	snap.Characters = make([]Character, len(s.characters))
	copy(snap.Characters, s.characters)
	snap.Shots = make([]Shot, len(s.shots))
	copy(snap.Shots, s.shots)
	return snap
}

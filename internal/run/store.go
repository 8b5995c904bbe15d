package run

import (
	"sync"
)

// State is the scalar portion of the store, returned as one consistent
// snapshot so readers never observe a half-applied composite mutation.
type State struct {
	ProjectID       int64
	Stage           Stage
	ActiveAgent     string
	Progress        float64
	Generating      bool
	AwaitingConfirm bool
	ConfirmAgent    string
	RunID           int64
	Title           string
	Story           string
	Summary         string
	VideoURL        string
	UpdatedAt       int64
}

// Watcher receives a coalesced signal whenever the store changes.
type Watcher chan struct{}

// Store is the authoritative client-side view of one workflow run.
// All mutations happen under one mutex; observers get a non-blocking
// nudge and re-read whatever they need.
type Store struct {
	mu sync.RWMutex

	state      State
	messages   []Message
	characters []Character
	scenes     []Scene
	shots      []Shot

	watchers map[Watcher]struct{}
}

// NewStore creates an empty store for a project.
func NewStore(projectID int64) *Store {
	return &Store{
		state:    State{ProjectID: projectID, Stage: StageIdeate},
		watchers: make(map[Watcher]struct{}),
	}
}

// Watch registers an observer. The channel has a buffer of one so a slow
// reader coalesces bursts instead of blocking mutations.
func (s *Store) Watch() Watcher {
	ch := make(Watcher, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unwatch removes an observer and closes its channel.
func (s *Store) Unwatch(w Watcher) {
	s.mu.Lock()
	delete(s.watchers, w)
	s.mu.Unlock()
	close(w)
}

// notify must be called with the mutex held.
func (s *Store) notify() {
	s.state.UpdatedAt++
	for w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// State returns a copy of the scalar state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Messages returns a copy of the message log in append order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetStage updates the pipeline stage, ignoring unknown values.
func (s *Store) SetStage(stage string) {
	st, ok := ParseStage(stage)
	if !ok {
		return
	}
	s.mu.Lock()
	s.state.Stage = st
	s.notify()
	s.mu.Unlock()
}

// SetProgress clamps the fraction into [0,1] and records it.
func (s *Store) SetProgress(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	s.mu.Lock()
	s.state.Progress = p
	s.notify()
	s.mu.Unlock()
}

// SetActiveAgent records which agent is currently working.
func (s *Store) SetActiveAgent(agent string) {
	s.mu.Lock()
	s.state.ActiveAgent = agent
	s.notify()
	s.mu.Unlock()
}

// SetGenerating toggles the busy flag.
func (s *Store) SetGenerating(v bool) {
	s.mu.Lock()
	s.state.Generating = v
	s.notify()
	s.mu.Unlock()
}

// SetConfirmGate atomically sets the confirmation gate. Clearing the gate
// (awaiting=false) retains the agent and run id: the run is still live and
// later events reference the id. A gate without an agent is normalized to
// the empty string rather than rejected.
func (s *Store) SetConfirmGate(awaiting bool, agent string, runID int64) {
	s.mu.Lock()
	s.state.AwaitingConfirm = awaiting
	if awaiting {
		s.state.ConfirmAgent = agent
		if runID > 0 {
			s.state.RunID = runID
		}
	}
	s.notify()
	s.mu.Unlock()
}

// AppendMessage adds to the log. A new message from an agent closes out
// that agent's live streaming entry by replacing it in place, so a loading
// placeholder and its final content occupy one log slot.
func (s *Store) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].IsLoading && s.messages[i].Agent == m.Agent {
			s.messages[i] = m
			s.notify()
			return
		}
	}
	s.messages = append(s.messages, m)
	s.notify()
}

// SettleAll ends the streaming state of every in-progress message.
func (s *Store) SettleAll() {
	s.mu.Lock()
	settleAll(s.messages)
	s.notify()
	s.mu.Unlock()
}

// ReplaceMessages swaps in a server snapshot of the log.
func (s *Store) ReplaceMessages(msgs []Message) {
	s.mu.Lock()
	s.messages = append([]Message(nil), msgs...)
	s.notify()
	s.mu.Unlock()
}

// SetNarrative updates the run-level narrative fields from a snapshot.
func (s *Store) SetNarrative(title, story, summary string) {
	s.mu.Lock()
	s.state.Title = title
	s.state.Story = story
	s.state.Summary = summary
	s.notify()
	s.mu.Unlock()
}

// SetVideoURL records the merged final video reference.
func (s *Store) SetVideoURL(url string) {
	s.mu.Lock()
	s.state.VideoURL = url
	s.notify()
	s.mu.Unlock()
}

// Resume seeds the scalar state from a persisted session slice so a user
// who reloads mid-run can keep interacting with it.
func (s *Store) Resume(stage Stage, runID int64, generating, awaiting bool, confirmAgent string) {
	s.mu.Lock()
	if _, ok := validStages[stage]; ok {
		s.state.Stage = stage
	}
	s.state.RunID = runID
	s.state.Generating = generating
	s.state.AwaitingConfirm = awaiting
	s.state.ConfirmAgent = confirmAgent
	s.notify()
	s.mu.Unlock()
}

// CancelLocally performs the optimistic reset after a user-initiated
// cancel: the backend's acknowledgment is fire-and-forget, so the client
// clears its own busy indicators immediately.
func (s *Store) CancelLocally() {
	s.mu.Lock()
	settleAll(s.messages)
	s.state.Generating = false
	s.state.AwaitingConfirm = false
	s.state.ConfirmAgent = ""
	s.state.RunID = 0
	s.notify()
	s.mu.Unlock()
}

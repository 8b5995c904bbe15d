package run

import (
	"encoding/json"
	"fmt"

	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

// Apply translates one inbound event into store mutations. A decode error
// means the single frame is dropped by the caller; the store is never left
// half-mutated because each case decodes fully before touching state.
// Events arrive in backend order on one goroutine, so the sequence of
// mutator calls inside a case cannot interleave with another event.
func (s *Store) Apply(env wire.Envelope) error {
	switch env.Type {
	case wire.EventConnected, wire.EventPong, wire.EventEcho:
		// Connection acknowledgment and heartbeat echo carry no state.
		return nil

	case wire.EventRunStarted:
		var p wire.RunStarted
		if err := decode(env, &p); err != nil {
			return err
		}
		s.startRun(p.RunID, p.Stage)
		return nil

	case wire.EventRunProgress:
		var p wire.RunProgress
		if err := decode(env, &p); err != nil {
			return err
		}
		s.SetActiveAgent(p.CurrentAgent)
		s.SetProgress(p.Progress)
		if p.Stage != "" {
			s.SetStage(p.Stage)
		} else if p.CurrentAgent != "" {
			s.SetStage(string(AgentStage(p.CurrentAgent)))
		}
		return nil

	case wire.EventRunMessage:
		var p wire.RunMessage
		if err := decode(env, &p); err != nil {
			return err
		}
		if p.Progress != nil {
			s.SetProgress(*p.Progress)
		}
		m := newLocalMessage(p.Agent, p.Role, p.Content)
		m.Progress = p.Progress
		m.IsLoading = p.IsLoading
		s.AppendMessage(m)
		return nil

	case wire.EventAgentHandoff:
		var p wire.AgentHandoff
		if err := decode(env, &p); err != nil {
			return err
		}
		s.SettleAll()
		content := p.Message
		if content == "" {
			content = fmt.Sprintf("@%s invited @%s to the chat", p.FromAgent, p.ToAgent)
		}
		s.AppendMessage(newLocalMessage(p.ToAgent, RoleHandoff, content))
		return nil

	case wire.EventAwaitingConfirm:
		var p wire.AwaitingConfirm
		if err := decode(env, &p); err != nil {
			return err
		}
		s.SettleAll()
		s.SetConfirmGate(true, p.Agent, p.RunID)
		s.AppendMessage(newLocalMessage(p.Agent, RoleInfo, p.Message))
		return nil

	case wire.EventRunConfirmed:
		var p wire.RunConfirmed
		if err := decode(env, &p); err != nil {
			return err
		}
		// Only the boolean clears; the run id and agent are retained
		// because the run is still active.
		s.SetConfirmGate(false, "", 0)
		return nil

	case wire.EventRunCompleted:
		var p wire.RunCompleted
		if err := decode(env, &p); err != nil {
			return err
		}
		s.finishRun(StageDeploy, 1, "")
		return nil

	case wire.EventRunFailed:
		var p wire.RunFailed
		if err := decode(env, &p); err != nil {
			return err
		}
		s.finishRun("", -1, "")
		s.AppendMessage(newLocalMessage("orchestrator", RoleError, p.Error))
		return nil

	case wire.EventRunCancelled:
		var p wire.RunCancelled
		if err := decode(env, &p); err != nil {
			return err
		}
		s.finishRun("", -1, "")
		s.AppendMessage(newLocalMessage("system", RoleInfo, "run cancelled"))
		return nil

	case wire.EventCharacterCreated, wire.EventCharacterUpdated:
		var p wire.CharacterEvent
		if err := decode(env, &p); err != nil {
			return err
		}
		s.UpsertCharacter(characterFromWire(p.Character))
		return nil

	case wire.EventCharacterDeleted:
		var p wire.CharacterDeleted
		if err := decode(env, &p); err != nil {
			return err
		}
		s.RemoveCharacter(p.CharacterID)
		return nil

	case wire.EventSceneCreated, wire.EventSceneUpdated:
		var p wire.SceneEvent
		if err := decode(env, &p); err != nil {
			return err
		}
		s.UpsertScene(sceneFromWire(p.Scene))
		return nil

	case wire.EventSceneDeleted:
		var p wire.SceneDeleted
		if err := decode(env, &p); err != nil {
			return err
		}
		s.RemoveScene(p.SceneID)
		return nil

	case wire.EventShotCreated, wire.EventShotUpdated:
		var p wire.ShotEvent
		if err := decode(env, &p); err != nil {
			return err
		}
		s.UpsertShot(shotFromWire(p.Shot))
		return nil

	case wire.EventShotDeleted:
		var p wire.ShotDeleted
		if err := decode(env, &p); err != nil {
			return err
		}
		s.RemoveShot(p.ShotID)
		return nil

	case wire.EventProjectUpdated:
		var p wire.ProjectUpdated
		if err := decode(env, &p); err != nil {
			return err
		}
		s.applyProjectPatch(p.Project)
		return nil

	case wire.EventDataCleared:
		var p wire.DataCleared
		if err := decode(env, &p); err != nil {
			return err
		}
		if unknown := s.ClearCollections(p.ClearedTypes); len(unknown) > 0 {
			return fmt.Errorf("data_cleared with unknown scopes %v", unknown)
		}
		return nil

	default:
		return wire.Validate(env.Type)
	}
}

func decode(env wire.Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: empty payload", env.Type)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}
	return nil
}

// startRun begins a fresh run: a visual separator in the log, progress
// back to zero, the busy flag on and any stale confirmation gate from a
// superseded run discarded.
func (s *Store) startRun(runID int64, stage string) {
	s.mu.Lock()
	s.messages = append(s.messages, newLocalMessage("system", RoleSeparator, ""))
	s.state.Progress = 0
	s.state.Generating = true
	s.state.AwaitingConfirm = false
	s.state.ConfirmAgent = ""
	s.state.RunID = runID
	if st, ok := ParseStage(stage); ok {
		s.state.Stage = st
	}
	s.notify()
	s.mu.Unlock()
}

// finishRun is the shared terminal transition for completed, failed and
// cancelled runs. progress < 0 leaves the fraction untouched.
func (s *Store) finishRun(stage Stage, progress float64, activeAgent string) {
	s.mu.Lock()
	settleAll(s.messages)
	s.state.Generating = false
	s.state.ActiveAgent = activeAgent
	s.state.AwaitingConfirm = false
	s.state.ConfirmAgent = ""
	s.state.RunID = 0
	if progress >= 0 {
		s.state.Progress = progress
	}
	if _, ok := validStages[stage]; ok {
		s.state.Stage = stage
	}
	s.notify()
	s.mu.Unlock()
}

func (s *Store) applyProjectPatch(p wire.ProjectPatch) {
	s.mu.Lock()
	if p.Title != nil {
		s.state.Title = *p.Title
	}
	if p.Story != nil {
		s.state.Story = *p.Story
	}
	if p.Summary != nil {
		s.state.Summary = *p.Summary
	}
	if p.VideoURL != nil {
		s.state.VideoURL = *p.VideoURL
	}
	s.notify()
	s.mu.Unlock()
}

func characterFromWire(c wire.Character) Character {
	return Character{ID: c.ID, Name: c.Name, Description: c.Description, ImageURL: c.ImageURL}
}

func sceneFromWire(sc wire.Scene) Scene {
	return Scene{ID: sc.ID, Order: sc.Order, Description: sc.Description}
}

func shotFromWire(sh wire.Shot) Shot {
	out := Shot{
		ID:          sh.ID,
		SceneID:     sh.SceneID,
		Order:       sh.Order,
		Description: sh.Description,
		Prompt:      sh.Prompt,
		ImageURL:    sh.ImageURL,
		VideoURL:    sh.VideoURL,
	}
	if sh.Duration != nil {
		out.Duration = *sh.Duration
	}
	return out
}

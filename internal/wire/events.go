// Package wire defines the event and command envelopes carried on a
// project's live channel, along with typed payloads for each event.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the frame exchanged on the live channel in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound event types.
const (
	EventConnected        = "connected"
	EventPong             = "pong"
	EventEcho             = "echo"
	EventRunStarted       = "run_started"
	EventRunProgress      = "run_progress"
	EventRunMessage       = "run_message"
	EventRunCompleted     = "run_completed"
	EventRunFailed        = "run_failed"
	EventRunCancelled     = "run_cancelled"
	EventAwaitingConfirm  = "run_awaiting_confirm"
	EventRunConfirmed     = "run_confirmed"
	EventAgentHandoff     = "agent_handoff"
	EventCharacterCreated = "character_created"
	EventCharacterUpdated = "character_updated"
	EventCharacterDeleted = "character_deleted"
	EventSceneCreated     = "scene_created"
	EventSceneUpdated     = "scene_updated"
	EventSceneDeleted     = "scene_deleted"
	EventShotCreated      = "shot_created"
	EventShotUpdated      = "shot_updated"
	EventShotDeleted      = "shot_deleted"
	EventProjectUpdated   = "project_updated"
	EventDataCleared      = "data_cleared"
)

var allowedEvents = map[string]struct{}{
	// connection
	EventConnected: {},
	EventPong:      {},
	EventEcho:      {},

	// run lifecycle
	EventRunStarted:      {},
	EventRunProgress:     {},
	EventRunMessage:      {},
	EventRunCompleted:    {},
	EventRunFailed:       {},
	EventRunCancelled:    {},
	EventAwaitingConfirm: {},
	EventRunConfirmed:    {},
	EventAgentHandoff:    {},

	// artifacts
	EventCharacterCreated: {},
	EventCharacterUpdated: {},
	EventCharacterDeleted: {},
	EventSceneCreated:     {},
	EventSceneUpdated:     {},
	EventSceneDeleted:     {},
	EventShotCreated:      {},
	EventShotUpdated:      {},
	EventShotDeleted:      {},
	EventProjectUpdated:   {},
	EventDataCleared:      {},
}

// Validate rejects event types that are not part of the protocol.
func Validate(eventType string) error {
	if _, ok := allowedEvents[eventType]; !ok {
		return fmt.Errorf("unknown event: %s", eventType)
	}
	return nil
}

// Decode parses a raw frame into an Envelope and validates its type.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed event frame: %w", err)
	}
	if err := Validate(env.Type); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

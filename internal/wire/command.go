package wire

import "encoding/json"

// Outbound command types.
const (
	CommandConfirm = "confirm"
	CommandPing    = "ping"
)

type confirmData struct {
	RunID    int64  `json:"run_id"`
	Feedback string `json:"feedback,omitempty"`
}

// ConfirmCommand builds the confirm envelope for a gated run. An empty
// feedback string confirms without routing through review.
func ConfirmCommand(runID int64, feedback string) Envelope {
	data, _ := json.Marshal(confirmData{RunID: runID, Feedback: feedback})
	return Envelope{Type: CommandConfirm, Data: data}
}

// PingCommand builds the application-level heartbeat frame. The server
// answers with a pong event.
func PingCommand() Envelope {
	return Envelope{Type: CommandPing}
}

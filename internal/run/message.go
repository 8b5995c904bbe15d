package run

import (
	"time"

	"github.com/google/uuid"
)

// Message roles as stored in the log.
const (
	RoleUser      = "user"
	RoleAgent     = "assistant"
	RoleSystem    = "system"
	RoleSeparator = "separator"
	RoleHandoff   = "handoff"
	RoleInfo      = "info"
	RoleError     = "error"
)

// Message is one entry in the run's chat log.
type Message struct {
	ID        string
	Agent     string
	Role      string
	Content   string
	Progress  *float64
	IsLoading bool
	CreatedAt time.Time
}

// newLocalMessage builds a client-originated log entry (separator, info,
// error, handoff). Server-originated messages keep their server fields.
func newLocalMessage(agent, role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Agent:     agent,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// settleAll is the single transition from streaming to settled. Every
// event that can end a message's live state funnels through here (or
// through the in-place replacement in AppendMessage), so the liveness
// rule is not repeated across event handlers.
func settleAll(log []Message) {
	for i := range log {
		log[i].IsLoading = false
	}
}

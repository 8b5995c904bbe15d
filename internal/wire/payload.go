package wire

// RunStarted announces a new run for a project. The old run, if any, is
// superseded rather than merged.
type RunStarted struct {
	RunID     int64  `json:"run_id"`
	ProjectID int64  `json:"project_id"`
	Stage     string `json:"stage,omitempty"`
}

// RunProgress updates the active agent and overall progress fraction.
type RunProgress struct {
	RunID        int64   `json:"run_id"`
	CurrentAgent string  `json:"current_agent"`
	Stage        string  `json:"stage,omitempty"`
	Progress     float64 `json:"progress"`
}

// RunMessage carries one chat-log entry from an agent.
type RunMessage struct {
	Agent     string   `json:"agent"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Progress  *float64 `json:"progress,omitempty"`
	IsLoading bool     `json:"isLoading,omitempty"`
}

type RunCompleted struct {
	RunID int64 `json:"run_id"`
}

type RunFailed struct {
	RunID int64  `json:"run_id"`
	Error string `json:"error"`
}

type RunCancelled struct {
	ProjectID      int64 `json:"project_id"`
	CancelledCount int   `json:"cancelled_count"`
}

// AwaitingConfirm pauses the run until the user confirms.
type AwaitingConfirm struct {
	RunID     int64  `json:"run_id"`
	Agent     string `json:"agent"`
	Message   string `json:"message"`
	Completed string `json:"completed,omitempty"`
	NextStep  string `json:"next_step,omitempty"`
	Question  string `json:"question,omitempty"`
}

type RunConfirmed struct {
	RunID int64  `json:"run_id"`
	Agent string `json:"agent"`
}

type AgentHandoff struct {
	FromAgent string `json:"from_agent"`
	ToAgent   string `json:"to_agent"`
	Message   string `json:"message"`
}

// Character is a generated character artifact.
type Character struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Scene groups an ordered run of shots.
type Scene struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Order       int    `json:"order"`
	Description string `json:"description"`
}

// Shot is one storyboard frame, optionally with a generated image and video.
type Shot struct {
	ID          int64    `json:"id"`
	SceneID     int64    `json:"scene_id"`
	Order       int      `json:"order"`
	Description string   `json:"description"`
	Prompt      string   `json:"prompt,omitempty"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
}

type CharacterEvent struct {
	Character Character `json:"character"`
}

type CharacterDeleted struct {
	CharacterID int64 `json:"character_id"`
}

type SceneEvent struct {
	Scene Scene `json:"scene"`
}

type SceneDeleted struct {
	SceneID int64 `json:"scene_id"`
}

type ShotEvent struct {
	Shot Shot `json:"shot"`
}

type ShotDeleted struct {
	ShotID int64 `json:"shot_id"`
}

// ProjectPatch carries the subset of project fields present in a
// project_updated event. Absent fields stay nil.
type ProjectPatch struct {
	ID       int64   `json:"id"`
	Title    *string `json:"title,omitempty"`
	Story    *string `json:"story,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	VideoURL *string `json:"video_url,omitempty"`
	Status   *string `json:"status,omitempty"`
}

type ProjectUpdated struct {
	Project ProjectPatch `json:"project"`
}

// DataCleared announces a bulk wipe of artifact collections before a rerun.
type DataCleared struct {
	ClearedTypes []string `json:"cleared_types"`
	StartAgent   string   `json:"start_agent,omitempty"`
	Mode         string   `json:"mode,omitempty"`
}

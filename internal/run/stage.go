// Package run holds the client-side view of one generation run: stage,
// progress, message log, confirmation gate and artifact collections. It is
// the sole writer of that state; the stream client feeds it events and
// presentation layers only read.
package run

// Stage is one of the four coarse pipeline phases shown to the user.
type Stage string

const (
	StageIdeate    Stage = "ideate"
	StageVisualize Stage = "visualize"
	StageAnimate   Stage = "animate"
	StageDeploy    Stage = "deploy"
)

var validStages = map[Stage]struct{}{
	StageIdeate:    {},
	StageVisualize: {},
	StageAnimate:   {},
	StageDeploy:    {},
}

// ParseStage normalizes a wire stage string. Unknown values map to the
// zero Stage so a bad payload never corrupts the store.
func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	_, ok := validStages[st]
	if !ok {
		return "", false
	}
	return st, true
}

var agentStages = map[string]Stage{
	"onboarding":        StageIdeate,
	"director":          StageIdeate,
	"scriptwriter":      StageIdeate,
	"review":            StageIdeate,
	"character_artist":  StageVisualize,
	"storyboard_artist": StageVisualize,
	"video_generator":   StageAnimate,
	"video_merger":      StageDeploy,
}

// AgentStage returns the stage an agent belongs to, defaulting to ideate.
func AgentStage(agent string) Stage {
	if st, ok := agentStages[agent]; ok {
		return st
	}
	return StageIdeate
}

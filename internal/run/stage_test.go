package run

import "testing"

func TestParseStage(t *testing.T) {
	for _, s := range []string{"ideate", "visualize", "animate", "deploy"} {
		if _, ok := ParseStage(s); !ok {
			t.Errorf("ParseStage(%s): expected valid", s)
		}
	}
	for _, s := range []string{"", "IDEATE", "render"} {
		if _, ok := ParseStage(s); ok {
			t.Errorf("ParseStage(%s): expected invalid", s)
		}
	}
}

func TestAgentStageMapping(t *testing.T) {
	cases := map[string]Stage{
		"onboarding":        StageIdeate,
		"director":          StageIdeate,
		"scriptwriter":      StageIdeate,
		"review":            StageIdeate,
		"character_artist":  StageVisualize,
		"storyboard_artist": StageVisualize,
		"video_generator":   StageAnimate,
		"video_merger":      StageDeploy,
	}
	for agent, want := range cases {
		if got := AgentStage(agent); got != want {
			t.Errorf("AgentStage(%s) = %s, want %s", agent, got, want)
		}
	}
}

func TestAgentStageUnknownAgentDefaultsToIdeate(t *testing.T) {
	if got := AgentStage("composer"); got != StageIdeate {
		t.Errorf("AgentStage(composer) = %s", got)
	}
}

package run

import (
	"testing"
	"time"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSetProgressClamps(t *testing.T) {
	s := NewStore(1)

	s.SetProgress(1.5)
	if p := s.State().Progress; p != 1 {
		t.Errorf("expected clamp to 1, got %f", p)
	}
	s.SetProgress(-0.2)
	if p := s.State().Progress; p != 0 {
		t.Errorf("expected clamp to 0, got %f", p)
	}
}

func TestSetStageIgnoresUnknown(t *testing.T) {
	s := NewStore(1)
	s.SetStage("visualize")
	s.SetStage("teleport")
	if st := s.State().Stage; st != StageVisualize {
		t.Errorf("expected unknown stage ignored, got %s", st)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	s := NewStore(1)
	w := s.Watch()
	defer s.Unwatch(w)

	for i := 0; i < 10; i++ {
		s.SetProgress(float64(i) / 10)
	}

	// A burst of mutations against an unread watcher leaves at most one
	// pending signal.
	<-w
	select {
	case <-w:
		t.Error("expected burst coalesced into a single pending signal")
	default:
	}
}

func TestWatcherSignalsAfterMutation(t *testing.T) {
	s := NewStore(1)
	w := s.Watch()
	defer s.Unwatch(w)

	go s.SetGenerating(true)

	waitFor(t, time.Second, func() bool {
		select {
		case <-w:
			return true
		default:
			return false
		}
	})
	if !s.State().Generating {
		t.Error("expected mutation visible after signal")
	}
}

func TestSlowWatcherDoesNotBlockMutations(t *testing.T) {
	s := NewStore(1)
	w := s.Watch() // never read
	defer s.Unwatch(w)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.SetProgress(float64(i) / 100)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutations blocked by an unread watcher")
	}
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	s := NewStore(1)
	s.AppendMessage(newLocalMessage("a", RoleAgent, "first"))
	s.AppendMessage(newLocalMessage("b", RoleAgent, "second"))
	s.AppendMessage(newLocalMessage("c", RoleAgent, "third"))

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, msgs[i].Content)
		}
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewStore(1)
	s.AppendMessage(newLocalMessage("a", RoleAgent, "original"))

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	if got := s.Messages()[0].Content; got != "original" {
		t.Errorf("caller mutation leaked into store: %q", got)
	}
}

func TestResumeRestoresSessionSlice(t *testing.T) {
	s := NewStore(1)
	s.Resume(StageAnimate, 42, true, true, "director")

	st := s.State()
	if st.Stage != StageAnimate || st.RunID != 42 || !st.Generating || !st.AwaitingConfirm || st.ConfirmAgent != "director" {
		t.Errorf("unexpected resumed state %+v", st)
	}
}

func TestCancelLocallyResetsBusyIndicators(t *testing.T) {
	s := NewStore(1)
	s.Resume(StageIdeate, 42, true, true, "director")
	m := newLocalMessage("director", RoleAgent, "streaming")
	m.IsLoading = true
	s.AppendMessage(m)

	s.CancelLocally()

	st := s.State()
	if st.Generating || st.AwaitingConfirm || st.ConfirmAgent != "" || st.RunID != 0 {
		t.Errorf("expected idle state, got %+v", st)
	}
	for _, msg := range s.Messages() {
		if msg.IsLoading {
			t.Error("expected messages settled by local cancel")
		}
	}
}

func TestUpdatedAtAdvancesMonotonically(t *testing.T) {
	s := NewStore(1)
	var prev int64
	for i := 0; i < 5; i++ {
		s.SetProgress(float64(i) / 5)
		now := s.State().UpdatedAt
		if now <= prev {
			t.Fatalf("updated-at did not advance: %d -> %d", prev, now)
		}
		prev = now
	}
}

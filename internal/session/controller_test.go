package session

import (
	"testing"

	"github.com/atomicstack/replay-control/internal/recorder"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		status recorder.Status
		want   State
	}{
		{recorder.Status{}, Idle},
		{recorder.Status{IsRecording: true}, Recording},
		{recorder.Status{IsRecording: true, IsPaused: true}, Paused},
		{recorder.Status{IsPaused: true}, Idle},
	}
	for _, tc := range cases {
		if got := Normalize(tc.status); got != tc.want {
			t.Fatalf("Normalize(%+v) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestConfirmedLifecycle(t *testing.T) {
	c := NewController()
	if !c.Allowed(Start) || c.Allowed(Stop) || c.Allowed(Pause) {
		t.Fatalf("unexpected permissions in idle")
	}

	if tr := c.Confirm(Start, false); tr.From != Idle || tr.To != Recording {
		t.Fatalf("unexpected start transition %+v", tr)
	}
	cmd, ok := c.ToggleCommand()
	if !ok || cmd != Pause {
		t.Fatalf("expected pause toggle while recording, got %s/%v", cmd, ok)
	}
	if tr := c.Confirm(Pause, true); tr.To != Paused || tr.Finished() {
		t.Fatalf("unexpected pause transition %+v", tr)
	}
	if !c.Allowed(Resume) || c.Allowed(Start) {
		t.Fatalf("unexpected permissions while paused")
	}
	tr := c.Confirm(Stop, false)
	if tr.From != Paused || tr.To != Idle || !tr.Finished() {
		t.Fatalf("expected paused->idle finish, got %+v", tr)
	}
}

func TestPauseToggleFollowsReportedFlag(t *testing.T) {
	c := NewController()
	c.Confirm(Start, false)
	c.Confirm(Resume, false)
	if c.State() != Recording {
		t.Fatalf("expected recording when service reports not paused, got %s", c.State())
	}
}

func TestObserveReconciles(t *testing.T) {
	c := NewController()
	if c.Observed() {
		t.Fatalf("controller should start unobserved")
	}
	tr := c.Observe(recorder.Status{IsRecording: true})
	if !tr.Changed() || c.State() != Recording || !c.Observed() {
		t.Fatalf("expected poll to move to recording, got %+v", tr)
	}
	if tr := c.Observe(recorder.Status{IsRecording: true}); tr.Changed() {
		t.Fatalf("repeated poll must not report a change")
	}
	if tr := c.Observe(recorder.Status{IsPaused: true}); !tr.Finished() {
		t.Fatalf("paused-without-recording should end the session, got %+v", tr)
	}
}

func TestStopAfterPollIdleDoesNotFinishTwice(t *testing.T) {
	c := NewController()
	c.Confirm(Start, false)
	first := c.Observe(recorder.Status{})
	second := c.Confirm(Stop, false)
	if !first.Finished() {
		t.Fatalf("poll should finish the session")
	}
	if second.Finished() {
		t.Fatalf("second idle transition must not finish again")
	}
}

func TestGenerationAdvancesOnConfirmOnly(t *testing.T) {
	c := NewController()
	if c.Generation() != 0 {
		t.Fatalf("expected zero generation, got %d", c.Generation())
	}
	c.Observe(recorder.Status{IsRecording: true})
	if c.Generation() != 0 {
		t.Fatalf("poll must not advance the generation")
	}
	c.Confirm(Pause, true)
	c.Confirm(Stop, false)
	if got := c.Generation(); got != 2 {
		t.Fatalf("expected generation 2 after two confirmations, got %d", got)
	}
}

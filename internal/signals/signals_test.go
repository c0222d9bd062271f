package signals

import "testing"

func TestPauseResume(t *testing.T) {
	s := NewState()
	if s.Paused() {
		t.Fatalf("expected not paused initially")
	}
	s.Pause()
	if !s.Paused() {
		t.Errorf("expected paused after Pause()")
	}
	s.Resume()
	if s.Paused() {
		t.Errorf("expected not paused after Resume()")
	}
}

func TestTerminate(t *testing.T) {
	s := NewState()
	if s.Terminating() {
		t.Fatalf("expected not terminating initially")
	}
	s.Terminate()
	if !s.Terminating() {
		t.Errorf("expected terminating after Terminate()")
	}
}

func TestInstallStop(t *testing.T) {
	s := NewState()
	stop := Install(s)
	stop()
}

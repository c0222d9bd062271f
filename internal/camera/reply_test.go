package camera

import (
	"testing"
	"time"
)

func TestParseReplyDone(t *testing.T) {
	line := `DONE {'ready': True, 'state': 'started', 'error': False, 'comment': 'started', 'date': '2025-06-24T20:15:56.00'}`
	r := ParseReply(line)
	if !r.OK {
		t.Fatalf("expected OK reply")
	}
	if !r.Bool("ready") {
		t.Errorf("expected ready=true")
	}
	if r.Bool("error") {
		t.Errorf("expected error=false")
	}
	if r.String("state") != "started" {
		t.Errorf("state = %q, want %q", r.String("state"), "started")
	}
	if r.IsError() {
		t.Errorf("expected IsError()=false for a clean DONE reply")
	}
}

func TestParseReplyError(t *testing.T) {
	line := `ERROR {'error': True, 'comment': 'bad readout'}`
	r := ParseReply(line)
	if r.OK {
		t.Fatalf("expected non-OK reply")
	}
	if !r.IsError() {
		t.Errorf("expected IsError()=true")
	}
	if r.String("comment") != "bad readout" {
		t.Errorf("comment = %q", r.String("comment"))
	}
}

func TestExposeTimeoutModes(t *testing.T) {
	exp, readout, fetch := 60.0, 40.0, 10.0

	cases := []struct {
		mode Mode
		wait bool
		want float64
	}{
		{ModeSingle, true, exp + readout + fetch + 5},
		{ModeSingle, false, exp + readout + 5},
		{ModeFirst, true, exp + readout + 5},
		{ModeFirst, false, exp + readout + 5},
		{ModeNext, true, max(exp+readout, fetch) + 5},
		{ModeNext, false, exp + readout + 5},
		{ModeLast, true, fetch + 5},
		{ModeLast, false, readout + 5},
	}
	for _, c := range cases {
		got := ExposeTimeout(c.mode, exp, readout, fetch, c.wait)
		wantDur := time.Duration(c.want * float64(time.Second))
		if got != wantDur {
			t.Errorf("ExposeTimeout(%s,wait=%v) = %v, want %v", c.mode, c.wait, got, wantDur)
		}
	}
}

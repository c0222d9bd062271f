package weather

import (
	"strings"
	"testing"
)

func TestParseAndGood(t *testing.T) {
	src := "# comment\nsite date foo 0.25 x 2.0\n"
	windows, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("len(windows) = %d, want 1", len(windows))
	}
	w := windows[0]
	if w.DayFraction != 0.25 || w.DurationHours != 2.0 {
		t.Errorf("window = %+v", w)
	}

	if !Good(windows, 0.30) {
		t.Errorf("expected 0.30 to be inside [0.25, 0.25+2/24)")
	}
	if Good(windows, 0.10) {
		t.Errorf("expected 0.10 to be outside the window")
	}
	end := w.DayFraction + w.DurationHours/24.0
	if Good(windows, end) {
		t.Errorf("expected the window end to be exclusive")
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	src := "too few cols\n1 2 3 notanumber 5 6\n1 2 3 0.5 5 1.0\n"
	windows, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("len(windows) = %d, want 1, got %+v", len(windows), windows)
	}
}

func TestGoodNoWindows(t *testing.T) {
	if Good(nil, 0.5) {
		t.Errorf("expected no windows to mean not good")
	}
}

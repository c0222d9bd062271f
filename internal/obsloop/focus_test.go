package obsloop

import (
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func TestFocusSequenceValueCenteredOnDefault(t *testing.T) {
	f := &field.Field{NRequired: 5, FocusDefault: 10.0, FocusIncrement: 0.1}
	got := focusSequenceValue(f, 2) // middle of a 5-step sequence
	if got != 10.0 {
		t.Errorf("middle step = %v, want 10.0", got)
	}
	if got := focusSequenceValue(f, 0); got != 9.8 {
		t.Errorf("first step = %v, want 9.8", got)
	}
	if got := focusSequenceValue(f, 4); got != 10.2 {
		t.Errorf("last step = %v, want 10.2", got)
	}
}

func TestBestFocusMedianOdd(t *testing.T) {
	f := &field.Field{Visits: []field.Visit{
		{FocusMM: 10.2}, {FocusMM: 9.8}, {FocusMM: 10.0}, {FocusMM: 10.1}, {FocusMM: 9.9},
	}}
	got, err := bestFocus(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10.0 {
		t.Errorf("median = %v, want 10.0", got)
	}
}

func TestBestFocusNoVisitsIsError(t *testing.T) {
	f := &field.Field{}
	if _, err := bestFocus(f); err == nil {
		t.Errorf("expected error for a field with no recorded visits")
	}
}

package store

import (
	"testing"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func TestNewVisitRepository(t *testing.T) {
	r := NewVisitRepository(nil)
	if r == nil {
		t.Fatal("expected a non-nil repository")
	}
}

func TestRecordVisitObservedAtMatchesJD(t *testing.T) {
	// RecordVisit derives observed_at from the visit's JD for easy cutoff
	// queries in CleanupOldData; the Unix epoch's JD (2440587.5) should map
	// to the Unix epoch.
	v := field.Visit{JD: 2440587.5}
	observedAt := time.Unix(0, 0).UTC().Add(time.Duration((v.JD - 2440587.5) * 24 * float64(time.Hour)))
	if !observedAt.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("expected JD=2440587.5 to map to the Unix epoch, got %v", observedAt)
	}
}

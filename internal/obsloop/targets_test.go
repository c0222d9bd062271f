package obsloop

import (
	"math"
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func TestKindTargetFocusAndOffset(t *testing.T) {
	for _, k := range []field.Kind{field.KindFocus, field.KindOffsetPointing} {
		f := &field.Field{Kind: k}
		ra, dec, ok := kindTarget(f, 10.0)
		if !ok {
			t.Fatalf("%v: expected ok=true", k)
		}
		if ra != 11.0 || dec != 0.0 {
			t.Errorf("%v: (ra,dec) = (%v,%v), want (11,0)", k, ra, dec)
		}
	}
}

func TestKindTargetEveningFlatNearBaseWithDither(t *testing.T) {
	f := &field.Field{Kind: field.KindEveningFlat}
	ra, dec, ok := kindTarget(f, 22.0)
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if math.Abs(ra-1.0) > FlatDitherStepDeg/15.0+1e-12 {
		t.Errorf("ra = %v, want near 1.0", ra)
	}
	if math.Abs(dec) > FlatDitherStepDeg {
		t.Errorf("dec = %v, want near 0.0", dec)
	}
}

func TestKindTargetMorningFlatWrapsNegativeWithDither(t *testing.T) {
	f := &field.Field{Kind: field.KindMorningFlat}
	ra, dec, ok := kindTarget(f, 2.0)
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if math.Abs(ra-22.0) > FlatDitherStepDeg/15.0+1e-12 {
		t.Errorf("ra = %v, want near 22.0", ra)
	}
	if math.Abs(dec) > FlatDitherStepDeg {
		t.Errorf("dec = %v, want near 0.0", dec)
	}
}

func TestKindTargetDomeFlatDithersAroundOwnPosition(t *testing.T) {
	f := &field.Field{Kind: field.KindDomeFlat, RAHours: 5.0, DecDeg: 0.0}
	ra, dec, ok := kindTarget(f, 10.0)
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if math.Abs(ra-5.0) > FlatDitherStepDeg/15.0+1e-12 {
		t.Errorf("ra = %v, want near 5.0", ra)
	}
	if math.Abs(dec) > FlatDitherStepDeg {
		t.Errorf("dec = %v, want near 0.0", dec)
	}
}

func TestKindTargetDitherAdvancesWithVisitCount(t *testing.T) {
	f1 := &field.Field{Kind: field.KindEveningFlat}
	f2 := &field.Field{Kind: field.KindEveningFlat, Visits: []field.Visit{{}}}
	ra1, dec1, _ := kindTarget(f1, 22.0)
	ra2, dec2, _ := kindTarget(f2, 22.0)
	if ra1 == ra2 && dec1 == dec2 {
		t.Errorf("expected dither offset to change between visit 1 and visit 2")
	}
}

func TestKindTargetSkyKeepsOwnPosition(t *testing.T) {
	f := &field.Field{Kind: field.KindSky}
	_, _, ok := kindTarget(f, 10.0)
	if ok {
		t.Errorf("expected Sky kind to report ok=false (no override)")
	}
}

func TestNeedsSlew(t *testing.T) {
	if needsSlew(field.KindDark) || needsSlew(field.KindDomeFlat) {
		t.Errorf("Dark/DomeFlat should not need a slew")
	}
	if !needsSlew(field.KindSky) || !needsSlew(field.KindFocus) {
		t.Errorf("Sky/Focus should need a slew")
	}
}

func TestSplitExposureCountNoSplitWhenEastOrShort(t *testing.T) {
	if n := splitExposureCount(-1.0, 2.0); n != 1 {
		t.Errorf("east of meridian: n = %d, want 1", n)
	}
	if n := splitExposureCount(1.0, 0.5); n != 1 {
		t.Errorf("short exposure: n = %d, want 1", n)
	}
}

func TestSplitExposureCountThreeSubExposures(t *testing.T) {
	const longExpt = 1.0 // field.LongExposureHours
	n := splitExposureCount(1.0, 2*longExpt+0.001)
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
}

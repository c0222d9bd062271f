package obsloop

import (
	"math"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

// kindTarget returns the kind-specific RA (hours)/Dec (degrees) override for
// non-Sky pointing kinds, computed from the current LST, per spec.md §4.4:
// Focus and Offset point at LST+1h/Dec 0; EveningFlat at LST+3h/Dec 0;
// MorningFlat at LST-4h/Dec 0. ok is false for kinds that keep the field's
// own RA/Dec (Sky, Dark).
//
// Flat-field kinds walk ditherOffset's square-spiral grid by visit count so
// repeated flats don't stack on the same pixels, per
// _examples/original_source/src/scheduler.c:get_dither.
func kindTarget(f *field.Field, lstHours float64) (raHours, decDeg float64, ok bool) {
	iteration := len(f.Visits) + 1
	raOffsetDeg, decOffsetDeg := ditherOffset(iteration, FlatDitherStepDeg)
	raOffsetHours := raOffsetDeg / 15.0

	switch f.Kind {
	case field.KindFocus, field.KindOffsetPointing:
		return normalizeRA(lstHours + 1.0), 0.0, true
	case field.KindEveningFlat:
		return normalizeRA(lstHours + 3.0 + raOffsetHours), decOffsetDeg, true
	case field.KindMorningFlat:
		return normalizeRA(lstHours - 4.0 + raOffsetHours), decOffsetDeg, true
	case field.KindDomeFlat:
		return normalizeRA(f.RAHours + raOffsetHours), f.DecDeg + decOffsetDeg, true
	default:
		return 0, 0, false
	}
}

func normalizeRA(h float64) float64 {
	for h < 0 {
		h += 24
	}
	for h >= 24 {
		h -= 24
	}
	return h
}

// needsSlew reports whether observe() should slew the telescope before
// exposing: Dark and DomeFlat skip slewing entirely, per spec.md §4.4.
func needsSlew(kind field.Kind) bool {
	return kind != field.KindDark && kind != field.KindDomeFlat
}

// splitExposureCount returns how many equal sub-exposures an exposure
// should be split into, per spec.md §4.4: when ha>0 and exposure exceeds
// LONG_EXPT, split into ceil(exposure/LONG_EXPT) equal parts; otherwise a
// single exposure. Mirrors
// _examples/original_source/src/scheduler.c's num_exposures = 1 +
// floor(expt/LONG_EXPTIME) when ha>0 (an exposure exactly on a multiple of
// LONG_EXPTIME still gets one extra split, matching the original's strict
// floor-plus-one rather than a bare ceiling).
func splitExposureCount(haHours, exposureHours float64) int {
	if !(haHours > 0.0 && exposureHours > field.LongExposureHours) {
		return 1
	}
	n := 1 + int(math.Floor(exposureHours/field.LongExposureHours))
	if n < 1 {
		n = 1
	}
	return n
}

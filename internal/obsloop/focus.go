package obsloop

import (
	"fmt"
	"sort"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

// focusSequenceValue returns the commanded focus position (mm) for the
// visitIndex'th (0-based) exposure of a Focus-kind field: a symmetric
// stepped sequence centered on FocusDefault, spaced by FocusIncrement, per
// scheduler.h's NOMINAL_FOCUS_START/INCREMENT/DEFAULT convention.
func focusSequenceValue(f *field.Field, visitIndex int) float64 {
	center := float64(f.NRequired-1) / 2.0
	return f.FocusDefault + (float64(visitIndex)-center)*f.FocusIncrement
}

// bestFocus picks the median commanded focus value across a completed
// Focus sequence's visits, per spec.md §4.4 step 5's "median-of-5 best
// focus". Real image-quality-driven focus curve fitting is out of scope
// (Non-goal: no image processing), so the median is taken over the
// commanded sequence values themselves rather than a measured star-width
// minimum -- this still exercises the telescope focus channel and the
// same "settle on a single value after a stepped sequence" shape the
// original used.
func bestFocus(f *field.Field) (float64, error) {
	if len(f.Visits) == 0 {
		return 0, fmt.Errorf("obsloop: no focus visits recorded")
	}
	values := make([]float64, len(f.Visits))
	for i, v := range f.Visits {
		values[i] = v.FocusMM
	}
	sort.Float64s(values)
	return values[len(values)/2], nil
}

// handleFocusSequence settles the telescope on the best focus once a
// Focus-kind field has completed all its visits, per spec.md §4.4 step 5.
// On failure to converge it reverts to the field's default focus for the
// rest of the night (FocusError per spec.md §7), but never aborts the loop.
func (c *SchedulerContext) handleFocusSequence(f *field.Field) {
	if f.Kind != field.KindFocus || !f.IsTerminal() {
		return
	}
	best, err := bestFocus(f)
	if err != nil {
		c.logf(0, "focus sequence produced no usable value: %v", err)
		best = f.FocusDefault
	}
	if err := c.Telescope.SetFocus(best, telescopeTimeout); err != nil {
		c.logf(0, "focus did not converge on %.4f, reverting to default %.4f: %v", best, f.FocusDefault, err)
		if err := c.Telescope.SetFocus(f.FocusDefault, telescopeTimeout); err != nil {
			c.logf(0, "reverting to default focus also failed: %v", err)
		}
		c.focusGood = false
		return
	}
	c.focusDefault = best
	c.focusGood = true
}

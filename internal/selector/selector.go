// Package selector implements the deterministic multi-tier field selector,
// per spec.md §4.3. It owns no state of its own; every call takes the
// current field roster and time and returns an index (or none).
package selector

import (
	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/night"
)

// MinExecutionTimeHours mirrors night.MinExecutionTime, used by the
// status-update procedure's "not yet time for next visit" check.
const MinExecutionTimeHours = night.MinExecutionTime

// UpdateStatus runs the status-update procedure from spec.md §4.3 on a
// single field. Calling it twice with the same jd must be idempotent (see
// spec.md §8's idempotence property), which holds here because every branch
// is a pure function of the field's own fields and jd/badWeather.
func UpdateStatus(f *field.Field, jd float64, badWeather bool) {
	if !f.Doable {
		f.Status = field.NotDoable
		return
	}
	if f.NDone >= f.NRequired {
		f.Doable = false
		f.Status = field.NotDoable
		return
	}
	if jd < f.JDRise || jd > f.JDSet {
		f.Status = field.NotDoable
		if jd > f.JDSet {
			f.Doable = false
		}
		return
	}
	if f.JDNext-jd > MinExecutionTimeHours/24.0 {
		f.Status = field.NotDoable
		return
	}

	switch f.Kind {
	case field.KindDark, field.KindDomeFlat:
		f.Status = field.DoNow
		return
	case field.KindFocus, field.KindOffsetPointing, field.KindEveningFlat, field.KindMorningFlat:
		if badWeather {
			f.Status = field.NotDoable
		} else {
			f.Status = field.DoNow
		}
		return
	}

	// Sky: recompute the time budget and classify Ready vs TooLate.
	f.TimeReqHr = float64(f.NRequired-f.NDone) * f.IntervalHours
	f.TimeUpHr = (f.JDSet - jd) * 24.0
	if f.TimeUpHr < 0 {
		f.TimeUpHr = 0
	}
	f.TimeLeftHr = f.TimeUpHr - f.TimeReqHr

	if f.TimeLeftHr < 0 {
		f.Status = field.TooLate
	} else {
		f.Status = field.Ready
	}
}

// shortenInterval implements the "interval shortening" mechanic from
// spec.md §4.3 tiers 2 and 6: set a new interval = time_up/(n_required -
// n_done); succeed (and flip the field to Ready) if it is still at least
// MinIntervalHours, otherwise mark the field permanently not-doable.
func shortenInterval(f *field.Field) bool {
	remaining := f.NRequired - f.NDone
	if remaining <= 0 {
		return false
	}
	newInterval := f.TimeUpHr / float64(remaining)
	if newInterval < field.MinIntervalHours {
		f.Doable = false
		f.Status = field.NotDoable
		return false
	}
	f.IntervalHours = newInterval
	f.Status = field.Ready
	return true
}

// SelectNext implements spec.md §4.3's tiered selection. It first runs
// UpdateStatus on every field, then evaluates the seven tiers in order,
// returning the index of the first candidate found (and -1, false if none).
// lastIndex is the index of the field observed immediately before this
// call (-1 if none), used by the paired-field-bias tier.
func SelectNext(fields []*field.Field, nowJD float64, badWeather bool, lastIndex int) (int, bool) {
	for _, f := range fields {
		UpdateStatus(f, nowJD, badWeather)
	}

	if idx, ok := tierReadyMustDo(fields); ok {
		return stamp(fields, idx, field.LeastTimeReadyMustDo), true
	}
	if idx, ok := tierTooLateMustDo(fields); ok {
		return stamp(fields, idx, field.LeastTimeLateMustDo), true
	}
	if idx, ok := tierFirstDoNow(fields); ok {
		reason := field.FirstDoNow
		switch fields[idx].Kind {
		case field.KindEveningFlat, field.KindMorningFlat, field.KindDomeFlat:
			reason = field.FirstDoNowFlat
		case field.KindDark:
			reason = field.FirstDoNowDark
		}
		return stamp(fields, idx, reason), true
	}
	if idx, ok := tierPairedBias(fields, lastIndex); ok {
		reason := field.FirstReadyPair
		if fields[idx].Status == field.TooLate {
			reason = field.FirstLatePair
		}
		return stamp(fields, idx, reason), true
	}
	if idx, ok := tierReadyNonMustDo(fields); ok {
		return stamp(fields, idx, field.LeastTimeReady), true
	}
	if idx, ok := tierTooLateNonMustDo(fields); ok {
		return stamp(fields, idx, field.MostTimeReadyLate), true
	}

	return -1, false
}

func stamp(fields []*field.Field, idx int, reason field.SelectionReason) int {
	fields[idx].SelectionReason = reason
	return idx
}

// tierReadyMustDo is spec.md §4.3 tier 1: Ready MustDo with least time_left,
// ties broken by lowest visits-remaining then lowest index.
func tierReadyMustDo(fields []*field.Field) (int, bool) {
	best := -1
	for i, f := range fields {
		if f.Survey != field.SurveyMustDo || f.Status != field.Ready {
			continue
		}
		if best == -1 || better(f, fields[best]) {
			best = i
		}
	}
	return best, best != -1
}

func better(a, b *field.Field) bool {
	if a.TimeLeftHr != b.TimeLeftHr {
		return a.TimeLeftHr < b.TimeLeftHr
	}
	remA, remB := a.NRequired-a.NDone, b.NRequired-b.NDone
	if remA != remB {
		return remA < remB
	}
	return a.Index < b.Index
}

// tierTooLateMustDo is spec.md §4.3 tier 2: the MustDo TooLate field with
// smallest time_left, with interval shortening attempted before it can be
// returned.
func tierTooLateMustDo(fields []*field.Field) (int, bool) {
	best := -1
	for i, f := range fields {
		if f.Survey != field.SurveyMustDo || f.Status != field.TooLate {
			continue
		}
		if best == -1 || better(f, fields[best]) {
			best = i
		}
	}
	if best == -1 {
		return -1, false
	}
	if !shortenInterval(fields[best]) {
		return -1, false
	}
	return best, true
}

// tierFirstDoNow is spec.md §4.3 tier 3: prefer any flat, then any dark,
// then the first DoNow in sequence order.
func tierFirstDoNow(fields []*field.Field) (int, bool) {
	flat, dark, first := -1, -1, -1
	for i, f := range fields {
		if f.Status != field.DoNow {
			continue
		}
		if first == -1 {
			first = i
		}
		switch f.Kind {
		case field.KindEveningFlat, field.KindMorningFlat, field.KindDomeFlat:
			if flat == -1 {
				flat = i
			}
		case field.KindDark:
			if dark == -1 {
				dark = i
			}
		}
	}
	if flat != -1 {
		return flat, true
	}
	if dark != -1 {
		return dark, true
	}
	if first != -1 {
		return first, true
	}
	return -1, false
}

// tierPairedBias is spec.md §4.3 tier 4: if the field observed immediately
// before exists and the next field in sequence order is its dither pair,
// prefer it (shortening its interval if TooLate).
func tierPairedBias(fields []*field.Field, lastIndex int) (int, bool) {
	if lastIndex < 0 || lastIndex+1 >= len(fields) {
		return -1, false
	}
	prev := fields[lastIndex]
	next := fields[lastIndex+1]
	if !prev.IsPairedWith(next) {
		return -1, false
	}
	switch next.Status {
	case field.Ready, field.DoNow:
		return lastIndex + 1, true
	case field.TooLate:
		if shortenInterval(next) {
			return lastIndex + 1, true
		}
	}
	return -1, false
}

// tierReadyNonMustDo is spec.md §4.3 tier 5.
func tierReadyNonMustDo(fields []*field.Field) (int, bool) {
	best := -1
	for i, f := range fields {
		if f.Survey == field.SurveyMustDo || f.Status != field.Ready {
			continue
		}
		if best == -1 || better(f, fields[best]) {
			best = i
		}
	}
	return best, best != -1
}

// tierTooLateNonMustDo is spec.md §4.3 tier 6: greatest time_left wins (the
// least-overdue field), ties broken by lowest index; interval shortening is
// attempted before returning.
func tierTooLateNonMustDo(fields []*field.Field) (int, bool) {
	best := -1
	for i, f := range fields {
		if f.Survey == field.SurveyMustDo || f.Status != field.TooLate {
			continue
		}
		if best == -1 || f.TimeLeftHr > fields[best].TimeLeftHr {
			best = i
		}
	}
	if best == -1 {
		return -1, false
	}
	if !shortenInterval(fields[best]) {
		return -1, false
	}
	return best, true
}

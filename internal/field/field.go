// Package field defines the Field entity and its lifecycle, per spec.md §3:
// an intended observation at a celestial position, scheduled for repeated
// visits, carrying a feasibility cache, progress counters, and per-visit
// history. Grounded in _examples/original_source/src/scheduler.h's Field
// struct and Selection_Code enum.
package field

import (
	"fmt"
	"math"
)

// MaxVisits bounds the per-visit history arrays (scheduler.h:MAX_OBS_PER_FIELD).
const MaxVisits = 100

// MaxFields bounds the size of a sequence file (scheduler.h:MAX_FIELDS).
const MaxFields = 500

// Plan bounds, ported from scheduler.h.
const (
	MaxExposureSeconds = 1000.0
	MaxIntervalHours   = 43200.0 / 3600.0
	MinIntervalHours   = 0.0
	MinDecDeg          = -89.0
	MaxDecDeg          = 30.0
	MinMoonSeparation  = 15.0 // degrees
	MaxBadReadouts     = 3
	LongExposureHours  = 3600.0 / 3600.0
	ClearIntervalHours = 0.1
	// PairDitherStepDeg is the RA gap (projected on the sky, corrected by
	// cos(dec)) that identifies two Sky fields as a dither pair, per
	// spec.md §3 and the test scenario in §8.3.
	PairDitherStepDeg = 0.5
)

// Kind is the closed set of field kinds spec.md §3 names. Evening/morning
// flats get their own explicit values rather than a sentinel declination,
// per the Open Question resolution in SPEC_FULL.md/DESIGN.md.
type Kind int

const (
	KindSky Kind = iota
	KindDark
	KindDomeFlat
	KindEveningFlat
	KindMorningFlat
	KindFocus
	KindOffsetPointing
)

func (k Kind) String() string {
	switch k {
	case KindSky:
		return "Sky"
	case KindDark:
		return "Dark"
	case KindDomeFlat:
		return "DomeFlat"
	case KindEveningFlat:
		return "EveningFlat"
	case KindMorningFlat:
		return "MorningFlat"
	case KindFocus:
		return "Focus"
	case KindOffsetPointing:
		return "OffsetPointing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SurveyClass is the closed set of survey classes spec.md §3 names.
type SurveyClass int

const (
	SurveyNone SurveyClass = iota
	SurveyTNO
	SurveySNe
	SurveyMustDo
)

func (c SurveyClass) String() string {
	switch c {
	case SurveyNone:
		return "None"
	case SurveyTNO:
		return "TNO"
	case SurveySNe:
		return "SNe"
	case SurveyMustDo:
		return "MustDo"
	default:
		return fmt.Sprintf("SurveyClass(%d)", int(c))
	}
}

// Status is the scheduler-transient status a field carries between
// selection passes, per spec.md §3/§4.3.
type Status int

const (
	NotDoable Status = iota
	Ready
	DoNow
	TooLate
)

func (s Status) String() string {
	switch s {
	case NotDoable:
		return "NotDoable"
	case Ready:
		return "Ready"
	case DoNow:
		return "DoNow"
	case TooLate:
		return "TooLate"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// SelectionReason mirrors scheduler.h's Selection_Code, preserved in the
// original declaration order since the selector's tier ordering depends on
// it for logging fidelity.
type SelectionReason int

const (
	NotSelected SelectionReason = iota
	FirstDoNowFlat
	FirstDoNowDark
	FirstDoNow
	FirstReadyPair
	FirstLatePair
	FirstNotReadyLatePair
	FirstNotReadyNotLatePair
	LeastTimeLateMustDo
	LeastTimeReadyMustDo
	LeastTimeReady
	MostTimeReadyLate
)

func (r SelectionReason) String() string {
	switch r {
	case NotSelected:
		return "NOT_SELECTED"
	case FirstDoNowFlat:
		return "FIRST_DO_NOW_FLAT"
	case FirstDoNowDark:
		return "FIRST_DO_NOW_DARK"
	case FirstDoNow:
		return "FIRST_DO_NOW"
	case FirstReadyPair:
		return "FIRST_READY_PAIR"
	case FirstLatePair:
		return "FIRST_LATE_PAIR"
	case FirstNotReadyLatePair:
		return "FIRST_NOT_READY_LATE_PAIR"
	case FirstNotReadyNotLatePair:
		return "FIRST_NOT_READY_NOT_LATE_PAIR"
	case LeastTimeLateMustDo:
		return "LEAST_TIME_LATE_MUST_DO"
	case LeastTimeReadyMustDo:
		return "LEAST_TIME_READY_MUST_DO"
	case LeastTimeReady:
		return "LEAST_TIME_READY"
	case MostTimeReadyLate:
		return "MOST_TIME_READY_LATE"
	default:
		return fmt.Sprintf("SelectionReason(%d)", int(r))
	}
}

// Visit is one completed exposure's recorded history, per scheduler.h's
// parallel ut/jd/lst/ha/am/actual_expt/filename arrays -- kept here as a
// single struct-per-visit slice instead, which is equivalent and far less
// error-prone to index.
type Visit struct {
	UT           float64
	JD           float64
	LST          float64
	HA           float64
	Airmass      float64
	ActualExptHr float64
	FocusMM      float64 // commanded focus position; Focus-kind visits only
	Filename     string
}

// Field is the central scheduling entity, per spec.md §3.
type Field struct {
	// Identity
	Index      int // sequence index (0-based position in the roster)
	LineNumber int // source line number, for log reproduction
	SourceLine string

	// Position (decimal hours / degrees)
	RAHours float64
	DecDeg  float64
	Epoch   float64

	GalLongDeg, GalLatDeg float64
	EclLongDeg, EclLatDeg float64

	// Plan
	Kind              Kind
	Survey            SurveyClass
	ExposureSec       float64
	IntervalHours     float64
	NRequired         int
	FocusIncrement    float64 // Focus-kind only
	FocusDefault      float64 // Focus-kind only
	Filter            string

	// Feasibility cache
	Doable bool
	JDRise float64
	JDSet  float64

	// Progress
	NDone        int
	JDNext       float64
	TimeUpHr     float64
	TimeReqHr    float64
	TimeLeftHr   float64
	BadReadCount int

	// Per-visit history, bounded by MaxVisits
	Visits []Visit

	// Scheduler transient
	Status          Status
	SelectionReason SelectionReason
}

// IsTerminal reports whether this field has completed all required visits.
func (f *Field) IsTerminal() bool {
	return f.NDone >= f.NRequired
}

// RecordVisit appends a completed visit to the history, bounded by
// MaxVisits (extra visits past the bound are dropped, matching the
// original's fixed-size array semantics).
func (f *Field) RecordVisit(v Visit) {
	if len(f.Visits) >= MaxVisits {
		return
	}
	f.Visits = append(f.Visits, v)
}

// StatusChar returns the compact per-field status character the survey.hist
// log line uses: '.' once all required visits are done, otherwise the digit
// count of visits completed so far. Grounded in scheduler_status.c's
// get_field_status_string / print_history.
func (f *Field) StatusChar() byte {
	if f.NDone >= f.NRequired {
		return '.'
	}
	if f.NDone < 0 {
		return '0'
	}
	if f.NDone > 9 {
		return '9'
	}
	return byte('0' + f.NDone)
}

// IsPairedWith reports whether other is this field's dither pair: a Sky
// field at the same declination whose RA differs by exactly one dither step
// (PairDitherStepDeg degrees on the sky, i.e. PairDitherStepDeg/15/cos(dec)
// hours of RA), per spec.md §3 and its §8.3 test scenario.
func (f *Field) IsPairedWith(other *Field) bool {
	if f.Kind != KindSky || other.Kind != KindSky {
		return false
	}
	if f.DecDeg != other.DecDeg {
		return false
	}
	cosDec := cosDeg(f.DecDeg)
	if cosDec == 0 {
		return false
	}
	wantRAStepHours := (PairDitherStepDeg / 15.0) / cosDec
	gotRAStepHours := other.RAHours - f.RAHours
	const tol = 1e-6
	return math.Abs(gotRAStepHours-wantRAStepHours) < tol
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180.0)
}

package selector

import (
	"math"
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func skyField(idx int, ra, dec, interval float64, nRequired int, survey field.SurveyClass, jdRise, jdSet float64) *field.Field {
	return &field.Field{
		Index:         idx,
		Kind:          field.KindSky,
		Survey:        survey,
		RAHours:       ra,
		DecDeg:        dec,
		IntervalHours: interval,
		NRequired:     nRequired,
		Doable:        true,
		JDRise:        jdRise,
		JDSet:         jdSet,
		JDNext:        jdRise,
	}
}

func TestUpdateStatusNotDoableTerminates(t *testing.T) {
	f := skyField(0, 1, 1, 1, 3, field.SurveyNone, 0, 10)
	f.NDone = 3
	UpdateStatus(f, 5, false)
	if f.Doable {
		t.Errorf("expected Doable=false once n_done==n_required")
	}
	if f.Status != field.NotDoable {
		t.Errorf("expected NotDoable, got %v", f.Status)
	}
	status1 := f.Status
	UpdateStatus(f, 5, false)
	if f.Status != status1 {
		t.Errorf("UpdateStatus is not idempotent: %v != %v", f.Status, status1)
	}
}

func TestUpdateStatusDarkIsDoNow(t *testing.T) {
	f := &field.Field{Kind: field.KindDark, Doable: true, JDRise: 0, JDSet: 10, JDNext: 0, NRequired: 3}
	UpdateStatus(f, 1, false)
	if f.Status != field.DoNow {
		t.Errorf("expected Dark field DoNow, got %v", f.Status)
	}
}

func TestUpdateStatusFlatBadWeather(t *testing.T) {
	f := &field.Field{Kind: field.KindEveningFlat, Doable: true, JDRise: 0, JDSet: 10, JDNext: 0, NRequired: 1}
	UpdateStatus(f, 1, true)
	if f.Status != field.NotDoable {
		t.Errorf("expected flat NotDoable in bad weather, got %v", f.Status)
	}
	UpdateStatus(f, 1, false)
	if f.Status != field.DoNow {
		t.Errorf("expected flat DoNow in good weather, got %v", f.Status)
	}
}

func TestUpdateStatusReadyVsTooLate(t *testing.T) {
	// interval=1h, n_required=3, n_done=0: time_required=3h.
	// jd_set-jd = 2h worth of days -> time_up=2h -> time_left=-1 -> TooLate.
	f := skyField(0, 1, 1, 1.0, 3, field.SurveyNone, 0, 2.0/24.0)
	UpdateStatus(f, 0, false)
	if f.Status != field.TooLate {
		t.Errorf("expected TooLate, got %v (time_left=%v)", f.Status, f.TimeLeftHr)
	}

	// time_up=4h >= time_required=3h -> Ready.
	f2 := skyField(0, 1, 1, 1.0, 3, field.SurveyNone, 0, 4.0/24.0)
	UpdateStatus(f2, 0, false)
	if f2.Status != field.Ready {
		t.Errorf("expected Ready, got %v (time_left=%v)", f2.Status, f2.TimeLeftHr)
	}
}

func TestSelectNextPrefersReadyMustDo(t *testing.T) {
	mustDo := skyField(0, 1, 1, 1.0, 3, field.SurveyMustDo, 0, 10.0/24.0)
	plain := skyField(1, 2, 1, 1.0, 3, field.SurveyNone, 0, 10.0/24.0)
	fields := []*field.Field{mustDo, plain}

	idx, ok := SelectNext(fields, 0, false, -1)
	if !ok || idx != 0 {
		t.Fatalf("expected MustDo field (0) selected, got idx=%d ok=%v", idx, ok)
	}
	if fields[0].SelectionReason != field.LeastTimeReadyMustDo {
		t.Errorf("expected LeastTimeReadyMustDo reason, got %v", fields[0].SelectionReason)
	}
}

func TestSelectNextDoNowFlatBeatsDark(t *testing.T) {
	dark := &field.Field{Index: 0, Kind: field.KindDark, Doable: true, JDRise: 0, JDSet: 10, JDNext: 0, NRequired: 3}
	flat := &field.Field{Index: 1, Kind: field.KindDomeFlat, Doable: true, JDRise: 0, JDSet: 10, JDNext: 0, NRequired: 3}
	fields := []*field.Field{dark, flat}

	idx, ok := SelectNext(fields, 0, false, -1)
	if !ok || idx != 1 {
		t.Fatalf("expected flat (1) preferred over dark (0), got idx=%d ok=%v", idx, ok)
	}
}

func TestSelectNextTooLateMustDoShortensInterval(t *testing.T) {
	// time_up = 1.5h, n_required-n_done = 3 -> base interval 1h makes
	// time_required = 3h > time_up -> TooLate. Shortened interval =
	// 1.5/3 = 0.5h >= MinIntervalHours(0), so it becomes Ready and is
	// selected with LeastTimeLateMustDo.
	f := skyField(0, 18.0, 0, 1.0, 3, field.SurveyMustDo, 0, 1.5/24.0)
	fields := []*field.Field{f}

	idx, ok := SelectNext(fields, 0, false, -1)
	if !ok || idx != 0 {
		t.Fatalf("expected the shortened MustDo field selected, got idx=%d ok=%v", idx, ok)
	}
	if fields[0].SelectionReason != field.LeastTimeLateMustDo {
		t.Errorf("expected LEAST_TIME_LATE_MUST_DO, got %v", fields[0].SelectionReason)
	}
	wantInterval := 1.5 / 3.0
	if diff := fields[0].IntervalHours - wantInterval; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("interval not shortened correctly: got %v want %v", fields[0].IntervalHours, wantInterval)
	}
}

func TestSelectNextPairedBias(t *testing.T) {
	a := skyField(0, 3.5, 10, 1.0, 1, field.SurveyNone, 0, 10.0/24.0)
	raStep := (field.PairDitherStepDeg / 15.0) / cosDegForTest(10.0)
	b := skyField(1, 3.5+raStep, 10, 1.0, 1, field.SurveyNone, 0, 10.0/24.0)
	// A third field with a smaller time_left that would otherwise win tier 5.
	c := skyField(2, 8.0, -5, 1.0, 1, field.SurveyNone, 0, 2.0/24.0)
	fields := []*field.Field{a, b, c}

	// lastIndex=0 simulates having just observed field a.
	idx, ok := SelectNext(fields, 0, false, 0)
	if !ok || idx != 1 {
		t.Fatalf("expected paired field (1) selected after observing field 0, got idx=%d ok=%v", idx, ok)
	}
}

func cosDegForTest(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180.0)
}

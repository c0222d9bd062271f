package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func sampleFields() []*field.Field {
	f1 := &field.Field{
		Index:         0,
		LineNumber:    3,
		SourceLine:    "Y 12.345 -10.5 2000.0 300 0.5 3",
		RAHours:       12.345,
		DecDeg:        -10.5,
		Epoch:         2000.0,
		Kind:          field.KindSky,
		Survey:        field.SurveyMustDo,
		ExposureSec:   300,
		IntervalHours: 0.5,
		NRequired:     3,
		Filter:        "r",
		Doable:        true,
		JDRise:        2460000.1,
		JDSet:         2460000.6,
		NDone:         1,
		JDNext:        2460000.3,
		TimeUpHr:      5.0,
		TimeReqHr:     1.0,
		TimeLeftHr:    4.0,
		BadReadCount:  1,
		Status:        field.Ready,
		SelectionReason: field.LeastTimeReady,
		Visits: []field.Visit{
			{UT: 1.5, JD: 2460000.2, LST: 12.5, HA: 0.1, Airmass: 1.2, ActualExptHr: 0.083, Filename: "fld000001"},
			{UT: 2.5, JD: 2460000.3, LST: 13.5, HA: 1.1, Airmass: 1.4, ActualExptHr: 0.083, Filename: "fld000002"},
		},
	}
	f2 := &field.Field{
		Index:          1,
		LineNumber:     4,
		SourceLine:     "F 0.0 0.0 2000.0 10 0 1 0.01 26.0",
		Kind:           field.KindFocus,
		FocusIncrement: 0.01,
		FocusDefault:   26.0,
		NRequired:      1,
		Doable:         true,
		Status:         field.DoNow,
	}
	return []*field.Field{f1, f2}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheduler.bin")

	fields := sampleFields()
	date := time.Date(2026, 7, 31, 20, 15, 56, 0, time.UTC)

	if err := Write(path, fields, date); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, gotDate, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !gotDate.Equal(date) {
		t.Errorf("date = %v, want %v", gotDate, date)
	}
	if len(got) != len(fields) {
		t.Fatalf("len(fields) = %d, want %d", len(got), len(fields))
	}

	for i, want := range fields {
		g := got[i]
		if g.SourceLine != want.SourceLine {
			t.Errorf("field %d SourceLine = %q, want %q", i, g.SourceLine, want.SourceLine)
		}
		if g.Filter != want.Filter {
			t.Errorf("field %d Filter = %q, want %q", i, g.Filter, want.Filter)
		}
		if g.RAHours != want.RAHours || g.DecDeg != want.DecDeg {
			t.Errorf("field %d position = (%v,%v), want (%v,%v)", i, g.RAHours, g.DecDeg, want.RAHours, want.DecDeg)
		}
		if g.Kind != want.Kind || g.Survey != want.Survey {
			t.Errorf("field %d kind/survey = (%v,%v), want (%v,%v)", i, g.Kind, g.Survey, want.Kind, want.Survey)
		}
		if g.NRequired != want.NRequired || g.NDone != want.NDone {
			t.Errorf("field %d progress = (%d,%d), want (%d,%d)", i, g.NRequired, g.NDone, want.NRequired, want.NDone)
		}
		if g.Status != want.Status || g.SelectionReason != want.SelectionReason {
			t.Errorf("field %d status/reason = (%v,%v), want (%v,%v)", i, g.Status, g.SelectionReason, want.Status, want.SelectionReason)
		}
		if g.Doable != want.Doable {
			t.Errorf("field %d Doable = %v, want %v", i, g.Doable, want.Doable)
		}
		if len(g.Visits) != len(want.Visits) {
			t.Fatalf("field %d len(Visits) = %d, want %d", i, len(g.Visits), len(want.Visits))
		}
		for j, wv := range want.Visits {
			gv := g.Visits[j]
			if gv.Filename != wv.Filename || gv.JD != wv.JD || gv.Airmass != wv.Airmass {
				t.Errorf("field %d visit %d = %+v, want %+v", i, j, gv, wv)
			}
		}
	}
}

func TestWriteTruncatesPriorContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheduler.bin")
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	big := sampleFields()
	if err := Write(path, big, date); err != nil {
		t.Fatalf("Write big: %v", err)
	}
	bigInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	small := big[:1]
	if err := Write(path, small, date); err != nil {
		t.Fatalf("Write small: %v", err)
	}
	smallInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if smallInfo.Size() >= bigInfo.Size() {
		t.Errorf("expected truncated rewrite to shrink the file: got %d, was %d", smallInfo.Size(), bigInfo.Size())
	}

	got, _, err := Read(path)
	if err != nil {
		t.Fatalf("Read after truncate: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(fields) after truncate = %d, want 1", len(got))
	}
}

func TestReadMissingFile(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "absent.bin"))
	if !os.IsNotExist(err) {
		t.Errorf("expected os.IsNotExist, got %v", err)
	}
}

func TestFocusDefaults(t *testing.T) {
	fields := sampleFields()
	inc, def, ok := FocusDefaults(fields)
	if !ok {
		t.Fatalf("expected FocusDefaults to find the Focus-kind field")
	}
	if inc != 0.01 || def != 26.0 {
		t.Errorf("FocusDefaults = (%v,%v), want (0.01,26.0)", inc, def)
	}
}

func TestFocusDefaultsNoFocusField(t *testing.T) {
	fields := sampleFields()[:1]
	_, _, ok := FocusDefaults(fields)
	if ok {
		t.Errorf("expected ok=false when no Focus-kind field present")
	}
}

func TestSourceLineLongerThanWidthIsTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scheduler.bin")
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	long := make([]byte, sourceLineWidth+50)
	for i := range long {
		long[i] = 'x'
	}
	f := &field.Field{SourceLine: string(long), NRequired: 1}

	if err := Write(path, []*field.Field{f}, date); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got[0].SourceLine) != sourceLineWidth {
		t.Errorf("SourceLine len = %d, want %d", len(got[0].SourceLine), sourceLineWidth)
	}
}

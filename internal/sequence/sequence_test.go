package sequence

import (
	"strings"
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

func TestParseSkyAndDark(t *testing.T) {
	src := `# comment line
18.0 0.0 Y 60 3600 3 3 # a sky field
0.0 0.0 N 60 9600 3 0
`
	fields, next, filter, errs := Parse(strings.NewReader(src), 0, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(fields) != 2 {
		t.Fatalf("len(fields) = %d, want 2", len(fields))
	}
	if fields[0].Kind != field.KindSky || fields[0].Survey != field.SurveyMustDo {
		t.Errorf("field 0 = %+v", fields[0])
	}
	if fields[1].Kind != field.KindDark {
		t.Errorf("field 1 = %+v", fields[1])
	}
	if fields[1].IntervalHours != 9600.0/3600.0 {
		t.Errorf("interval = %v, want %v", fields[1].IntervalHours, 9600.0/3600.0)
	}
	if next != 3 {
		t.Errorf("next = %d, want 3", next)
	}
	if filter != "" {
		t.Errorf("filter = %q, want empty", filter)
	}
}

func TestParseFocusRecordRequiresExtraFloats(t *testing.T) {
	src := "0.0 0.0 F 10 0 1 0 0.01 26.0\n"
	fields, _, _, errs := Parse(strings.NewReader(src), 0, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(fields) != 1 {
		t.Fatalf("len(fields) = %d, want 1", len(fields))
	}
	if fields[0].FocusIncrement != 0.01 || fields[0].FocusDefault != 26.0 {
		t.Errorf("focus fields = %+v", fields[0])
	}
}

func TestParseFocusRecordMissingExtraFloatsRejected(t *testing.T) {
	src := "0.0 0.0 F 10 0 1 0\n"
	fields, _, _, errs := Parse(strings.NewReader(src), 0, "")
	if len(fields) != 0 {
		t.Errorf("expected the malformed focus record to be rejected, got %+v", fields)
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1 error", errs)
	}
}

func TestFilterLineAppliesToSubsequentRecords(t *testing.T) {
	src := "FILTER r\n18.0 0.0 Y 60 3600 1 0\n"
	fields, _, filter, errs := Parse(strings.NewReader(src), 0, "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if filter != "r" {
		t.Errorf("filter = %q, want r", filter)
	}
	if len(fields) != 1 || fields[0].Filter != "r" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestRejectsOutOfRangeRAButContinues(t *testing.T) {
	src := "24.5 0.0 Y 60 3600 1 0\n18.0 0.0 Y 60 3600 1 0\n"
	fields, _, _, errs := Parse(strings.NewReader(src), 0, "")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1", errs)
	}
	if len(fields) != 1 {
		t.Fatalf("expected the second, valid line to still parse: got %d fields", len(fields))
	}
}

func TestSidecarReparseSkipsAlreadySeenLines(t *testing.T) {
	src := "18.0 0.0 Y 60 3600 1 0\n0.0 0.0 N 60 9600 1 0\n"
	first, next, filter, errs := Parse(strings.NewReader(src), 0, "")
	if len(errs) != 0 || len(first) != 2 {
		t.Fatalf("initial parse: fields=%d errs=%v", len(first), errs)
	}

	appended := src + "5.0 10.0 Y 60 3600 1 0\n"
	second, _, _, errs2 := Parse(strings.NewReader(appended), next, filter)
	if len(errs2) != 0 {
		t.Fatalf("unexpected errors: %v", errs2)
	}
	if len(second) != 1 {
		t.Fatalf("len(second) = %d, want 1 (only the new line)", len(second))
	}
	if second[0].RAHours != 5.0 {
		t.Errorf("second[0].RAHours = %v, want 5.0", second[0].RAHours)
	}
}

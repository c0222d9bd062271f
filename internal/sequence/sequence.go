// Package sequence parses the sequence file and its new-fields sidecar into
// field.Field records, per spec.md §6. Grounded in
// _examples/original_source/src/scheduler.h's kind/survey code tables and
// make_sequence.c's line layout.
package sequence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
)

// ParseError is an InputParseError or OutOfRange condition on one line: the
// record is rejected but parsing continues, per spec.md §7.
type ParseError struct {
	Line   int
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sequence: line %d: %v: %q", e.Line, e.Err, e.Source)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads every non-blank, non-comment line of r as a field record. It
// never stops on a bad line: InputParseError/OutOfRange records are skipped
// and collected into errs, matching spec.md §7's "reject and continue"
// policy. currentFilter carries the most recent "FILTER <name>" line across
// calls so a sidecar reparse can continue from the main file's last filter.
func Parse(r io.Reader, startLine int, currentFilter string) (fields []*field.Field, nextLine int, filter string, errs []error) {
	filter = currentFilter
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if lineNo <= startLine {
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "FILTER") {
			parts := strings.Fields(line)
			if len(parts) < 2 {
				errs = append(errs, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("FILTER line missing name")})
				continue
			}
			filter = parts[1]
			continue
		}

		f, err := parseLine(raw, lineNo, filter)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, f)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("sequence: scan: %w", err))
	}
	return fields, lineNo, filter, errs
}

// ParseFile opens path and parses it via Parse.
func ParseFile(path string, startLine int, currentFilter string) (fields []*field.Field, nextLine int, filter string, errs []error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, startLine, currentFilter, nil, err
	}
	defer f.Close()
	fields, nextLine, filter, errs = Parse(f, startLine, currentFilter)
	return fields, nextLine, filter, errs, nil
}

// kindChars maps spec.md §6's kind_char set to Kind values.
var kindChars = map[byte]field.Kind{
	'Y': field.KindSky, 'y': field.KindSky,
	'N': field.KindDark, 'n': field.KindDark,
	'F': field.KindFocus, 'f': field.KindFocus,
	'P': field.KindOffsetPointing, 'p': field.KindOffsetPointing,
	'E': field.KindEveningFlat, 'e': field.KindEveningFlat,
	'M': field.KindMorningFlat, 'm': field.KindMorningFlat,
	'L': field.KindDomeFlat, 'l': field.KindDomeFlat,
}

var surveyCodes = map[int]field.SurveyClass{
	0: field.SurveyNone,
	1: field.SurveyTNO,
	2: field.SurveySNe,
	3: field.SurveyMustDo,
}

// parseLine parses one field record:
//
//	<ra_hr> <dec_deg> <kind_char> <exp_seconds> <interval_seconds> <n_required> <survey_code> [# comment]
//
// A Focus record has two trailing floats: <focus_increment> <focus_default>.
func parseLine(raw string, lineNo int, filter string) (*field.Field, error) {
	body := raw
	if idx := strings.Index(raw, "#"); idx >= 0 {
		body = raw[:idx]
	}
	parts := strings.Fields(body)
	if len(parts) < 7 {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("expected at least 7 fields, got %d", len(parts))}
	}

	ra, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad ra: %w", err)}
	}
	if ra < 0 || ra >= 24 {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("ra %v out of [0,24)", ra)}
	}

	dec, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad dec: %w", err)}
	}
	if dec < -90 || dec > 90 {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("dec %v out of [-90,90]", dec)}
	}

	if len(parts[2]) != 1 {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("kind char must be one character, got %q", parts[2])}
	}
	kind, ok := kindChars[parts[2][0]]
	if !ok {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("unknown kind char %q", parts[2])}
	}

	expt, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || expt < 0 || expt > field.MaxExposureSeconds {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad exposure %q", parts[3])}
	}

	intervalSec, err := strconv.ParseFloat(parts[4], 64)
	if err != nil || intervalSec < 0 {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad interval %q", parts[4])}
	}

	nRequired, err := strconv.Atoi(parts[5])
	if err != nil || nRequired < 1 || nRequired > field.MaxVisits {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad n_required %q", parts[5])}
	}

	surveyCode, err := strconv.Atoi(parts[6])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad survey_code %q", parts[6])}
	}
	survey, ok := surveyCodes[surveyCode]
	if !ok {
		return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("unsupported survey_code %d", surveyCode)}
	}

	f := &field.Field{
		LineNumber:    lineNo,
		SourceLine:    raw,
		RAHours:       ra,
		DecDeg:        dec,
		Epoch:         2000.0,
		Kind:          kind,
		Survey:        survey,
		ExposureSec:   expt,
		IntervalHours: intervalSec / 3600.0,
		NRequired:     nRequired,
		Filter:        filter,
		Doable:        true,
	}

	if kind == field.KindFocus {
		if len(parts) < 9 {
			return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("focus record missing increment/default")}
		}
		inc, err1 := strconv.ParseFloat(parts[7], 64)
		def, err2 := strconv.ParseFloat(parts[8], 64)
		if err1 != nil || err2 != nil {
			return nil, &ParseError{Line: lineNo, Source: raw, Err: fmt.Errorf("bad focus increment/default")}
		}
		f.FocusIncrement = inc
		f.FocusDefault = def
	}

	return f, nil
}

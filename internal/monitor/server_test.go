package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/auth"
	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/obsloop"
	"github.com/dlrabinowitz/ls4scheduler/internal/signals"
)

func withRole(req *http.Request, role string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), ctxRole, role))
}

func TestRequireRoleRejectsBelowMinimum(t *testing.T) {
	s := &Server{}
	called := false
	h := s.requireRole(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := withRole(httptest.NewRequest(http.MethodPost, "/control/terminate", nil), auth.RoleViewer)
	rec := httptest.NewRecorder()
	h(rec, req)

	if called {
		t.Errorf("expected the handler not to run for an under-privileged role")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleAllowsAtOrAboveMinimum(t *testing.T) {
	s := &Server{}
	called := false
	h := s.requireRole(auth.RoleObserver, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := withRole(httptest.NewRequest(http.MethodPost, "/control/pause", nil), auth.RoleAdmin)
	rec := httptest.NewRecorder()
	h(rec, req)

	if !called {
		t.Errorf("expected the handler to run for an admin calling an observer-gated route")
	}
}

func TestFieldSnapshotReportsEveryField(t *testing.T) {
	loop := &obsloop.SchedulerContext{
		Fields: []*field.Field{
			{Index: 0, Kind: field.KindSky, NDone: 1},
			{Index: 1, Kind: field.KindDark, NDone: 0},
		},
		Signals: signals.NewState(),
	}
	snap := fieldSnapshot(loop)
	fields, ok := snap["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 field entries, got %v", snap["fields"])
	}
	if fields[0]["kind"] != "Sky" || fields[1]["kind"] != "Dark" {
		t.Errorf("unexpected kinds: %+v", fields)
	}
}

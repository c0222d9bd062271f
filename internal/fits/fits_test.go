package fits

import "testing"

func TestNewHeaderSeeded(t *testing.T) {
	h := NewHeader()
	if v, ok := h.Get("FILTERNAME"); !ok || v != "UNKNOWN" {
		t.Errorf("FILTERNAME = (%q,%v), want (UNKNOWN,true)", v, ok)
	}
	if len(h.Words()) != len(standardKeywords) {
		t.Errorf("len(Words()) = %d, want %d", len(h.Words()), len(standardKeywords))
	}
}

func TestUpdateReplaces(t *testing.T) {
	h := NewHeader()
	if err := h.Update("RA", "12.5"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, _ := h.Get("RA")
	if v != "12.5" {
		t.Errorf("RA = %q, want 12.5", v)
	}
	if len(h.Words()) != len(standardKeywords) {
		t.Errorf("Update should not change word count: got %d", len(h.Words()))
	}
}

func TestUpdateUnknownKeywordFails(t *testing.T) {
	h := NewHeader()
	if err := h.Update("NOTPRESEEDED", "x"); err == nil {
		t.Errorf("expected Update on an unseeded keyword to fail")
	}
}

func TestAddAppendsAndCaps(t *testing.T) {
	h := NewHeader()
	start := len(h.Words())
	if err := h.Add("CUSTOM", "1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(h.Words()) != start+1 {
		t.Errorf("expected word count to grow by 1")
	}

	for i := len(h.Words()); i < MaxWords; i++ {
		if err := h.Add("K", "v"); err != nil {
			t.Fatalf("Add unexpectedly failed before reaching MaxWords: %v", err)
		}
	}
	if err := h.Add("OVERFLOW", "x"); err == nil {
		t.Errorf("expected Add to fail once MaxWords is reached")
	}
}

func TestUpdateOrAdd(t *testing.T) {
	h := NewHeader()
	if err := h.UpdateOrAdd("RA", "1.0"); err != nil {
		t.Fatalf("UpdateOrAdd existing: %v", err)
	}
	if err := h.UpdateOrAdd("BRAND_NEW", "x"); err != nil {
		t.Fatalf("UpdateOrAdd new: %v", err)
	}
	if v, ok := h.Get("BRAND_NEW"); !ok || v != "x" {
		t.Errorf("BRAND_NEW = (%q,%v)", v, ok)
	}
}

package field

import "testing"

func TestStatusChar(t *testing.T) {
	cases := []struct {
		nDone, nRequired int
		want             byte
	}{
		{0, 3, '0'},
		{2, 3, '2'},
		{3, 3, '.'},
		{4, 3, '.'},
		{-1, 3, '0'},
	}
	for _, c := range cases {
		f := &Field{NDone: c.nDone, NRequired: c.nRequired}
		if got := f.StatusChar(); got != c.want {
			t.Errorf("StatusChar(nDone=%d,nRequired=%d) = %q, want %q", c.nDone, c.nRequired, got, c.want)
		}
	}
}

func TestIsPairedWith(t *testing.T) {
	a := &Field{Kind: KindSky, RAHours: 3.5, DecDeg: 10.0}
	// RA gap of exactly one dither step (0.5 deg on the sky) at dec=10.
	b := &Field{Kind: KindSky, RAHours: 3.5 + (PairDitherStepDeg/15.0)/cosDeg(10.0), DecDeg: 10.0}
	if !a.IsPairedWith(b) {
		t.Errorf("expected a and b to be a dither pair")
	}

	c := &Field{Kind: KindSky, RAHours: 3.5 + 1.0, DecDeg: 10.0}
	if a.IsPairedWith(c) {
		t.Errorf("expected a and c (RA gap of 1h) not to be a dither pair")
	}

	d := &Field{Kind: KindDark, RAHours: b.RAHours, DecDeg: 10.0}
	if a.IsPairedWith(d) {
		t.Errorf("expected non-Sky kinds never to pair")
	}
}

func TestIsTerminal(t *testing.T) {
	f := &Field{NDone: 3, NRequired: 3}
	if !f.IsTerminal() {
		t.Errorf("expected terminal field")
	}
	f.NDone = 2
	if f.IsTerminal() {
		t.Errorf("expected non-terminal field")
	}
}

func TestRecordVisitBounded(t *testing.T) {
	f := &Field{}
	for i := 0; i < MaxVisits+5; i++ {
		f.RecordVisit(Visit{UT: float64(i)})
	}
	if len(f.Visits) != MaxVisits {
		t.Errorf("RecordVisit exceeded MaxVisits: got %d, want %d", len(f.Visits), MaxVisits)
	}
}

package pointing

import "testing"

func TestRACorrectionZeroAtSameHA(t *testing.T) {
	if got := RACorrection(1.0, 1.0); got != 0 {
		t.Errorf("RACorrection(1,1) = %v, want 0", got)
	}
}

func TestRACorrectionCrossesZero(t *testing.T) {
	got := RACorrection(-1.0, 1.0)
	want := raSlope1*(raHAChange-(-1.0)) + raSlope2*(1.0-raHAChange)
	if got != want {
		t.Errorf("RACorrection(-1,1) = %v, want %v", got, want)
	}
}

func TestDecCorrectionWithinFirstSegment(t *testing.T) {
	got := DecCorrection(-1.0, -0.5)
	want := decSlope1 * (-0.5 - (-1.0))
	if got != want {
		t.Errorf("DecCorrection(-1,-0.5) = %v, want %v", got, want)
	}
}

func TestDecCorrectionCrossesBothBreakpoints(t *testing.T) {
	ha0, ha := -1.0, 3.0
	got := DecCorrection(ha0, ha)
	want := decSlope1*(decHAChange1-ha0) + decSlope2*(decHAChange2-decHAChange1) + decSlope3*(ha-decHAChange2)
	if got != want {
		t.Errorf("DecCorrection(-1,3) = %v, want %v", got, want)
	}
}

func TestRARateNegativeAndScalesWithCosDec(t *testing.T) {
	west := RARate(1.0, 0.0)
	if west >= 0 {
		t.Errorf("RARate should be negative (faster than sidereal), got %v", west)
	}
	// Higher |dec| means larger 1/cos(dec) magnification.
	low := RARate(1.0, 0.0)
	high := RARate(1.0, 60.0)
	if -high <= -low {
		t.Errorf("expected |RARate| to grow with |dec|: low=%v high=%v", low, high)
	}
}

func TestDecRateLinearInHA(t *testing.T) {
	got := DecRate(0.0, 10.0)
	want := -(0.004 + (-0.012*(0.0+2.0)/6.0)) * 3600.0
	if got != want {
		t.Errorf("DecRate(0,10) = %v, want %v", got, want)
	}
}

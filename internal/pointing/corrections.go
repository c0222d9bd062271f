// Package pointing computes the repeat-visit pointing and tracking-rate
// corrections the observation loop applies to a Sky field's RA/Dec on every
// visit after the first, per spec.md §4.4. Grounded in
// _examples/original_source/src/scheduler_corrections.c, whose piecewise
// slopes were fit from fields taken 2007 Mar 12-13 UT.
package pointing

import "math"

// Ra/Dec correction breakpoints and slopes, ported verbatim from
// scheduler_corrections.c (RA_HA_CHANGE/RA_SLOPE1/RA_SLOPE2 and
// DEC_HA_CHANGE1/2, DEC_SLOPE1/2/3).
const (
	raHAChange = 0.0 // hour
	raSlope1   = -0.002375 // deg/hour
	raSlope2   = -0.021    // deg/hour

	decHAChange1 = 0.0 // hour
	decHAChange2 = 2.0 // hour
	decSlope1    = -0.0008125 // deg/hour
	decSlope2    = -0.00325   // deg/hour
	decSlope3    = -0.00675   // deg/hour
)

// RACorrection returns the RA pointing correction (degrees) to subtract from
// the field's RA, as a function of the initial hour angle ha0 and the
// current hour angle ha (both in hours), per get_ra_correction.
func RACorrection(ha0, ha float64) float64 {
	if ha0 < raHAChange {
		if ha < raHAChange {
			return raSlope1 * (ha - ha0)
		}
		return raSlope1*(raHAChange-ha0) + raSlope2*(ha-raHAChange)
	}
	if ha > raHAChange {
		return raSlope2 * (ha - ha0)
	}
	return raSlope2*(raHAChange-ha0) + raSlope1*(ha-raHAChange)
}

// DecCorrection returns the Dec pointing correction (degrees) to subtract
// from the field's Dec, per get_dec_correction's three-segment piecewise
// function of ha0 and ha (both in hours).
func DecCorrection(ha0, ha float64) float64 {
	switch {
	case ha0 < decHAChange1:
		switch {
		case ha < decHAChange1:
			return decSlope1 * (ha - ha0)
		case ha < decHAChange2:
			return decSlope1*(decHAChange1-ha0) + decSlope2*(ha-decHAChange1)
		default:
			return decSlope1*(decHAChange1-ha0) + decSlope2*(decHAChange2-decHAChange1) + decSlope3*(ha-decHAChange2)
		}
	case ha0 < decHAChange2:
		switch {
		case ha < decHAChange1:
			return decSlope1*(ha-decHAChange1) + decSlope2*(decHAChange1-ha0)
		case ha < decHAChange2:
			return decSlope2 * (ha - ha0)
		default:
			return decSlope2*(decHAChange2-ha0) + decSlope3*(ha-decHAChange2)
		}
	default:
		switch {
		case ha < decHAChange1:
			return decSlope1*(ha-decHAChange1) + decSlope2*(decHAChange1-decHAChange2) + decSlope3*(decHAChange2-ha0)
		case ha < decHAChange2:
			return decSlope2*(ha-decHAChange2) + decSlope3*(decHAChange2-ha0)
		default:
			return decSlope3 * (ha - ha0)
		}
	}
}

// RARate returns the offset (arcsec/hour) to subtract from the sidereal
// tracking rate to correct the RA tracking error, as a function of the
// current hour angle (hours) and declination (degrees), per get_ra_rate.
// The result is negative (the telescope must run faster than sidereal).
func RARate(ha, dec float64) float64 {
	var rate float64
	if ha > 0.0 {
		switch {
		case dec < -30.0:
			rate = 0.010
		case dec < 30.0:
			rate = 0.017
		case dec < 50.0:
			rate = 0.013
		default:
			rate = 0.010
		}
	} else {
		switch {
		case dec < -30.0:
			rate = 0.003
		case dec < 30.0:
			rate = 0.005
		case dec < 50.0:
			rate = 0.003
		default:
			rate = 0.003
		}
	}
	rate = -rate
	rate *= 3600.0
	return rate / math.Cos(dec*math.Pi/180.0)
}

// DecRate returns the offset (arcsec/hour) to subtract from the Dec
// tracking rate, a linear function of hour angle, per get_dec_rate. dec is
// accepted for signature parity with get_dec_rate but unused, matching the
// original (which never references its own dec argument either).
func DecRate(ha, dec float64) float64 {
	rate := 0.004 + (-0.012*(ha+2.0)/6.0)
	return -rate * 3600.0
}

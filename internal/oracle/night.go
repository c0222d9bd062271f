package oracle

import "math"

// NightContext bundles the Julian dates (and derived UT/LST) of the sun and
// moon events that bound a night's observing, plus the moon's position and
// illuminated fraction, per spec.md §3 "Night Context". Tonight builds this;
// internal/night layers the observing-window bounds (startup delay, min
// execution time, 12h contraction) on top of it.
type NightContext struct {
	Date Date

	JDSunset, JDEvening12, JDEvening18, JDMidnight float64
	JDMorning12, JDMorning18, JDSunrise            float64
	JDMoonrise, JDMoonset                          float64

	RAMoon, DecMoon, PercentMoon float64
}

// Date is a plain UTC calendar date, used to anchor a night's search window.
type Date struct {
	Year, Month, Day int
}

// UT returns the UT hour-of-day (0..24) corresponding to a JD within this
// night's span, for logging/display.
func (n NightContext) UT(jd float64) float64 {
	_, _, _, h, m, s, _ := JDToDate(jd)
	return h + m/60.0 + s/3600.0
}

// LSTAt returns local sidereal time at the given JD for this night's site
// longitude; callers pass the longitude explicitly since NightContext itself
// stores no site reference (kept a pure data bundle).
func LSTAt(jd, longitudeHoursWest float64) float64 {
	return LST(jd, longitudeHoursWest)
}

func sunAltitude(jd float64, site Site) float64 {
	raHours, decDeg := SunPosition(jd)
	lst := LST(jd, site.LongitudeHoursWest)
	ha := HourAngle(raHours, lst)
	alt, _ := Altitude(decDeg, ha, site.LatitudeDeg)
	return alt
}

func moonAltitude(jd float64, site Site) float64 {
	m := MoonPosition(jd)
	lst := LST(jd, site.LongitudeHoursWest)
	ha := HourAngle(m.RAHours, lst)
	alt, _ := Altitude(m.DecDeg, ha, site.LatitudeDeg)
	return alt
}

// findCrossing bisects for the JD in [lo, hi] at which altFunc(jd)-target
// changes sign, assuming a single crossing in the interval (true for solar
// and lunar altitude across a half-day window at mid latitudes). rising
// selects which sign transition to expect; ok is false if no crossing of
// the requested direction is found (e.g. polar day/night at extreme sites).
func findCrossing(lo, hi, target float64, altFunc func(float64) float64, rising bool) (jd float64, ok bool) {
	const steps = 288 // 2.5-minute sampling across a half-day window, 5-minute across a full day
	step := (hi - lo) / steps

	prevJD := lo
	prevVal := altFunc(lo) - target
	for i := 1; i <= steps; i++ {
		curJD := lo + float64(i)*step
		curVal := altFunc(curJD) - target

		crossed := (prevVal < 0 && curVal >= 0) || (prevVal >= 0 && curVal < 0)
		if crossed {
			isRising := curVal >= 0 && prevVal < 0
			if isRising == rising {
				return bisectCrossing(prevJD, curJD, target, altFunc), true
			}
		}
		prevJD, prevVal = curJD, curVal
	}
	return 0, false
}

func bisectCrossing(lo, hi, target float64, altFunc func(float64) float64) float64 {
	loVal := altFunc(lo) - target
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		midVal := altFunc(mid) - target
		if (loVal < 0) == (midVal < 0) {
			lo = mid
			loVal = midVal
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Tonight computes the full night context for the given UTC calendar date
// at site: sunset, 12 deg and 18 deg evening/morning twilight, local
// midnight, sunrise, moonrise/moonset, and the moon's position/illuminated
// fraction. Grounded in get_airmass.c's init_night and the almanac.c
// "print_tonight" search it drives.
func Tonight(date Date, site Site) NightContext {
	// Local noon expressed in UT: a west-positive longitude means local time
	// lags UT, so local noon falls at UT hour 12+longitude.
	jdNoon := DateToJD(date.Year, date.Month, date.Day, 12.0+site.LongitudeHoursWest, 0, 0)
	jdMidnightNext := jdNoon + 0.5

	evening := func(targetAlt float64) float64 {
		jd, ok := findCrossing(jdNoon, jdMidnightNext, targetAlt, func(j float64) float64 { return sunAltitude(j, site) }, false)
		if !ok {
			return jdMidnightNext
		}
		return jd
	}
	morning := func(targetAlt float64) float64 {
		jd, ok := findCrossing(jdMidnightNext, jdMidnightNext+0.5, targetAlt, func(j float64) float64 { return sunAltitude(j, site) }, true)
		if !ok {
			return jdMidnightNext
		}
		return jd
	}

	moonEvent := func(lo, hi float64, rising bool) float64 {
		jd, ok := findCrossing(lo, hi, 0.0, func(j float64) float64 { return moonAltitude(j, site) }, rising)
		if !ok {
			return math.NaN()
		}
		return jd
	}

	moonNow := MoonPosition(jdMidnightNext)

	return NightContext{
		Date:        date,
		JDSunset:    evening(0.0),
		JDEvening12: evening(-12.0),
		JDEvening18: evening(-18.0),
		JDMidnight:  jdMidnightNext,
		JDMorning12: morning(-12.0),
		JDMorning18: morning(-18.0),
		JDSunrise:   morning(0.0),
		JDMoonrise:  moonEvent(jdNoon, jdMidnightNext+0.5, true),
		JDMoonset:   moonEvent(jdNoon, jdMidnightNext+0.5, false),
		RAMoon:      moonNow.RAHours,
		DecMoon:     moonNow.DecDeg,
		PercentMoon: moonNow.Illuminated,
	}
}

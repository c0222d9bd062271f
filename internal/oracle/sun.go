package oracle

import "math"

// SunPosition returns the sun's apparent geocentric RA (hours) and Dec
// (degrees) for the given JD, following the same Julian-century solar
// series the teacher's pkg/coordinates/solar.go uses (NOAA solar-position
// algorithm, truncated to the low-order terms that algorithm relies on).
func SunPosition(jd float64) (raHours, decDeg float64) {
	t := (jd - J2000) / 36525.0

	meanLong := math.Mod(280.46646+36000.76983*t+0.0003032*t*t, 360.0)
	if meanLong < 0 {
		meanLong += 360.0
	}
	meanAnom := 357.52911 + 35999.05029*t - 0.0001537*t*t
	meanAnomRad := degToRad(meanAnom)

	center := (1.914602-0.004817*t-0.000014*t*t)*math.Sin(meanAnomRad) +
		(0.019993-0.000101*t)*math.Sin(2*meanAnomRad) +
		0.000289*math.Sin(3*meanAnomRad)

	trueLong := meanLong + center
	omega := 125.04 - 1934.136*t
	apparentLong := trueLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	obliq := 23.439291 - 0.0130042*t
	obliqCorrected := obliq + 0.00256*math.Cos(degToRad(omega))

	lambdaRad := degToRad(apparentLong)
	epsRad := degToRad(obliqCorrected)

	raRad := math.Atan2(math.Cos(epsRad)*math.Sin(lambdaRad), math.Cos(lambdaRad))
	if raRad < 0 {
		raRad += 2 * math.Pi
	}
	decRad := clampAsin(math.Sin(epsRad) * math.Sin(lambdaRad))

	return radiansToHours(raRad), radToDeg(decRad)
}

// MoonInfo bundles the quantities the night context needs about the moon:
// apparent geocentric RA/Dec and the illuminated fraction (0..1).
type MoonInfo struct {
	RAHours    float64
	DecDeg     float64
	Illuminated float64
}

// MoonPosition returns a low-precision lunar position (Meeus ch. 47's
// leading terms) adequate for the scheduler's moon-separation veto and
// illuminated-fraction gate; the original's almanac.c used a comparably
// truncated series from Thorstensen's skycalc.
func MoonPosition(jd float64) MoonInfo {
	t := (jd - J2000) / 36525.0

	lPrime := math.Mod(218.3164477+481267.88123421*t-0.0015786*t*t, 360.0)
	d := math.Mod(297.8501921+445267.1114034*t-0.0018819*t*t, 360.0)
	m := math.Mod(357.5291092+35999.0502909*t-0.0001536*t*t, 360.0)
	mPrime := math.Mod(134.9633964+477198.8675055*t+0.0089970*t*t, 360.0)

	lPrimeRad := degToRad(lPrime)
	dRad := degToRad(d)
	mRad := degToRad(m)
	mPrimeRad := degToRad(mPrime)

	longitude := lPrime +
		6.289*math.Sin(mPrimeRad) -
		1.274*math.Sin(mPrimeRad-2*dRad) +
		0.658*math.Sin(2*dRad) -
		0.186*math.Sin(mRad) -
		0.059*math.Sin(2*mPrimeRad-2*dRad)

	latitude := 5.128*math.Sin(degToRad(93.2720950+483202.0175233*t)) -
		0.280*math.Sin(lPrimeRad-degToRad(93.2720950+483202.0175233*t))

	obliq := 23.439291 - 0.0130042*t
	lamRad := degToRad(math.Mod(longitude, 360.0))
	betRad := degToRad(latitude)
	epsRad := degToRad(obliq)

	sinDec := math.Sin(betRad)*math.Cos(epsRad) + math.Cos(betRad)*math.Sin(epsRad)*math.Sin(lamRad)
	decRad := clampAsin(sinDec)

	y := math.Sin(lamRad)*math.Cos(epsRad) - math.Tan(betRad)*math.Sin(epsRad)
	x := math.Cos(lamRad)
	raRad := math.Atan2(y, x)
	if raRad < 0 {
		raRad += 2 * math.Pi
	}

	// Phase angle from the sun-earth-moon elongation, approximated via mean
	// elongation D; illuminated fraction = (1 + cos(phase))/2.
	phaseRad := degToRad(180.0) - dRad - degToRad(6.289)*math.Sin(mPrimeRad)
	illum := (1.0 + math.Cos(phaseRad)) / 2.0
	if illum < 0 {
		illum = 0
	}
	if illum > 1 {
		illum = 1
	}

	return MoonInfo{
		RAHours:     radiansToHours(raRad),
		DecDeg:      radToDeg(decRad),
		Illuminated: illum,
	}
}

// AngularSeparation returns the angular distance, in degrees, between two
// (ra hours, dec deg) positions via the standard spherical-law-of-cosines
// identity (used by the moon-separation veto, scheduler.h:MIN_MOON_SEPARATION).
func AngularSeparation(ra1Hours, dec1Deg, ra2Hours, dec2Deg float64) float64 {
	d1 := degToRad(dec1Deg)
	d2 := degToRad(dec2Deg)
	dra := hoursToRadians(ra1Hours - ra2Hours)

	cosSep := math.Sin(d1)*math.Sin(d2) + math.Cos(d1)*math.Cos(d2)*math.Cos(dra)
	return radToDeg(math.Acos(clampCos(cosSep)))
}

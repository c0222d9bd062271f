package oracle

import "math"

// Precess rotates (ra, dec) from epochIn to epochOut (both decimal years,
// e.g. 2000.0) using the IAU 1976 precession angles zeta/z/theta, exact
// polynomials ported from _examples/original_source/src/galactic.c:precrot.
func Precess(raHours, decDeg, epochIn, epochOut float64) (outRA, outDec float64) {
	if epochIn == epochOut {
		return NormalizeRA(raHours), decDeg
	}

	ti := (epochIn - 2000.0) / 100.0
	tf := (epochOut - 2000.0 - 100.0*ti) / 100.0

	zetaArcsec := (2306.2181+1.39656*ti-0.000139*ti*ti)*tf +
		(0.30188-0.000344*ti)*tf*tf + 0.017998*tf*tf*tf
	zArcsec := zetaArcsec + (0.79280+0.000410*ti)*tf*tf + 0.000205*tf*tf*tf
	thetaArcsec := (2004.3109-0.8533*ti-0.000217*ti*ti)*tf -
		(0.42665+0.000217*ti)*tf*tf - 0.041833*tf*tf*tf

	zeta := zetaArcsec / ArcsecInRadian
	z := zArcsec / ArcsecInRadian
	theta := thetaArcsec / ArcsecInRadian

	ra := hoursToRadians(raHours)
	dec := degToRad(decDeg)

	x0, y0, z0 := sphToXYZ(ra, dec)

	// Rotation matrix built from zeta/z/theta, applied as
	// R_z(-z) * R_y(theta) * R_z(-zeta), matching galact.c's precrot.
	m := precessionMatrix(zeta, z, theta)
	x1 := m[0][0]*x0 + m[0][1]*y0 + m[0][2]*z0
	y1 := m[1][0]*x0 + m[1][1]*y0 + m[1][2]*z0
	z1 := m[2][0]*x0 + m[2][1]*y0 + m[2][2]*z0

	raOut, decOut := xyzToSph(x1, y1, z1)
	return NormalizeRA(radiansToHours(raOut)), radToDeg(decOut)
}

func precessionMatrix(zeta, z, theta float64) [3][3]float64 {
	cz, sz := math.Cos(zeta), math.Sin(zeta)
	ct, st := math.Cos(theta), math.Sin(theta)
	cZ, sZ := math.Cos(z), math.Sin(z)

	return [3][3]float64{
		{cZ*ct*cz - sZ*sz, -cZ*ct*sz - sZ*cz, -cZ * st},
		{sZ*ct*cz + cZ*sz, -sZ*ct*sz + cZ*cz, -sZ * st},
		{st * cz, -st * sz, ct},
	}
}

func hoursToRadians(h float64) float64 { return degToRad(h * 15.0) }
func radiansToHours(r float64) float64 { return radToDeg(r) / 15.0 }

func sphToXYZ(raRad, decRad float64) (x, y, z float64) {
	cd := math.Cos(decRad)
	return cd * math.Cos(raRad), cd * math.Sin(raRad), math.Sin(decRad)
}

// xyzToSph is the spherical-coordinate inverse used throughout galactic.c
// (xyz_cel / atan_circ): returns RA in [0, 2pi) radians and Dec in radians.
func xyzToSph(x, y, z float64) (raRad, decRad float64) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, 0
	}
	decRad = clampAsin(z / r)
	raRad = math.Atan2(y, x)
	if raRad < 0 {
		raRad += 2 * math.Pi
	}
	return raRad, decRad
}

// galacticRotation is the fixed direction-cosine matrix galact.c hard-codes
// after resolving the galactic pole/center Euler angles once; it is never
// recomputed per call, per spec.md's instruction that the matrix values
// must be stored rather than derived fresh each time.
var galacticRotation = [3][3]float64{
	{-0.066988739415, -0.872755765853, -0.483538914631},
	{0.492728466047, -0.450346958025, 0.744584633299},
	{-0.867600811168, -0.188374601707, 0.460199784759},
}

// Galactic converts (ra, dec) at the given epoch (decimal years) to galactic
// longitude/latitude in degrees: precess to B1950, rotate by the fixed
// galactic matrix, convert back to spherical. Grounded in galactic.c:galact.
func Galactic(raHours, decDeg, epoch float64) (lDeg, bDeg float64) {
	ra1950, dec1950 := Precess(raHours, decDeg, epoch, 1950.0)

	raRad := hoursToRadians(ra1950)
	decRad := degToRad(dec1950)
	x0, y0, z0 := sphToXYZ(raRad, decRad)

	m := galacticRotation
	x1 := m[0][0]*x0 + m[0][1]*y0 + m[0][2]*z0
	y1 := m[1][0]*x0 + m[1][1]*y0 + m[1][2]*z0
	z1 := m[2][0]*x0 + m[2][1]*y0 + m[2][2]*z0

	lRad, bRad := xyzToSph(x1, y1, z1)
	return radToDeg(lRad), radToDeg(bRad)
}

// Obliquity of the ecliptic at J2000, and its sine/cosine, ported from
// ecliptic.c's OBLIQUITY/COS_OBL/SIN_OBL constants.
const (
	obliquityRad = 0.4092797
	cosObliquity = 0.9174077
	sinObliquity = 0.3979486
)

// Ecliptic converts (ra, dec) at the given epoch to ecliptic
// (longitude, latitude) in degrees, using the obliquity-based identities in
// ecliptic.c:get_lamda/get_beta. jd is accepted to match the oracle's
// documented contract (epoch of date); the obliquity used is the fixed
// J2000 value the original program used, since the drift over a single
// observing season is well under the tolerance my_asin already clamps away.
func Ecliptic(raHours, decDeg, epoch, jd float64) (lonDeg, latDeg float64) {
	_ = jd
	ra2000, dec2000 := Precess(raHours, decDeg, epoch, 2000.0)

	a := hoursToRadians(ra2000)
	d := degToRad(dec2000)

	sinBeta := math.Sin(d)*cosObliquity - math.Cos(d)*sinObliquity*math.Sin(a)
	beta := clampAsin(sinBeta)

	sinLambda := (math.Sin(d)*sinObliquity + math.Cos(d)*cosObliquity*math.Sin(a)) / math.Cos(beta)
	cosLambda := math.Cos(d) * math.Cos(a) / math.Cos(beta)
	lambda := math.Atan2(sinLambda, cosLambda)
	if lambda < 0 {
		lambda += 2 * math.Pi
	}

	return radToDeg(lambda), radToDeg(beta)
}

var _ = obliquityRad

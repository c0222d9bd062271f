package obsloop

// FlatDitherStepDeg is the grid spacing (degrees) used for flat-field
// dithering, per scheduler.h's FLAT_DITHER_STEP (10 arcsec).
const FlatDitherStepDeg = 0.002778

// ditherOffset returns the RA/Dec offset (degrees) for the given visit
// iteration on a square-spiral grid centered on the field's nominal
// pointing, per _examples/original_source/src/scheduler.c:get_dither.
// Iterations 1-8 walk the smallest concentric square (side 3), 9-24 the
// next (side 5), and so on through side 11 at iteration 120; beyond that
// the offset is zero (matching the original's own give-up behavior).
func ditherOffset(iteration int, stepSizeDeg float64) (raOffsetDeg, decOffsetDeg float64) {
	if iteration == 0 {
		return 0, 0
	}

	var squareSize, i0 int
	switch {
	case iteration <= 8:
		squareSize, i0 = 3, 1
	case iteration <= 24:
		squareSize, i0 = 5, 9
	case iteration <= 48:
		squareSize, i0 = 7, 25
	case iteration <= 80:
		squareSize, i0 = 9, 49
	case iteration <= 120:
		squareSize, i0 = 11, 81
	default:
		return 0, 0
	}

	i := iteration - i0
	side := i / (squareSize - 1)
	stepA := squareSize / 2
	stepB := i - side*(squareSize-1)

	var ra, dec int
	switch side {
	case 0:
		ra = stepA
		dec = stepB - stepA
	case 1:
		ra = stepB - stepA + 1
		dec = stepA
	case 2:
		ra = -stepA
		dec = stepB - stepA + 1
	default:
		ra = stepB - stepA
		dec = -stepA
	}

	return float64(ra) * stepSizeDeg, float64(dec) * stepSizeDeg
}

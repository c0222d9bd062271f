// Command fieldgrid generates a regular RA/Dec grid of Sky field records in
// sequence-file format (internal/sequence's line layout), for seeding a new
// survey sequence file without hand-typing one field per line.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
)

func main() {
	decMin := flag.Float64("dec-min", -30.0, "minimum declination, degrees")
	decMax := flag.Float64("dec-max", 30.0, "maximum declination, degrees")
	decStep := flag.Float64("dec-step", 5.0, "declination spacing, degrees")
	raStep := flag.Float64("ra-step", 0.5, "right-ascension spacing at the equator, hours")
	exposureSec := flag.Float64("exposure", 60.0, "exposure time, seconds")
	intervalSec := flag.Float64("interval", 3600.0, "minimum revisit interval, seconds")
	nRequired := flag.Int("n-required", 1, "visits required per field")
	survey := flag.Int("survey", 0, "survey code, per internal/sequence's surveyCodes table")
	filter := flag.String("filter", "", "FILTER line to emit before the grid, if non-empty")
	flag.Parse()

	if *decStep <= 0 || *raStep <= 0 {
		fmt.Fprintln(os.Stderr, "fieldgrid: dec-step and ra-step must be positive")
		os.Exit(-1)
	}
	if *decMax < *decMin {
		fmt.Fprintln(os.Stderr, "fieldgrid: dec-max must be >= dec-min")
		os.Exit(-1)
	}

	if *filter != "" {
		fmt.Printf("FILTER %s\n", *filter)
	}

	for dec := *decMin; dec <= *decMax+1e-9; dec += *decStep {
		// Widen RA spacing toward the poles so fields keep roughly constant
		// sky area, the same cos(dec) correction internal/oracle's angular
		// separation uses.
		cosDec := math.Cos(dec * math.Pi / 180.0)
		if cosDec < 0.05 {
			cosDec = 0.05
		}
		stepHours := *raStep / cosDec
		if stepHours > 24.0 {
			stepHours = 24.0
		}

		for ra := 0.0; ra < 24.0; ra += stepHours {
			fmt.Printf("%7.4f %7.3f Y %6.1f %7.1f %d %d\n",
				ra, dec, *exposureSec, *intervalSec, *nRequired, *survey)
		}
	}
}

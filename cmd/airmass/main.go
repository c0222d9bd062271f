// Command airmass is a one-shot utility wrapping internal/oracle: given an
// hour angle and declination it prints the airmass directly, or given a
// right ascension, UT, and calendar date it first derives the local
// sidereal time and hour angle for the configured site.
//
// Grounded on get_airmass.c's two call forms.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
	"github.com/dlrabinowitz/ls4scheduler/internal/site"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: airmass <ha_hours> <dec_deg>")
	fmt.Fprintln(os.Stderr, "       airmass <ra_hours> <dec_deg> <ut_hours> <yyyy> <mm> <dd>")
	os.Exit(-1)
}

func main() {
	siteName := flag.String("site", "", "site name from internal/site's table (default: SITE_NAME env var, then DEFAULT)")
	flag.Parse()
	args := flag.Args()

	name := *siteName
	if name == "" {
		name = os.Getenv("SITE_NAME")
	}
	if name == "" {
		name = site.DefaultSiteName
	}
	s, err := site.Load(name)
	if err != nil {
		log.Fatalf("airmass: %v", err)
	}

	switch len(args) {
	case 2:
		ha := parseFloat(args[0])
		dec := parseFloat(args[1])
		fmt.Printf("%7.3f\n", oracle.Airmass(ha, dec, s.LatitudeDeg))

	case 6:
		ra := parseFloat(args[0])
		dec := parseFloat(args[1])
		ut := parseFloat(args[2])
		year := parseInt(args[3])
		month := parseInt(args[4])
		day := parseInt(args[5])

		jd := oracle.DateToJD(year, month, day, ut, 0, 0)
		lst := oracle.LST(jd, s.LongitudeHoursWest)
		ha := oracle.HourAngle(ra, lst)
		fmt.Printf("%7.3f %7.3f\n", ha, oracle.Airmass(ha, dec, s.LatitudeDeg))

	default:
		usage()
	}
}

func parseFloat(s string) float64 {
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		log.Fatalf("airmass: bad numeric argument %q: %v", s, err)
	}
	return v
}

func parseInt(s string) int {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		log.Fatalf("airmass: bad integer argument %q: %v", s, err)
	}
	return v
}

// Package site holds the compiled-in site table the scheduler loads from at
// startup, selected by the SITE_NAME environment variable (spec.md §6).
//
// The original program loaded a single DEFAULT record via get_airmass.c's
// load_site; this table keeps a DEFAULT record (Kitt Peak) and adds a couple
// of other named records (La Silla under "LS4", Cerro Tololo under "CTIO"), per SPEC_FULL.md's "Site table with
// multiple named sites" addition. It remains a compiled-in constant, not a
// runtime-queried database, honoring the Non-goal "no site database beyond a
// single named site record".
package site

import (
	"fmt"

	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
)

// DefaultSiteName is used when SITE_NAME is unset, matching spec.md §6.
const DefaultSiteName = "DEFAULT"

var table = map[string]oracle.Site{
	// DEFAULT matches the sentinel site spec.md's §8 scenarios use
	// (longitude 7.44111h W, latitude 31.9533N -- Kitt Peak).
	"DEFAULT": {
		Name:                 "Kitt Peak",
		Abbrev:               "KPNO",
		LongitudeHoursWest:   7.44111,
		LatitudeDeg:          31.9533,
		ElevationM:           2096,
		HorizonElevationM:    2096,
		HorizonDepressionDeg: 0.0,
		StdTimeZoneHours:     7.0,
		UseDST:               false,
	},
	"LS4": {
		Name:                 "La Silla",
		Abbrev:               "LS4",
		LongitudeHoursWest:   4.71333, // 70 deg 42' W
		LatitudeDeg:          -29.2567,
		ElevationM:           2347,
		HorizonElevationM:    2347,
		HorizonDepressionDeg: 0.0,
		StdTimeZoneHours:     4.0,
		UseDST:               false,
	},
	"CTIO": {
		Name:                 "Cerro Tololo",
		Abbrev:               "CTIO",
		LongitudeHoursWest:   4.72056,
		LatitudeDeg:          -30.1690,
		ElevationM:           2207,
		HorizonElevationM:    2207,
		HorizonDepressionDeg: 0.0,
		StdTimeZoneHours:     4.0,
		UseDST:               false,
	},
}

// Load returns the site record named by name (case-sensitive, matching the
// table keys). Unknown names are an error; callers resolve SITE_NAME once at
// startup and should fail fast rather than silently fall back to DEFAULT.
func Load(name string) (oracle.Site, error) {
	if name == "" {
		name = DefaultSiteName
	}
	s, ok := table[name]
	if !ok {
		return oracle.Site{}, fmt.Errorf("site: unknown site %q", name)
	}
	return s, nil
}

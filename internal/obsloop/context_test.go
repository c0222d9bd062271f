package obsloop

import (
	"testing"

	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/night"
	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
	"github.com/dlrabinowitz/ls4scheduler/internal/weather"
)

func testSite() oracle.Site {
	return oracle.Site{
		Name:               "Test",
		Abbrev:             "TST",
		LongitudeHoursWest: 7.44111,
		LatitudeDeg:        31.9533,
		ElevationM:         2096,
	}
}

func TestInitFieldFeasibilityDarkSpansFullNight(t *testing.T) {
	s := testSite()
	nc := night.InitNight(oracle.Date{Year: 2024, Month: 3, Day: 20}, s, false)
	f := &field.Field{Kind: field.KindDark}
	InitFields([]*field.Field{f}, nc, s, nc.JDStart)
	if !f.Doable {
		t.Errorf("expected Dark field to be doable")
	}
	if f.JDRise != nc.JDStart || f.JDSet != nc.JDEnd {
		t.Errorf("expected Dark window to span the full night, got [%v,%v] want [%v,%v]", f.JDRise, f.JDSet, nc.JDStart, nc.JDEnd)
	}
}

func TestInitFieldFeasibilityMoonVetoesCloseSkyField(t *testing.T) {
	s := testSite()
	nc := night.InitNight(oracle.Date{Year: 2024, Month: 3, Day: 20}, s, false)
	nc.PercentMoon = 0.9
	f := &field.Field{Kind: field.KindSky, RAHours: nc.RAMoon, DecDeg: nc.DecMoon}
	InitFields([]*field.Field{f}, nc, s, nc.JDStart)
	if f.Doable {
		t.Errorf("expected a Sky field coincident with a bright moon to be vetoed")
	}
}

func TestApplyRepeatVisitCorrectionsMatchesPointingPackage(t *testing.T) {
	raCorr, decCorr, raRate, decRate := applyRepeatVisitCorrections(-1.0, 0.5, 10.0)
	if raCorr == 0 && decCorr == 0 {
		t.Errorf("expected nonzero corrections across a hour-angle change")
	}
	if raRate == 0 {
		t.Errorf("expected a nonzero RA tracking rate")
	}
	_ = decRate
}

func TestPollWeatherPrefersLoadedWindowsOverLivePoller(t *testing.T) {
	c := &SchedulerContext{
		WeatherWindows: []weather.Window{{DayFraction: 0.0, DurationHours: 24.0}},
	}
	if !c.pollWeather(100.5) {
		t.Errorf("expected a full-day window to report good weather without touching the live poller")
	}
}

func TestPollWeatherClosedWindowReportsBad(t *testing.T) {
	c := &SchedulerContext{
		WeatherWindows: []weather.Window{{DayFraction: 0.1, DurationHours: 0.1}},
	}
	if c.pollWeather(100.9) {
		t.Errorf("expected a day fraction outside every window to report bad weather")
	}
}

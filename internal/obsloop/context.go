// Package obsloop implements the observation loop: the long-running control
// task that advances time, asks the selector for a field, drives the
// telescope and camera through an exposure, and commits state to the
// recovery journal, per spec.md §4.4.
//
// Per spec.md §9's "replace global mutable state" design note, every value
// the original scheduler.c kept in file-scope globals (focus constants,
// stop/stow flags, current filter, last-observed index) lives on
// SchedulerContext instead, threaded explicitly through Run/Observe.
package obsloop

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/camera"
	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/fits"
	"github.com/dlrabinowitz/ls4scheduler/internal/journal"
	"github.com/dlrabinowitz/ls4scheduler/internal/night"
	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
	"github.com/dlrabinowitz/ls4scheduler/internal/pointing"
	"github.com/dlrabinowitz/ls4scheduler/internal/selector"
	"github.com/dlrabinowitz/ls4scheduler/internal/sequence"
	"github.com/dlrabinowitz/ls4scheduler/internal/signals"
	"github.com/dlrabinowitz/ls4scheduler/internal/telescope"
	"github.com/dlrabinowitz/ls4scheduler/internal/weather"
	"golang.org/x/time/rate"
)

// CoarseTick is the idle-sleep and status-poll cadence the loop uses when no
// field is ready, per spec.md §4.4 step 7/§9.
const CoarseTick = 10 * time.Second

// NumCameraClears is how many clears to issue when the inter-exposure gap
// exceeds field.ClearIntervalHours, per scheduler.h:NUM_CAMERA_CLEARS.
const NumCameraClears = 2

// SchedulerContext threads every piece of mutable loop state explicitly,
// replacing the original's file-scope globals per spec.md §9.
type SchedulerContext struct {
	Fields []*field.Field
	Night  night.Context
	Site   oracle.Site

	Camera         *camera.Client
	CameraWorker   *camera.Worker
	Telescope      *telescope.Client
	Weather        *weather.Poller
	WeatherWindows []weather.Window // if non-nil, a simulated-run weather file overrides the live poller
	Signals        *signals.State

	FITS *fits.Header

	SequencePath string
	sidecarLine  int
	currentFilter string

	JournalPath string
	Verbose     int

	Log *log.Logger

	lastIndex    int // index of the field observed on the previous iteration, -1 if none
	lastReadTime float64
	focusDefault float64
	focusGood    bool

	statusLimiter *rate.Limiter
}

// NewContext builds a SchedulerContext for one night's run.
func NewContext(fields []*field.Field, nc night.Context, site oracle.Site, sequencePath, journalPath string, cameraHost, telescopeHost string, verbose int) *SchedulerContext {
	cam := camera.NewClient(cameraHost)
	return &SchedulerContext{
		Fields:        fields,
		Night:         nc,
		Site:          site,
		Camera:        cam,
		CameraWorker:  camera.NewWorker(cam),
		Telescope:     telescope.NewClient(telescopeHost),
		Weather:       weather.NewPoller(telescope.NewClient(telescopeHost), 0.2),
		Signals:       signals.NewState(),
		FITS:          fits.NewHeader(),
		SequencePath:  sequencePath,
		JournalPath:   journalPath,
		Verbose:       verbose,
		Log:           log.New(os.Stderr, "obsloop: ", log.LstdFlags),
		lastIndex:     -1,
		statusLimiter: rate.NewLimiter(rate.Limit(1.0), 1),
	}
}

// pollWeather classifies the weather as bad if the poll fails or the dome
// is not open, per spec.md §4.4 step 3. A loaded WeatherWindows list (from a
// simulated-run weather file, spec.md §6) takes priority over the live
// dome-status poller.
func (c *SchedulerContext) pollWeather(nowJD float64) bool {
	if c.WeatherWindows != nil {
		dayFraction := nowJD - float64(int(nowJD))
		return weather.Good(c.WeatherWindows, dayFraction)
	}
	good, err := c.Weather.IsGood(float64(telescope.DefaultTimeout / time.Second))
	if err != nil {
		c.logf(1, "weather poll failed, treating as bad: %v", err)
		return false
	}
	return good
}

// pollSidecar reparses the new-fields sidecar (§6: "<sequence_file>.add")
// for records beyond the last-seen line, initializing and appending the
// observable ones, per spec.md §4.4 step 2.
func (c *SchedulerContext) pollSidecar(nowJD float64) {
	path := c.SequencePath + ".add"
	if _, err := os.Stat(path); err != nil {
		return
	}
	newFields, next, filter, errs, err := sequence.ParseFile(path, c.sidecarLine, c.currentFilter)
	if err != nil {
		return
	}
	for _, e := range errs {
		c.logf(1, "sidecar parse error: %v", e)
	}
	c.sidecarLine = next
	c.currentFilter = filter
	for _, f := range newFields {
		f.Index = len(c.Fields)
		initFieldFeasibility(f, c.Night, c.Site, nowJD)
		if f.Doable {
			c.Fields = append(c.Fields, f)
		}
	}
}

func (c *SchedulerContext) logf(level int, format string, args ...any) {
	if c.Verbose >= level {
		c.Log.Printf(format, args...)
	}
}

// flushJournal truncates and rewrites the recovery journal from scratch,
// per spec.md §4.7.
func (c *SchedulerContext) flushJournal(date time.Time) error {
	if err := journal.Write(c.JournalPath, c.Fields, date); err != nil {
		return fmt.Errorf("obsloop: flush journal: %w", err)
	}
	return nil
}

// InitFields seeds every field's feasibility window for the night. Callers
// parsing a sequence file fresh (no recovery journal to resume from) must
// call this once before the first Run/selectorTick, per spec.md §4.1-4.2;
// fields resumed from the journal already carry a computed window and don't
// need it recomputed.
func InitFields(fields []*field.Field, nc night.Context, site oracle.Site, nowJD float64) {
	for _, f := range fields {
		initFieldFeasibility(f, nc, site, nowJD)
	}
}

// initFieldFeasibility seeds a newly parsed field's doable/jd_rise/jd_set
// feasibility window for the night, and applies the moon-veto (spec.md
// §8.3 scenario 5): within MIN_MOON_SEPARATION of the moon when the moon is
// more than half illuminated permanently disables the field for the night.
func initFieldFeasibility(f *field.Field, nc night.Context, site oracle.Site, nowJD float64) {
	f.Doable = true

	switch f.Kind {
	case field.KindDark, field.KindDomeFlat:
		f.JDRise, f.JDSet = nc.JDStart, nc.JDEnd
	case field.KindFocus, field.KindOffsetPointing:
		f.JDRise, f.JDSet = nc.JDStart, nc.JDEnd
	case field.KindEveningFlat:
		f.JDRise, f.JDSet = nc.JDSunset, nc.JDEvening12
	case field.KindMorningFlat:
		f.JDRise, f.JDSet = nc.JDMorning12, nc.JDSunrise
	default: // Sky
		riseHA := -oracle.MaxHourAngle
		setHA := oracle.MaxHourAngle
		f.JDRise, f.JDSet = riseSetJD(f, nc, site, riseHA, setHA)
	}

	if f.Kind == field.KindSky && nc.PercentMoon > 0.5 {
		sep := oracle.AngularSeparation(f.RAHours, f.DecDeg, nc.RAMoon, nc.DecMoon)
		if sep < field.MinMoonSeparation {
			f.Doable = false
		}
	}
}

// riseSetJD finds the JDs bounding the window during which the field's hour
// angle is within [riseHA,setHA] and airmass stays under the feasibility
// cap, scanning the night's window at coarse resolution.
func riseSetJD(f *field.Field, nc night.Context, site oracle.Site, riseHA, setHA float64) (jdRise, jdSet float64) {
	const steps = 288
	jdRise, jdSet = nc.JDStart, nc.JDEnd
	span := nc.JDEnd - nc.JDStart
	if span <= 0 {
		return nc.JDStart, nc.JDStart
	}
	foundRise := false
	step := span / steps
	for i := 0; i <= steps; i++ {
		jd := nc.JDStart + float64(i)*step
		lst := oracle.LSTAt(jd, site.LongitudeHoursWest)
		ha := oracle.NormalizeHA(lst - f.RAHours)
		am := oracle.Airmass(ha, f.DecDeg, site.LatitudeDeg)
		feasible := ha >= riseHA && ha <= setHA && am <= oracle.MaxAirmass
		if feasible && !foundRise {
			jdRise = jd
			foundRise = true
		}
		if feasible {
			jdSet = jd
		}
	}
	if !foundRise {
		return nc.JDStart, nc.JDStart // never feasible
	}
	return jdRise, jdSet
}

// applyRepeatVisitCorrections computes the pointing/tracking corrections
// applied on a repeat Sky visit (spec.md §4.4).
func applyRepeatVisitCorrections(ha0, ha, dec float64) (raCorrectionDeg, decCorrectionDeg, raRate, decRate float64) {
	raCorrectionDeg = pointing.RACorrection(ha0, ha)
	decCorrectionDeg = pointing.DecCorrection(ha0, ha)
	raRate = pointing.RARate(ha, dec)
	decRate = pointing.DecRate(ha, dec)
	return
}

// selectorTick runs one selection pass: status update + tiered selection.
func (c *SchedulerContext) selectorTick(nowJD float64, badWeather bool) (int, bool) {
	return selector.SelectNext(c.Fields, nowJD, badWeather, c.lastIndex)
}

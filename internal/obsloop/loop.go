package obsloop

import (
	"context"
	"fmt"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/camera"
	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
)

// ErrSunrise is returned by Run when the loop stops because UT has passed
// sunrise, per spec.md §4.4 step 1 -- a normal end-of-night exit, not a
// failure. Callers should treat it the same as a nil error.
var ErrSunrise = fmt.Errorf("obsloop: past sunrise, ending the night")

// Run drives the observation loop until sunrise or a terminate signal, per
// spec.md §4.4's eight pseudo-steps. It returns nil on a terminate-signal
// exit, ErrSunrise on a clean end-of-night exit, and a non-nil error
// otherwise only for a FatalStateError-class condition.
func (c *SchedulerContext) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return c.shutdown()
		default:
		}

		if c.Signals.Terminating() {
			return c.shutdown()
		}

		now := nowJD()
		if now > c.Night.JDSunrise {
			c.logf(0, "past sunrise, stopping")
			if err := c.shutdown(); err != nil {
				return err
			}
			return ErrSunrise
		}

		c.pollSidecar(now)

		badWeather := !c.pollWeather(now)

		if c.Signals.Paused() {
			if _, err := c.Telescope.Stop(telescopeTimeout); err != nil {
				c.logf(1, "stop during pause failed: %v", err)
			}
			sleepOrDone(ctx, CoarseTick)
			continue
		}

		idx, ok := c.selectorTick(now, badWeather)
		if !ok {
			if _, err := c.Telescope.Stop(telescopeTimeout); err != nil {
				c.logf(1, "stop while idle failed: %v", err)
			}
			sleepOrDone(ctx, CoarseTick)
			continue
		}

		if err := c.Observe(c.Fields[idx], idx, now); err != nil {
			c.logf(0, "observe field %d failed: %v", idx, err)
		}
		c.lastIndex = idx

		if err := c.flushJournal(time.Now()); err != nil {
			c.logf(0, "journal flush failed: %v", err)
		}
	}
}

func (c *SchedulerContext) shutdown() error {
	if _, err := c.Telescope.Stow(telescopeTimeout); err != nil {
		c.logf(0, "stow on shutdown failed: %v", err)
	}
	return c.flushJournal(time.Now())
}

const telescopeTimeout = 30 * time.Second

func sleepOrDone(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// nowJD returns the current moment as a Julian Date. Split out so tests can
// substitute a fixed clock if ever needed; the loop itself always wants
// wall-clock time.
func nowJD() float64 {
	t := time.Now().UTC()
	return oracle.DateToJD(t.Year(), int(t.Month()), t.Day(),
		float64(t.Hour()), float64(t.Minute()), float64(t.Second())+float64(t.Nanosecond())/1e9)
}

// Observe executes one visit of f, per spec.md §4.4's observe() procedure.
// It does not wait for this visit's exposure to read out: per
// _examples/original_source/src/scheduler.c:60 ("do not wait for readout of
// exposure before moving to next field"), the exposure is launched
// asynchronously and Observe returns once it is underway. The previous
// field's readout is instead checked at the top of this call, via
// checkPreviousReadout.
func (c *SchedulerContext) Observe(f *field.Field, idx int, nowJD float64) error {
	c.checkPreviousReadout()

	lst := oracle.LSTAt(nowJD, c.Site.LongitudeHoursWest)

	raHours, decDeg := f.RAHours, f.DecDeg
	if override, overrideDec, ok := kindTarget(f, lst); ok {
		raHours, decDeg = override, overrideDec
	}

	ha := oracle.NormalizeHA(lst - raHours)

	isRepeatSky := f.Kind == field.KindSky && len(f.Visits) > 0
	if isRepeatSky {
		ha0 := f.Visits[0].HA
		raCorr, decCorr, raRate, decRate := applyRepeatVisitCorrections(ha0, ha, decDeg)
		raHours -= raCorr / 15.0
		decDeg -= decCorr
		if _, err := c.Telescope.SetTracking(raRate, decRate, telescopeTimeout); err != nil {
			c.logf(1, "set tracking rate failed: %v", err)
		}
	}

	exptimeSec := f.ExposureSec
	nSplit := splitExposureCount(ha, exptimeSec/3600.0)
	if nSplit > 1 {
		exptimeSec /= float64(nSplit)
		newRequired := f.NRequired + nSplit - 1
		if newRequired > field.MaxVisits {
			newRequired = field.MaxVisits
		}
		f.NRequired = newRequired
	}

	if needsSlew(f.Kind) {
		if _, err := c.Telescope.Track(raHours, decDeg, telescopeTimeout); err != nil {
			return fmt.Errorf("obsloop: slew: %w", err)
		}
		// For an Offset-kind field the Track call above re-points at the
		// nominal position, settling whatever offset the previous visit
		// applied, per spec.md §4.4 step 6.
	}

	var commandedFocusMM float64
	if f.Kind == field.KindFocus {
		commandedFocusMM = focusSequenceValue(f, len(f.Visits))
		if err := c.Telescope.SetFocus(commandedFocusMM, telescopeTimeout); err != nil {
			c.logf(0, "focus step to %.4f failed: %v", commandedFocusMM, err)
		}
	}

	c.updateFITSHeader(f, raHours, decDeg, ha, lst)

	gapHours := (nowJD - c.lastReadTime) * 24.0
	if c.lastReadTime <= 0 || gapHours > field.ClearIntervalHours {
		for i := 0; i < NumCameraClears; i++ {
			if _, err := c.Camera.Clear(float64(camera.ClearTimeSec), telescopeTimeout); err != nil {
				c.logf(1, "clear failed: %v", err)
			}
		}
	}

	mode := camera.ModeSingle
	timeout := camera.ExposeTimeout(mode, exptimeSec, camera.ReadoutTimeSec, camera.TransferTimeSec, true)
	fileRoot := fmt.Sprintf("fld%06d_%03d", f.Index, len(f.Visits)+1)

	c.CameraWorker.Launch(camera.ExposeRequest{
		ShutterOpen: f.Kind != field.KindDark,
		ExptimeSec:  exptimeSec,
		FileRoot:    fileRoot,
		Mode:        mode,
		Timeout:     timeout,
	}, telescopeTimeout)
	c.CameraWorker.Post()

	// Record the visit now, before the readout completes: a bad readout
	// reply is only discovered on the following Observe call, where
	// checkPreviousReadout decrements NDone and bumps BadReadCount; the
	// visit entry recorded here is kept.
	f.RecordVisit(field.Visit{
		UT:           c.Night.UT(nowJD),
		JD:           nowJD,
		LST:          lst,
		HA:           ha,
		Airmass:      oracle.Airmass(ha, decDeg, c.Site.LatitudeDeg),
		ActualExptHr: exptimeSec / 3600.0,
		FocusMM:      commandedFocusMM,
		Filename:     fileRoot,
	})
	f.JDNext = nowJD + f.IntervalHours/24.0
	f.NDone++
	c.lastReadTime = nowJD

	c.handleFocusSequence(f)

	return nil
}

// checkPreviousReadout waits for the previous field's exposure to finish
// reading out and rolls back its optimistic NDone if the reply came back
// bad, per _examples/original_source/src/scheduler.c:1964's
// wait_camera_readout call at the top of the next observe_next_field. It
// polls camera status until the shutter/CCD is idle before waiting on the
// result itself, so a slow camera doesn't make WaitReadout's deadline look
// like a dropped reply.
func (c *SchedulerContext) checkPreviousReadout() {
	if c.lastIndex < 0 {
		return
	}

	timeout := time.Duration(camera.ExposureOverheadHours * 3600 * float64(time.Second))
	pollCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.CameraWorker.PollUntilIdle(pollCtx, c.statusLimiter, telescopeTimeout); err != nil {
		c.logf(1, "camera idle poll for field %d failed: %v", c.lastIndex, err)
	}

	res, err := c.CameraWorker.WaitReadout(context.Background(), timeout)
	if err != nil {
		c.logf(1, "readout wait for field %d failed: %v", c.lastIndex, err)
		return
	}
	if res.Err != nil {
		c.logf(0, "readout error for field %d: %v", c.lastIndex, res.Err)
		return
	}
	if res.Reply.IsError() {
		prev := c.Fields[c.lastIndex]
		prev.NDone--
		prev.BadReadCount++
		c.logf(0, "bad readout on field %d, retrying (bad_read_count=%d)", c.lastIndex, prev.BadReadCount)
	}
}

func (c *SchedulerContext) updateFITSHeader(f *field.Field, raHours, decDeg, ha, lst float64) {
	_ = c.FITS.UpdateOrAdd("RA", fmt.Sprintf("%.6f", raHours))
	_ = c.FITS.UpdateOrAdd("DEC", fmt.Sprintf("%.6f", decDeg))
	_ = c.FITS.UpdateOrAdd("HA", fmt.Sprintf("%.6f", ha))
	_ = c.FITS.UpdateOrAdd("LST", fmt.Sprintf("%.6f", lst))
	_ = c.FITS.UpdateOrAdd("FILTERNAME", f.Filter)
	_ = c.FITS.UpdateOrAdd("IMAGETYPE", f.Kind.String())
	_ = c.FITS.UpdateOrAdd("SEQUENCE", fmt.Sprintf("%d", len(f.Visits)+1))

	for _, w := range c.FITS.Words() {
		if _, err := c.Camera.Header(w.Keyword, w.Value, telescopeTimeout); err != nil {
			c.logf(1, "header push %s failed: %v", w.Keyword, err)
		}
	}
}

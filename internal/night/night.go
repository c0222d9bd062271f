// Package night builds the nightly observing window on top of the
// astronomical oracle: twilight selection, startup delay, minimum execution
// time, and the 12-hour symmetric contraction spec.md §4.2 requires so that
// downstream signed hour-difference arithmetic never sees a span over 12h.
package night

import (
	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
)

// Timing constants ported from scheduler.h.
const (
	StartupTime      = 0.0     // hours added after evening twilight before opening
	MinExecutionTime = 0.029   // hours subtracted before morning twilight (~1.7 min)
)

// Context is the full night context the observation loop consumes: the
// oracle's raw almanac bundle plus the derived window bounds.
type Context struct {
	oracle.NightContext

	Use18Deg bool

	UTStart, JDStart, LSTStart float64
	UTEnd, JDEnd, LSTEnd       float64
}

// InitNight computes tonight's almanac via oracle.Tonight and derives the
// observing-window bounds, per spec.md §4.2. use18Deg selects 18-degree
// twilight as the start/end boundary instead of the 12-degree default.
func InitNight(date oracle.Date, s oracle.Site, use18Deg bool) Context {
	nc := oracle.Tonight(date, s)

	jdStart := nc.JDEvening12
	jdEnd := nc.JDMorning12
	if use18Deg {
		jdStart = nc.JDEvening18
		jdEnd = nc.JDMorning18
	}

	jdStart += StartupTime / 24.0
	jdEnd -= MinExecutionTime / 24.0

	lstStart := oracle.LSTAt(jdStart, s.LongitudeHoursWest)
	lstEnd := oracle.LSTAt(jdEnd, s.LongitudeHoursWest)

	// Contract symmetrically if the night spans more than 12h of LST, so
	// |lstEnd - lstStart| stays within the range NormalizeHA's downstream
	// callers assume.
	span := oracle.NormalizeHA(lstEnd - lstStart)
	if span < 0 {
		span += 24.0
	}
	if span > 12.0 {
		excess := span - 12.0
		jdStart += (excess / 2.0) / 24.0
		jdEnd -= (excess / 2.0) / 24.0
		lstStart = oracle.LSTAt(jdStart, s.LongitudeHoursWest)
		lstEnd = oracle.LSTAt(jdEnd, s.LongitudeHoursWest)
	}

	return Context{
		NightContext: nc,
		Use18Deg:     use18Deg,
		UTStart:      nc.UT(jdStart),
		JDStart:      jdStart,
		LSTStart:     lstStart,
		UTEnd:        nc.UT(jdEnd),
		JDEnd:        jdEnd,
		LSTEnd:       lstEnd,
	}
}

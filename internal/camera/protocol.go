// Package camera implements the camera command channel: an ASCII
// line-protocol client over two TCP ports (command and status), the
// exposure-mode timeout table, the async expose worker, and bad-readout
// recovery, per spec.md §4.5.
//
// Grounded in _examples/original_source/src/scheduler_camera.h (verbs,
// ports, timing constants) and src/scheduler_status.c (reply parsing) /
// src/socket.c (one TCP connection per command, request then reply).
package camera

import "time"

// Ports and machine-name default, per scheduler_camera.h.
const (
	DefaultMachineName = "pco-nuc"
	CommandPort        = 5000
	StatusPort         = 5001

	ErrorReply = "ERROR"
	DoneReply  = "DONE"

	ClearTimeSec       = 20
	ReadoutTimeSec     = 40
	TransferTimeSec    = 10
	CameraTimeoutSec   = 5
	CommandDelay       = 100 * time.Millisecond
)

// ExposureOverheadHours is the fixed per-exposure overhead the observation
// loop budgets for readout, in hours (scheduler_camera.h:EXPOSURE_OVERHEAD).
const ExposureOverheadHours = (ReadoutTimeSec + 5.0) / 3600.0

// Mode is the closed set of exposure modes spec.md §4.5 names.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeFirst  Mode = "first"
	ModeNext   Mode = "next"
	ModeLast   Mode = "last"
)

// Command verbs the scheduler issues, per scheduler_camera.h.
const (
	VerbOpenShutter  = "open_shutter"
	VerbCloseShutter = "close_shutter"
	VerbStatus       = "status"
	VerbClear        = "clear"
	VerbHeader       = "header"
	VerbExpose       = "expose"
	VerbShutdown     = "shutdown"
	VerbReboot       = "reboot"
	VerbRestart      = "restart"
)

// ExposeTimeout computes the reply-deadline for an expose command, per the
// mode table in spec.md §4.5. exptimeSec, readoutSec and fetchSec are all in
// seconds; wait selects the "wait=true" vs "wait=false" column.
func ExposeTimeout(mode Mode, exptimeSec, readoutSec, fetchSec float64, wait bool) time.Duration {
	var sec float64
	switch mode {
	case ModeSingle:
		if wait {
			sec = exptimeSec + readoutSec + fetchSec + 5
		} else {
			sec = exptimeSec + readoutSec + 5
		}
	case ModeFirst:
		sec = exptimeSec + readoutSec + 5
	case ModeNext:
		if wait {
			sec = max(exptimeSec+readoutSec, fetchSec) + 5
		} else {
			sec = exptimeSec + readoutSec + 5
		}
	case ModeLast:
		if wait {
			sec = fetchSec + 5
		} else {
			sec = readoutSec + 5
		}
	default:
		sec = exptimeSec + readoutSec + fetchSec + 5
	}
	return time.Duration(sec * float64(time.Second))
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

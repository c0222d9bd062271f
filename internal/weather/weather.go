// Package weather classifies the current weather as good or bad for
// observing, either from a live telescope/dome status poll or, for
// simulated runs, from a weather file of scheduled dome-open windows, per
// spec.md §4.4 and §6.
package weather

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dlrabinowitz/ls4scheduler/internal/telescope"
)

// Window is one scheduled dome-open interval from a weather file: the dome
// is open starting at DayFraction (fraction of a UT day) for DurationHours.
type Window struct {
	DayFraction   float64
	DurationHours float64
}

// ParseFile reads a weather file per spec.md §6: whitespace-separated
// fields whose 4th and 6th columns are the dome-open day-fraction and the
// window duration in hours. Malformed lines are skipped rather than
// aborting the whole file, matching the InputParseError "reject and
// continue" policy spec.md §7 states for malformed records generally.
func ParseFile(path string) ([]Window, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads windows from r.
func Parse(r io.Reader) ([]Window, error) {
	var windows []Window
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 6 {
			continue
		}
		dayFrac, err1 := strconv.ParseFloat(parts[3], 64)
		duration, err2 := strconv.ParseFloat(parts[5], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		windows = append(windows, Window{DayFraction: dayFrac, DurationHours: duration})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("weather: scan: %w", err)
	}
	return windows, nil
}

// Good reports whether dayFraction (current UT time of day, as a fraction
// of 24h) falls inside any of the scheduled dome-open windows.
func Good(windows []Window, dayFraction float64) bool {
	for _, w := range windows {
		end := w.DayFraction + w.DurationHours/24.0
		if dayFraction >= w.DayFraction && dayFraction < end {
			return true
		}
	}
	return false
}

// Poller classifies live weather by polling the telescope channel's
// dome/weather status, rate-limited so the observation loop never floods
// the telescope controller with polls every iteration.
type Poller struct {
	client   *telescope.Client
	limiter  *rate.Limiter
	lastGood bool
}

// NewPoller builds a Poller that allows at most one status poll per
// interval (golang.org/x/time/rate, the same pacing idiom internal/camera
// uses for status polls).
func NewPoller(client *telescope.Client, pollsPerSecond float64) *Poller {
	return &Poller{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(pollsPerSecond), 1),
	}
}

// IsGood polls dome status and reports whether the dome is open. Weather is
// classified as bad if the poll fails or the dome is not open, per spec.md
// §4.4 step 3. If the limiter has no tokens available it returns the last
// known answer unchanged rather than blocking the loop.
func (p *Poller) IsGood(timeoutSeconds float64) (bool, error) {
	if !p.limiter.Allow() {
		return p.lastGood, nil
	}
	timeout := time.Duration(timeoutSeconds * float64(time.Second))
	r, err := p.client.Send(telescope.VerbDomeStatus, timeout)
	if err != nil {
		p.lastGood = false
		return false, fmt.Errorf("weather: dome status poll: %w", err)
	}
	if !r.OK {
		p.lastGood = false
		return false, nil
	}
	p.lastGood = strings.Contains(strings.ToLower(r.Payload), "open")
	return p.lastGood, nil
}

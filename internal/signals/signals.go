// Package signals models the scheduler's cooperative pause/terminate
// controls as two atomic booleans, per spec.md §4.8/§9: no other
// cross-goroutine state exists, so no locks are needed.
//
// Grounded in _examples/original_source/src/scheduler_signals.c
// (SIGUSR1 pause / SIGUSR2 resume / SIGTERM terminate), restated with
// signal.Notify the way the teacher's cmd/collector/main.go wires
// SIGINT/SIGTERM.
package signals

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// State holds the two flags the observation loop reads every iteration.
type State struct {
	pause     atomic.Bool
	terminate atomic.Bool
}

// NewState returns a State with both flags clear.
func NewState() *State {
	return &State{}
}

// Paused reports whether the loop should refuse new exposures and stop the
// telescope.
func (s *State) Paused() bool { return s.pause.Load() }

// Terminating reports whether the loop should flush the journal, stow the
// telescope, and exit.
func (s *State) Terminating() bool { return s.terminate.Load() }

// Pause sets the pause flag (equivalent to the original's SIGUSR1 handler).
func (s *State) Pause() { s.pause.Store(true) }

// Resume clears the pause flag (SIGUSR2).
func (s *State) Resume() { s.pause.Store(false) }

// Terminate sets the terminate flag (SIGTERM).
func (s *State) Terminate() { s.terminate.Store(true) }

// Install wires OS signals to the State: SIGTERM sets Terminate, SIGUSR1
// sets Pause, SIGUSR2 sets Resume. It returns a stop function that releases
// the underlying signal channel.
func Install(s *State) (stop func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				switch sig {
				case syscall.SIGTERM:
					s.Terminate()
				case syscall.SIGUSR1:
					s.Pause()
				case syscall.SIGUSR2:
					s.Resume()
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

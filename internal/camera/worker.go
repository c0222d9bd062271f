package camera

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ExposeRequest parameterizes one async exposure: command arguments are
// copied in before the worker launches, per spec.md §5's "the worker reads
// command arguments that were copied before launch" ordering guarantee.
type ExposeRequest struct {
	ShutterOpen bool
	ExptimeSec  float64
	FileRoot    string
	Mode        Mode
	Timeout     time.Duration
}

// ExposeResult is what the worker posts to the done-semaphore.
type ExposeResult struct {
	Reply Reply
	Err   error
}

// Worker runs one exposure command in a separate goroutine so the
// observation loop can reposition the telescope while the camera reads out,
// per spec.md §4.5's async expose contract. Start/done semaphores are
// modeled as bounded channels of capacity 1, per spec.md §9's design note.
type Worker struct {
	client *Client
	start  chan struct{}
	done   chan ExposeResult
}

// NewWorker returns a Worker bound to client, with capacity-1 start/done
// channels.
func NewWorker(client *Client) *Worker {
	return &Worker{
		client: client,
		start:  make(chan struct{}, 1),
		done:   make(chan ExposeResult, 1),
	}
}

// Launch starts the worker goroutine for req. The worker waits on the
// start-semaphore (bounded by startTimeout) before sending the expose
// command, then posts the result to the done-semaphore on completion. The
// caller should call Post immediately after Launch, per the async contract.
func (w *Worker) Launch(req ExposeRequest, startTimeout time.Duration) {
	go func() {
		select {
		case <-w.start:
		case <-time.After(startTimeout):
			w.done <- ExposeResult{Err: fmt.Errorf("camera: worker timed out waiting for start token")}
			return
		}

		reply, err := w.client.Expose(req.ShutterOpen, req.ExptimeSec, req.FileRoot, req.Mode, req.Timeout)
		w.done <- ExposeResult{Reply: reply, Err: err}
	}()
}

// Post releases the start-semaphore, letting the launched worker proceed.
// Non-blocking: the channel has capacity 1 and Launch is expected to have
// been called first.
func (w *Worker) Post() {
	select {
	case w.start <- struct{}{}:
	default:
	}
}

// WaitReadout polls the done-semaphore, bounded by a readout-time-derived
// deadline, to synchronize before the next exposure is issued (spec.md
// §4.5's wait_readout). ctx allows the caller to fold in a shutdown signal.
func (w *Worker) WaitReadout(ctx context.Context, timeout time.Duration) (ExposeResult, error) {
	select {
	case res := <-w.done:
		return res, nil
	case <-time.After(timeout):
		return ExposeResult{}, fmt.Errorf("camera: timed out waiting for readout")
	case <-ctx.Done():
		return ExposeResult{}, ctx.Err()
	}
}

// PollUntilIdle polls camera status at the given rate limit until the
// Exposing flag reads all-zero (the shutter has closed and the CCD is
// reading out), or ctx is cancelled. statusLimiter paces the polls so the
// loop never floods the status port, per SPEC_FULL.md's rate-limiting
// wiring for golang.org/x/time.
func (w *Worker) PollUntilIdle(ctx context.Context, statusLimiter *rate.Limiter, pollTimeout time.Duration) error {
	for {
		if err := statusLimiter.Wait(ctx); err != nil {
			return err
		}
		reply, err := w.client.PollStatus(pollTimeout)
		if err != nil {
			return err
		}
		v := reply.String("EXPOSING")
		if strings.EqualFold(v, "false") || strings.Trim(v, "0") == "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

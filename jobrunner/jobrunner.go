// Package jobrunner implements the per-tick host pump spec.md §5 describes
// in prose: a Driver wraps one aggregate.Job, calling it one tick at a time,
// and exposes the Pause/Unpause/Cancel verbs that section names without
// giving them an owning type.
package jobrunner

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/crawlserv-go/sentimentcore/aggregate"
	"github.com/crawlserv-go/sentimentcore/corpus"
)

type state int32

const (
	stateInitializing state = iota
	stateRunning
	statePaused
	stateDone
)

// Driver pumps one aggregate.Job with cooperative pause/cancel support. It
// holds no goroutine of its own — the host calls Tick from whatever thread
// it runs the job on, matching spec.md §5's "single-threaded cooperative"
// scheduling model.
type Driver struct {
	job *aggregate.Job

	mu    sync.Mutex
	state state
	rows  []aggregate.Row

	running atomic.Bool

	// OnWarning, when set, receives non-fatal errors (DecodeFailed,
	// CorpusIncomplete) the wrapped job surfaces; Tick swallows them and
	// continues rather than stopping the job.
	OnWarning func(error)
}

// NewDriver constructs a Driver around job, wiring the cooperative
// is-running flag into job.IsRunning.
func NewDriver(job *aggregate.Job) *Driver {
	d := &Driver{job: job, state: stateInitializing}
	d.running.Store(true)
	job.IsRunning = d.running.Load
	return d
}

// Tick advances the wrapped job by one corpus, or — on the final tick —
// computes and returns emitted rows. A paused Driver's Tick is a no-op
// returning (false, nil); call Unpause first. The first Tick call ends the
// "initializing" window Pause refuses to act within, whatever its result.
func (d *Driver) Tick() (done bool, err error) {
	d.mu.Lock()
	if d.state == statePaused {
		d.mu.Unlock()
		return false, nil
	}
	if d.state == stateDone {
		d.mu.Unlock()
		return true, nil
	}
	d.state = stateRunning
	d.mu.Unlock()

	rows, jobDone, err := d.job.Tick()
	if err != nil {
		var cerr *corpus.Error
		if errors.As(err, &cerr) && !cerr.Kind.Fatal() {
			if d.OnWarning != nil {
				d.OnWarning(err)
			}
			return false, nil
		}
		return false, err
	}

	if jobDone {
		d.mu.Lock()
		d.state = stateDone
		d.rows = rows
		d.mu.Unlock()
	}
	return jobDone, nil
}

// Pause suspends ticking between calls to Tick. Pausing during the
// initialization window (before the first Tick call) is rejected, matching
// spec.md §5's "pausing is disallowed while initialization is in progress".
func (d *Driver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case stateInitializing:
		return fmt.Errorf("jobrunner: cannot pause before the first tick")
	case stateDone:
		return fmt.Errorf("jobrunner: job already finished")
	case statePaused:
		return nil
	default:
		d.state = statePaused
		return nil
	}
}

// Unpause resumes a paused Driver; it is an error to call on a Driver that
// is not currently paused.
func (d *Driver) Unpause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != statePaused {
		return fmt.Errorf("jobrunner: driver is not paused")
	}
	d.state = stateRunning
	return nil
}

// Cancel turns the cooperative is-running flag false. The in-flight tick
// returns without emitting partial results for the in-flight date or
// article, per spec.md §5; already-emitted rows from prior ticks are not
// rolled back.
func (d *Driver) Cancel() {
	d.running.Store(false)
}

// Done reports whether the wrapped job has produced its final rows.
func (d *Driver) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateDone
}

// Rows returns the final emitted rows. It is only meaningful once Done
// reports true.
func (d *Driver) Rows() []aggregate.Row {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rows
}

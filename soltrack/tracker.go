package soltrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/soltracker/logger"
)

type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CycleReport describes one scan cycle. Err is set only when the cycle
// failed as a whole; forward failures of single solutions live in Forward.
type CycleReport struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Scan       ScanStats
	Authors    int
	Forward    ForwardReport
	Err        error
}

// Run is the handle of a started cycle.
type Run struct {
	done   chan struct{}
	report CycleReport
}

// Done is closed once the cycle has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the cycle finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) (CycleReport, error) {
	select {
	case <-r.done:
		return r.report, r.report.Err
	case <-ctx.Done():
		return CycleReport{}, ctx.Err()
	}
}

// Tracker runs the scan, keep latest, forward cycle exactly once.
type Tracker struct {
	logger  *slog.Logger
	scanner *Scanner
	sink    Sink

	mu     sync.Mutex
	state  State
	report CycleReport
}

func NewTracker(scanner *Scanner, sink Sink, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		logger:  log.With("module", "soltrack"),
		scanner: scanner,
		sink:    sink,
		state:   StateNotStarted,
	}
}

// Start launches the cycle in the background and returns immediately.
// A tracker can be started once; later calls return ErrAlreadyStarted.
// Cancelling ctx interrupts the cycle between file visits.
func (t *Tracker) Start(ctx context.Context) (*Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateNotStarted {
		return nil, ErrAlreadyStarted()
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	t.state = StateRunning
	t.report = CycleReport{RunID: runID, StartedAt: time.Now()}

	run := &Run{done: make(chan struct{})}
	ctx = logger.WithRunID(logger.WithLogger(ctx, t.logger), runID.String())
	go t.cycle(ctx, run, t.report)

	return run, nil
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Report returns the report of the current or finished cycle.
func (t *Tracker) Report() CycleReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}

func (t *Tracker) cycle(ctx context.Context, run *Run, report CycleReport) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			report.Err = ErrCyclePanicked().SetDebug(fmt.Errorf("%v", r))
			log.Error("solution tracker cycle panicked", "panic", r)
		}
		report.FinishedAt = time.Now()
		t.finish(run, report)
	}()

	log.Info("scanning solution archive")

	latest := NewLatest()
	stats, err := t.scanner.Scan(ctx, func(sol Solution) {
		latest.Offer(sol)
	})
	report.Scan = stats
	if err != nil {
		report.Err = ErrScanFailed().SetDebug(err)
		log.Error("solution scan failed, nothing forwarded",
			"error", err,
			"files", stats.Files,
			"matched", stats.Matched)
		return
	}

	sols := latest.Snapshot()
	report.Authors = len(sols)
	log.Info("solution scan finished",
		"files", stats.Files,
		"matched", stats.Matched,
		"authors", len(sols))

	report.Forward = Forward(ctx, sols, t.sink, log)

	var fwdErr *ForwardError
	if errors.As(report.Forward.Err(), &fwdErr) {
		log.Warn("some solutions were not forwarded",
			"forwarded", len(report.Forward.Forwarded),
			"failed_authors", fwdErr.AuthorIDs())
		return
	}
	log.Info("all solutions forwarded", "forwarded", len(report.Forward.Forwarded))
}

func (t *Tracker) finish(run *Run, report CycleReport) {
	t.mu.Lock()
	t.report = report
	if report.Err != nil {
		t.state = StateFailed
	} else {
		t.state = StateCompleted
	}
	t.mu.Unlock()

	run.report = report
	close(run.done)
}

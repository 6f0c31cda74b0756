package distrib

import (
	"context"
	"errors"
	"fmt"

	"github.com/programme-lv/soltracker/soltrack"
)

type namedSink struct {
	name string
	sink soltrack.Sink
}

// Fanout puts every solution into all of its sinks. A put fails if any
// sink fails; the other sinks still receive the solution.
type Fanout struct {
	sinks   []namedSink
	closers []func()
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) Add(name string, sink soltrack.Sink) {
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Names() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.name
	}
	return names
}

func (f *Fanout) onClose(fn func()) {
	f.closers = append(f.closers, fn)
}

func (f *Fanout) Close() {
	for i := len(f.closers) - 1; i >= 0; i-- {
		f.closers[i]()
	}
	f.closers = nil
}

func (f *Fanout) Put(ctx context.Context, taskID string, solutionID int64, authorID int64, langName string, content []byte) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.sink.Put(ctx, taskID, solutionID, authorID, langName, content)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

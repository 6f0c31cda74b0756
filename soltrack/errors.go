package soltrack

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/programme-lv/soltracker/srvcerror"
)

// TraversalError means the archive could not be walked completely.
// It aborts the whole cycle.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("failed to traverse %q: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

func newTraversalError(path string, err error) *TraversalError {
	return &TraversalError{Path: path, Err: err}
}

var errNotDir = errors.New("not a directory")

// ForwardError collects the per author failures of one forward pass.
type ForwardError struct {
	Failed map[int64]error
}

// AuthorIDs returns the ids of authors whose solution was not forwarded,
// in ascending order.
func (e *ForwardError) AuthorIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (e *ForwardError) Error() string {
	ids := e.AuthorIDs()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("failed to forward solutions of %d author(s): [%s]",
		len(ids), strings.Join(strs, ", "))
}

func (e *ForwardError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.AuthorIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

const ErrCodeAlreadyStarted = "already_started"

func ErrAlreadyStarted() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeAlreadyStarted,
		"solution tracker has already been started",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeScanFailed = "scan_failed"

func ErrScanFailed() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeScanFailed,
		"solution archive scan failed",
	)
}

const ErrCodeCyclePanicked = "cycle_panicked"

func ErrCyclePanicked() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeCyclePanicked,
		"solution tracker cycle crashed",
	)
}

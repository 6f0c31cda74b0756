package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/soltracker/httpjson"
	"github.com/programme-lv/soltracker/soltrack"
	"github.com/programme-lv/soltracker/srvcerror"
)

type StatusError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Status struct {
	State         string       `json:"state"`
	RunID         *string      `json:"runId"`
	StartedAt     *time.Time   `json:"startedAt"`
	FinishedAt    *time.Time   `json:"finishedAt"`
	Files         int          `json:"files"`
	Matched       int          `json:"matched"`
	Authors       int          `json:"authors"`
	Forwarded     int          `json:"forwarded"`
	FailedAuthors []int64      `json:"failedAuthors"`
	Error         *StatusError `json:"error"`
}

func (s *StatusServer) getStatus(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	state := s.tracker.State()
	report := s.tracker.Report()

	status := Status{
		State:         state.String(),
		Files:         report.Scan.Files,
		Matched:       report.Scan.Matched,
		Authors:       report.Authors,
		Forwarded:     len(report.Forward.Forwarded),
		FailedAuthors: []int64{},
	}

	if state != soltrack.StateNotStarted {
		runID := report.RunID.String()
		status.RunID = &runID
		status.StartedAt = &report.StartedAt
	}
	if !report.FinishedAt.IsZero() {
		status.FinishedAt = &report.FinishedAt
	}

	var fwdErr *soltrack.ForwardError
	if errors.As(report.Forward.Err(), &fwdErr) {
		status.FailedAuthors = fwdErr.AuthorIDs()
	}

	if report.Err != nil {
		// the debug cause carries archive paths and stays in the log
		srvcErr := srvcerror.ErrInternalSE()
		errors.As(report.Err, &srvcErr)
		status.Error = &StatusError{
			Code:    srvcErr.ErrorCode(),
			Message: srvcErr.Message(),
		}
		logger.Debug("reporting failed cycle", "error", report.Err)
	}

	httpjson.WriteSuccessJson(w, status)
}

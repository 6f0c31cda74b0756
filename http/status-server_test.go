package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/programme-lv/soltracker/distrib"
	sthttp "github.com/programme-lv/soltracker/http"
	"github.com/programme-lv/soltracker/soltrack"
	"github.com/programme-lv/soltracker/solpath"
	"github.com/programme-lv/soltracker/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusEnvelope struct {
	Status string        `json:"status"`
	Data   sthttp.Status `json:"data"`
}

type fixedTracker struct {
	state  soltrack.State
	report soltrack.CycleReport
}

func (f fixedTracker) State() soltrack.State { return f.state }
func (f fixedTracker) Report() soltrack.CycleReport { return f.report }

func newTracker(fsys fstest.MapFS, sink soltrack.Sink) *soltrack.Tracker {
	scanner := soltrack.NewScanner(fsys, ".", solpath.Default(), 1)
	return soltrack.NewTracker(scanner, sink, slog.Default())
}

func getStatus(t *testing.T, srv *sthttp.StatusServer) sthttp.Status {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env statusEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "success", env.Status)
	return env.Data
}

func runToEnd(t *testing.T, tracker *soltrack.Tracker) {
	t.Helper()
	run, err := tracker.Start(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = run.Wait(ctx)
}

func TestStatusBeforeStart(t *testing.T) {
	tracker := newTracker(fstest.MapFS{}, distrib.NewMemSink())
	srv := sthttp.NewStatusServer(tracker, []string{"*"}, slog.LevelWarn)

	status := getStatus(t, srv)
	assert.Equal(t, "not_started", status.State)
	assert.Nil(t, status.RunID)
	assert.Nil(t, status.Error)
}

func TestStatusAfterCompletedCycle(t *testing.T) {
	sink := distrib.NewMemSink()
	sink.FailFor(20, errors.New("rejected"))
	fsys := fstest.MapFS{
		"1/10/5.cpp": {Data: []byte("a")},
		"1/10/7.cpp": {Data: []byte("b")},
		"2/20/1.py":  {Data: []byte("c")},
		"README.md":  {Data: []byte("d")},
	}
	tracker := newTracker(fsys, sink)
	runToEnd(t, tracker)

	srv := sthttp.NewStatusServer(tracker, []string{"*"}, slog.LevelWarn)
	status := getStatus(t, srv)

	assert.Equal(t, "completed", status.State)
	require.NotNil(t, status.RunID)
	require.NotNil(t, status.FinishedAt)
	assert.Equal(t, 4, status.Files)
	assert.Equal(t, 3, status.Matched)
	assert.Equal(t, 2, status.Authors)
	assert.Equal(t, 1, status.Forwarded)
	assert.Equal(t, []int64{20}, status.FailedAuthors)
	assert.Nil(t, status.Error)
}

func TestStatusAfterFailedScan(t *testing.T) {
	scanner := soltrack.NewScanner(fstest.MapFS{}, "missing", solpath.Default(), 1)
	tracker := soltrack.NewTracker(scanner, distrib.NewMemSink(), slog.Default())
	runToEnd(t, tracker)

	srv := sthttp.NewStatusServer(tracker, []string{"*"}, slog.LevelWarn)
	status := getStatus(t, srv)

	assert.Equal(t, "failed", status.State)
	require.NotNil(t, status.Error)
	assert.Equal(t, soltrack.ErrCodeScanFailed, status.Error.Code)
	assert.Equal(t, soltrack.ErrScanFailed().Message(), status.Error.Message)
	assert.NotContains(t, status.Error.Message, "missing", "archive paths stay in the log")
}

func TestStatusHidesNonServiceErrorText(t *testing.T) {
	tracker := fixedTracker{
		state:  soltrack.StateFailed,
		report: soltrack.CycleReport{Err: errors.New("open /srv/archive/secret: permission denied")},
	}
	srv := sthttp.NewStatusServer(tracker, []string{"*"}, slog.LevelWarn)
	status := getStatus(t, srv)

	require.NotNil(t, status.Error)
	assert.Equal(t, srvcerror.ErrCodeInternalServerError, status.Error.Code)
	assert.NotContains(t, status.Error.Message, "/srv/archive")
}

func TestListLanguagesAndHealth(t *testing.T) {
	srv := sthttp.NewStatusServer(newTracker(fstest.MapFS{}, distrib.NewMemSink()), []string{"*"}, slog.LevelWarn)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/languages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data []sthttp.ProgrammingLang `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data)
	assert.Equal(t, "python3.10", env.Data[0].ID)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRouteAnswersWithEnvelope(t *testing.T) {
	tracker := newTracker(fstest.MapFS{}, distrib.NewMemSink())
	srv := sthttp.NewStatusServer(tracker, []string{"*"}, slog.LevelWarn)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"error","code":"not_found","message":"route not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/soltracker/httpjson"
	"github.com/programme-lv/soltracker/soltrack"
)

// TrackerStatus is what the status server reads from the tracker.
type TrackerStatus interface {
	State() soltrack.State
	Report() soltrack.CycleReport
}

type StatusServer struct {
	tracker TrackerStatus
	router  *chi.Mux
}

func NewStatusServer(tracker TrackerStatus, allowedOrigins []string, logLevel slog.Level) *StatusServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("soltracker", httplog.Options{
		LogLevel:         logLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/healthz"},
		QuietDownPeriod:  time.Minute,
	})

	router.Use(httplog.RequestLogger(logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         3000,
	}))

	server := &StatusServer{
		tracker: tracker,
		router:  router,
	}

	server.routes()

	return server
}

func (s *StatusServer) Handler() http.Handler {
	return s.router
}

// Serve listens on address until ctx is cancelled.
func (s *StatusServer) Serve(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if lsErr := <-errCh; lsErr != nil && !errors.Is(lsErr, http.ErrServerClosed) {
			return lsErr
		}
		return err
	}
}

func (s *StatusServer) routes() {
	r := s.router
	r.Get("/healthz", s.healthz)
	r.Get("/status", s.getStatus)
	r.Get("/languages", s.listProgrammingLangs)
	r.NotFound(httpjson.NotFound)
	r.MethodNotAllowed(httpjson.MethodNotAllowed)
}

func (s *StatusServer) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/cors"

	"github.com/cardio-risk/backend/internal/assessment"
	"github.com/cardio-risk/backend/internal/errutil"
	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/middleware"
	"github.com/cardio-risk/backend/internal/models"
)

// NewRouter wires every route onto a CORS-wrapped mux router.
func NewRouter(h *assessment.Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	// Form
	r.HandleFunc("/", h.Form).Methods("GET")
	r.HandleFunc("/", h.SubmitForm).Methods("POST")

	// API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/assessments", h.Assess).Methods("POST")
	api.HandleFunc("/model", h.GetModel).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		errutil.WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
	}).Methods("GET")

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept-Language", middleware.RequestIDHeader},
	})

	return c.Handler(r)
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("Server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return goerr.Wrap(err, "server failed", goerr.V("addr", addr))
		}
		return nil
	case <-ctx.Done():
	}

	logging.From(ctx).Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shut down server")
	}
	return nil
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/susu3304/taru/internal/barrel"
	"github.com/susu3304/taru/internal/config"
	"github.com/susu3304/taru/internal/metrics"
)

type API struct {
	router  *mux.Router
	service *barrel.Service
	config  *config.Config
	logger  zerolog.Logger
	server  *http.Server
}

func New(cfg *config.Config, svc *barrel.Service, logger zerolog.Logger) *API {
	api := &API{
		router:  mux.NewRouter(),
		service: svc,
		config:  cfg,
		logger:  logger.With().Str("component", "api").Logger(),
	}

	api.setupRoutes()
	api.server = &http.Server{
		Addr:              cfg.WebBind,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api
}

func (a *API) setupRoutes() {
	a.router.Use(a.requestLogger)

	// Operational endpoints
	a.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	api := a.router.PathPrefix("/api").Subrouter()

	// Participants
	api.HandleFunc("/users", a.handleListParticipants).Methods("GET")
	api.HandleFunc("/users", a.handleRegisterParticipant).Methods("POST")
	api.HandleFunc("/users/{id}", a.handleRemoveParticipant).Methods("DELETE")
	api.HandleFunc("/beer", a.handleRecordConsumption).Methods("POST")
	api.HandleFunc("/leaderboard", a.handleLeaderboard).Methods("GET")

	// Barrel sessions
	api.HandleFunc("/barrel", a.handleCurrentSession).Methods("GET")
	api.HandleFunc("/barrel/start", a.handleOpenSession).Methods("POST")
	api.HandleFunc("/barrel/close", a.handleCloseSession).Methods("POST")
	api.HandleFunc("/barrel/history", a.handleListHistory).Methods("GET")

	// Full process-state wipe
	api.HandleFunc("/reset", a.handleReset).Methods("POST")
}

// Handler returns the router wrapped with CORS handling.
func (a *API) Handler() http.Handler {
	// When AllowedOrigins is "*", AllowCredentials must stay false
	corsOptions := cors.Options{
		AllowedOrigins:   a.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until Shutdown is called.
func (a *API) Start() error {
	a.logger.Info().Str("addr", a.config.WebBind).Msg("API server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Stopping API server")
	return a.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()

		a.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

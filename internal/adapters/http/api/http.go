// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/nobeldash/internal/adapters/render"
	"github.com/okian/nobeldash/internal/adapters/repository"
	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Controls returns selector options and slider bounds.
	Controls(ctx context.Context) (views.Controls, error)
	// DefaultView returns the view of a kind with default parameters.
	DefaultView(ctx context.Context, k views.Kind) (views.View, error)
	// View derives a view result from the current snapshot.
	View(ctx context.Context, v views.View) (views.Result, error)

	// Rendered assets.
	MapGeoJSON(ctx context.Context) ([]byte, error)
	GenderChart(ctx context.Context) ([]byte, error)
	Export(ctx context.Context, v views.View) ([]byte, error)

	// Reload re-reads the data files.
	Reload(ctx context.Context) (*repository.Snapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	viewsHandler  *ViewsHandler
	reloadHandler *ReloadHandler
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		viewsHandler:  NewViewsHandler(deps),
		reloadHandler: NewReloadHandler(deps),
		logger:        log,
	}
}

// NewRouter returns a chi router with the common middleware stack installed.
func NewRouter(log logger.Logger) chi.Router {
	if log == nil {
		log = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(chimw.Recoverer)
	r.Use(AccessLog(log))
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/views", MetricsMiddleware(s.viewsHandler.HandleList, "views"))
		r.Get("/views/map/geojson", MetricsMiddleware(s.viewsHandler.HandleMapGeoJSON, "map_geojson"))
		r.Get("/views/gender/chart.png", MetricsMiddleware(s.viewsHandler.HandleGenderChart, "gender_chart"))
		r.Get("/views/year/export.xlsx", MetricsMiddleware(s.viewsHandler.HandleExport(views.KindYear), "year_export"))
		r.Get("/views/category/export.xlsx", MetricsMiddleware(s.viewsHandler.HandleExport(views.KindCategory), "category_export"))
		r.Get("/views/{kind}", MetricsMiddleware(s.viewsHandler.HandleView, "view"))
		r.Post("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeBytes(w http.ResponseWriter, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// writeServiceError maps upstream errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, views.ErrUnknownView):
		writeError(w, http.StatusNotFound, views.Reason(err), err)
	case views.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: views.Reason(err), Message: views.Message(err)})
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, render.ErrNoBoundaries), errors.Is(err, render.ErrEmptyChart):
		writeError(w, http.StatusNotFound, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

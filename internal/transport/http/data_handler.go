package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "laborpulse/internal/errors"
	"laborpulse/internal/services"
)

// DataHandler serves the derived metrics table and the skills taxonomy.
type DataHandler struct {
	service DataServiceInterface
	logger  *slog.Logger
}

// NewDataHandler creates a DataHandler.
func NewDataHandler(service DataServiceInterface, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/metrics", h.GetMetrics)
	r.Get("/signals", h.GetSignals)
	r.Get("/series", h.GetSeries)
	r.Get("/skills", h.GetSkills)
	return r
}

// GetMetrics handles GET /api/data/metrics. Without parameters it serves the
// persisted table; ?baseline=YYYY-MM and ?smoothing=N recompute on the fly.
func (h *DataHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	query := services.MetricsQuery{Baseline: r.URL.Query().Get("baseline")}

	if raw := r.URL.Query().Get("smoothing"); raw != "" {
		window, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.RenderError(w, r, apierrors.ErrValidation("smoothing", "must be an integer"))
			return
		}
		query.Smoothing = window
	}

	rows, err := h.service.GetMetrics(r.Context(), query)
	if err != nil {
		h.renderMetricsError(w, r, query, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"metrics": rows,
		"count":   len(rows),
	})
}

func (h *DataHandler) renderMetricsError(w http.ResponseWriter, r *http.Request, query services.MetricsQuery, err error) {
	switch {
	case errors.Is(err, services.ErrNoData):
		apierrors.RenderError(w, r, apierrors.NotFoundError("metrics table"))
	case errors.Is(err, services.ErrInvalidQuery):
		apierrors.RenderError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Invalid metrics query", err.Error()))
	default:
		h.logger.ErrorContext(r.Context(), "metrics query failed",
			slog.String("baseline", query.Baseline),
			slog.Int("smoothing", query.Smoothing),
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.InternalError(err))
	}
}

// GetSignals handles GET /api/data/signals: the market-condition signals
// derived from the persisted metrics table.
func (h *DataHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetSignals(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			apierrors.RenderError(w, r, apierrors.NotFoundError("metrics table"))
			return
		}
		h.logger.ErrorContext(r.Context(), "signals query failed",
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.InternalError(err))
		return
	}
	render.JSON(w, r, report)
}

// GetSeries handles GET /api/data/series: the distinct series identifiers
// currently in the store.
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.GetSeriesIDs(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "series query failed",
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.InternalError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"series": ids,
		"count":  len(ids),
	})
}

// GetSkills handles GET /api/data/skills. A store without a taxonomy yields
// an empty list.
func (h *DataHandler) GetSkills(w http.ResponseWriter, r *http.Request) {
	taxonomy, err := h.service.GetSkills(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "skills query failed",
			slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.InternalError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"skills": taxonomy,
		"count":  len(taxonomy),
	})
}

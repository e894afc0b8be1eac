package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/carlosrabelo/tabula/internal/errors"
)

const maxRunLimit = 500

// RunsHandler serves the run history
type RunsHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RunsHandler {
	return &RunsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "runs_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the history routes
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)
	return r
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunLimit {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	runs, err := h.service.Runs(r.Context(), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, runs)
}

// GetRun handles GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, run)
}

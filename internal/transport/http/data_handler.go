package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/carlosrabelo/tabula/internal/errors"
)

type datasetKey struct{}

// DatasetResponse is the JSON form of a dataset
type DatasetResponse struct {
	Name    string              `json:"name"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// DataHandler serves the manifest and the generated datasets
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetManifest)
	r.Route("/{name}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Get("/summary", h.GetSummary)
	})
	return r
}

// DatasetCtx resolves the {name} parameter to a dataset file
func (h *DataHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, err := h.service.DatasetPath(chi.URLParam(r, "name"))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), datasetKey{}, path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetManifest handles GET /api/datasets
func (h *DataHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Manifest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// GetDataset handles GET /api/datasets/{name}. With ?format=csv the file is
// sent as written.
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
	case "csv":
		path, _ := r.Context().Value(datasetKey{}).(string)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		http.ServeFile(w, r, path)
		return
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be json or csv"))
		return
	}

	table, err := h.service.Dataset(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "dataset served",
		slog.String("dataset", name),
		slog.Int("rows", table.Len()))
	render.JSON(w, r, DatasetResponse{
		Name:    name,
		Columns: table.Columns,
		Rows:    table.Records(),
	})
}

// GetSummary handles GET /api/datasets/{name}/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

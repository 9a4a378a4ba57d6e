package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/nobeldash/internal/domain/views"
)

// Content types of rendered assets.
const (
	contentTypeGeoJSON = "application/geo+json"
	contentTypePNG     = "image/png"
	contentTypeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ViewsHandler handles the view endpoints.
type ViewsHandler struct {
	deps Dependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps Dependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

type viewResponse struct {
	Kind   views.Kind   `json:"kind"`
	Title  string       `json:"title"`
	Result views.Result `json:"result"`
}

// HandleList handles GET /api/views: selector options and control bounds.
func (h *ViewsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Controls(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleView handles GET /api/views/{kind}. Missing parameters take their
// defaults: the first year, the first category and a one-year window.
func (h *ViewsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	kind, err := views.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := h.parseView(r.Context(), kind, r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.View(r.Context(), v)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Kind: kind, Title: kind.Title(), Result: res})
}

// HandleMapGeoJSON handles GET /api/views/map/geojson.
func (h *ViewsHandler) HandleMapGeoJSON(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.MapGeoJSON(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBytes(w, contentTypeGeoJSON, b)
}

// HandleGenderChart handles GET /api/views/gender/chart.png.
func (h *ViewsHandler) HandleGenderChart(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.GenderChart(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBytes(w, contentTypePNG, b)
}

// HandleExport returns a handler for GET /api/views/{kind}/export.xlsx.
func (h *ViewsHandler) HandleExport(kind views.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.parseView(r.Context(), kind, r.URL.Query())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		b, err := h.deps.Export(r.Context(), v)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exportName(v)}))
		writeBytes(w, contentTypeXLSX, b)
	}
}

func exportName(v views.View) string {
	switch v := v.(type) {
	case views.YearView:
		return fmt.Sprintf("laureates-%d.xlsx", v.Year)
	case views.CategoryView:
		return fmt.Sprintf("laureates-%s-%d-%d.xlsx", strings.ReplaceAll(v.Category, " ", "_"), v.Start, v.End)
	default:
		return "laureates.xlsx"
	}
}

// parseView overlays query parameters on the default view of kind.
func (h *ViewsHandler) parseView(ctx context.Context, kind views.Kind, q url.Values) (views.View, error) {
	v, err := h.deps.DefaultView(ctx, kind)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case views.YearView:
		if err := intParam(q, "year", &v.Year); err != nil {
			return nil, err
		}
		return v, nil
	case views.CategoryView:
		if c := q.Get("category"); c != "" {
			v.Category = c
		}
		if err := intParam(q, "start", &v.Start); err != nil {
			return nil, err
		}
		if err := intParam(q, "end", &v.End); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return v, nil
	}
}

func intParam(q url.Values, name string, dst *int) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q", ErrBadRequest, name, raw)
	}
	*dst = n
	return nil
}

// Package httpapi serves the search, detail and map endpoints over a
// safemap.Atlas.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/andreiashu/safemap"
)

// UnscoredFill is the map fill for boroughs without a score.
const UnscoredFill = "#cccccc"

// Handlers holds the dependencies of the HTTP endpoints.
type Handlers struct {
	atlas  *safemap.Atlas
	source safemap.DataSource
	prefs  safemap.PreferenceStore
	logger *slog.Logger
}

// NewHandlers returns handlers over atlas. City switches read documents from
// source. prefs may be nil.
func NewHandlers(atlas *safemap.Atlas, source safemap.DataSource, prefs safemap.PreferenceStore, l *slog.Logger) *Handlers {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Handlers{atlas: atlas, source: source, prefs: prefs, logger: l}
}

type searchResponse struct {
	City    safemap.CityKey        `json:"city"`
	Query   string                 `json:"query"`
	Results []safemap.SearchResult `json:"results"`
}

// Search answers GET /api/search?q=.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	snap, err := h.atlas.Current()
	if err != nil {
		h.fail(w, err)
		return
	}
	q := r.URL.Query().Get("q")
	results, err := safemap.DecorateResults(h.atlas.Query(q), h.palette(r), h.atlas.Canonicalizer())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, searchResponse{City: snap.City, Query: q, Results: results})
}

// Borough answers GET /api/boroughs/{name} with the detail view.
func (h *Handlers) Borough(w http.ResponseWriter, r *http.Request) {
	snap, err := h.atlas.Current()
	if err != nil {
		h.fail(w, err)
		return
	}
	b, err := h.atlas.Borough(mux.Vars(r)["name"])
	if err != nil {
		h.fail(w, err)
		return
	}
	d, err := safemap.Detail(b, snap.AreaLabel, h.palette(r), h.atlas.Canonicalizer())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

type switchResponse struct {
	City      safemap.CityKey      `json:"city"`
	AreaLabel string               `json:"areaLabel"`
	Entries   int                  `json:"entries"`
	Skipped   []string             `json:"skipped,omitempty"`
	Analysis  safemap.CityAnalysis `json:"analysis"`
}

// SwitchCity answers POST /api/city/{city}.
func (h *Handlers) SwitchCity(w http.ResponseWriter, r *http.Request) {
	city, err := safemap.ParseCityKey(mux.Vars(r)["city"])
	if err != nil {
		h.fail(w, err)
		return
	}
	snap, err := h.atlas.SwitchCityFrom(r.Context(), h.source, city)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, switchResponse{
		City:      snap.City,
		AreaLabel: snap.AreaLabel,
		Entries:   snap.Report.Entries,
		Skipped:   snap.Report.Skipped,
		Analysis:  safemap.Analyze(snap.Dataset),
	})
}

type locateResponse struct {
	Borough     string        `json:"borough"`
	Score       safemap.Score `json:"score"`
	Description string        `json:"description"`
}

// Locate answers GET /api/locate?lat=&lng=.
func (h *Handlers) Locate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.atlas.Current(); err != nil {
		h.fail(w, err)
		return
	}
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		http.Error(w, "lat and lng must be valid coordinates", http.StatusBadRequest)
		return
	}
	b, ok := h.atlas.Locate(lat, lng)
	if !ok {
		http.Error(w, "no borough at this point", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, locateResponse{Borough: b.Name, Score: b.Score, Description: safemap.Describe(b)})
}

// Fill answers GET /api/fill with the borough fill colors.
func (h *Handlers) Fill(w http.ResponseWriter, r *http.Request) {
	snap, err := h.atlas.Current()
	if err != nil {
		h.fail(w, err)
		return
	}
	colors, err := safemap.FillColors(snap.Dataset, h.palette(r), UnscoredFill)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, colors)
}

// Analysis answers GET /api/analysis.
func (h *Handlers) Analysis(w http.ResponseWriter, r *http.Request) {
	snap, err := h.atlas.Current()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, safemap.Analyze(snap.Dataset))
}

// SetAccessible answers PUT /api/preferences/accessible?enabled=true.
func (h *Handlers) SetAccessible(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		http.Error(w, "enabled must be true or false", http.StatusBadRequest)
		return
	}
	if h.prefs == nil {
		http.Error(w, "preferences are not configured", http.StatusNotImplemented)
		return
	}
	if err := h.prefs.Set(r.Context(), safemap.PrefAccessible, strconv.FormatBool(on)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// palette picks the accessible palette when the request asks for it with
// ?accessible=, or else when the stored preference is set.
func (h *Handlers) palette(r *http.Request) safemap.Palette {
	if v := r.URL.Query().Get("accessible"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			return choose(on)
		}
	}
	if h.prefs == nil {
		return safemap.StandardPalette
	}
	v, ok, err := h.prefs.Get(r.Context(), safemap.PrefAccessible)
	if err != nil {
		h.logger.Warn("preference_load_failed", "key", safemap.PrefAccessible, "err", err)
		return safemap.StandardPalette
	}
	on, _ := strconv.ParseBool(v)
	return choose(ok && on)
}

func choose(accessible bool) safemap.Palette {
	if accessible {
		return safemap.AccessiblePalette
	}
	return safemap.StandardPalette
}

// fail maps library errors to status codes.
func (h *Handlers) fail(w http.ResponseWriter, err error) {
	var mal *safemap.MalformedDatasetError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, safemap.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, safemap.ErrBoroughNotFound):
		status = http.StatusNotFound
	case errors.Is(err, safemap.ErrUnknownCity):
		status = http.StatusBadRequest
	case errors.Is(err, safemap.ErrSwitchInProgress):
		status = http.StatusConflict
	case errors.As(err, &mal):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request_failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode_response_failed", "err", err)
	}
}

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/andreiashu/safemap/internal/logger"
	"github.com/andreiashu/safemap/internal/metrics"
)

// NewRouter wires the endpoints, the access log and request metrics.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(logger.AccessMiddleware(h.logger), countRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/boroughs/{name}", h.Borough).Methods(http.MethodGet)
	api.HandleFunc("/city/{city}", h.SwitchCity).Methods(http.MethodPost)
	api.HandleFunc("/locate", h.Locate).Methods(http.MethodGet)
	api.HandleFunc("/fill", h.Fill).Methods(http.MethodGet)
	api.HandleFunc("/analysis", h.Analysis).Methods(http.MethodGet)
	api.HandleFunc("/preferences/accessible", h.SetAccessible).Methods(http.MethodPut)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

type codeWriter struct {
	http.ResponseWriter
	code int
}

func (w *codeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// countRequests counts requests by route template and status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &codeWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(cw, r)
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(cw.code)).Inc()
	})
}

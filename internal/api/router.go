package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter attaches all ingest endpoints.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/time", h.GetTimeHandler).Methods("GET")

	r.HandleFunc("/api/reports", h.RequireAuth(h.PostReportHandler)).Methods("POST")
	r.HandleFunc("/api/reports", h.ListReportsHandler).Methods("GET")
	r.HandleFunc("/api/devices/token", h.IssueTokenHandler).Methods("POST")
	return r
}

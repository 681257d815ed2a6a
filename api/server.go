// Package api exposes a minimal read-only HTTP surface over the ingested
// database: the find_versions lookup and a health check. It adds no
// query capability beyond that and contains no decoding logic of its
// own — a thin transport layer around the store package, built on
// gorilla/mux with one mux.Router, path-parameter routes, and JSON
// responses.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"nexidx/logger"
	"nexidx/store"
)

// Server wraps a database handle and an HTTP router.
type Server struct {
	db     *sql.DB
	router *mux.Router
}

// New builds a Server backed by db. Routes:
//
//	GET /healthz
//	GET /versions/{group}/{artifact}
func New(db *sql.DB) *Server {
	s := &Server{db: db, router: mux.NewRouter()}
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/versions/{group}/{artifact}", s.handleFindVersions).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler by delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		logger.Warn("healthz: database unreachable: %v", err)
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type versionsResponse struct {
	Group    string   `json:"group"`
	Artifact string   `json:"artifact"`
	Versions []string `json:"versions"`
}

func (s *Server) handleFindVersions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, artifact := vars["group"], vars["artifact"]

	versions, err := store.FindVersions(s.db, group, artifact)
	if err != nil {
		logger.Error("find_versions(%s, %s): %v", group, artifact, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(versionsResponse{Group: group, Artifact: artifact, Versions: versions})
}

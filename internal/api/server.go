// Package api exposes the job store to the web layer over HTTP. It is a
// thin boundary: every handler is a lookup against the current snapshot.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
	"github.com/job-finders/app/internal/metrics"
	"github.com/job-finders/app/internal/store"
)

// Server wires HTTP handlers to the job store.
type Server struct {
	router chi.Router
	store  *store.Store
	terms  []string
	logger *zap.Logger
}

// NewServer constructs a Server. The terms slice fixes the navigation
// order for previous/next topic links.
func NewServer(st *store.Store, terms []string, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		terms:  terms,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/terms", s.listTerms)
		r.Get("/jobs/{term}", s.jobsForTerm)
		r.Get("/jobs/{term}/similar", s.similarJobs)
		r.Get("/job/ref/{ref}", s.jobByRef)
		r.Get("/job/slug/{slug}", s.jobBySlug)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type termsResponse struct {
	Terms    []string `json:"terms"`
	Current  string   `json:"current,omitempty"`
	Previous string   `json:"previous,omitempty"`
	Next     string   `json:"next,omitempty"`
}

func (s *Server) listTerms(w http.ResponseWriter, r *http.Request) {
	resp := termsResponse{Terms: s.terms}
	if current := r.URL.Query().Get("current"); current != "" {
		prev, next, ok := s.termNav(current)
		if !ok {
			s.writeError(w, http.StatusNotFound, "unknown term")
			return
		}
		resp.Current = current
		resp.Previous = prev
		resp.Next = next
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) jobsForTerm(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	list := s.store.ByTerm(term)
	if list == nil {
		// A term with no known jobs is an empty result set, not an error.
		list = []jobs.Job{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) similarJobs(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	title := r.URL.Query().Get("title")
	if title == "" {
		s.writeError(w, http.StatusBadRequest, "missing title")
		return
	}
	list := s.store.Similar(term, title, 0)
	if list == nil {
		list = []jobs.Job{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) jobByRef(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.ByRef(chi.URLParam(r, "ref"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) jobBySlug(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.BySlug(chi.URLParam(r, "slug"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// termNav returns the previous and next term with wraparound.
func (s *Server) termNav(current string) (string, string, bool) {
	for i, term := range s.terms {
		if term != current {
			continue
		}
		prev := s.terms[(i-1+len(s.terms))%len(s.terms)]
		next := s.terms[(i+1)%len(s.terms)]
		return prev, next, true
	}
	return "", "", false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Package gisttest provides an in-memory gist service for tests.
package gisttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document"
)

// Gist is a stored document.
type Gist struct {
	ID          string
	Description string
	Public      bool
	Files       map[string]string
}

// Server is a fake of the gists collection endpoint.
type Server struct {
	*httptest.Server

	// Token is the credential every request must carry. Empty disables the check.
	Token string

	// TruncateAbove marks files longer than this many bytes as truncated and
	// serves their content from a raw URL. Zero disables truncation.
	TruncateAbove int

	mu       sync.Mutex
	gists    map[string]*Gist
	calls    map[string]int
	failures map[string]int
}

// NewServer starts a fake gist service. Close it with Server.Close.
func NewServer() *Server {
	s := &Server{
		gists:    make(map[string]*Gist),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}

	router := mux.NewRouter()
	router.HandleFunc("/gists", s.create).Methods(http.MethodPost)
	router.HandleFunc("/gists/{id}", s.get).Methods(http.MethodGet)
	router.HandleFunc("/gists/{id}", s.patch).Methods(http.MethodPatch)
	router.HandleFunc("/raw/{id}/{file}", s.raw).Methods(http.MethodGet)
	router.Use(s.middleware)

	s.Server = httptest.NewServer(router)
	return s
}

// BaseURL is the collection root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + "/gists"
}

// Put seeds a gist and returns it.
func (s *Server) Put(id string, files map[string]string) *Gist {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &Gist{ID: id, Files: make(map[string]string, len(files))}
	for k, v := range files {
		g.Files[k] = v
	}
	s.gists[id] = g
	return g
}

// Get returns a copy of a stored gist.
func (s *Server) Get(id string) (Gist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gists[id]
	if !ok {
		return Gist{}, false
	}
	out := *g
	out.Files = make(map[string]string, len(g.Files))
	for k, v := range g.Files {
		out.Files[k] = v
	}
	return out, true
}

// FailNext makes the next request with the given method answer status.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// Calls returns how many requests with method have been received.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of requests received.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method]++
		status, fail := s.failures[r.Method]
		delete(s.failures, r.Method)
		s.mu.Unlock()

		if fail {
			respondJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		if s.Token != "" && r.Header.Get("Authorization") != "token "+s.Token {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type writeRequest struct {
	Description string                    `json:"description"`
	Public      bool                      `json:"public"`
	Files       map[string]*document.File `json:"files"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Files) == 0 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	g := &Gist{ID: id, Description: req.Description, Public: req.Public, Files: make(map[string]string)}
	for name, f := range req.Files {
		if f != nil {
			g.Files[name] = f.Content
		}
	}

	s.mu.Lock()
	s.gists[id] = g
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, s.render(g))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	g, ok := s.Get(mux.Vars(r)["id"])
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	respondJSON(w, http.StatusOK, s.render(&g))
}

// patch merges files the way GitHub does: listed files are replaced, a null
// entry deletes the file, unlisted files are kept.
func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
		return
	}

	s.mu.Lock()
	g, ok := s.gists[mux.Vars(r)["id"]]
	if ok {
		if req.Description != "" {
			g.Description = req.Description
		}
		for name, f := range req.Files {
			if f == nil {
				delete(g.Files, name)
				continue
			}
			g.Files[name] = f.Content
		}
	}
	s.mu.Unlock()

	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	got, _ := s.Get(g.ID)
	respondJSON(w, http.StatusOK, s.render(&got))
}

func (s *Server) raw(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g, ok := s.Get(vars["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	content, ok := g.Files[vars["file"]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

func (s *Server) render(g *Gist) map[string]interface{} {
	files := make(map[string]document.File, len(g.Files))
	for name, content := range g.Files {
		f := document.File{Content: content}
		if s.TruncateAbove > 0 && len(content) > s.TruncateAbove {
			f.Content = content[:s.TruncateAbove]
			f.Truncated = true
			f.RawURL = s.URL + "/raw/" + g.ID + "/" + name
		}
		files[name] = f
	}
	return map[string]interface{}{
		"id":          g.ID,
		"description": g.Description,
		"public":      g.Public,
		"files":       files,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

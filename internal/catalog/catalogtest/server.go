// Package catalogtest provides an in-process catalog API that follows the
// rules observed on the real catalog.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/corray333/order-lifecycle/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// Server is a fake catalog backed by a map.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   catalog.Int
	products map[catalog.Int]catalog.Product

	// EditRejectStatus is the HTTP status used when an edit is rejected.
	EditRejectStatus int
	// FailList makes the next n product listings answer 503.
	FailList int
	// AcceptAll disables rule checks on add and edit.
	AcceptAll bool
}

// NewServer starts a fake catalog. It is closed by the test cleanup.
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		nextID:           1,
		products:         map[catalog.Int]catalog.Product{},
		EditRejectStatus: http.StatusOK,
	}

	r := chi.NewRouter()
	r.Get("/api/products", s.list)
	r.Post("/api/addproduct", s.add)
	r.Post("/api/editproduct", s.edit)
	r.Get("/api/deleteproduct", s.delete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

// Len returns the number of stored products.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.products)
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailList > 0 {
		s.FailList--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	products := make([]catalog.Product, 0, len(s.products))
	for id := catalog.Int(1); id < s.nextID; id++ {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}

	writeJSON(w, http.StatusOK, products)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, catalog.AddResponse{Status: catalog.StatusRejected})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.AcceptAll && !catalog.Accepts(p) {
		writeJSON(w, http.StatusOK, catalog.AddResponse{Status: catalog.StatusRejected})
		return
	}

	p.ID = s.nextID
	s.nextID++
	p.Alias = s.aliasFor(p.Title)
	s.products[p.ID] = p

	writeJSON(w, http.StatusOK, catalog.AddResponse{ID: p.ID, Status: catalog.StatusAccepted})
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, catalog.StatusResponse{Status: catalog.StatusRejected})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.products[p.ID]
	if !ok || (!s.AcceptAll && !catalog.Accepts(p)) {
		writeJSON(w, s.EditRejectStatus, catalog.StatusResponse{Status: catalog.StatusRejected})
		return
	}

	if p.Title != stored.Title {
		p.Alias = s.aliasFor(p.Title)
	} else {
		p.Alias = stored.Alias
	}
	s.products[p.ID] = p

	writeJSON(w, http.StatusOK, catalog.StatusResponse{Status: catalog.StatusAccepted})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, http.StatusOK, catalog.StatusResponse{Status: catalog.StatusRejected})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[catalog.Int(id)]; !ok {
		writeJSON(w, http.StatusOK, catalog.StatusResponse{Status: catalog.StatusRejected})
		return
	}
	delete(s.products, catalog.Int(id))

	writeJSON(w, http.StatusOK, catalog.StatusResponse{Status: catalog.StatusAccepted})
}

// aliasFor must be called with mu held.
func (s *Server) aliasFor(title string) string {
	alias := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
	for s.aliasTaken(alias) {
		alias = catalog.DuplicateAlias(alias)
	}

	return alias
}

func (s *Server) aliasTaken(alias string) bool {
	for _, p := range s.products {
		if p.Alias == alias {
			return true
		}
	}

	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

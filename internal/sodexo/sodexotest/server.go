package sodexotest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/encoding/charmap"

	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

// Server serves a fake site. Pages not set answer 404.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	portal    string
	frontpage string
	menus     map[string]string
	feeds     map[string]string
	hits      map[string]int
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{menus: map[string]string{}, feeds: map[string]string{}, hits: map[string]int{}}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Get("/dining-choices/index.html", func(w http.ResponseWriter, _ *http.Request) {
		s.serve(w, s.get(func() string { return s.portal }), "utf-8")
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		s.serve(w, s.get(func() string { return s.frontpage }), "utf-8")
	})
	r.Get("/images/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		s.serve(w, s.get(func() string { return s.menus[file] }), "windows-1252")
	})
	r.Get("/smgmenu/json/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		s.serve(w, s.get(func() string { return s.feeds[name] }), "utf-8")
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Site describes a facility hosted on this server.
func (s *Server) Site(id string, templateID int, feedName string) sodexo.Site {
	return sodexo.Site{
		ID:         id,
		Name:       id + " dining hall",
		Sitename:   id,
		TemplateID: templateID,
		FeedName:   feedName,
		BaseURL:    s.URL,
	}
}

// SetPortal sets the dining-choices page.
func (s *Server) SetPortal(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portal = body
}

// SetFrontpage sets the landing page.
func (s *Server) SetFrontpage(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frontpage = body
}

// SetMenu serves body, encoded as windows-1252, at /images/<file>.
func (s *Server) SetMenu(file, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[file] = body
}

// SetFeed serves body at /smgmenu/json/<name>.
func (s *Server) SetFeed(name, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[name] = body
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) get(read func() string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return read()
}

func (s *Server) serve(w http.ResponseWriter, body, charset string) {
	if body == "" {
		http.NotFound(w, nil)
		return
	}
	payload := []byte(body)
	if charset == "windows-1252" {
		encoded, err := charmap.Windows1252.NewEncoder().String(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		payload = []byte(encoded)
	}
	// The upstream does not declare its charset; clients have to know it.
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write(payload)
}

// Package testutil provides an in-memory scraping backend for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// pyTimeLayout matches str(datetime) for an aware UTC datetime.
const pyTimeLayout = "2006-01-02 15:04:05.000000-07:00"

// FakeJob is a job as the backend serialises it.
type FakeJob struct {
	ID          string           `json:"id"`
	Location    string           `json:"location"`
	Radius      float64          `json:"radius"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"createdAt"`
	CompletedAt *string          `json:"completedAt"`
	Results     []map[string]any `json:"results"`
}

// Backend mimics the scraping service's REST API under /api.
type Backend struct {
	mu       sync.Mutex
	jobs     []FakeJob
	raw      map[string]string
	failures int
	failCode int
	hits     map[string]int

	Server *httptest.Server
}

// NewBackend starts a fake backend. It is closed when the test ends.
func NewBackend(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{raw: map[string]string{}, hits: map[string]int{}}
	b.Server = httptest.NewServer(b.Router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL clients should use.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.count)
	r.Use(b.failing)
	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", b.handleScrape)
		r.Get("/jobs", b.handleList)
		r.Get("/jobs/{id}", b.handleGet)
	})
	return r
}

// AddJob stores a job and returns it. Empty ID, Status, Type and CreatedAt
// are filled with defaults.
func (b *Backend) AddJob(j FakeJob) FakeJob {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = "pending"
	}
	if j.Type == "" {
		j.Type = "both"
	}
	if j.CreatedAt == "" {
		j.CreatedAt = time.Now().UTC().Format(pyTimeLayout)
	}
	if j.Results == nil {
		j.Results = []map[string]any{}
	}
	b.mu.Lock()
	b.jobs = append(b.jobs, j)
	b.mu.Unlock()
	return j
}

// SetRaw makes GET /jobs/{id} return body verbatim.
func (b *Backend) SetRaw(id, body string) {
	b.mu.Lock()
	b.raw[id] = body
	b.mu.Unlock()
}

// FailNext makes the next n requests answer with status code.
func (b *Backend) FailNext(n, code int) {
	b.mu.Lock()
	b.failures = n
	b.failCode = code
	b.mu.Unlock()
}

// Hits returns how many requests reached path.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.failures > 0
		code := b.failCode
		if fail {
			b.failures--
		}
		b.mu.Unlock()
		if fail {
			writeJSON(w, code, map[string]string{"error": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Location string   `json:"location"`
		Radius   *float64 `json:"radius"`
		Type     string   `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if strings.TrimSpace(body.Location) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Location is required"})
		return
	}
	radius := 5.0
	if body.Radius != nil {
		radius = *body.Radius
	}
	job := b.AddJob(FakeJob{Location: body.Location, Radius: radius, Type: body.Type})
	writeJSON(w, http.StatusCreated, job)
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	jobs := append([]FakeJob(nil), b.jobs...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, jobs)
}

func (b *Backend) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	raw, hasRaw := b.raw[id]
	var found *FakeJob
	for i := range b.jobs {
		if b.jobs[i].ID == id {
			j := b.jobs[i]
			found = &j
			break
		}
	}
	b.mu.Unlock()

	if hasRaw {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Job not found"})
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockServer provides a configurable catalog mock for testing. Pages
// are keyed by page number; unset pages return an empty video list.
type MockServer struct {
	*httptest.Server
	mu       sync.RWMutex
	pages    map[int][]Video
	failures int // consecutive 500s before success
	status   int // forced status for every response (0 = normal)
	rawBody  string
	authSeen []string
	queries  []string
}

// NewMockServer creates a catalog mock server with no data.
func NewMockServer() *MockServer {
	mock := &MockServer{pages: make(map[int][]Video)}
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/search", mock.handleSearch)
	mock.Server = httptest.NewServer(mux)
	return mock
}

// SetPage installs the videos served for a page number.
func (m *MockServer) SetPage(page int, videos []Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page] = videos
}

// SetFailures makes the next n requests fail with HTTP 500.
func (m *MockServer) SetFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// ForceStatus makes every response use the given status code.
func (m *MockServer) ForceStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// ForceBody makes every response return the given raw body with 200.
func (m *MockServer) ForceBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBody = body
}

// AuthHeaders returns the Authorization values observed so far.
func (m *MockServer) AuthHeaders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.authSeen))
	copy(out, m.authSeen)
	return out
}

// Queries returns the raw query strings observed so far.
func (m *MockServer) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

func (m *MockServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.authSeen = append(m.authSeen, r.Header.Get("Authorization"))
	m.queries = append(m.queries, r.URL.RawQuery)
	if m.failures > 0 {
		m.failures--
		m.mu.Unlock()
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	status := m.status
	rawBody := m.rawBody
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	videos := m.pages[page]
	total := 0
	for _, vs := range m.pages {
		total += len(vs)
	}
	m.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if rawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rawBody))
		return
	}

	if videos == nil {
		videos = []Video{}
	}
	resp := SearchResponse{
		Page:         page,
		PerPage:      perPage,
		TotalResults: total,
		Videos:       videos,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// TestVideo builds a minimal playable catalog video for tests.
func TestVideo(id int64, quality, link string) Video {
	var q *string
	if quality != "" {
		q = &quality
	}
	return Video{
		ID:       id,
		Width:    1080,
		Height:   1920,
		URL:      "https://videos.example.com/" + strconv.FormatInt(id, 10),
		Image:    "https://images.example.com/" + strconv.FormatInt(id, 10) + ".jpg",
		Duration: 15,
		User:     User{ID: id * 10, Name: "Test Author", URL: "https://example.com/author"},
		VideoFiles: []VideoFile{
			{ID: id * 100, Quality: q, Link: link},
		},
	}
}

package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FellowTraveler/WebRAgent/internal/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SearXNGClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSearXNGClient(&common.SearXNGConfig{
		URL:            server.URL,
		ResultsPerPage: 10,
		Timeout:        common.Duration{Duration: 5 * time.Second},
	}, common.GetLogger())
}

func TestSearchParsesResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "go concurrency", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "general", r.URL.Query().Get("categories"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Go blog", "url": "https://go.dev/blog", "content": "goroutines", "engine": "ddg", "score": 1.4},
				{"title": "missing url", "content": "skipped"},
				{"url": "https://no-title.example", "content": "skipped"},
				{"title": "Unscored", "url": "https://example.com", "content": "channels"},
			},
		})
	})

	results, err := client.Search(context.Background(), "go concurrency", 10, "general")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Go blog", results[0].Title)
	assert.Equal(t, "https://go.dev/blog", results[0].URL)
	assert.Equal(t, "goroutines", results[0].Snippet)
	assert.Equal(t, "ddg", results[0].Engine)
	// engine scores above 1 are clamped into [0, 1]
	assert.InDelta(t, 1.0, results[0].Score, 0.001)

	// results without a score default to 0.95
	assert.InDelta(t, 0.95, results[1].Score, 0.001)
	assert.Equal(t, "web", results[1].Engine)
}

func TestSearchCapsResultCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("results"))
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	})

	results, err := client.Search(context.Background(), "anything", 100, "general")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything", 5, "general")
	assert.Error(t, err)
}

func TestSearchInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Search(context.Background(), "anything", 5, "general")
	assert.Error(t, err)
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"general", "general"},
		{"News", "news"},
		{"science", "science"},
		{"bogus", "general"},
		{"", "general"},
	}

	for _, tt := range tests {
		if got := mapCategory(tt.in); got != tt.want {
			t.Errorf("mapCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

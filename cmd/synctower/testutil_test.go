package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBackend serves both the catalog listing API and the mirror API.
type fakeBackend struct {
	mu       sync.Mutex
	movies   []map[string]any
	shows    []map[string]any
	counts   map[string]int
	inserted map[string][]map[string]any
	fail     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		counts:   map[string]int{"movies": 0, "shows": 0},
		inserted: map[string][]map[string]any{},
	}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/getmovies.json":
		writeList(w, b.movies)
	case r.Method == http.MethodGet && r.URL.Path == "/api/gettvshow.json":
		writeList(w, b.shows)
	case r.Method == http.MethodGet && r.URL.Path == "/api/dbdata.json":
		_ = json.NewEncoder(w).Encode(b.counts)
	case r.Method == http.MethodPost && r.URL.Path == "/api/checkids.json":
		var ids []int64
		_ = json.NewDecoder(r.Body).Decode(&ids)
		// Everything posted is new
		_ = json.NewEncoder(w).Encode(ids)
	case r.Method == http.MethodPost && r.URL.Path == "/api/dbdata.json":
		var item map[string]any
		_ = json.NewDecoder(r.Body).Decode(&item)
		category := r.URL.Query().Get("insert")
		b.inserted[category] = append(b.inserted[category], item)
		w.WriteHeader(http.StatusCreated)
	default:
		http.NotFound(w, r)
	}
}

// writeList serves everything as page 1; the tests stay below one page.
func writeList(w http.ResponseWriter, items []map[string]any) {
	if items == nil {
		items = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"results":       items,
		"total_results": len(items),
	})
}

func (b *fakeBackend) insertedCount(category string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inserted[category])
}

// writeTestConfig writes a config pointing at baseURL with history under a temp dir.
func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[sync]
base_url = %q

[http.retry]
max_attempts = 1

[log]
level = "error"

[database]
path = %q
`, baseURL, filepath.Join(dir, "data", "synctower.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func startBackend(t *testing.T, b *fakeBackend) string {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return srv.URL
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

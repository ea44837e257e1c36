package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"stacks/internal/testsupport"
)

const matrixSearchResponse = `{
	"page": 1,
	"results": [
		{"id": 603, "title": "The Matrix", "release_date": "1999-03-31", "popularity": 98.5, "vote_count": 21000}
	],
	"total_pages": 1,
	"total_results": 1
}`

func newFakeTMDB(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/configuration":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{}`)
		case "/search/movie", "/search/tv":
			if hits != nil {
				hits.Add(1)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, matrixSearchResponse)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCLIOrganizeEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	var searches atomic.Int64
	server := newFakeTMDB(t, &searches)
	env.cfg.TMDB.BaseURL = server.URL
	writeTestConfig(t, env.configPath, env.cfg)

	sourcePath := filepath.Join(env.cfg.Paths.SourceDir, "The.Matrix.1999.1080p.BluRay.x264.mkv")
	testsupport.WriteFile(t, sourcePath, 64)

	out, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Placed 1, skipped 0")

	folder := filepath.Join(env.cfg.Paths.LibraryDir, "The Matrix (1999)")
	entries, err := os.ReadDir(folder)
	if err != nil {
		t.Fatalf("read library folder: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one library entry, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "The Matrix (1999)") {
		t.Fatalf("unexpected library entry name %q", name)
	}
	linked := filepath.Join(folder, name)
	target, err := os.Readlink(linked)
	if err != nil {
		t.Fatalf("library entry is not a symlink: %v", err)
	}
	if target != sourcePath {
		t.Fatalf("symlink points at %q, want %q", target, sourcePath)
	}
	if got := searches.Load(); got != 1 {
		t.Fatalf("expected one provider search, got %d", got)
	}

	// A second run is served entirely from the caches.
	out, _, err = runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize rerun: %v", err)
	}
	requireContains(t, out, "Placed 1, skipped 0")
	if got := searches.Load(); got != 1 {
		t.Fatalf("rerun hit the provider again (%d searches)", got)
	}
}

func TestCLIOrganizeDryRunLeavesLibraryUntouched(t *testing.T) {
	env := setupCLITestEnv(t)

	server := newFakeTMDB(t, nil)
	env.cfg.TMDB.BaseURL = server.URL
	writeTestConfig(t, env.configPath, env.cfg)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.SourceDir, "The.Matrix.1999.mkv"), 32)

	out, _, err := runCLI(t, []string{"organize", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("organize --dry-run: %v", err)
	}
	requireContains(t, out, "Placed 1, skipped 0")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.LibraryDir, "The Matrix (1999)")); !os.IsNotExist(err) {
		t.Fatalf("dry run created library entries (stat err=%v)", err)
	}
}

func TestCLIOrganizeEmptySource(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Placed 0, skipped 0")
}

func TestCLIVersionNeedsNoConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "stacks ")
}

package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stacks/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceAccess_ReadOnlyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckSourceAccess("source", dir); !result.Passed {
		t.Fatalf("expected pass for read-only source, got: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("library", dir); result.Passed && os.Getuid() != 0 {
		t.Fatal("expected write check to fail on read-only dir")
	}
}

func TestCheckTMDB_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckTMDB(context.Background(), srv.URL, "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTMDB_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckTMDB(context.Background(), srv.URL, "bad-key")
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckTMDB_MissingKey(t *testing.T) {
	result := CheckTMDB(context.Background(), "http://localhost", "")
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestCheckDebrid_SendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckDebrid(context.Background(), srv.URL, "tok"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckDebrid(context.Background(), srv.URL, "wrong"); result.Passed {
		t.Fatal("expected failure for wrong token")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsUnconfiguredFeatures(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.TMDB.APIKey = ""
	cfg.OMDB.APIKey = ""
	cfg.Ingest.Enabled = false

	results := RunAll(context.Background(), &cfg)
	// Four directory checks plus the TMDB check; no OMDb, no ingest.
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	for _, r := range results[:4] {
		if !r.Passed {
			t.Errorf("directory check %q failed: %s", r.Name, r.Detail)
		}
	}
	if results[4].Passed {
		t.Errorf("TMDB check should fail without an api key")
	}
}

func TestRunIngest_ReportsEachDependency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Ingest.Enabled = true
	cfg.Ingest.WatchDir = t.TempDir()
	cfg.Ingest.QuarantineDir = filepath.Join(t.TempDir(), "missing")
	cfg.Ingest.DebridBaseURL = srv.URL
	cfg.Ingest.DebridToken = "tok"

	results := RunIngest(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(results), results)
	}
	if !results[0].Passed {
		t.Errorf("watch dir check failed: %s", results[0].Detail)
	}
	if results[1].Passed {
		t.Error("expected quarantine check to fail for missing dir")
	}
	if !results[2].Passed {
		t.Errorf("debrid check failed: %s", results[2].Detail)
	}

	if results := RunIngest(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_IncludesDebridWhenIngestEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.SourceDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Ingest.Enabled = true
	cfg.Ingest.WatchDir = t.TempDir()
	cfg.Ingest.QuarantineDir = t.TempDir()
	cfg.Ingest.DebridBaseURL = srv.URL
	cfg.Ingest.DebridToken = "tok"

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Debrid API" {
			found = true
			if !r.Passed {
				t.Errorf("debrid check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected debrid check in results")
	}
}

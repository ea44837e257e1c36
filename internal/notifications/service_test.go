package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stacks/internal/config"
	"stacks/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 3, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 12, 0, 90*time.Second)
			},
			expectTitle:   "Stacks - Run Complete",
			expectMessage: "Organize run complete: 12 files placed in 1m30s",
			expectTags:    "stacks,organize,completed",
		},
		{
			name: "run completed with skips",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 10, 2, 45*time.Second)
			},
			expectTitle:   "Stacks - Run Complete (with skips)",
			expectMessage: "Organize run complete: 10 placed, 2 skipped in 45s",
			expectTags:    "stacks,organize,completed",
		},
		{
			name: "ingest completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyIngestCompleted(context.Background(), "Some.Show.S01.1080p", 8)
			},
			expectTitle:   "Stacks - Ingested",
			expectMessage: "Uploaded to debrid: Some.Show.S01.1080p (8 files selected)",
			expectTags:    "stacks,ingest,completed",
		},
		{
			name: "ingest quarantined",
			notify: func(svc notifications.Service) error {
				return svc.NotifyIngestQuarantined(context.Background(), "bad.torrent", "no selectable files")
			},
			expectTitle:    "Stacks - Quarantined",
			expectMessage:  "Moved to quarantine: bad.torrent\nReason: no selectable files",
			expectTags:     "stacks,ingest,quarantined",
			expectPriority: "high",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("provider unreachable"), "organize")
			},
			expectTitle:    "Stacks - Error",
			expectMessage:  "Error with organize: provider unreachable",
			expectTags:     "stacks,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonoursToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RunSummary = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 1, 0, time.Second); err != nil {
		t.Fatalf("suppressed run summary returned error: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("x"), "organize"); err != nil {
		t.Fatalf("suppressed error notification returned error: %v", err)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

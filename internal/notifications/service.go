package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stacks/internal/config"
)

const userAgent = "Stacks-Go/0.1.0"

// Service defines the notification surface exposed to the CLI and daemon.
type Service interface {
	NotifyRunCompleted(ctx context.Context, placed, skipped int, duration time.Duration) error
	NotifyIngestCompleted(ctx context.Context, name string, files int) error
	NotifyIngestQuarantined(ctx context.Context, name, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// The topic value is the full ntfy URL (for example https://ntfy.sh/stacks).
// When no topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		runSummary: cfg.Notifications.RunSummary,
		errors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	runSummary bool
	errors     bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, placed, skipped int, duration time.Duration) error {
	if !n.runSummary {
		return nil
	}

	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if skipped == 0 {
		title = "Stacks - Run Complete"
		message = fmt.Sprintf("Organize run complete: %d files placed in %s", placed, durationText)
	} else {
		title = "Stacks - Run Complete (with skips)"
		message = fmt.Sprintf("Organize run complete: %d placed, %d skipped in %s", placed, skipped, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"stacks", "organize", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyIngestCompleted(ctx context.Context, name string, files int) error {
	name = strings.TrimSpace(name)
	data := payload{
		title:   "Stacks - Ingested",
		message: fmt.Sprintf("Uploaded to debrid: %s (%d files selected)", name, files),
		tags:    []string{"stacks", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyIngestQuarantined(ctx context.Context, name, reason string) error {
	name = strings.TrimSpace(name)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Stacks - Quarantined",
		message:  fmt.Sprintf("Moved to quarantine: %s\nReason: %s", name, reason),
		tags:     []string{"stacks", "ingest", "quarantined"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}

	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Stacks - Error",
		message:  builder.String(),
		tags:     []string{"stacks", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Stacks - Test",
		message:  "Notification system test",
		tags:     []string{"stacks", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyIngestCompleted(context.Context, string, int) error          { return nil }
func (noopService) NotifyIngestQuarantined(context.Context, string, string) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error                  { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }

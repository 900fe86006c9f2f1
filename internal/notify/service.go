package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cratedig/internal/config"
	"cratedig/internal/track"
)

const userAgent = "cratedig/0.1.0"

// Service defines the notification surface exposed to the session coordinator.
type Service interface {
	NotifySessionStarted(ctx context.Context, playlists, tracks int) error
	NotifySessionComplete(ctx context.Context, stats track.SessionStats) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        endpoint,
		client:          &http.Client{Timeout: timeout},
		sessionComplete: cfg.Notifications.SessionComplete,
		errors:          cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	sessionComplete bool
	errors          bool
}

func (n *ntfyService) NotifySessionStarted(ctx context.Context, playlists, tracks int) error {
	if !n.sessionComplete {
		return nil
	}
	data := payload{
		title:   "cratedig - Session Started",
		message: fmt.Sprintf("Resolving %d tracks from %d playlists", tracks, playlists),
		tags:    []string{"cratedig", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionComplete(ctx context.Context, stats track.SessionStats) error {
	if !n.sessionComplete {
		return nil
	}
	elapsed := stats.Elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	var title string
	var message string
	if stats.Failed == 0 {
		title = "cratedig - Session Complete"
		message = fmt.Sprintf("Downloaded %d of %d tracks in %s", stats.Successful, stats.Total, elapsed)
	} else {
		title = "cratedig - Session Complete (with failures)"
		message = fmt.Sprintf("Downloaded %d of %d tracks in %s; %d failed (see failed_downloads.txt)",
			stats.Successful, stats.Total, elapsed, stats.Failed)
	}
	if stats.Verified > 0 || stats.VerificationFailures > 0 {
		message = fmt.Sprintf("%s\nVerified: %d, verification failures: %d", message, stats.Verified, stats.VerificationFailures)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"cratedig", "session", "completed"},
	}
	if stats.Failed > 0 {
		data.priority = "high"
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
		title:    "cratedig - Error",
		message:  builder.String(),
		tags:     []string{"cratedig", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "cratedig - Test",
		message:  "Notification system test",
		tags:     []string{"cratedig", "test"},
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

func (noopService) NotifySessionStarted(context.Context, int, int) error { return nil }

func (noopService) NotifySessionComplete(context.Context, track.SessionStats) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }

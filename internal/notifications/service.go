package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moviepicker/internal/config"
	"moviepicker/internal/textutil"
)

const (
	userAgent = "moviepicker/0.1"
	// ntfy truncates long bodies; keep the title list readable.
	maxListedTitles = 10
)

// Service defines the notification surface used by the reel pipeline.
type Service interface {
	NotifyImportCompleted(ctx context.Context, reelURL string, titles []string) error
	NotifyRunFailed(ctx context.Context, mode, reelURL string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, reelURL string, titles []string) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "🎬 Imported %d movie(s) from %s", len(titles), strings.TrimSpace(reelURL))
	for i, title := range titles {
		if i == maxListedTitles {
			fmt.Fprintf(&builder, "\n… and %d more", len(titles)-maxListedTitles)
			break
		}
		fmt.Fprintf(&builder, "\n• %s", textutil.Ellipsize(strings.TrimSpace(title), 80))
	}
	return n.send(ctx, payload{
		title:   "Moviepicker - Reel Imported",
		message: builder.String(),
		tags:    []string{"moviepicker", "import", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, mode, reelURL string, runErr error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "❌ Reel %s failed: %s", strings.TrimSpace(mode), strings.TrimSpace(reelURL))
	if runErr != nil {
		fmt.Fprintf(&builder, "\n%s", textutil.Ellipsize(runErr.Error(), 300))
	}
	return n.send(ctx, payload{
		title:    "Moviepicker - Error",
		message:  builder.String(),
		tags:     []string{"moviepicker", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Moviepicker - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"moviepicker", "test"},
		priority: "low",
	})
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

func (noopService) NotifyImportCompleted(context.Context, string, []string) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error  { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }

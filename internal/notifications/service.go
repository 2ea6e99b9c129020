package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paperweights/internal/config"
)

const userAgent = "PaperWeights/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyPublishStarted(ctx context.Context, date string) error
	NotifyPublishCompleted(ctx context.Context, date, title, releaseURL string) error
	NotifySynthesisFailures(ctx context.Context, date string, failed, total int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
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

func (n *ntfyService) NotifyPublishStarted(ctx context.Context, date string) error {
	data := payload{
		title:   "Paper Weights - Publishing",
		message: fmt.Sprintf("Publishing episode %s", strings.TrimSpace(date)),
		tags:    []string{"paperweights", "publish", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, date, title, releaseURL string) error {
	message := fmt.Sprintf("Published %s: %s", strings.TrimSpace(date), strings.TrimSpace(title))
	if releaseURL = strings.TrimSpace(releaseURL); releaseURL != "" {
		message = fmt.Sprintf("%s\n%s", message, releaseURL)
	}
	data := payload{
		title:    "Paper Weights - Published",
		message:  message,
		tags:     []string{"paperweights", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySynthesisFailures(ctx context.Context, date string, failed, total int) error {
	data := payload{
		title:   "Paper Weights - Synthesis Warnings",
		message: fmt.Sprintf("Episode %s: %d of %d chunks failed synthesis", strings.TrimSpace(date), failed, total),
		tags:    []string{"paperweights", "synthesis", "warning"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
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
		title:    "Paper Weights - Error",
		message:  builder.String(),
		tags:     []string{"paperweights", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Paper Weights - Test",
		message:  "Notification system test",
		tags:     []string{"paperweights", "test"},
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

func (noopService) NotifyPublishStarted(context.Context, string) error { return nil }

func (noopService) NotifyPublishCompleted(context.Context, string, string, string) error { return nil }

func (noopService) NotifySynthesisFailures(context.Context, string, int, int) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }

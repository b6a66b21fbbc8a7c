package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"seminar/internal/config"
)

const userAgent = "Seminar-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyTranscriptionComplete(ctx context.Context, recordingName string, utterances int) error
	NotifyReviewReady(ctx context.Context, recordingName, hint string) error
	NotifyDistributionComplete(ctx context.Context, recordingName string, sent, failed int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
// Per-event toggles from the config suppress individual notifications
// without disabling the service.
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		toggles:  cfg.Notifications,
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
	toggles  config.Notifications
}

func (n *ntfyService) NotifyTranscriptionComplete(ctx context.Context, recordingName string, utterances int) error {
	if !n.toggles.Transcription {
		return nil
	}
	recordingName = strings.TrimSpace(recordingName)
	data := payload{
		title:   "Seminar - Transcribed",
		message: fmt.Sprintf("Transcription complete: %s (%d utterances)", recordingName, utterances),
		tags:    []string{"seminar", "transcribe", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewReady(ctx context.Context, recordingName, hint string) error {
	if !n.toggles.Review {
		return nil
	}
	recordingName = strings.TrimSpace(recordingName)
	message := fmt.Sprintf("Ready for review: %s", recordingName)
	if hint = strings.TrimSpace(hint); hint != "" {
		message = fmt.Sprintf("%s\n%s", message, hint)
	}
	data := payload{
		title:   "Seminar - Review Ready",
		message: message,
		tags:    []string{"seminar", "review", "ready"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDistributionComplete(ctx context.Context, recordingName string, sent, failed int) error {
	if !n.toggles.Distribution {
		return nil
	}
	recordingName = strings.TrimSpace(recordingName)

	var title, message string
	if failed == 0 {
		title = "Seminar - Feedback Sent"
		message = fmt.Sprintf("Feedback sent for %s: %d recipients", recordingName, sent)
	} else {
		title = "Seminar - Feedback Sent (with errors)"
		message = fmt.Sprintf("Feedback for %s: %d sent, %d failed", recordingName, sent, failed)
	}
	data := payload{
		title:    title,
		message:  message,
		tags:     []string{"seminar", "distribution", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.toggles.Errors {
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
		title:    "Seminar - Error",
		message:  builder.String(),
		tags:     []string{"seminar", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Seminar - Test",
		message:  "Notification system test",
		tags:     []string{"seminar", "test"},
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

func (noopService) NotifyTranscriptionComplete(context.Context, string, int) error     { return nil }
func (noopService) NotifyReviewReady(context.Context, string, string) error            { return nil }
func (noopService) NotifyDistributionComplete(context.Context, string, int, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }

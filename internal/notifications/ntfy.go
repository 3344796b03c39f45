package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sonashow/internal/config"
)

const userAgent = "SonaShow-Go/0.1.0"

// Event identifies an ntfy notification.
type Event string

const (
	EventShowAdded       Event = "show_added"
	EventSearchExhausted Event = "search_exhausted"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries event fields.
type Payload map[string]any

// Service publishes library milestones to ntfy.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service when a topic is configured and a
// no-op otherwise.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventShowAdded:
		title := payloadString(payload, "title")
		if year := payloadString(payload, "year"); year != "" && year != "0000" {
			title = fmt.Sprintf("%s (%s)", title, year)
		}
		body := fmt.Sprintf("📺 Added to Sonarr: %s", title)
		if seed := payloadString(payload, "seed"); seed != "" {
			body = fmt.Sprintf("%s\nBecause you have: %s", body, seed)
		}
		return message{
			title: "SonaShow - Library Updated",
			body:  body,
			tags:  []string{"sonashow", "sonarr", "added"},
		}, true
	case EventSearchExhausted:
		return message{
			title:    "SonaShow - Search Exhausted",
			body:     "Try selecting more shows from existing Sonarr library",
			tags:     []string{"sonashow", "discovery", "exhausted"},
			priority: "low",
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := payloadString(payload, "context"); label != "" {
			b.WriteString(" with ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if detail := payloadString(payload, "error"); detail != "" {
			b.WriteString(detail)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "SonaShow - Error",
			body:     b.String(),
			tags:     []string{"sonashow", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "SonaShow - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"sonashow", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

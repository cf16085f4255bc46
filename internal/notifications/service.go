package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"squish/internal/config"
)

const userAgent = "squish/0.1.0"

// Event names a run milestone.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries event specific values.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds the notifiers enabled in cfg: ntfy when a topic is set and
// the terminal bell when requested and stderr is a terminal.
func NewService(cfg *config.Config) Service {
	var services []Service
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		services = append(services, &ntfyService{
			endpoint: topic,
			client:   &http.Client{Timeout: timeout},
		})
	}
	if cfg.Notifications.Bell && isatty.IsTerminal(os.Stderr.Fd()) {
		services = append(services, NewBell(os.Stderr))
	}
	switch len(services) {
	case 0:
		return noopService{}
	case 1:
		return services[0]
	}
	return multiService(services)
}

// NewNoop returns a service that drops every event.
func NewNoop() Service { return noopService{} }

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

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	msg, ok := n.format(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, data Payload) (payload, bool) {
	switch event {
	case EventRunCompleted:
		processed := intValue(data, "processed")
		failed := intValue(data, "failed")
		saved := int64Value(data, "saved")
		duration := durationText(data["duration"])
		title := "squish - Run Complete"
		message := fmt.Sprintf("Optimized %d files in %s, saved %s", processed, duration, byteText(saved))
		if failed > 0 {
			title = "squish - Run Complete (with errors)"
			message = fmt.Sprintf("%d optimized, %d failed in %s, saved %s", processed, failed, duration, byteText(saved))
		}
		return payload{title: title, message: message, tags: []string{"squish", "run", "completed"}}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if label := strings.TrimSpace(stringValue(data, "context")); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		builder.WriteString(errorText(data["error"]))
		return payload{
			title:    "squish - Error",
			message:  builder.String(),
			tags:     []string{"squish", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "squish - Test",
			message:  "Notification system test",
			tags:     []string{"squish", "test"},
			priority: "low",
		}, true
	default:
		// Run starts are frequent and not interesting on a phone.
		return payload{}, false
	}
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

// Bell writes a BEL character when a run completes.
type Bell struct {
	w io.Writer
}

// NewBell rings on w.
func NewBell(w io.Writer) *Bell { return &Bell{w: w} }

func (b *Bell) Publish(_ context.Context, event Event, _ Payload) error {
	if event != EventRunCompleted {
		return nil
	}
	_, err := io.WriteString(b.w, "\a")
	return err
}

type multiService []Service

func (m multiService) Publish(ctx context.Context, event Event, data Payload) error {
	var errs []error
	for _, svc := range m {
		if err := svc.Publish(ctx, event, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

func stringValue(data Payload, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func intValue(data Payload, key string) int {
	return int(int64Value(data, key))
}

func int64Value(data Payload, key string) int64 {
	switch v := data[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func durationText(v any) string {
	d, _ := v.(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func errorText(v any) string {
	switch e := v.(type) {
	case error:
		return strings.TrimSpace(e.Error())
	case string:
		if s := strings.TrimSpace(e); s != "" {
			return s
		}
	}
	return "unknown"
}

func byteText(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

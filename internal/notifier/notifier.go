// Package notifier publishes grade notifications to a fixed topic.
//
// Two implementations: Webhook POSTs each notification as JSON to a
// configured URL; Log writes it to the structured log so the API works
// with no delivery backend configured. Fire-and-forget either way — no
// retry, no delivery confirmation.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier publishes one message to the topic.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}

// payload is the wire shape of a webhook notification.
type payload struct {
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Webhook delivers notifications with an HTTP POST.
type Webhook struct {
	topic  string
	url    string
	client *http.Client
}

// NewWebhook returns a Webhook notifier for the given topic and URL.
func NewWebhook(topic, url string) *Webhook {
	return &Webhook{
		topic: topic,
		url:   url,
		// A slow webhook must not hold the alumno request open forever.
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Publish POSTs the notification and treats any non-2xx reply as an
// error; the caller surfaces it as a 500.
func (n *Webhook) Publish(ctx context.Context, subject, message string) error {
	body, err := json.Marshal(payload{Topic: n.topic, Subject: subject, Message: message})
	if err != nil {
		return fmt.Errorf("notifier.Publish: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier.Publish: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notifier.Publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notifier.Publish: webhook returned %s", resp.Status)
	}

	return nil
}

// Log is the no-backend fallback: every notification goes to slog.
type Log struct {
	topic string
	log   *slog.Logger
}

// NewLog returns a Log notifier.
func NewLog(topic string, log *slog.Logger) *Log {
	return &Log{topic: topic, log: log}
}

// Publish records the notification in the log and always succeeds.
func (n *Log) Publish(_ context.Context, subject, message string) error {
	n.log.Info("notification published",
		slog.String("topic", n.topic),
		slog.String("subject", subject),
		slog.String("message", message),
	)
	return nil
}

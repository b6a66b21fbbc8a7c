// Package mail sends feedback messages through an HTTP mail delivery API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config captures the mail API connection settings.
type Config struct {
	Endpoint       string
	Token          string
	FromAddress    string
	SubjectPrefix  string
	TimeoutSeconds int
}

// Client posts messages to the mail delivery endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a mail client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			Endpoint:       strings.TrimSpace(cfg.Endpoint),
			Token:          strings.TrimSpace(cfg.Token),
			FromAddress:    strings.TrimSpace(cfg.FromAddress),
			SubjectPrefix:  strings.TrimSpace(cfg.SubjectPrefix),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Enabled reports whether a mail endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Endpoint != ""
}

// Message is one outbound mail.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send delivers one message. The configured subject prefix is prepended so
// feedback mail is recognizable in a crowded inbox.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	if !c.Enabled() {
		return errors.New("mail: not configured")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("mail send: recipient address required")
	}
	subject = strings.TrimSpace(subject)
	if c.cfg.SubjectPrefix != "" {
		if subject == "" {
			subject = c.cfg.SubjectPrefix
		} else {
			subject = c.cfg.SubjectPrefix + ": " + subject
		}
	}

	message := Message{
		To:      to,
		From:    c.cfg.FromAddress,
		Subject: subject,
		Body:    body,
	}
	encoded, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("mail send: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("mail send: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail send: http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// HealthCheck verifies the mail endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return errors.New("mail: not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("mail health: new request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 2048)) //nolint:errcheck

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("mail health: http %d", resp.StatusCode)
	}
	return nil
}

// Package gradebook talks to the course gradebook HTTP API. It drains the
// paginated course roster and posts grades with attached feedback comments.
package gradebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config captures the gradebook connection settings.
type Config struct {
	BaseURL         string
	Token           string
	DefaultItemType string
	PageSize        int
	TimeoutSeconds  int
}

// Client wraps the gradebook REST API.
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

// NewClient constructs a gradebook client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:         strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
			Token:           strings.TrimSpace(cfg.Token),
			DefaultItemType: strings.TrimSpace(cfg.DefaultItemType),
			PageSize:        cfg.PageSize,
			TimeoutSeconds:  cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	if client.cfg.PageSize <= 0 {
		client.cfg.PageSize = 100
	}
	if client.cfg.DefaultItemType == "" {
		client.cfg.DefaultItemType = "assignment"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Enabled reports whether a gradebook endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.BaseURL != ""
}

// DefaultItemType returns the configured gradebook item type.
func (c *Client) DefaultItemType() string {
	return c.cfg.DefaultItemType
}

// RosterEntry is one student on a course roster.
type RosterEntry struct {
	UserRef string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Section string `json:"section"`
}

// Roster returns the full student roster for the course, following
// pagination until the API reports no further pages.
func (c *Client) Roster(ctx context.Context, courseRef string) ([]RosterEntry, error) {
	if !c.Enabled() {
		return nil, errors.New("gradebook: not configured")
	}
	courseRef = strings.TrimSpace(courseRef)
	if courseRef == "" {
		return nil, errors.New("gradebook roster: course reference required")
	}

	var roster []RosterEntry
	for page := 1; ; page++ {
		entries, err := c.rosterPage(ctx, courseRef, page)
		if err != nil {
			return nil, err
		}
		roster = append(roster, entries...)
		if len(entries) < c.cfg.PageSize {
			return roster, nil
		}
	}
}

func (c *Client) rosterPage(ctx context.Context, courseRef string, page int) ([]RosterEntry, error) {
	endpoint := fmt.Sprintf("%s/courses/%s/students?%s",
		c.cfg.BaseURL,
		url.PathEscape(courseRef),
		url.Values{
			"page":     []string{strconv.Itoa(page)},
			"per_page": []string{strconv.Itoa(c.cfg.PageSize)},
		}.Encode(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gradebook roster: new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gradebook roster: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gradebook roster: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gradebook roster: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []RosterEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("gradebook roster: decode page %d: %w", page, err)
	}
	return entries, nil
}

// PostGrade records a grade with an attached comment for one student.
// itemType falls back to the configured default when empty.
func (c *Client) PostGrade(ctx context.Context, courseRef, itemType, itemRef, userRef, grade, comment string) error {
	if !c.Enabled() {
		return errors.New("gradebook: not configured")
	}
	courseRef = strings.TrimSpace(courseRef)
	itemRef = strings.TrimSpace(itemRef)
	userRef = strings.TrimSpace(userRef)
	if courseRef == "" || itemRef == "" || userRef == "" {
		return errors.New("gradebook post: course, item, and user references required")
	}
	itemType = strings.TrimSpace(itemType)
	if itemType == "" {
		itemType = c.cfg.DefaultItemType
	}

	payload := map[string]string{
		"grade":   strings.TrimSpace(grade),
		"comment": comment,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gradebook post: encode body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/courses/%s/%ss/%s/grades/%s",
		c.cfg.BaseURL,
		url.PathEscape(courseRef),
		url.PathEscape(itemType),
		url.PathEscape(itemRef),
		url.PathEscape(userRef),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("gradebook post: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gradebook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gradebook post: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// HealthCheck verifies the gradebook endpoint answers with the configured token.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return errors.New("gradebook: not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/courses", nil)
	if err != nil {
		return fmt.Errorf("gradebook health: new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gradebook health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 2048)) //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("gradebook health: token rejected (http %d)", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gradebook health: http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

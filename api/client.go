package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "forumtext/1.0 (+https://github.com/open-cli-collective/forumtext)"
	defaultMaxBytes  = 8 << 20
	maxRedirects     = 5
)

// Client fetches pages of a single forum topic.
type Client struct {
	baseURL    string
	forum      string
	topic      string
	perPage    int
	userAgent  string
	maxBytes   int64
	httpClient *http.Client
}

// NewClient creates a client for the topic at baseURL (the forum's
// viewtopic.php address). forum may be empty for boards that do not need it.
func NewClient(baseURL, forum, topic string, perPage int) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		forum:     forum,
		topic:     topic,
		perPage:   perPage,
		userAgent: defaultUserAgent,
		maxBytes:  defaultMaxBytes,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// PerPage returns the number of posts per topic page.
func (c *Client) PerPage() int {
	return c.perPage
}

// get fetches url and returns its body decoded to UTF-8.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, fmt.Errorf("page %s exceeds %d bytes", url, c.maxBytes)
	}
	if len(raw) == 0 {
		return []byte{}, nil
	}

	// Decode legacy encodings using Content-Type, BOM or <meta charset>.
	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to detect page encoding: %w", err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

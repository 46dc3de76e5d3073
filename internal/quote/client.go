// Package quote fetches motivational quotes from a zenquotes-compatible API.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/ratelimit"
)

// DefaultBaseURL is the public zenquotes API.
const DefaultBaseURL = "https://zenquotes.io"

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 64 << 10

// Quote is a single quote.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// zenQuote is the upstream wire format.
type zenQuote struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Upstream free-tier allowance.
const (
	requestsPerWindow = 5
	requestWindow     = 30 * time.Second
)

// Client fetches quotes. Requests to each upstream host are paced to the
// free-tier allowance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient creates a quote client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.Every(requestsPerWindow, requestWindow),
		logger:     logger,
	}
}

// Shutdown stops the pacing limiter's cleanup goroutine.
func (c *Client) Shutdown() error {
	c.limiter.Stop()
	return nil
}

// Random returns a random quote. Upstream failures, including an empty
// result, are reported as UPSTREAM_ERROR.
func (c *Client) Random(ctx context.Context) (*Quote, error) {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeRateLimited, "quote service busy, try again shortly")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/random", nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("quote request failed", "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "failed to fetch quote")
	}
	defer resp.Body.Close()

	c.logger.Debug("quote fetched", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, domainerrors.Upstream(fmt.Sprintf("quote service returned %d", resp.StatusCode))
	}

	var quotes []zenQuote
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&quotes); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "invalid quote response")
	}
	if len(quotes) == 0 || strings.TrimSpace(quotes[0].Q) == "" {
		return nil, domainerrors.Upstream("quote service returned no quotes")
	}

	return &Quote{
		Text:   strings.TrimSpace(quotes[0].Q),
		Author: strings.TrimSpace(quotes[0].A),
	}, nil
}

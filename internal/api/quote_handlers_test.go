package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakboard/streakboard-server/internal/quote"
)

func TestGetQuote(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/quote")
	require.Equal(t, http.StatusOK, resp.Code)
	q := decodeEnvelope[quote.Quote](t, resp).Data
	assert.Equal(t, "Well begun is half done.", q.Text)
	assert.Equal(t, "Aristotle", q.Author)
}

func TestGetQuote_UpstreamEmpty(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	ts := setupTestServer(t, func(_ *Options, s *Services) {
		s.Quotes = quote.NewClient(quote.Options{BaseURL: upstream.URL, Timeout: time.Second})
	})

	resp := ts.api.Get("/api/v1/quote")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	env := decodeEnvelope[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "UPSTREAM_ERROR", env.Code)
	assert.Regexp(t, `msg="Quote fetch failed" request_id=\S+`, ts.logs.String())
}

func TestGetQuote_NotConfigured(t *testing.T) {
	ts := setupTestServer(t, func(_ *Options, s *Services) {
		s.Quotes = nil
	})

	resp := ts.api.Get("/api/v1/quote")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "quote service not configured", decodeEnvelope[any](t, resp).Error)
}

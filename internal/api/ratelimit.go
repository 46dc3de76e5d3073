package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/ratelimit"
)

// Auth endpoints allow 20 requests per minute per client with a burst of 10.
const (
	authRatePerMinute = 20
	authRateBurst     = 10
)

// NewAuthRateLimiter creates the per-IP limiter guarding the auth endpoints.
func NewAuthRateLimiter() *ratelimit.KeyedRateLimiter {
	return NewRateLimiter(authRatePerMinute, time.Minute, authRateBurst)
}

// NewRateLimiter creates a keyed limiter allowing ratePerInterval requests
// per interval with the given burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *ratelimit.KeyedRateLimiter {
	// 20 per minute = 20/60 = 0.333 rps
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// rateLimit is a huma operation middleware that limits requests by client IP.
// Returns 429 Too Many Requests with Retry-After when the limit is exceeded.
func (s *Server) rateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.authLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if s.authLimiter.Allow(key) {
		next(ctx)
		return
	}

	logger.FromContext(ctx.Context(), s.logger).Warn("Rate limit exceeded",
		"ip", key,
		"path", ctx.URL().Path,
	)
	retry := int(math.Ceil(s.authLimiter.RetryAfter(key).Seconds()))
	ctx.SetHeader("Retry-After", strconv.Itoa(max(retry, 1)))
	_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, please try again later")
}

// clientIP strips the port from a remote address. chi's RealIP middleware
// has already applied X-Forwarded-For and X-Real-IP by the time this runs.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(remoteAddr)
}

// extractIP picks the client address from proxy headers, falling back to remoteAddr.
func extractIP(xForwardedFor, xRealIP, remoteAddr string) string {
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if xRealIP != "" {
		return xRealIP
	}
	return clientIP(remoteAddr)
}

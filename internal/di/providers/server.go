package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/streakboard/streakboard-server/internal/api"
	"github.com/streakboard/streakboard-server/internal/config"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/quote"
	"github.com/streakboard/streakboard-server/internal/ratelimit"
	"github.com/streakboard/streakboard-server/internal/service"
)

// AuthLimiterHandle wraps the per-IP auth rate limiter so its cleanup
// goroutine stops on shutdown.
type AuthLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *AuthLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAuthLimiter provides the rate limiter for auth endpoints.
func ProvideAuthLimiter(i do.Injector) (*AuthLimiterHandle, error) {
	return &AuthLimiterHandle{KeyedRateLimiter: api.NewAuthRateLimiter()}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	loc := do.MustInvoke[*time.Location](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	limiter := do.MustInvoke[*AuthLimiterHandle](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		Users:       do.MustInvoke[*service.UserService](i),
		Tasks:       do.MustInvoke[*service.TaskService](i),
		Follows:     do.MustInvoke[*service.FollowService](i),
		Streaks:     do.MustInvoke[*service.StreakService](i),
		Leaderboard: do.MustInvoke[*service.LeaderboardService](i),
		Quotes:      do.MustInvoke[*quote.Client](i),
	}

	return api.NewServer(services, api.Options{
		Location:    loc,
		CORSOrigins: cfg.Server.CORSOrigins,
		AuthLimiter: limiter.KeyedRateLimiter,
		HealthChecks: map[string]api.HealthCheck{
			"database": func(context.Context) error { return storeHandle.Ping() },
			"search": func(context.Context) error {
				_, err := indexHandle.DocumentCount()
				return err
			},
		},
	}, log.Logger), nil
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/config"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/quote"
	"github.com/streakboard/streakboard-server/internal/service"
)

// ProvideSessionService provides the refresh session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(sessions.Store, storeHandle.Store, tokenService, log.Logger, nil), nil
}

// ProvideStreakService provides the streak calculator.
func ProvideStreakService(i do.Injector) (*service.StreakService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStreakService(storeHandle.Store, storeHandle.Store, log.Logger, nil), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	streakService := do.MustInvoke[*service.StreakService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(
		storeHandle.Store,
		storeHandle.Store,
		indexHandle.SearchIndex,
		hasher,
		sessionService,
		streakService,
		log.Logger,
		nil,
	), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	userService := do.MustInvoke[*service.UserService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(userService, sessionService, tokenService, log.Logger), nil
}

// ProvideTaskService provides the task service.
func ProvideTaskService(i do.Injector) (*service.TaskService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTaskService(storeHandle.Store, storeHandle.Store, log.Logger, nil), nil
}

// ProvideFollowService provides the follow graph service.
func ProvideFollowService(i do.Injector) (*service.FollowService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFollowService(storeHandle.Store, storeHandle.Store, log.Logger, nil), nil
}

// ProvideLeaderboardService provides the friends leaderboard service.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLeaderboardService(
		storeHandle.Store,
		storeHandle.Store,
		storeHandle.Store,
		service.LeaderboardOptions{
			WindowDays: cfg.Leaderboard.WindowDays,
			Limit:      cfg.Leaderboard.Limit,
		},
		log.Logger,
		nil,
	), nil
}

// ProvideQuoteClient provides the upstream quote client.
func ProvideQuoteClient(i do.Injector) (*quote.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return quote.NewClient(quote.Options{
		BaseURL: cfg.Quote.BaseURL,
		Timeout: cfg.Quote.Timeout,
		Logger:  log.Logger,
	}), nil
}

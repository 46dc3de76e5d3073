package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/service"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideSessionCleanupJob provides the periodic expired-session sweep.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &SessionCleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		runSessionCleanup(ctx, sessionService, log, sessionSweepInterval)
	}()

	log.Info("Session cleanup job started", "interval", sessionSweepInterval)

	return job, nil
}

// expiredSessionSweeper is the part of SessionService the cleanup loop needs.
type expiredSessionSweeper interface {
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// runSessionCleanup sweeps once immediately, then every interval until ctx ends.
func runSessionCleanup(ctx context.Context, sweeper expiredSessionSweeper, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if count, err := sweeper.DeleteExpiredSessions(ctx); err != nil {
		log.Warn("Initial session cleanup failed", "error", err)
	} else if count > 0 {
		log.Info("Initial session cleanup completed", "deleted", count)
	}

	for {
		select {
		case <-ticker.C:
			if count, err := sweeper.DeleteExpiredSessions(ctx); err != nil {
				log.Warn("Session cleanup failed", "error", err)
			} else if count > 0 {
				log.Info("Session cleanup completed", "deleted", count)
			}
		case <-ctx.Done():
			return
		}
	}
}

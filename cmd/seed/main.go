// Package main seeds a data directory with demo users, follows and
// completed tasks so streaks and leaderboards have something to show.
//
// Usage:
//
//	go run ./cmd/seed --data-dir ~/Streakboard/data --users 8 --days 21
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/streakboard/streakboard-server/internal/auth"
	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/search"
	"github.com/streakboard/streakboard-server/internal/service"
	"github.com/streakboard/streakboard-server/internal/store/sqlite"
	"github.com/streakboard/streakboard-server/internal/streak"
)

// demoPassword is shared by every seeded account.
const demoPassword = "streakboard-demo"

var demoNames = []string{
	"Alex Rivera",
	"Jordan Chen",
	"Sam Taylor",
	"Casey Morgan",
	"Riley Kim",
	"Avery Patel",
	"Quinn Okafor",
	"Devon Silva",
}

var demoTasks = []string{
	"Morning run",
	"Read 20 pages",
	"Inbox zero",
	"Water the plants",
	"Practice guitar",
	"Stretch",
	"Meal prep",
	"Call a friend",
}

type seedOptions struct {
	DataDir string
	Users   int
	Days    int
	Seed    uint64
	Tz      string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a data directory with demo users and task history",
		Long: `seed creates demo accounts that follow each other and completes tasks
for them across the trailing days, so streaks and the friends leaderboard
have data. Every account uses the password "` + demoPassword + `".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Users < 2 {
				return fmt.Errorf("--users must be at least 2, got %d", opts.Users)
			}
			if opts.Days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", opts.Days)
			}
			if opts.DataDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				opts.DataDir = filepath.Join(home, "Streakboard", "data")
			}
			if opts.Seed == 0 {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			return seed(cmd.Context(), opts, out)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Data directory (default ~/Streakboard/data)")
	cmd.Flags().IntVar(&opts.Users, "users", 5, "Number of demo users to create")
	cmd.Flags().IntVar(&opts.Days, "days", 14, "Days of completion history to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (default: time-based)")
	cmd.Flags().StringVar(&opts.Tz, "tz", "UTC", "IANA timezone whose calendar days the history is spread over")

	return cmd
}

// seed writes the demo data. Users whose email already exists are reused.
func seed(ctx context.Context, opts seedOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loc, err := time.LoadLocation(opts.Tz)
	if err != nil {
		return fmt.Errorf("invalid --tz %q: %w", opts.Tz, err)
	}
	if err := os.MkdirAll(opts.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	log := logger.Discard()

	db, err := sqlite.Open(filepath.Join(opts.DataDir, "streakboard.db"), log)
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: opts.DataDir, Logger: log})
	if err != nil {
		return err
	}
	defer index.Close()

	// Tasks are completed "in the past" by moving this clock.
	at := time.Now()
	clock := func() time.Time { return at }

	users := service.NewUserService(db, db, index, auth.NewHasher(auth.FastParams), nil, nil, log, nil)
	tasks := service.NewTaskService(db, db, log, clock)
	follows := service.NewFollowService(db, db, log, nil)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed>>1))

	fmt.Fprintf(out, "Seeding %s\n", opts.DataDir)

	var created []*domain.User
	for n := range opts.Users {
		name := demoNames[n%len(demoNames)]
		email := fmt.Sprintf("demo%d@example.com", n+1)

		user, err := users.Register(ctx, service.RegisterRequest{
			Email:    email,
			Username: fmt.Sprintf("demo_%d", n+1),
			Name:     name,
			Password: demoPassword,
		})
		if err != nil {
			existing, lookupErr := db.GetUserByEmail(ctx, email)
			if lookupErr != nil {
				return fmt.Errorf("create %s: %w", email, err)
			}
			user = existing
			fmt.Fprintf(out, "  %s already exists, reusing\n", email)
		} else {
			fmt.Fprintf(out, "  Created %s (%s)\n", user.Username, email)
		}
		created = append(created, user)
	}

	// Everyone follows everyone else so each leaderboard is full.
	edges := 0
	for _, follower := range created {
		for _, followee := range created {
			if follower.ID == followee.ID {
				continue
			}
			res, err := follows.Follow(ctx, follower.ID, followee.ID)
			if err != nil {
				return fmt.Errorf("follow: %w", err)
			}
			if !res.AlreadyFollowing {
				edges++
			}
		}
	}
	fmt.Fprintf(out, "  Added %d follows\n", edges)

	now := time.Now()
	today := streak.DayOf(now, loc)
	for _, user := range created {
		completed := 0
		for day := opts.Days - 1; day >= 0; day-- {
			// Today and yesterday always count so the streak is live.
			if day > 1 && rng.Float32() > 0.75 {
				continue
			}
			for range 1 + rng.IntN(3) {
				offset := time.Duration(6+rng.IntN(16))*time.Hour + time.Duration(rng.IntN(60))*time.Minute
				at = today.AddDays(-day).Midnight(loc).Add(offset)
				if at.After(now) {
					at = now
				}
				if _, err := tasks.Create(ctx, user.ID, service.CreateTaskRequest{
					Title:  demoTasks[rng.IntN(len(demoTasks))],
					Status: domain.TaskStatusCompleted,
				}); err != nil {
					return fmt.Errorf("create task for %s: %w", user.Username, err)
				}
				completed++
			}
		}
		fmt.Fprintf(out, "  %s completed %d tasks over %d days\n", user.Username, completed, opts.Days)
	}

	fmt.Fprintln(out, "Seeding complete!")
	return nil
}

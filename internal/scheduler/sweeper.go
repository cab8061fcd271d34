package scheduler

import (
	"context"
	"fmt"
	"time"

	"ringside-bot/internal/config"
	"ringside-bot/internal/constants"
	"ringside-bot/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type idleExpirer interface {
	ExpireIdle(ctx context.Context, timeout time.Duration) int
}

type staleExpirer interface {
	ExpireStale(ctx context.Context, maxAge time.Duration) int
}

// Sweeper periodically settles matches whose fighters stopped choosing and
// closes lobbies nobody joined. It is inert when the round timeout is zero.
type Sweeper struct {
	matches  idleExpirer
	lobbies  staleExpirer
	timeout  time.Duration
	interval time.Duration
	logger   zerolog.Logger
	sched    gocron.Scheduler
}

func NewSweeper(cfg *config.Config, engine *service.MatchEngine, lobbies *service.LobbyManager, logger zerolog.Logger) *Sweeper {
	return newSweeper(engine, lobbies, cfg.RoundTimeout, constants.SweepInterval, logger)
}

func newSweeper(matches idleExpirer, lobbies staleExpirer, timeout, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		matches:  matches,
		lobbies:  lobbies,
		timeout:  timeout,
		interval: interval,
		logger:   logger.With().Str("component", "sweeper").Logger(),
	}
}

// Sweep runs one expiry pass and reports how many matches and lobbies it closed.
func (s *Sweeper) Sweep(ctx context.Context) (matches, lobbies int) {
	matches = s.matches.ExpireIdle(ctx, s.timeout)
	lobbies = s.lobbies.ExpireStale(ctx, s.timeout)
	if matches > 0 || lobbies > 0 {
		s.logger.Info().Int("matches", matches).Int("lobbies", lobbies).Msg("expired idle arenas")
	}
	return matches, lobbies
}

func (s *Sweeper) Start() error {
	if s.timeout <= 0 {
		s.logger.Debug().Msg("round timeout disabled, sweeper not started")
		return nil
	}

	sched, err := gocron.NewScheduler(gocron.WithLogger(cronLogger{s.logger}))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
			defer cancel()
			s.Sweep(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	sched.Start()
	s.sched = sched
	s.logger.Info().Dur("timeout", s.timeout).Dur("interval", s.interval).Msg("sweeper started")
	return nil
}

func (s *Sweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.sched = nil
	return nil
}

// Register ties the sweeper to the application lifecycle.
func Register(lc fx.Lifecycle, s *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  func(context.Context) error { return s.Stop() },
	})
}

// cronLogger routes gocron's logging through zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Debug(msg string, args ...any) { c.l.Debug().Fields(args).Msg(msg) }
func (c cronLogger) Info(msg string, args ...any)  { c.l.Info().Fields(args).Msg(msg) }
func (c cronLogger) Warn(msg string, args ...any)  { c.l.Warn().Fields(args).Msg(msg) }
func (c cronLogger) Error(msg string, args ...any) { c.l.Error().Fields(args).Msg(msg) }

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Recommender/internal/service"
)

// Scanner recommends a batch of tickers
type Scanner interface {
	Scan(ctx context.Context, tickers []string) []service.Result
}

// Scheduler runs the watchlist scan on a cron schedule
type Scheduler struct {
	Cron    *cron.Cron
	scanner Scanner
	tickers []string
	ctx     context.Context
	logger  zerolog.Logger
}

// NewScheduler creates a Scheduler. Expressions use the standard five-field
// cron format.
func NewScheduler(ctx context.Context, scanner Scanner, tickers []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(),
		scanner: scanner,
		tickers: tickers,
		ctx:     ctx,
		logger:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the scan task under a cron expression
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("entries", len(s.Cron.Entries())).Msg("Scheduler started")
}

// Stop waits for a running scan to finish
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunNow scans the watchlist immediately and returns the number of failed tickers
func (s *Scheduler) RunNow() int {
	if s.ctx.Err() != nil {
		return 0
	}
	s.logger.Info().Int("tickers", len(s.tickers)).Msg("Scan started")

	failed := 0
	for _, r := range s.scanner.Scan(s.ctx, s.tickers) {
		if r.Err != nil {
			failed++
			s.logger.Error().Err(r.Err).Str("ticker", r.Ticker).Msg("Recommendation failed")
		}
	}

	s.logger.Info().Int("failed", failed).Msg("Scan finished")
	return failed
}

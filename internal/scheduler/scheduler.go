package scheduler

import (
	"context"

	"beautybook/internal/modules/retention"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// BatchRunner is the operation the scheduler fires on its cadence.
type BatchRunner interface {
	ProcessAutomatedOffers(ctx context.Context) (retention.BatchResult, error)
}

// OfferScheduler runs the automated offer batch on a cron schedule.
type OfferScheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	spec    string
	log     zerolog.Logger
	entryID cron.EntryID
}

func New(runner BatchRunner, spec string, log zerolog.Logger) *OfferScheduler {
	return &OfferScheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
		log:    log,
	}
}

func (s *OfferScheduler) Start() error {
	id, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.log.Info().Str("schedule", s.spec).Msg("offer scheduler started")
	return nil
}

func (s *OfferScheduler) Stop() {
	s.log.Info().Msg("stopping offer scheduler")
	s.cron.Stop()
}

func (s *OfferScheduler) run() {
	result, err := s.runner.ProcessAutomatedOffers(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled offer batch failed")
		return
	}
	s.log.Info().Int("sent", result.Sent).Int("failed", result.Failed).Msg("scheduled offer batch completed")
}

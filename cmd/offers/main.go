package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"beautybook/internal/config"
	"beautybook/internal/database"
	"beautybook/internal/modules/retention"
	"beautybook/internal/modules/whatsapp"
	"beautybook/internal/repository"
)

// One-shot batch runner for operators: scans all customers and sends
// qualifying offers once, then exits.
func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is empty")
	}

	cfg, err := config.LoadRetentionConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid retention config")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}

	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	dispatcher := whatsapp.NewDispatcherFromConfig(
		whatsapp.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
			Timeout:    cfg.ProviderTimeout,
		},
		whatsapp.MetaConfig{
			AccessToken:   cfg.MetaAccessToken,
			PhoneNumberID: cfg.MetaPhoneNumberID,
			Timeout:       cfg.ProviderTimeout,
		},
		log,
	)

	analyzer := retention.NewAnalyzer(bookingRepo, cfg.IncludeCancelledInPattern)
	recommender := retention.NewRecommender(analyzer, userRepo, cfg.MinIntervalDays, cfg.MaxIntervalDays, cfg.OverdueGraceDays, log)
	svc := retention.NewService(
		analyzer,
		recommender,
		userRepo,
		repository.NewBeauticianRepository(db),
		repository.NewServiceRepository(db),
		repository.NewPreferencesRepository(db),
		repository.NewOfferRepository(db),
		repository.NewWhatsappMessageRepository(db),
		dispatcher,
		retention.ServiceConfig{
			OfferTTL:    cfg.OfferTTL,
			SendPacing:  cfg.SendPacing,
			LinkBaseURL: cfg.LinkBaseURL,
		},
		log,
	)

	result, err := svc.ProcessAutomatedOffers(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("batch run failed")
	}

	log.Info().Int("sent", result.Sent).Int("failed", result.Failed).Msg("batch run finished")
}

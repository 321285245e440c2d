package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"beautybook/internal/config"
	"beautybook/internal/database"
	"beautybook/internal/middleware"
	"beautybook/internal/modules/retention"
	"beautybook/internal/modules/whatsapp"
	jwtsvc "beautybook/internal/pkg/jwt"
	"beautybook/internal/repository"
	"beautybook/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "beautybook").Logger()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("JWT_SECRET is empty")
	}

	cfg, err := config.LoadRetentionConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid retention config")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	beauticianRepo := repository.NewBeauticianRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	messageRepo := repository.NewWhatsappMessageRepository(db)

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
	retentionService := retention.NewService(
		analyzer,
		recommender,
		userRepo,
		beauticianRepo,
		serviceRepo,
		prefsRepo,
		offerRepo,
		messageRepo,
		dispatcher,
		retention.ServiceConfig{
			OfferTTL:    cfg.OfferTTL,
			SendPacing:  cfg.SendPacing,
			LinkBaseURL: cfg.LinkBaseURL,
		},
		log,
	)
	retentionHandler := retention.NewHandler(retentionService)

	j := jwtsvc.New(secret, 24*time.Hour)

	sched := scheduler.New(retentionService, cfg.OfferSchedule, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer sched.Stop()

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		retentionHandler.RegisterPublicRoutes(v1)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(j))
		{
			retentionHandler.RegisterAdminRoutes(admin)
		}
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

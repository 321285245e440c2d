package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMinIntervalDays  = "14"
	defaultMaxIntervalDays  = "28"
	defaultOverdueGraceDays = "7"
	defaultIncludeCancelled = "true"
	defaultOfferTTL         = "168h"
	defaultSendPacing       = "1s"
	defaultProviderTimeout  = "10s"
	defaultOfferSchedule    = "0 10,18 * * *"
	defaultLinkBaseURL      = "https://beautybook.app"
)

// RetentionConfig holds the offer engine's runtime settings.
type RetentionConfig struct {
	MinIntervalDays  int
	MaxIntervalDays  int
	OverdueGraceDays int

	// IncludeCancelledInPattern keeps cancelled bookings in interval
	// inference. Defaults to the engine's historical behavior.
	IncludeCancelledInPattern bool

	OfferTTL      time.Duration
	SendPacing    time.Duration
	OfferSchedule string
	LinkBaseURL   string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	MetaAccessToken   string
	MetaPhoneNumberID string
	ProviderTimeout   time.Duration
}

func LoadRetentionConfig() (*RetentionConfig, error) {
	cfg := &RetentionConfig{}

	var err error
	cfg.MinIntervalDays, err = parseIntEnv("RETENTION_MIN_INTERVAL_DAYS", defaultMinIntervalDays)
	if err != nil {
		return nil, err
	}
	cfg.MaxIntervalDays, err = parseIntEnv("RETENTION_MAX_INTERVAL_DAYS", defaultMaxIntervalDays)
	if err != nil {
		return nil, err
	}
	cfg.OverdueGraceDays, err = parseIntEnv("RETENTION_OVERDUE_GRACE_DAYS", defaultOverdueGraceDays)
	if err != nil {
		return nil, err
	}

	cfg.IncludeCancelledInPattern = parseBoolEnv("RETENTION_INCLUDE_CANCELLED", defaultIncludeCancelled)

	cfg.OfferTTL, err = parseDurationEnv("OFFER_TTL", defaultOfferTTL)
	if err != nil {
		return nil, err
	}
	cfg.SendPacing, err = parseDurationEnv("OFFER_SEND_PACING", defaultSendPacing)
	if err != nil {
		return nil, err
	}
	cfg.ProviderTimeout, err = parseDurationEnv("WHATSAPP_PROVIDER_TIMEOUT", defaultProviderTimeout)
	if err != nil {
		return nil, err
	}

	cfg.OfferSchedule = strings.TrimSpace(getEnv("OFFER_SCHEDULE", defaultOfferSchedule))
	cfg.LinkBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("OFFER_LINK_BASE_URL", defaultLinkBaseURL)), "/")

	cfg.TwilioAccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	cfg.TwilioAuthToken = strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN"))
	cfg.TwilioFromNumber = strings.TrimSpace(os.Getenv("TWILIO_WHATSAPP_FROM"))
	cfg.MetaAccessToken = strings.TrimSpace(os.Getenv("META_WHATSAPP_TOKEN"))
	cfg.MetaPhoneNumberID = strings.TrimSpace(os.Getenv("META_PHONE_NUMBER_ID"))

	if err := validateRetentionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateRetentionConfig(cfg *RetentionConfig) error {
	if cfg.MinIntervalDays <= 0 {
		return fmt.Errorf("RETENTION_MIN_INTERVAL_DAYS must be > 0")
	}
	if cfg.MaxIntervalDays < cfg.MinIntervalDays {
		return fmt.Errorf("RETENTION_MAX_INTERVAL_DAYS must be >= RETENTION_MIN_INTERVAL_DAYS")
	}
	if cfg.OverdueGraceDays < 0 {
		return fmt.Errorf("RETENTION_OVERDUE_GRACE_DAYS must be >= 0")
	}
	if cfg.OfferTTL <= 0 {
		return fmt.Errorf("OFFER_TTL must be > 0")
	}
	if cfg.SendPacing < time.Second {
		return fmt.Errorf("OFFER_SEND_PACING must be >= 1s")
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("WHATSAPP_PROVIDER_TIMEOUT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseBoolEnv(key, fallback string) bool {
	v := strings.TrimSpace(strings.ToLower(getEnv(key, fallback)))
	return v == "true" || v == "1"
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// Contract account ids the two modules answer as.
	NFTContractID    string
	MarketContractID string

	// EnableLegacyTypeRoutes keeps the pre-series "type" route aliases alive
	// for older clients.
	EnableLegacyTypeRoutes bool

	OutboxBatchSize      int
	OutboxRelayInterval  time.Duration
	PendingSettlementTTL time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "mintery"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		NFTContractID:    envString("NFT_CONTRACT_ID", "nft.mintery.near"),
		MarketContractID: envString("MARKET_CONTRACT_ID", "market.mintery.near"),

		EnableLegacyTypeRoutes: envBool("ENABLE_LEGACY_TYPE_ROUTES", true),

		OutboxBatchSize:      envInt("OUTBOX_BATCH_SIZE", 100),
		OutboxRelayInterval:  envDuration("OUTBOX_RELAY_INTERVAL", 2*time.Second),
		PendingSettlementTTL: envDuration("PENDING_SETTLEMENT_TTL", 5*time.Minute),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

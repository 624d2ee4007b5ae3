package config

import (
	"os"
	"strconv"
	"time"
)

type LedgerConfig struct {
	HoldTTL                time.Duration
	HoldSweepInterval      time.Duration
	ReconciliationInterval time.Duration
	ReconciliationDryRun   bool
	AwardConsumerEnabled   bool
}

func LoadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		HoldTTL:                getEnvAsDuration("LEDGER_HOLD_TTL", 15*time.Minute),
		HoldSweepInterval:      getEnvAsDuration("LEDGER_HOLD_SWEEP_INTERVAL", 1*time.Minute),
		ReconciliationInterval: getEnvAsDuration("LEDGER_RECONCILIATION_INTERVAL", 1*time.Hour),
		ReconciliationDryRun:   getEnvAsBool("LEDGER_RECONCILIATION_DRY_RUN", false),
		AwardConsumerEnabled:   getEnvAsBool("LEDGER_AWARD_CONSUMER_ENABLED", true),
	}
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

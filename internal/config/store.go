package config

import "time"

const (
	StoreMongoDB   = "mongodb"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// StoreConfig selects the document store backing profiles, statistics and reviews.
type StoreConfig struct {
	Provider       string        `yaml:"provider"`
	TxMaxAttempts  int           `yaml:"tx_max_attempts"`
	WorkerCacheTTL time.Duration `yaml:"worker_cache_ttl"`
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Provider:       getEnv("STORE_PROVIDER", StoreMongoDB),
		TxMaxAttempts:  getEnvAsInt("TX_MAX_ATTEMPTS", 5),
		WorkerCacheTTL: getEnvAsDuration("CACHE_WORKER_TTL", 5*time.Minute),
	}
}

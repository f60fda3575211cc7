package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type RoyaltySplit struct {
	Recipient string `json:"recipient"`
	Percent   int64  `json:"percent"`
}

type AssetPrice struct {
	Asset string `json:"asset"`
	Price int64  `json:"price"`
}

// EngineConfig holds the deploy-time settings of the settlement engine.
// Secrets (receipt signing key, admin user) come from the runtime env
// instead, so they never land in a config file.
type EngineConfig struct {
	// RoyaltyPercent is the default royalty skim applied to deposits and
	// settled pools, 0-100.
	RoyaltyPercent int64 `json:"royalty_percent"`
	// RoyaltySplits routes shares of the royalty to fixed recipients.
	// Percentages are of the royalty itself; the uncovered remainder
	// accrues to the engine's profit pool.
	RoyaltySplits []RoyaltySplit `json:"royalty_splits"`
	// Prices are the default buy-in prices per asset, used when a pool is
	// created without an explicit entry cost.
	Prices []AssetPrice `json:"prices"`
	// SnapshotPath is where the LevelDB snapshot store lives. Empty
	// disables persistence.
	SnapshotPath string `json:"snapshot_path"`
	// ReceiptIssuer is the iss claim on settlement receipt tokens.
	ReceiptIssuer string `json:"receipt_issuer"`
}

var (
	cfg      *EngineConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadEngineConfig loads the engine configuration from the given path.
func LoadEngineConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read engine config: %w", err)
			return
		}

		var c EngineConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal engine config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetEngineConfig returns the global engine configuration, or safe defaults
// when no config file was loaded.
func GetEngineConfig() *EngineConfig {
	if cfg == nil {
		return &EngineConfig{ReceiptIssuer: "gamepot"}
	}
	return cfg
}

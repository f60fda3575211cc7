package nakama

import (
	"context"
	"database/sql"

	"gamepot/internal/app"
	"gamepot/internal/config"
	"gamepot/internal/domain"
	"gamepot/internal/ports"
	"gamepot/internal/store"

	"github.com/heroiclabs/nakama-common/runtime"
)

// defaultAdmin is the controller seeded when the runtime env names none.
const defaultAdmin = "gamepot_admin"

// InitModule wires the settlement engine into the Nakama runtime: config,
// snapshot store, wallet adapter, engine, receipt signer, and all RPCs.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if path := env["gamepot_config"]; path != "" {
		if err := config.LoadEngineConfig(path); err != nil {
			return err
		}
	}
	cfg := config.GetEngineConfig()

	admin := env["gamepot_admin"]
	if admin == "" {
		admin = defaultAdmin
	}

	var snapshots ports.SnapshotStore
	if cfg.SnapshotPath != "" {
		ldb, err := store.NewLevelDB(cfg.SnapshotPath)
		if err != nil {
			return err
		}
		snapshots = ldb
	} else {
		logger.Warn("No snapshot path configured; engine state will not survive restarts")
	}

	engine := app.NewService(NewNakamaAssetAdapter(nk), snapshots, admin)
	if err := engine.Restore(); err != nil {
		return err
	}

	if err := seedDefaults(engine, admin, cfg); err != nil {
		return err
	}

	handlers := &rpcHandlers{
		engine:   engine,
		receipts: app.NewReceiptService(env["gamepot_receipt_secret"], cfg.ReceiptIssuer),
	}
	if err := handlers.RegisterRPCs(initializer); err != nil {
		return err
	}

	logger.Info("GamePot settlement module loaded.")
	return nil
}

// seedDefaults applies the configured royalty and buy-in prices on top of
// whatever the snapshot restored.
func seedDefaults(engine *app.Service, admin string, cfg *config.EngineConfig) error {
	if cfg.RoyaltyPercent > 0 || len(cfg.RoyaltySplits) > 0 {
		royalty := domain.RoyaltyConfig{Percent: cfg.RoyaltyPercent}
		for _, s := range cfg.RoyaltySplits {
			royalty.Splits = append(royalty.Splits, domain.RoyaltySplit{
				Recipient: s.Recipient,
				Percent:   s.Percent,
			})
		}
		if err := engine.SetRoyalty(admin, royalty); err != nil {
			return err
		}
	}
	for _, p := range cfg.Prices {
		if err := engine.SetBuyInPrice(admin, p.Asset, p.Price); err != nil {
			return err
		}
	}
	return nil
}

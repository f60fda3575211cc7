package ports

import "context"

// AssetPort is the external fungible-asset transfer primitive backing the
// ledger. Assets are opaque partitioning keys; amounts are non-negative
// integers in the asset's smallest unit.
type AssetPort interface {
	// TransferIn moves amount of asset from the user into the engine's
	// custody. A failure means no value moved.
	TransferIn(ctx context.Context, userID, asset string, amount int64) error

	// TransferOut moves amount of asset from the engine's custody to the
	// user. A failure means no value moved.
	TransferOut(ctx context.Context, userID, asset string, amount int64) error

	// BalanceOf reports the user's external balance for asset.
	BalanceOf(ctx context.Context, userID, asset string) (int64, error)
}

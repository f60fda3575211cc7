package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"gamepot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAssetAdapter implements ports.AssetPort on Nakama's wallet system.
// Each ledger asset maps to a wallet currency key; moving value into the
// engine debits the user's wallet, so an overdraw fails inside WalletUpdate
// and models an external transfer failure.
type NakamaAssetAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAssetAdapter creates a new wallet-backed asset adapter.
func NewNakamaAssetAdapter(nk runtime.NakamaModule) *NakamaAssetAdapter {
	return &NakamaAssetAdapter{nk: nk}
}

// TransferIn debits amount of the asset currency from the user's wallet.
func (a *NakamaAssetAdapter) TransferIn(ctx context.Context, userID, asset string, amount int64) error {
	changes := map[string]int64{asset: -amount}
	metadata := map[string]interface{}{"reason": "gamepot_deposit"}

	_, _, err := a.nk.WalletUpdate(ctx, userID, changes, metadata, true)
	if err != nil {
		return fmt.Errorf("failed to debit wallet for user %s: %w", userID, err)
	}
	return nil
}

// TransferOut credits amount of the asset currency to the user's wallet.
func (a *NakamaAssetAdapter) TransferOut(ctx context.Context, userID, asset string, amount int64) error {
	changes := map[string]int64{asset: amount}
	metadata := map[string]interface{}{"reason": "gamepot_payout"}

	_, _, err := a.nk.WalletUpdate(ctx, userID, changes, metadata, true)
	if err != nil {
		return fmt.Errorf("failed to credit wallet for user %s: %w", userID, err)
	}
	return nil
}

// BalanceOf reads the user's wallet balance for the asset currency.
func (a *NakamaAssetAdapter) BalanceOf(ctx context.Context, userID, asset string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[asset], nil
}

var _ ports.AssetPort = (*NakamaAssetAdapter)(nil)

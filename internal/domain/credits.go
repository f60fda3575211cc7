package domain

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientCredits = errors.New("insufficient credit balance")
	ErrNothingToClaim      = errors.New("no winnings to claim")
	ErrNoProfits           = errors.New("no profits accrued for asset")
	ErrBadReferral         = errors.New("invalid referral")
)

// Referral redirects a percentage of a single deposit's royalty to a
// designated receiver's credit balance.
type Referral struct {
	Receiver string
	Percent  int64
}

// Ledger is the dual-balance credit store, partitioned per asset.
//
// Credits are spendable on pool entries; Winnings come out of settlements and
// must be explicitly claimed; Profits holds the royalty remainder and
// settlement dust that belongs to no user. Maps are nested asset -> user so
// the whole ledger serializes to JSON for snapshots.
type Ledger struct {
	Credits  map[string]map[string]int64 `json:"credits"`
	Winnings map[string]map[string]int64 `json:"winnings"`
	Profits  map[string]int64            `json:"profits"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Credits:  make(map[string]map[string]int64),
		Winnings: make(map[string]map[string]int64),
		Profits:  make(map[string]int64),
	}
}

func bump(m map[string]map[string]int64, asset, user string, delta int64) {
	byUser, ok := m[asset]
	if !ok {
		byUser = make(map[string]int64)
		m[asset] = byUser
	}
	byUser[user] += delta
}

// ValidateDeposit checks a deposit's inputs without mutating the ledger, so
// callers can reject bad requests before moving any external funds.
func ValidateDeposit(amount int64, royalty RoyaltyConfig, referral *Referral) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := royalty.Validate(); err != nil {
		return err
	}
	if referral != nil {
		if referral.Receiver == "" || referral.Percent < 0 ||
			referral.Percent+royalty.SplitTotal() > 100 {
			return ErrBadReferral
		}
	}
	return nil
}

// Deposit credits amount minus the royalty skim to the user.
//
// The royalty is divided first to the referral receiver (when present), then
// across the configured splits; each share is a truncated percentage of the
// royalty amount. Whatever remains undistributed accrues to Profits. The
// external transfer backing the deposit must already have succeeded.
func (l *Ledger) Deposit(user, asset string, amount int64, royalty RoyaltyConfig, referral *Referral) (int64, error) {
	if err := ValidateDeposit(amount, royalty, referral); err != nil {
		return 0, err
	}

	royaltyAmount := amount * royalty.Percent / 100
	credited := amount - royaltyAmount
	bump(l.Credits, asset, user, credited)

	undistributed := royaltyAmount
	if referral != nil {
		share := royaltyAmount * referral.Percent / 100
		bump(l.Credits, asset, referral.Receiver, share)
		undistributed -= share
	}
	for _, split := range royalty.Splits {
		share := royaltyAmount * split.Percent / 100
		bump(l.Credits, asset, split.Recipient, share)
		undistributed -= share
	}
	l.Profits[asset] += undistributed

	return credited, nil
}

// Spend deducts amount from the user's credit balance.
func (l *Ledger) Spend(user, asset string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if l.CreditBalance(user, asset) < amount {
		return ErrInsufficientCredits
	}
	bump(l.Credits, asset, user, -amount)
	return nil
}

// Credit adds amount directly to the user's spendable balance.
// Used for refunds and royalty shares, never for deposits.
func (l *Ledger) Credit(user, asset string, amount int64) {
	if amount == 0 {
		return
	}
	bump(l.Credits, asset, user, amount)
}

// AddWinnings adds amount to the user's claimable winning balance.
func (l *Ledger) AddWinnings(user, asset string, amount int64) {
	if amount == 0 {
		return
	}
	bump(l.Winnings, asset, user, amount)
}

// AddProfits accrues amount to the unattributed profit pool for asset.
func (l *Ledger) AddProfits(asset string, amount int64) {
	if amount == 0 {
		return
	}
	l.Profits[asset] += amount
}

// CreditBalance returns the spendable balance, zero if unset.
func (l *Ledger) CreditBalance(user, asset string) int64 {
	return l.Credits[asset][user]
}

// WinningBalance returns the claimable balance, zero if unset.
func (l *Ledger) WinningBalance(user, asset string) int64 {
	return l.Winnings[asset][user]
}

// ProfitBalance returns the accrued profits for asset, zero if unset.
func (l *Ledger) ProfitBalance(asset string) int64 {
	return l.Profits[asset]
}

// ZeroWinnings clears the user's winning balance and returns what it held.
// Callers must complete the external transfer before invoking this.
func (l *Ledger) ZeroWinnings(user, asset string) (int64, error) {
	amount := l.WinningBalance(user, asset)
	if amount == 0 {
		return 0, ErrNothingToClaim
	}
	delete(l.Winnings[asset], user)
	return amount, nil
}

// ZeroProfits clears the profit pool for asset and returns what it held.
func (l *Ledger) ZeroProfits(asset string) (int64, error) {
	amount := l.Profits[asset]
	if amount == 0 {
		return 0, ErrNoProfits
	}
	delete(l.Profits, asset)
	return amount, nil
}

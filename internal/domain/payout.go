package domain

import "errors"

var (
	ErrNegativePool     = errors.New("prize pool must not be negative")
	ErrBadWeights       = errors.New("weights must be positive integers")
	ErrBadRoyaltyConfig = errors.New("invalid royalty configuration")
	ErrDuplicateEntrant = errors.New("leaderboard contains a duplicate address")
)

// RoyaltySplit routes a share of the royalty to a recipient's credit balance.
// Percent is a percentage of the royalty amount itself, not of the pool.
type RoyaltySplit struct {
	Recipient string `json:"recipient"`
	Percent   int64  `json:"percent"`
}

// RoyaltyConfig describes the skim taken from deposits and settled pools.
type RoyaltyConfig struct {
	Percent int64          `json:"percent"`
	Splits  []RoyaltySplit `json:"splits,omitempty"`
}

// SplitTotal returns the summed percentage of all configured splits.
func (c RoyaltyConfig) SplitTotal() int64 {
	var total int64
	for _, s := range c.Splits {
		total += s.Percent
	}
	return total
}

// Validate checks the royalty percentage bounds.
// Splits may cover at most the whole royalty; the uncovered remainder
// accrues to the profit pool.
func (c RoyaltyConfig) Validate() error {
	if c.Percent < 0 || c.Percent > 100 {
		return ErrBadRoyaltyConfig
	}
	for _, s := range c.Splits {
		if s.Percent < 0 || s.Recipient == "" {
			return ErrBadRoyaltyConfig
		}
	}
	if c.SplitTotal() > 100 {
		return ErrBadRoyaltyConfig
	}
	return nil
}

// Payout is a single credited amount within a settlement.
type Payout struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// Distribution is the exact outcome of settling a prize pool.
// Royalties go to credit balances, Payouts to winning balances, and Dust
// is the truncation remainder retained by the ledger as profit.
type Distribution struct {
	Royalties []Payout `json:"royalties,omitempty"`
	Payouts   []Payout `json:"payouts"`
	Dust      int64    `json:"dust"`
}

// Distribute splits totalPool across the ranked leaderboard.
//
// The royalty is taken off the top and divided among the configured splits;
// the remainder is shared over the first k = min(len(weights), len(leaderboard))
// ranks proportionally to their weights, with truncating integer division at
// every step. Whatever truncation leaves behind is reported as Dust; callers
// must not assume the distributed sum equals totalPool exactly.
func Distribute(totalPool int64, weights []int64, royalty RoyaltyConfig, leaderboard []string) (Distribution, error) {
	if totalPool < 0 {
		return Distribution{}, ErrNegativePool
	}
	for _, w := range weights {
		if w <= 0 {
			return Distribution{}, ErrBadWeights
		}
	}
	if err := royalty.Validate(); err != nil {
		return Distribution{}, err
	}
	seen := make(map[string]bool, len(leaderboard))
	for _, addr := range leaderboard {
		if seen[addr] {
			return Distribution{}, ErrDuplicateEntrant
		}
		seen[addr] = true
	}

	royaltyAmount := totalPool * royalty.Percent / 100
	distributed := int64(0)

	var royalties []Payout
	for _, split := range royalty.Splits {
		share := royaltyAmount * split.Percent / 100
		if share == 0 {
			continue
		}
		royalties = append(royalties, Payout{UserID: split.Recipient, Amount: share})
		distributed += share
	}

	remaining := totalPool - royaltyAmount

	k := len(weights)
	if len(leaderboard) < k {
		k = len(leaderboard)
	}
	var denom int64
	for _, w := range weights[:k] {
		denom += w
	}

	payouts := make([]Payout, 0, k)
	for i := 0; i < k; i++ {
		amount := remaining * weights[i] / denom
		payouts = append(payouts, Payout{UserID: leaderboard[i], Amount: amount})
		distributed += amount
	}

	return Distribution{
		Royalties: royalties,
		Payouts:   payouts,
		Dust:      totalPool - distributed,
	}, nil
}

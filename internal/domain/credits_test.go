package domain

import "testing"

func TestDepositTakesRoyalty(t *testing.T) {
	l := NewLedger()

	credited, err := l.Deposit("u1", "gold", 10, RoyaltyConfig{Percent: 10}, nil)
	if err != nil {
		t.Fatalf("deposit error: %v", err)
	}
	if credited != 9 {
		t.Fatalf("credited = %d, want 9", credited)
	}
	if got := l.CreditBalance("u1", "gold"); got != 9 {
		t.Fatalf("credit balance = %d, want 9", got)
	}
	if got := l.ProfitBalance("gold"); got != 1 {
		t.Fatalf("profits = %d, want 1", got)
	}
}

func TestDepositWithReferral(t *testing.T) {
	l := NewLedger()

	// 10% royalty on 100, half redirected to the referral receiver.
	credited, err := l.Deposit("u1", "gold", 100, RoyaltyConfig{Percent: 10},
		&Referral{Receiver: "u2", Percent: 50})
	if err != nil {
		t.Fatalf("deposit error: %v", err)
	}
	if credited != 90 {
		t.Fatalf("credited = %d, want 90", credited)
	}
	if got := l.CreditBalance("u2", "gold"); got != 5 {
		t.Fatalf("referral credit = %d, want 5", got)
	}
	if got := l.ProfitBalance("gold"); got != 5 {
		t.Fatalf("profits = %d, want 5", got)
	}
}

func TestDepositRoyaltySplits(t *testing.T) {
	l := NewLedger()

	_, err := l.Deposit("u1", "gold", 200, RoyaltyConfig{
		Percent: 10,
		Splits:  []RoyaltySplit{{Recipient: "dev", Percent: 25}},
	}, nil)
	if err != nil {
		t.Fatalf("deposit error: %v", err)
	}
	if got := l.CreditBalance("dev", "gold"); got != 5 {
		t.Fatalf("dev credit = %d, want 5", got)
	}
	if got := l.ProfitBalance("gold"); got != 15 {
		t.Fatalf("profits = %d, want 15", got)
	}
}

func TestDepositRejectsBadInput(t *testing.T) {
	l := NewLedger()

	if _, err := l.Deposit("u1", "gold", 0, RoyaltyConfig{}, nil); err != ErrInvalidAmount {
		t.Fatalf("zero amount err = %v", err)
	}
	if _, err := l.Deposit("u1", "gold", 10, RoyaltyConfig{Percent: -1}, nil); err != ErrBadRoyaltyConfig {
		t.Fatalf("negative royalty err = %v", err)
	}
	_, err := l.Deposit("u1", "gold", 10, RoyaltyConfig{Percent: 10},
		&Referral{Receiver: "u2", Percent: 120})
	if err != ErrBadReferral {
		t.Fatalf("oversized referral err = %v", err)
	}
	// Referral plus splits may not exceed the whole royalty.
	_, err = l.Deposit("u1", "gold", 10, RoyaltyConfig{
		Percent: 10,
		Splits:  []RoyaltySplit{{Recipient: "dev", Percent: 60}},
	}, &Referral{Receiver: "u2", Percent: 50})
	if err != ErrBadReferral {
		t.Fatalf("referral overlap err = %v", err)
	}
}

func TestSpendGuardsBalance(t *testing.T) {
	l := NewLedger()
	l.Credit("u1", "gold", 5)

	if err := l.Spend("u1", "gold", 6); err != ErrInsufficientCredits {
		t.Fatalf("overspend err = %v", err)
	}
	if err := l.Spend("u1", "gold", 5); err != nil {
		t.Fatalf("spend error: %v", err)
	}
	if got := l.CreditBalance("u1", "gold"); got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
	// Balances are scoped per asset.
	if err := l.Spend("u1", "silver", 1); err != ErrInsufficientCredits {
		t.Fatalf("cross-asset spend err = %v", err)
	}
}

func TestWinningsLifecycle(t *testing.T) {
	l := NewLedger()

	if _, err := l.ZeroWinnings("u1", "gold"); err != ErrNothingToClaim {
		t.Fatalf("empty claim err = %v", err)
	}

	l.AddWinnings("u1", "gold", 42)
	if got := l.WinningBalance("u1", "gold"); got != 42 {
		t.Fatalf("winning balance = %d, want 42", got)
	}
	// Winnings are not spendable.
	if err := l.Spend("u1", "gold", 1); err != ErrInsufficientCredits {
		t.Fatalf("spend winnings err = %v", err)
	}

	amount, err := l.ZeroWinnings("u1", "gold")
	if err != nil {
		t.Fatalf("claim error: %v", err)
	}
	if amount != 42 {
		t.Fatalf("claimed = %d, want 42", amount)
	}
	if got := l.WinningBalance("u1", "gold"); got != 0 {
		t.Fatalf("balance after claim = %d, want 0", got)
	}
}

func TestZeroProfits(t *testing.T) {
	l := NewLedger()

	if _, err := l.ZeroProfits("gold"); err != ErrNoProfits {
		t.Fatalf("empty profits err = %v", err)
	}

	l.AddProfits("gold", 7)
	amount, err := l.ZeroProfits("gold")
	if err != nil {
		t.Fatalf("take profits error: %v", err)
	}
	if amount != 7 {
		t.Fatalf("profits taken = %d, want 7", amount)
	}
	if got := l.ProfitBalance("gold"); got != 0 {
		t.Fatalf("profits after take = %d, want 0", got)
	}
}

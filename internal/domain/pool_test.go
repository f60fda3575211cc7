package domain

import "testing"

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(1, "gold", 10, 0, []int64{3, 2, 1}, RoyaltyConfig{})
	if err != nil {
		t.Fatalf("new pool error: %v", err)
	}
	return p
}

func TestPoolJoinOnce(t *testing.T) {
	p := newTestPool(t)

	if err := p.Join("u1"); err != nil {
		t.Fatalf("join error: %v", err)
	}
	if err := p.Join("u1"); err != ErrAlreadyJoined {
		t.Fatalf("double join err = %v", err)
	}
	if !p.Joined["u1"] || !p.Committed["u1"] {
		t.Fatalf("join should commit by default")
	}
}

func TestPoolCommitNarrows(t *testing.T) {
	p := newTestPool(t)
	for _, u := range []string{"u1", "u2", "u3"} {
		if err := p.Join(u); err != nil {
			t.Fatalf("join %s error: %v", u, err)
		}
	}

	if err := p.CommitAddresses([]string{"u1", "u4"}); err != ErrNotJoined {
		t.Fatalf("commit stranger err = %v", err)
	}
	if err := p.CommitAddresses([]string{"u1", "u2"}); err != nil {
		t.Fatalf("commit error: %v", err)
	}
	if p.Committed["u3"] {
		t.Fatalf("u3 should no longer be committed")
	}
	if !p.Joined["u3"] {
		t.Fatalf("u3 must stay joined")
	}
	if got := p.PrizePool(); got != 20 {
		t.Fatalf("prize pool = %d, want 20", got)
	}
	if got := p.UncommittedStake(); got != 10 {
		t.Fatalf("uncommitted stake = %d, want 10", got)
	}
}

func TestPoolJoinAfterCommitStaysUncommitted(t *testing.T) {
	p := newTestPool(t)
	for _, u := range []string{"u1", "u2"} {
		if err := p.Join(u); err != nil {
			t.Fatalf("join %s error: %v", u, err)
		}
	}
	if err := p.CommitAddresses([]string{"u1", "u2"}); err != nil {
		t.Fatalf("commit error: %v", err)
	}

	// A late join must not re-expand the committed round.
	if err := p.Join("u3"); err != nil {
		t.Fatalf("join u3 error: %v", err)
	}
	if p.Committed["u3"] {
		t.Fatalf("u3 should not be committed after a narrowing commit")
	}
	if got := p.PrizePool(); got != 20 {
		t.Fatalf("prize pool = %d, want 20", got)
	}
	if err := p.ValidateLeaderboard([]string{"u2", "u1"}); err != nil {
		t.Fatalf("leaderboard for committed round error: %v", err)
	}

	// A fresh commit may seat the late joiner.
	if err := p.CommitAddresses([]string{"u1", "u2", "u3"}); err != nil {
		t.Fatalf("re-commit error: %v", err)
	}
	if !p.Committed["u3"] {
		t.Fatalf("u3 should be committed after re-commit")
	}
}

func TestPoolLeaderboardValidation(t *testing.T) {
	p := newTestPool(t)
	for _, u := range []string{"u1", "u2", "u3"} {
		if err := p.Join(u); err != nil {
			t.Fatalf("join %s error: %v", u, err)
		}
	}

	cases := []struct {
		name string
		lb   []string
		ok   bool
	}{
		{"exact permutation", []string{"u3", "u1", "u2"}, true},
		{"missing entry", []string{"u1", "u2"}, false},
		{"unknown entry", []string{"u1", "u2", "u4"}, false},
		{"duplicate entry", []string{"u1", "u2", "u2"}, false},
		{"too long", []string{"u1", "u2", "u3", "u1"}, false},
	}
	for _, tc := range cases {
		err := p.ValidateLeaderboard(tc.lb)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err != ErrLeaderboardMismatch {
			t.Fatalf("%s: err = %v, want mismatch", tc.name, err)
		}
	}
}

func TestPoolTerminalStates(t *testing.T) {
	p := newTestPool(t)
	if err := p.Join("u1"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	if err := p.Settle(); err != nil {
		t.Fatalf("settle error: %v", err)
	}
	if err := p.Join("u2"); err != ErrPoolNotOpen {
		t.Fatalf("join settled err = %v", err)
	}
	if err := p.Settle(); err != ErrPoolNotOpen {
		t.Fatalf("re-settle err = %v", err)
	}
	if err := p.Refund(); err != ErrPoolNotOpen {
		t.Fatalf("refund settled err = %v", err)
	}

	q := newTestPool(t)
	if err := q.Refund(); err != nil {
		t.Fatalf("refund error: %v", err)
	}
	if err := q.Refund(); err != ErrPoolNotOpen {
		t.Fatalf("double refund err = %v", err)
	}
}

func TestNewPoolValidation(t *testing.T) {
	if _, err := NewPool(1, "gold", 0, 0, []int64{1}, RoyaltyConfig{}); err != ErrBadEntryCost {
		t.Fatalf("zero cost err = %v", err)
	}
	if _, err := NewPool(1, "gold", 10, 0, nil, RoyaltyConfig{}); err != ErrBadWeights {
		t.Fatalf("empty weights err = %v", err)
	}
	if _, err := NewPool(1, "gold", 10, 0, []int64{1, -1}, RoyaltyConfig{}); err != ErrBadWeights {
		t.Fatalf("negative weight err = %v", err)
	}
	if _, err := NewPool(1, "gold", 10, -5, []int64{1}, RoyaltyConfig{}); err != ErrInvalidAmount {
		t.Fatalf("negative boost err = %v", err)
	}
}

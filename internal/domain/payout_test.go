package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistributeTenPlayers(t *testing.T) {
	// 10 entrants at cost 1, weights [3,2,1], no royalty.
	leaderboard := make([]string, 10)
	for i := range leaderboard {
		leaderboard[i] = fmt.Sprintf("u%d", i)
	}

	dist, err := Distribute(10, []int64{3, 2, 1}, RoyaltyConfig{}, leaderboard)
	if err != nil {
		t.Fatalf("distribute error: %v", err)
	}

	want := []int64{5, 3, 1} // 10*3/6, 10*2/6 truncated, 10*1/6 truncated
	if len(dist.Payouts) != 3 {
		t.Fatalf("payout count = %d, want 3", len(dist.Payouts))
	}
	for i, w := range want {
		if dist.Payouts[i].Amount != w {
			t.Fatalf("rank %d payout = %d, want %d", i, dist.Payouts[i].Amount, w)
		}
		if dist.Payouts[i].UserID != leaderboard[i] {
			t.Fatalf("rank %d user = %s, want %s", i, dist.Payouts[i].UserID, leaderboard[i])
		}
	}
	if dist.Dust != 1 {
		t.Fatalf("dust = %d, want 1", dist.Dust)
	}
}

func TestDistributeFewerPlayersThanWeights(t *testing.T) {
	// Two entrants against a three-entry weight table: the denominator sums
	// only the first two weights.
	const cost = 1_000_000
	dist, err := Distribute(2*cost, []int64{3, 2, 1}, RoyaltyConfig{}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("distribute error: %v", err)
	}
	if got, want := dist.Payouts[0].Amount, int64(2*cost)*3/5; got != want {
		t.Fatalf("rank 0 payout = %d, want %d", got, want)
	}
	if got, want := dist.Payouts[1].Amount, int64(2*cost)*2/5; got != want {
		t.Fatalf("rank 1 payout = %d, want %d", got, want)
	}
}

func TestDistributeRoyaltyAndSplits(t *testing.T) {
	dist, err := Distribute(1000, []int64{1}, RoyaltyConfig{
		Percent: 10,
		Splits: []RoyaltySplit{
			{Recipient: "dev", Percent: 60},
			{Recipient: "dao", Percent: 40},
		},
	}, []string{"winner"})
	if err != nil {
		t.Fatalf("distribute error: %v", err)
	}
	if got := dist.Royalties[0].Amount; got != 60 {
		t.Fatalf("dev share = %d, want 60", got)
	}
	if got := dist.Royalties[1].Amount; got != 40 {
		t.Fatalf("dao share = %d, want 40", got)
	}
	if got := dist.Payouts[0].Amount; got != 900 {
		t.Fatalf("winner payout = %d, want 900", got)
	}
	if dist.Dust != 0 {
		t.Fatalf("dust = %d, want 0", dist.Dust)
	}
}

func TestDistributeRejectsBadInput(t *testing.T) {
	if _, err := Distribute(-1, []int64{1}, RoyaltyConfig{}, nil); err != ErrNegativePool {
		t.Fatalf("negative pool err = %v", err)
	}
	if _, err := Distribute(10, []int64{1, 0}, RoyaltyConfig{}, nil); err != ErrBadWeights {
		t.Fatalf("zero weight err = %v", err)
	}
	if _, err := Distribute(10, []int64{1}, RoyaltyConfig{Percent: 101}, nil); err != ErrBadRoyaltyConfig {
		t.Fatalf("royalty over 100 err = %v", err)
	}
	if _, err := Distribute(10, []int64{1}, RoyaltyConfig{}, []string{"a", "a"}); err != ErrDuplicateEntrant {
		t.Fatalf("duplicate entrant err = %v", err)
	}
}

func TestDistributeConservationAndOrdering(t *testing.T) {
	weights := []int64{5, 3, 2, 1}
	royalty := RoyaltyConfig{
		Percent: 7,
		Splits:  []RoyaltySplit{{Recipient: "dev", Percent: 50}, {Recipient: "dao", Percent: 50}},
	}

	for entrants := 1; entrants <= 12; entrants++ {
		for _, pot := range []int64{0, 1, 17, 999, 1_000_003} {
			leaderboard := make([]string, entrants)
			for i := range leaderboard {
				leaderboard[i] = fmt.Sprintf("p%d", i)
			}

			dist, err := Distribute(pot, weights, royalty, leaderboard)
			require.NoError(t, err)

			var distributed int64
			for _, p := range dist.Royalties {
				distributed += p.Amount
			}
			for _, p := range dist.Payouts {
				distributed += p.Amount
			}
			require.Equal(t, pot, distributed+dist.Dust,
				"conservation broken for pot=%d entrants=%d", pot, entrants)

			k := len(weights)
			if entrants < k {
				k = entrants
			}
			require.Less(t, dist.Dust, int64(k+len(royalty.Splits)),
				"dust bound broken for pot=%d entrants=%d", pot, entrants)

			for i := 1; i < len(dist.Payouts); i++ {
				require.GreaterOrEqual(t, dist.Payouts[i-1].Amount, dist.Payouts[i].Amount,
					"rank ordering broken for pot=%d entrants=%d", pot, entrants)
			}
		}
	}
}

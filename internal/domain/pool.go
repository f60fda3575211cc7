package domain

import "errors"

var (
	ErrPoolExists          = errors.New("pool id already in use")
	ErrPoolNotFound        = errors.New("pool not found")
	ErrPoolNotOpen         = errors.New("pool is not open")
	ErrAlreadyJoined       = errors.New("user already joined pool")
	ErrNotJoined           = errors.New("user has not joined pool")
	ErrLeaderboardMismatch = errors.New("leaderboard does not match committed players")
	ErrBadEntryCost        = errors.New("entry cost must be positive")
)

// PoolState is the lifecycle stage of a prize pool.
type PoolState string

const (
	// PoolOpen accepts joins and commits.
	PoolOpen PoolState = "open"
	// PoolSettled means the pool paid out against a leaderboard. Terminal.
	PoolSettled PoolState = "settled"
	// PoolRefunded means every joined user got their entry cost back. Terminal.
	PoolRefunded PoolState = "refunded"
)

// Pool tracks one prize pool: its pricing, weight table, royalty snapshot and
// the joined/committed player sets. Joined always contains Committed.
type Pool struct {
	ID        int64           `json:"id"`
	Asset     string          `json:"asset"`
	EntryCost int64           `json:"entry_cost"`
	Boost     int64           `json:"boost"`
	Weights   []int64         `json:"weights"`
	Royalty   RoyaltyConfig   `json:"royalty"`
	State     PoolState       `json:"state"`
	Joined    map[string]bool `json:"joined"`
	Committed map[string]bool `json:"committed"`
	// Narrowed is set once addresses have been committed explicitly; from
	// then on joins stay out of the committed set until the next commit.
	Narrowed bool `json:"narrowed,omitempty"`
}

// NewPool creates an open pool. The royalty config is snapshotted at creation
// so later royalty changes do not affect pools already collecting entries.
func NewPool(id int64, asset string, entryCost, boost int64, weights []int64, royalty RoyaltyConfig) (*Pool, error) {
	if entryCost <= 0 {
		return nil, ErrBadEntryCost
	}
	if boost < 0 {
		return nil, ErrInvalidAmount
	}
	if len(weights) == 0 {
		return nil, ErrBadWeights
	}
	for _, w := range weights {
		if w <= 0 {
			return nil, ErrBadWeights
		}
	}
	if err := royalty.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		ID:        id,
		Asset:     asset,
		EntryCost: entryCost,
		Boost:     boost,
		Weights:   weights,
		Royalty:   royalty,
		State:     PoolOpen,
		Joined:    make(map[string]bool),
		Committed: make(map[string]bool),
	}, nil
}

// Join records the user in the joined set, and in the committed set as long
// as no explicit commit has narrowed the round. The entry cost must already
// have been deducted by the caller; a second join by the same user is
// rejected so it is never deducted twice.
func (p *Pool) Join(user string) error {
	if p.State != PoolOpen {
		return ErrPoolNotOpen
	}
	if p.Joined[user] {
		return ErrAlreadyJoined
	}
	p.Joined[user] = true
	if !p.Narrowed {
		p.Committed[user] = true
	}
	return nil
}

// CommitAddresses narrows the committed set to the given subset of joined
// users, for rounds that seat fewer players than have paid in. Users who join
// afterwards are not committed until a commit includes them.
func (p *Pool) CommitAddresses(addresses []string) error {
	if p.State != PoolOpen {
		return ErrPoolNotOpen
	}
	for _, addr := range addresses {
		if !p.Joined[addr] {
			return ErrNotJoined
		}
	}
	committed := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		committed[addr] = true
	}
	p.Committed = committed
	p.Narrowed = true
	return nil
}

// ValidateLeaderboard checks that the leaderboard is exactly the committed
// set: same membership, no omissions, additions or duplicates.
func (p *Pool) ValidateLeaderboard(leaderboard []string) error {
	if len(leaderboard) != len(p.Committed) {
		return ErrLeaderboardMismatch
	}
	seen := make(map[string]bool, len(leaderboard))
	for _, addr := range leaderboard {
		if !p.Committed[addr] || seen[addr] {
			return ErrLeaderboardMismatch
		}
		seen[addr] = true
	}
	return nil
}

// PrizePool returns the settleable pot: entry cost per committed player plus
// the configured boost.
func (p *Pool) PrizePool() int64 {
	return p.EntryCost*int64(len(p.Committed)) + p.Boost
}

// UncommittedStake returns the total entry cost held for users who joined but
// were not committed to the round being settled.
func (p *Pool) UncommittedStake() int64 {
	return p.EntryCost * int64(len(p.Joined)-len(p.Committed))
}

// Settle marks the pool settled. Terminal.
func (p *Pool) Settle() error {
	if p.State != PoolOpen {
		return ErrPoolNotOpen
	}
	p.State = PoolSettled
	return nil
}

// Refund marks the pool refunded. Terminal.
func (p *Pool) Refund() error {
	if p.State != PoolOpen {
		return ErrPoolNotOpen
	}
	p.State = PoolRefunded
	return nil
}

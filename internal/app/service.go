package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gamepot/internal/domain"
	"gamepot/internal/ports"
)

var (
	ErrNotController = errors.New("caller is not a game controller")
	ErrNotModOrOwner = errors.New("caller is not a mod or owner of the game")
	ErrNoPrice       = errors.New("no buy-in price configured for asset")
	ErrEmptyUser     = errors.New("user id is required")
)

// keyedMutex hands out one mutex per id so operations on the same pool or
// game never interleave while distinct ids proceed concurrently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (k *keyedMutex) get(id int64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[int64]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	return l
}

// SettlementResult is the outcome of awarding a leaderboard to a pool.
type SettlementResult struct {
	PoolID       int64               `json:"pool_id"`
	Asset        string              `json:"asset"`
	TotalPool    int64               `json:"total_pool"`
	Distribution domain.Distribution `json:"distribution"`
}

// Service is the settlement engine: it coordinates the credit ledger, prize
// pools, the game state machines and moderation, against the external asset
// port. Every mutating method is all-or-nothing: validation happens before
// any balance or state change, and external transfers complete before the
// ledger records their effect.
type Service struct {
	asset ports.AssetPort
	store ports.SnapshotStore

	ledgerMu sync.Mutex
	ledger   *domain.Ledger

	cfgMu       sync.RWMutex
	royalty     domain.RoyaltyConfig
	prices      map[string]int64
	controllers map[string]bool

	// poolLocks serializes operations per pool id. poolsMu guards the pools
	// map and pool contents against cross-pool readers such as Persist, so
	// every write to a pool's sets or state must hold it in write mode.
	// Lock order: ledgerMu before poolsMu.
	poolLocks keyedMutex
	poolsMu   sync.RWMutex
	pools     map[int64]*domain.Pool

	gameLocks keyedMutex
	gamesMu   sync.RWMutex
	games     *domain.GameSet
	mods      *domain.ModRegistry
}

// NewService constructs the engine. admin, when non-empty, becomes the first
// game controller. store may be nil for a purely in-memory engine.
func NewService(asset ports.AssetPort, store ports.SnapshotStore, admin string) *Service {
	s := &Service{
		asset:       asset,
		store:       store,
		ledger:      domain.NewLedger(),
		prices:      make(map[string]int64),
		controllers: make(map[string]bool),
		pools:       make(map[int64]*domain.Pool),
		games:       domain.NewGameSet(),
		mods:        domain.NewModRegistry(),
	}
	if admin != "" {
		s.controllers[admin] = true
	}
	return s
}

// ---- configuration and roles ----

func (s *Service) requireController(caller string) error {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	if !s.controllers[caller] {
		return ErrNotController
	}
	return nil
}

// IsGameController reports whether user is in the global controller set.
func (s *Service) IsGameController(user string) bool {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.controllers[user]
}

// AddGameController grants the global controller role.
func (s *Service) AddGameController(caller, controller string) error {
	if err := s.requireController(caller); err != nil {
		return err
	}
	if controller == "" {
		return ErrEmptyUser
	}
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.controllers[controller] = true
	return nil
}

// SetRoyalty replaces the deposit/settlement royalty configuration.
// Pools already created keep their snapshot.
func (s *Service) SetRoyalty(caller string, cfg domain.RoyaltyConfig) error {
	if err := s.requireController(caller); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.royalty = cfg
	return nil
}

// Royalty returns the current royalty configuration.
func (s *Service) Royalty() domain.RoyaltyConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.royalty
}

// SetBuyInPrice sets the default entry cost for pools on the given asset.
func (s *Service) SetBuyInPrice(caller, asset string, price int64) error {
	if err := s.requireController(caller); err != nil {
		return err
	}
	if price <= 0 {
		return domain.ErrInvalidAmount
	}
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.prices[asset] = price
	return nil
}

// BuyInPrice returns the configured default entry cost, zero if unset.
func (s *Service) BuyInPrice(asset string) int64 {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.prices[asset]
}

// ---- ledger operations ----

// Deposit pulls amount of asset from the user's external balance and credits
// it, minus the royalty skim, to their spendable balance. referral may be nil.
func (s *Service) Deposit(ctx context.Context, userID, asset string, amount int64, referral *domain.Referral) (int64, []Event, error) {
	royalty := s.Royalty()
	if err := domain.ValidateDeposit(amount, royalty, referral); err != nil {
		return 0, nil, err
	}

	if err := s.asset.TransferIn(ctx, userID, asset, amount); err != nil {
		return 0, nil, fmt.Errorf("transfer in: %w", err)
	}

	s.ledgerMu.Lock()
	credited, err := s.ledger.Deposit(userID, asset, amount, royalty, referral)
	s.ledgerMu.Unlock()
	if err != nil {
		// Validated above, so the transfer cannot be stranded here.
		return 0, nil, err
	}

	return credited, []Event{{Kind: EventDeposited, Payload: DepositedPayload{
		UserID: userID, Asset: asset, Amount: amount, Credited: credited,
	}}}, nil
}

// ClaimWinnings pays the user's whole winning balance out through the asset
// port. The balance is zeroed only after the transfer succeeds; the ledger
// lock is held across the transfer so a claim can never pay twice.
func (s *Service) ClaimWinnings(ctx context.Context, userID, asset string) (int64, []Event, error) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	amount := s.ledger.WinningBalance(userID, asset)
	if amount == 0 {
		return 0, nil, domain.ErrNothingToClaim
	}
	if err := s.asset.TransferOut(ctx, userID, asset, amount); err != nil {
		return 0, nil, fmt.Errorf("transfer out: %w", err)
	}
	if _, err := s.ledger.ZeroWinnings(userID, asset); err != nil {
		return 0, nil, err
	}

	return amount, []Event{{Kind: EventWinningsClaimed, Payload: WinningsClaimedPayload{
		UserID: userID, Asset: asset, Amount: amount,
	}}}, nil
}

// TakeProfits drains the unattributed profit pool for asset to the caller.
func (s *Service) TakeProfits(ctx context.Context, caller, asset string) (int64, []Event, error) {
	if err := s.requireController(caller); err != nil {
		return 0, nil, err
	}

	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	amount := s.ledger.ProfitBalance(asset)
	if amount == 0 {
		return 0, nil, domain.ErrNoProfits
	}
	if err := s.asset.TransferOut(ctx, caller, asset, amount); err != nil {
		return 0, nil, fmt.Errorf("transfer out: %w", err)
	}
	if _, err := s.ledger.ZeroProfits(asset); err != nil {
		return 0, nil, err
	}

	return amount, []Event{{Kind: EventProfitsTaken, Payload: ProfitsTakenPayload{
		Asset: asset, Amount: amount,
	}}}, nil
}

// CreditBalance returns the user's spendable balance.
func (s *Service) CreditBalance(userID, asset string) int64 {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	return s.ledger.CreditBalance(userID, asset)
}

// WinningBalance returns the user's claimable balance.
func (s *Service) WinningBalance(userID, asset string) int64 {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	return s.ledger.WinningBalance(userID, asset)
}

// ProfitBalance returns the accrued profits for asset.
func (s *Service) ProfitBalance(asset string) int64 {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	return s.ledger.ProfitBalance(asset)
}

// ---- pool operations ----

func (s *Service) getPool(id int64) (*domain.Pool, error) {
	s.poolsMu.RLock()
	defer s.poolsMu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return nil, domain.ErrPoolNotFound
	}
	return p, nil
}

// CreatePool opens a prize pool. When entryCost is zero the configured
// buy-in price for the asset is used. Pool ids may be reused once the
// previous pool under that id has settled or refunded.
func (s *Service) CreatePool(caller string, id int64, asset string, entryCost, boost int64, weights []int64) ([]Event, error) {
	if err := s.requireController(caller); err != nil {
		return nil, err
	}

	lock := s.poolLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := s.getPool(id); err == nil && existing.State == domain.PoolOpen {
		return nil, domain.ErrPoolExists
	}

	if entryCost == 0 {
		entryCost = s.BuyInPrice(asset)
		if entryCost == 0 {
			return nil, ErrNoPrice
		}
	}

	pool, err := domain.NewPool(id, asset, entryCost, boost, weights, s.Royalty())
	if err != nil {
		return nil, err
	}

	s.poolsMu.Lock()
	s.pools[id] = pool
	s.poolsMu.Unlock()

	return []Event{{Kind: EventPoolCreated, Payload: PoolCreatedPayload{
		PoolID: id, Asset: asset, EntryCost: entryCost,
	}}}, nil
}

// JoinPool buys userID into the pool, deducting the entry cost from their
// credit balance exactly once. Controllers may join other users; everyone
// else may only join themselves (enforced by the caller surface).
func (s *Service) JoinPool(caller string, id int64, userID string) ([]Event, error) {
	if caller != userID {
		if err := s.requireController(caller); err != nil {
			return nil, err
		}
	}

	lock := s.poolLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.getPool(id)
	if err != nil {
		return nil, err
	}
	if pool.State != domain.PoolOpen {
		return nil, domain.ErrPoolNotOpen
	}
	if pool.Joined[userID] {
		return nil, domain.ErrAlreadyJoined
	}

	s.ledgerMu.Lock()
	if err := s.ledger.Spend(userID, pool.Asset, pool.EntryCost); err != nil {
		s.ledgerMu.Unlock()
		return nil, err
	}

	// Cannot fail after the checks above; the spend stands.
	s.poolsMu.Lock()
	err = pool.Join(userID)
	s.poolsMu.Unlock()
	s.ledgerMu.Unlock()
	if err != nil {
		return nil, err
	}

	return []Event{{Kind: EventPoolJoined, Payload: PoolJoinedPayload{
		PoolID: id, UserID: userID,
	}}}, nil
}

// CommitAddresses narrows the pool's committed set to the given subset of
// joined users, for rounds that seat fewer players than have paid in.
func (s *Service) CommitAddresses(caller string, id int64, addresses []string) error {
	if err := s.requireController(caller); err != nil {
		return err
	}

	lock := s.poolLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.getPool(id)
	if err != nil {
		return err
	}

	s.poolsMu.Lock()
	defer s.poolsMu.Unlock()
	return pool.CommitAddresses(addresses)
}

// AwardLeaderboard settles the pool against a ranked leaderboard: royalty
// shares go to credit balances, rank payouts to winning balances, and the
// truncation dust plus any stake of joined-but-uncommitted users accrues to
// the profit pool. Terminal for the pool id.
func (s *Service) AwardLeaderboard(caller string, id int64, leaderboard []string) (*SettlementResult, []Event, error) {
	if err := s.requireController(caller); err != nil {
		return nil, nil, err
	}

	lock := s.poolLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.getPool(id)
	if err != nil {
		return nil, nil, err
	}
	if pool.State != domain.PoolOpen {
		return nil, nil, domain.ErrPoolNotOpen
	}
	if err := pool.ValidateLeaderboard(leaderboard); err != nil {
		return nil, nil, err
	}

	total := pool.PrizePool()
	dist, err := domain.Distribute(total, pool.Weights, pool.Royalty, leaderboard)
	if err != nil {
		return nil, nil, err
	}

	s.ledgerMu.Lock()
	s.poolsMu.Lock()
	for _, share := range dist.Royalties {
		s.ledger.Credit(share.UserID, pool.Asset, share.Amount)
	}
	for _, payout := range dist.Payouts {
		s.ledger.AddWinnings(payout.UserID, pool.Asset, payout.Amount)
	}
	s.ledger.AddProfits(pool.Asset, dist.Dust)
	s.ledger.AddProfits(pool.Asset, pool.UncommittedStake())
	err = pool.Settle()
	s.poolsMu.Unlock()
	s.ledgerMu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	result := &SettlementResult{
		PoolID:       id,
		Asset:        pool.Asset,
		TotalPool:    total,
		Distribution: dist,
	}
	return result, []Event{{Kind: EventPoolSettled, Payload: PoolSettledPayload{
		PoolID: id, Asset: pool.Asset, TotalPool: total, Distribution: dist,
	}}}, nil
}

// RefundPool returns the entry cost to every joined user, committed or not,
// and closes the pool. Terminal for the pool id.
func (s *Service) RefundPool(caller string, id int64) ([]Event, error) {
	if err := s.requireController(caller); err != nil {
		return nil, err
	}

	lock := s.poolLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.getPool(id)
	if err != nil {
		return nil, err
	}
	if pool.State != domain.PoolOpen {
		return nil, domain.ErrPoolNotOpen
	}

	s.ledgerMu.Lock()
	s.poolsMu.Lock()
	for user := range pool.Joined {
		s.ledger.Credit(user, pool.Asset, pool.EntryCost)
	}
	err = pool.Refund()
	s.poolsMu.Unlock()
	s.ledgerMu.Unlock()
	if err != nil {
		return nil, err
	}

	return []Event{{Kind: EventPoolRefunded, Payload: PoolRefundedPayload{
		PoolID: id, Asset: pool.Asset, Refunded: len(pool.Joined),
	}}}, nil
}

// PoolBalance returns the settleable pot for the pool.
func (s *Service) PoolBalance(id int64) (int64, error) {
	s.poolsMu.RLock()
	defer s.poolsMu.RUnlock()
	pool, ok := s.pools[id]
	if !ok {
		return 0, domain.ErrPoolNotFound
	}
	return pool.PrizePool(), nil
}

// ---- game operations ----

// CreateGame registers a game id in pregame and makes the caller its
// moderation owner.
func (s *Service) CreateGame(caller string, id int64) error {
	lock := s.gameLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if err := s.games.Create(id); err != nil {
		return err
	}
	if err := s.mods.Create(id, caller); err != nil && !errors.Is(err, domain.ErrModRecordExists) {
		return err
	}
	return nil
}

func (s *Service) requireModOrOwner(id int64, caller string) error {
	if s.IsGameController(caller) {
		return nil
	}
	if !s.mods.IsModOrOwner(id, caller) {
		return ErrNotModOrOwner
	}
	return nil
}

// StartGame moves the game to playing with the given player set.
func (s *Service) StartGame(caller string, id int64, players []string) error {
	lock := s.gameLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if err := s.requireModOrOwner(id, caller); err != nil {
		return err
	}
	return s.games.Start(id, players)
}

// CompleteGame accepts a leaderboard for the running round. The leaderboard
// must be an exact permutation of the player set stored at start.
func (s *Service) CompleteGame(caller string, id int64, leaderboard []string) error {
	lock := s.gameLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if err := s.requireModOrOwner(id, caller); err != nil {
		return err
	}
	return s.games.Complete(id, leaderboard)
}

// CancelGame aborts a running round back to pregame.
func (s *Service) CancelGame(caller string, id int64) error {
	lock := s.gameLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if err := s.requireModOrOwner(id, caller); err != nil {
		return err
	}
	return s.games.Cancel(id)
}

// ResetGame returns a completed game to pregame so the id can be replayed.
func (s *Service) ResetGame(caller string, id int64) error {
	lock := s.gameLocks.get(id)
	lock.Lock()
	defer lock.Unlock()

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if err := s.requireModOrOwner(id, caller); err != nil {
		return err
	}
	return s.games.Reset(id)
}

// GameState returns the game's phase; unknown ids are an error.
func (s *Service) GameState(id int64) (domain.GamePhase, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	return s.games.Phase(id)
}

// PlayerInGame reports whether user is in the game's current player set.
func (s *Service) PlayerInGame(id int64, user string) (bool, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	return s.games.PlayerIn(id, user)
}

// ---- moderation ----

// IsOwner reports whether user owns the game's moderation record.
func (s *Service) IsOwner(id int64, user string) bool {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	return s.mods.IsOwner(id, user)
}

// IsModOrOwner reports whether user is the game's owner or a moderator.
func (s *Service) IsModOrOwner(id int64, user string) bool {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	return s.mods.IsModOrOwner(id, user)
}

// AddMod grants moderator rights on a game. Owner only.
func (s *Service) AddMod(caller string, id int64, mod string) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	return s.mods.AddMod(id, mod, caller)
}

// RemoveMod revokes moderator rights on a game. Owner only.
func (s *Service) RemoveMod(caller string, id int64, mod string) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	return s.mods.RemoveMod(id, mod, caller)
}

// SetGameOwner reassigns the game's moderation owner. Owner only.
func (s *Service) SetGameOwner(caller string, id int64, newOwner string) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	return s.mods.SetOwner(id, newOwner, caller)
}

// ---- persistence ----

type engineState struct {
	Ledger      *domain.Ledger         `json:"ledger"`
	Pools       map[int64]*domain.Pool `json:"pools"`
	Games       *domain.GameSet        `json:"games"`
	Mods        *domain.ModRegistry    `json:"mods"`
	Royalty     domain.RoyaltyConfig   `json:"royalty"`
	Prices      map[string]int64       `json:"prices"`
	Controllers []string               `json:"controllers"`
}

// Persist writes a snapshot of the whole engine state to the snapshot store.
// A nil store makes it a no-op. Callers run it after successful mutations;
// a failure loses durability, never consistency.
func (s *Service) Persist() error {
	if s.store == nil {
		return nil
	}

	s.ledgerMu.Lock()
	s.poolsMu.RLock()
	s.gamesMu.RLock()
	s.cfgMu.RLock()

	state := engineState{
		Ledger:  s.ledger,
		Pools:   s.pools,
		Games:   s.games,
		Mods:    s.mods,
		Royalty: s.royalty,
		Prices:  s.prices,
	}
	for c := range s.controllers {
		state.Controllers = append(state.Controllers, c)
	}
	data, err := json.Marshal(state)

	s.cfgMu.RUnlock()
	s.gamesMu.RUnlock()
	s.poolsMu.RUnlock()
	s.ledgerMu.Unlock()

	if err != nil {
		return fmt.Errorf("marshal engine state: %w", err)
	}
	return s.store.Save(data)
}

// Restore replaces the engine state with the stored snapshot, if one exists.
// Meant to run once at startup before the engine serves requests.
func (s *Service) Restore() error {
	if s.store == nil {
		return nil
	}
	data, ok, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	var state engineState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal engine state: %w", err)
	}

	s.ledgerMu.Lock()
	s.poolsMu.Lock()
	s.gamesMu.Lock()
	s.cfgMu.Lock()
	defer func() {
		s.cfgMu.Unlock()
		s.gamesMu.Unlock()
		s.poolsMu.Unlock()
		s.ledgerMu.Unlock()
	}()

	if state.Ledger != nil {
		if state.Ledger.Credits == nil {
			state.Ledger.Credits = make(map[string]map[string]int64)
		}
		if state.Ledger.Winnings == nil {
			state.Ledger.Winnings = make(map[string]map[string]int64)
		}
		if state.Ledger.Profits == nil {
			state.Ledger.Profits = make(map[string]int64)
		}
		s.ledger = state.Ledger
	}
	if state.Pools != nil {
		for _, p := range state.Pools {
			if p.Joined == nil {
				p.Joined = make(map[string]bool)
			}
			if p.Committed == nil {
				p.Committed = make(map[string]bool)
			}
		}
		s.pools = state.Pools
	}
	if state.Games != nil && state.Games.Games != nil {
		for _, g := range state.Games.Games {
			if g.Players == nil {
				g.Players = make(map[string]bool)
			}
		}
		s.games = state.Games
	}
	if state.Mods != nil && state.Mods.Records != nil {
		for _, rec := range state.Mods.Records {
			if rec.Mods == nil {
				rec.Mods = make(map[string]bool)
			}
		}
		s.mods = state.Mods
	}
	s.royalty = state.Royalty
	if state.Prices != nil {
		s.prices = state.Prices
	}
	for _, c := range state.Controllers {
		s.controllers[c] = true
	}
	return nil
}

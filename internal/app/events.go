package app

import "gamepot/internal/domain"

// EventKind identifies emitted engine events for adapter-side logging and
// client notification.
type EventKind string

const (
	EventDeposited       EventKind = "deposited"
	EventPoolCreated     EventKind = "pool_created"
	EventPoolJoined      EventKind = "pool_joined"
	EventPoolSettled     EventKind = "pool_settled"
	EventPoolRefunded    EventKind = "pool_refunded"
	EventWinningsClaimed EventKind = "winnings_claimed"
	EventProfitsTaken    EventKind = "profits_taken"
)

// Event is an engine event with its payload.
type Event struct {
	Kind    EventKind
	Payload any
}

type DepositedPayload struct {
	UserID   string
	Asset    string
	Amount   int64
	Credited int64
}

type PoolCreatedPayload struct {
	PoolID    int64
	Asset     string
	EntryCost int64
}

type PoolJoinedPayload struct {
	PoolID int64
	UserID string
}

type PoolSettledPayload struct {
	PoolID       int64
	Asset        string
	TotalPool    int64
	Distribution domain.Distribution
}

type PoolRefundedPayload struct {
	PoolID   int64
	Asset    string
	Refunded int
}

type WinningsClaimedPayload struct {
	UserID string
	Asset  string
	Amount int64
}

type ProfitsTakenPayload struct {
	Asset  string
	Amount int64
}

package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcCreatePool opens a prize pool. Controller only.
//
// Payload: {"pool_id": n, "asset": "...", "entry_cost": n, "boost": n, "weights": [..]}
// entry_cost may be omitted to use the configured buy-in price.
func (h *rpcHandlers) RpcCreatePool(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		PoolID    int64   `json:"pool_id"`
		Asset     string  `json:"asset"`
		EntryCost int64   `json:"entry_cost"`
		Boost     int64   `json:"boost"`
		Weights   []int64 `json:"weights"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if _, err := h.engine.CreatePool(userID, req.PoolID, req.Asset, req.EntryCost, req.Boost, req.Weights); err != nil {
		logger.Warn("RpcCreatePool [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcCreatePool [User:%s]: pool %d on %s", userID, req.PoolID, req.Asset)
	return "{}", nil
}

// RpcJoinPool buys a user into a pool. Joining someone other than yourself
// requires the controller role.
//
// Payload: {"pool_id": n, "user_id": "..."} — user_id defaults to caller.
func (h *rpcHandlers) RpcJoinPool(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		PoolID int64  `json:"pool_id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	if req.UserID == "" {
		req.UserID = userID
	}

	if _, err := h.engine.JoinPool(userID, req.PoolID, req.UserID); err != nil {
		logger.Warn("RpcJoinPool [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcJoinPool [User:%s]: %s joined pool %d", userID, req.UserID, req.PoolID)
	return "{}", nil
}

// RpcCommitAddresses narrows the pool's committed set for the round being
// played. Controller only.
//
// Payload: {"pool_id": n, "addresses": ["..."]}
func (h *rpcHandlers) RpcCommitAddresses(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		PoolID    int64    `json:"pool_id"`
		Addresses []string `json:"addresses"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.CommitAddresses(userID, req.PoolID, req.Addresses); err != nil {
		logger.Warn("RpcCommitAddresses [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcAwardLeaderboard settles a pool against a ranked leaderboard and
// returns the distribution plus a signed receipt token. Controller only.
//
// Payload: {"pool_id": n, "leaderboard": ["best", "second", ...]}
// Returns: {"result": {...}, "receipt": "<jwt>"}
func (h *rpcHandlers) RpcAwardLeaderboard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		PoolID      int64    `json:"pool_id"`
		Leaderboard []string `json:"leaderboard"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	result, _, err := h.engine.AwardLeaderboard(userID, req.PoolID, req.Leaderboard)
	if err != nil {
		logger.Warn("RpcAwardLeaderboard [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcAwardLeaderboard [User:%s]: settled pool %d, pot %d, dust %d",
		userID, result.PoolID, result.TotalPool, result.Distribution.Dust)

	resp := map[string]interface{}{"result": result}
	if receipt, err := h.receipts.Issue(result); err != nil {
		// Settlement already stands; a missing receipt is only a warning.
		logger.Warn("RpcAwardLeaderboard [User:%s]: receipt not issued: %v", userID, err)
	} else {
		resp["receipt"] = receipt
	}

	data, _ := json.Marshal(resp)
	return string(data), nil
}

// RpcRefundPool returns the entry cost to every joined user and closes the
// pool. Controller only.
//
// Payload: {"pool_id": n}
func (h *rpcHandlers) RpcRefundPool(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		PoolID int64 `json:"pool_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if _, err := h.engine.RefundPool(userID, req.PoolID); err != nil {
		logger.Warn("RpcRefundPool [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcRefundPool [User:%s]: refunded pool %d", userID, req.PoolID)
	return "{}", nil
}

// RpcPoolBalance reads the settleable pot of a pool.
//
// Payload: {"pool_id": n}
// Returns: {"balance": n}
func (h *rpcHandlers) RpcPoolBalance(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		PoolID int64 `json:"pool_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	balance, err := h.engine.PoolBalance(req.PoolID)
	if err != nil {
		return "", rpcError(err)
	}
	resp, _ := json.Marshal(map[string]int64{"balance": balance})
	return string(resp), nil
}

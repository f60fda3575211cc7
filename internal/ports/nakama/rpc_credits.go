package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"gamepot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcDeposit moves funds from the caller's wallet into their credit balance,
// minus the royalty skim.
//
// Payload: {"asset": "...", "amount": n, "referral_receiver": "...", "referral_percent": n}
// Referral fields are optional.
// Returns: {"credited": n, "balance": n}
func (h *rpcHandlers) RpcDeposit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		Asset            string `json:"asset"`
		Amount           int64  `json:"amount"`
		ReferralReceiver string `json:"referral_receiver"`
		ReferralPercent  int64  `json:"referral_percent"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	var referral *domain.Referral
	if req.ReferralReceiver != "" {
		referral = &domain.Referral{Receiver: req.ReferralReceiver, Percent: req.ReferralPercent}
	}

	credited, _, err := h.engine.Deposit(ctx, userID, req.Asset, req.Amount, referral)
	if err != nil {
		logger.Warn("RpcDeposit [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcDeposit [User:%s]: credited %d %s", userID, credited, req.Asset)

	resp, _ := json.Marshal(map[string]int64{
		"credited": credited,
		"balance":  h.engine.CreditBalance(userID, req.Asset),
	})
	return string(resp), nil
}

// RpcClaimWinnings pays the caller's whole winning balance back to their
// wallet.
//
// Payload: {"asset": "..."}
// Returns: {"claimed": n}
func (h *rpcHandlers) RpcClaimWinnings(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		Asset string `json:"asset"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	amount, _, err := h.engine.ClaimWinnings(ctx, userID, req.Asset)
	if err != nil {
		logger.Warn("RpcClaimWinnings [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcClaimWinnings [User:%s]: paid out %d %s", userID, amount, req.Asset)

	resp, _ := json.Marshal(map[string]int64{"claimed": amount})
	return string(resp), nil
}

// RpcTakeProfits drains the engine's profit pool for an asset to the caller.
// Controller only.
//
// Payload: {"asset": "..."}
// Returns: {"taken": n}
func (h *rpcHandlers) RpcTakeProfits(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		Asset string `json:"asset"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	amount, _, err := h.engine.TakeProfits(ctx, userID, req.Asset)
	if err != nil {
		logger.Warn("RpcTakeProfits [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcTakeProfits [User:%s]: took %d %s", userID, amount, req.Asset)

	resp, _ := json.Marshal(map[string]int64{"taken": amount})
	return string(resp), nil
}

type balanceRequest struct {
	UserID string `json:"user_id"`
	Asset  string `json:"asset"`
}

// resolveBalanceUser defaults a balance query to the caller when no explicit
// user is given.
func resolveBalanceUser(ctx context.Context, req balanceRequest) (string, error) {
	if req.UserID != "" {
		return req.UserID, nil
	}
	return caller(ctx)
}

// RpcCreditBalance reads a spendable balance.
//
// Payload: {"user_id": "...", "asset": "..."} — user_id defaults to caller.
// Returns: {"balance": n}
func (h *rpcHandlers) RpcCreditBalance(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req balanceRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	userID, err := resolveBalanceUser(ctx, req)
	if err != nil {
		return "", err
	}

	resp, _ := json.Marshal(map[string]int64{"balance": h.engine.CreditBalance(userID, req.Asset)})
	return string(resp), nil
}

// RpcWinningBalance reads a claimable balance.
//
// Payload: {"user_id": "...", "asset": "..."} — user_id defaults to caller.
// Returns: {"balance": n}
func (h *rpcHandlers) RpcWinningBalance(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req balanceRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	userID, err := resolveBalanceUser(ctx, req)
	if err != nil {
		return "", err
	}

	resp, _ := json.Marshal(map[string]int64{"balance": h.engine.WinningBalance(userID, req.Asset)})
	return string(resp), nil
}

// RpcProfitBalance reads the engine's accrued profits for an asset.
//
// Payload: {"asset": "..."}
// Returns: {"balance": n}
func (h *rpcHandlers) RpcProfitBalance(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		Asset string `json:"asset"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	resp, _ := json.Marshal(map[string]int64{"balance": h.engine.ProfitBalance(req.Asset)})
	return string(resp), nil
}

// RpcSetRoyalty replaces the royalty configuration. Controller only.
//
// Payload: {"percent": n, "splits": [{"recipient": "...", "percent": n}]}
func (h *rpcHandlers) RpcSetRoyalty(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req domain.RoyaltyConfig
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.SetRoyalty(userID, req); err != nil {
		logger.Warn("RpcSetRoyalty [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcSetPrice sets the default buy-in price for an asset. Controller only.
//
// Payload: {"asset": "...", "price": n}
func (h *rpcHandlers) RpcSetPrice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		Asset string `json:"asset"`
		Price int64  `json:"price"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.SetBuyInPrice(userID, req.Asset, req.Price); err != nil {
		logger.Warn("RpcSetPrice [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcGetPrice reads the configured buy-in price for an asset.
//
// Payload: {"asset": "..."}
// Returns: {"price": n}
func (h *rpcHandlers) RpcGetPrice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		Asset string `json:"asset"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	resp, _ := json.Marshal(map[string]int64{"price": h.engine.BuyInPrice(req.Asset)})
	return string(resp), nil
}

// RpcAddController grants the global controller role. Controller only.
//
// Payload: {"user_id": "..."}
func (h *rpcHandlers) RpcAddController(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.AddGameController(userID, req.UserID); err != nil {
		logger.Warn("RpcAddController [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcAddController [User:%s]: added controller %s", userID, req.UserID)
	return "{}", nil
}

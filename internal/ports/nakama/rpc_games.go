package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

type gameRequest struct {
	GameID      int64    `json:"game_id"`
	Players     []string `json:"players,omitempty"`
	Leaderboard []string `json:"leaderboard,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

// RpcCreateGame registers a game id; the caller becomes its moderation owner.
//
// Payload: {"game_id": n}
func (h *rpcHandlers) RpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.CreateGame(userID, req.GameID); err != nil {
		logger.Warn("RpcCreateGame [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcCreateGame [User:%s]: game %d", userID, req.GameID)
	return "{}", nil
}

// RpcStartGame moves a pregame game to playing with the given player set.
// Mod or owner of the game (or a controller).
//
// Payload: {"game_id": n, "players": ["..."]}
func (h *rpcHandlers) RpcStartGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.StartGame(userID, req.GameID, req.Players); err != nil {
		logger.Warn("RpcStartGame [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcStartGame [User:%s]: game %d with %d players", userID, req.GameID, len(req.Players))
	return "{}", nil
}

// RpcCompleteGame accepts a leaderboard for a playing game. The leaderboard
// must be an exact permutation of the player set. Mod or owner.
//
// Payload: {"game_id": n, "leaderboard": ["best", ...]}
func (h *rpcHandlers) RpcCompleteGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.CompleteGame(userID, req.GameID, req.Leaderboard); err != nil {
		logger.Warn("RpcCompleteGame [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	logger.Info("RpcCompleteGame [User:%s]: game %d complete", userID, req.GameID)
	return "{}", nil
}

// RpcCancelGame aborts a playing game back to pregame. Mod or owner.
//
// Payload: {"game_id": n}
func (h *rpcHandlers) RpcCancelGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.CancelGame(userID, req.GameID); err != nil {
		logger.Warn("RpcCancelGame [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcResetGame returns a completed game to pregame. Mod or owner.
//
// Payload: {"game_id": n}
func (h *rpcHandlers) RpcResetGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.ResetGame(userID, req.GameID); err != nil {
		logger.Warn("RpcResetGame [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcGameState reads a game's phase. Unknown ids are a NotFound error.
//
// Payload: {"game_id": n}
// Returns: {"phase": 0|1|2}
func (h *rpcHandlers) RpcGameState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	phase, err := h.engine.GameState(req.GameID)
	if err != nil {
		return "", rpcError(err)
	}
	resp, _ := json.Marshal(map[string]int{"phase": int(phase)})
	return string(resp), nil
}

// RpcPlayerInGame reports whether a user is in the game's player set.
//
// Payload: {"game_id": n, "user_id": "..."}
// Returns: {"in_game": bool}
func (h *rpcHandlers) RpcPlayerInGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req gameRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	in, err := h.engine.PlayerInGame(req.GameID, req.UserID)
	if err != nil {
		return "", rpcError(err)
	}
	resp, _ := json.Marshal(map[string]bool{"in_game": in})
	return string(resp), nil
}

type modRequest struct {
	GameID int64  `json:"game_id"`
	UserID string `json:"user_id"`
}

// RpcAddMod grants moderator rights on a game. Owner only.
//
// Payload: {"game_id": n, "user_id": "..."}
func (h *rpcHandlers) RpcAddMod(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req modRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.AddMod(userID, req.GameID, req.UserID); err != nil {
		logger.Warn("RpcAddMod [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcRemoveMod revokes moderator rights on a game. Owner only.
//
// Payload: {"game_id": n, "user_id": "..."}
func (h *rpcHandlers) RpcRemoveMod(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req modRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.RemoveMod(userID, req.GameID, req.UserID); err != nil {
		logger.Warn("RpcRemoveMod [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

// RpcSetOwner reassigns a game's moderation owner. Owner only.
//
// Payload: {"game_id": n, "user_id": "..."}
func (h *rpcHandlers) RpcSetOwner(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return "", err
	}

	var req modRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}

	if err := h.engine.SetGameOwner(userID, req.GameID, req.UserID); err != nil {
		logger.Warn("RpcSetOwner [User:%s]: %v", userID, err)
		return "", rpcError(err)
	}
	h.persist(logger)
	return "{}", nil
}

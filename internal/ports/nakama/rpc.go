package nakama

import (
	"context"
	"database/sql"
	"errors"

	"gamepot/internal/app"
	"gamepot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used at the RPC boundary.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

var errNoCaller = runtime.NewError("Caller identity required", codeUnauthenticated)

// rpcHandlers binds the engine and receipt signer to the Nakama RPC surface.
type rpcHandlers struct {
	engine   *app.Service
	receipts *app.ReceiptService
}

// caller resolves the authenticated user id from the RPC context.
func caller(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errNoCaller
	}
	return userID, nil
}

// rpcError maps engine errors onto the error taxonomy Nakama clients see:
// authorization failures, state preconditions, invalid input, unknown ids,
// and everything else as internal.
func rpcError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrNotController),
		errors.Is(err, app.ErrNotModOrOwner),
		errors.Is(err, domain.ErrNotOwner):
		return runtime.NewError(err.Error(), codePermissionDenied)
	case errors.Is(err, domain.ErrPoolNotFound),
		errors.Is(err, domain.ErrGameNotFound),
		errors.Is(err, domain.ErrModRecordNotFound):
		return runtime.NewError(err.Error(), codeNotFound)
	case errors.Is(err, domain.ErrPoolNotOpen),
		errors.Is(err, domain.ErrPoolExists),
		errors.Is(err, domain.ErrGameExists),
		errors.Is(err, domain.ErrModRecordExists),
		errors.Is(err, domain.ErrNotPregame),
		errors.Is(err, domain.ErrNotPlaying),
		errors.Is(err, domain.ErrNotComplete),
		errors.Is(err, domain.ErrAlreadyJoined),
		errors.Is(err, domain.ErrInsufficientCredits),
		errors.Is(err, domain.ErrNothingToClaim),
		errors.Is(err, domain.ErrNoProfits),
		errors.Is(err, app.ErrNoPrice):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBadEntryCost),
		errors.Is(err, domain.ErrBadWeights),
		errors.Is(err, domain.ErrBadRoyaltyConfig),
		errors.Is(err, domain.ErrBadReferral),
		errors.Is(err, domain.ErrNegativePool),
		errors.Is(err, domain.ErrNotJoined),
		errors.Is(err, domain.ErrNoPlayers),
		errors.Is(err, domain.ErrDuplicateEntrant),
		errors.Is(err, domain.ErrLeaderboardMismatch),
		errors.Is(err, domain.ErrBadLeaderboard),
		errors.Is(err, app.ErrEmptyUser):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	default:
		return runtime.NewError(err.Error(), codeInternal)
	}
}

// persist snapshots the engine after a successful mutation. Losing a
// snapshot costs durability, not consistency, so failures are logged and
// the RPC still succeeds.
func (h *rpcHandlers) persist(logger runtime.Logger) {
	if err := h.engine.Persist(); err != nil {
		logger.Warn("Failed to persist engine snapshot: %v", err)
	}
}

// RegisterRPCs wires every engine RPC into the Nakama initializer.
func (h *rpcHandlers) RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcDeposit:        h.RpcDeposit,
		RpcClaimWinnings:  h.RpcClaimWinnings,
		RpcTakeProfits:    h.RpcTakeProfits,
		RpcCreditBalance:  h.RpcCreditBalance,
		RpcWinningBalance: h.RpcWinningBalance,
		RpcProfitBalance:  h.RpcProfitBalance,

		RpcSetRoyalty:    h.RpcSetRoyalty,
		RpcSetPrice:      h.RpcSetPrice,
		RpcGetPrice:      h.RpcGetPrice,
		RpcAddController: h.RpcAddController,

		RpcCreatePool:       h.RpcCreatePool,
		RpcJoinPool:         h.RpcJoinPool,
		RpcCommitAddresses:  h.RpcCommitAddresses,
		RpcAwardLeaderboard: h.RpcAwardLeaderboard,
		RpcRefundPool:       h.RpcRefundPool,
		RpcPoolBalance:      h.RpcPoolBalance,

		RpcCreateGame:   h.RpcCreateGame,
		RpcStartGame:    h.RpcStartGame,
		RpcCompleteGame: h.RpcCompleteGame,
		RpcCancelGame:   h.RpcCancelGame,
		RpcResetGame:    h.RpcResetGame,
		RpcGameState:    h.RpcGameState,
		RpcPlayerInGame: h.RpcPlayerInGame,

		RpcAddMod:    h.RpcAddMod,
		RpcRemoveMod: h.RpcRemoveMod,
		RpcSetOwner:  h.RpcSetOwner,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

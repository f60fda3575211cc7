package nakama

// Nakama RPC ids exposed by the settlement engine.
const (
	RpcDeposit        = "deposit"
	RpcClaimWinnings  = "claim_winnings"
	RpcTakeProfits    = "take_profits"
	RpcCreditBalance  = "credit_balance"
	RpcWinningBalance = "winning_balance"
	RpcProfitBalance  = "profit_balance"

	RpcSetRoyalty    = "set_royalty"
	RpcSetPrice      = "set_price"
	RpcGetPrice      = "get_price"
	RpcAddController = "add_controller"

	RpcCreatePool       = "create_pool"
	RpcJoinPool         = "join_pool"
	RpcCommitAddresses  = "commit_addresses"
	RpcAwardLeaderboard = "award_leaderboard"
	RpcRefundPool       = "refund_pool"
	RpcPoolBalance      = "pool_balance"

	RpcCreateGame   = "create_game"
	RpcStartGame    = "start_game"
	RpcCompleteGame = "complete_game"
	RpcCancelGame   = "cancel_game"
	RpcResetGame    = "reset_game"
	RpcGameState    = "game_state"
	RpcPlayerInGame = "player_in_game"

	RpcAddMod    = "add_mod"
	RpcRemoveMod = "remove_mod"
	RpcSetOwner  = "set_owner"
)

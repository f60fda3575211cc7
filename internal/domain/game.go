package domain

import "errors"

var (
	ErrGameExists     = errors.New("game id already in use")
	ErrGameNotFound   = errors.New("game not found")
	ErrNotPregame     = errors.New("game is not in pregame")
	ErrNotPlaying     = errors.New("game is not playing")
	ErrNotComplete    = errors.New("game is not complete")
	ErrNoPlayers      = errors.New("player list is empty")
	ErrBadLeaderboard = errors.New("leaderboard is not a permutation of the players")
)

// GamePhase is the lifecycle stage of a game round.
type GamePhase int

const (
	// PhasePregame is the initial phase; the player set is empty.
	PhasePregame GamePhase = iota
	// PhasePlaying holds the committed player set for the running round.
	PhasePlaying
	// PhaseComplete means a valid leaderboard was accepted for the round.
	PhaseComplete
)

// Game is one round slot. Ids are reusable: reset returns a complete game to
// pregame with a cleared player set.
type Game struct {
	Phase   GamePhase       `json:"phase"`
	Players map[string]bool `json:"players"`
}

// GameSet tracks every created game by id.
type GameSet struct {
	Games map[int64]*Game `json:"games"`
}

// NewGameSet returns an empty game registry.
func NewGameSet() *GameSet {
	return &GameSet{Games: make(map[int64]*Game)}
}

func (g *GameSet) get(id int64) (*Game, error) {
	game, ok := g.Games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// Create registers a new game in pregame. Duplicate ids are rejected.
func (g *GameSet) Create(id int64) error {
	if _, ok := g.Games[id]; ok {
		return ErrGameExists
	}
	g.Games[id] = &Game{Phase: PhasePregame, Players: make(map[string]bool)}
	return nil
}

// Start moves a pregame game to playing and stores its player set.
func (g *GameSet) Start(id int64, players []string) error {
	game, err := g.get(id)
	if err != nil {
		return err
	}
	if game.Phase != PhasePregame {
		return ErrNotPregame
	}
	if len(players) == 0 {
		return ErrNoPlayers
	}
	set := make(map[string]bool, len(players))
	for _, p := range players {
		set[p] = true
	}
	game.Players = set
	game.Phase = PhasePlaying
	return nil
}

// Complete accepts a leaderboard for a playing game. The leaderboard must be
// an exact permutation of the stored player set.
func (g *GameSet) Complete(id int64, leaderboard []string) error {
	game, err := g.get(id)
	if err != nil {
		return err
	}
	if game.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	if len(leaderboard) != len(game.Players) {
		return ErrBadLeaderboard
	}
	seen := make(map[string]bool, len(leaderboard))
	for _, addr := range leaderboard {
		if !game.Players[addr] || seen[addr] {
			return ErrBadLeaderboard
		}
		seen[addr] = true
	}
	game.Phase = PhaseComplete
	return nil
}

// Cancel aborts a playing game back to pregame and clears its players.
// Cancelling a game that has not started is an error.
func (g *GameSet) Cancel(id int64) error {
	game, err := g.get(id)
	if err != nil {
		return err
	}
	if game.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	game.Players = make(map[string]bool)
	game.Phase = PhasePregame
	return nil
}

// Reset returns a complete game to pregame so the id can host another round.
func (g *GameSet) Reset(id int64) error {
	game, err := g.get(id)
	if err != nil {
		return err
	}
	if game.Phase != PhaseComplete {
		return ErrNotComplete
	}
	game.Players = make(map[string]bool)
	game.Phase = PhasePregame
	return nil
}

// Phase returns the game's current phase; unknown ids are an error.
func (g *GameSet) Phase(id int64) (GamePhase, error) {
	game, err := g.get(id)
	if err != nil {
		return 0, err
	}
	return game.Phase, nil
}

// PlayerIn reports whether the user is in the game's current player set.
// Unknown ids are an error, same as Phase.
func (g *GameSet) PlayerIn(id int64, user string) (bool, error) {
	game, err := g.get(id)
	if err != nil {
		return false, err
	}
	return game.Players[user], nil
}

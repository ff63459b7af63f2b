package rules

import "errors"

// Rejection reasons. They never leave the process; Execute logs them and returns false.
var (
	ErrGameOver            = errors.New("game is over")
	ErrWrongPhase          = errors.New("not allowed in this phase")
	ErrNotSeated           = errors.New("player not seated")
	ErrNotActive           = errors.New("not the active player")
	ErrNotHost             = errors.New("not the host")
	ErrNotEnoughPlayers    = errors.New("not enough players")
	ErrDiceThrown          = errors.New("dice already thrown")
	ErrDiceNotThrown       = errors.New("dice not thrown")
	ErrPendingDiscards     = errors.New("discards pending")
	ErrRobberPending       = errors.New("robber action pending")
	ErrUnknownReference    = errors.New("unknown tile, node, edge or trade")
	ErrCannotPlace         = errors.New("placement not allowed")
	ErrPlacementLimit      = errors.New("placement limit reached for this round")
	ErrCannotAfford        = errors.New("cannot afford")
	ErrInvalidResource     = errors.New("invalid resource")
	ErrInvalidTrade        = errors.New("invalid trade")
	ErrNotReceiver         = errors.New("not the trade receiver")
	ErrNoPlayableCard      = errors.New("no playable card of that type")
	ErrRobberNotPending    = errors.New("no robber action pending")
	ErrInvalidRobberTarget = errors.New("invalid robber target")
	ErrNoDiscardPending    = errors.New("no discard pending")
	ErrCannotEndTurn       = errors.New("cannot end turn")
)

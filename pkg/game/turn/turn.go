// Package turn holds the session wide phase and turn bookkeeping.
package turn

import (
	"errors"

	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

var (
	ErrNotWaiting     = errors.New("game already started")
	ErrGameFull       = errors.New("game is full")
	ErrAlreadySeated  = errors.New("player already seated")
	ErrNotSeated      = errors.New("player not seated")
	ErrInvalidPlayer  = errors.New("invalid player id")
	ErrNoPlayers      = errors.New("no players seated")
	ErrNoSuchTrade    = errors.New("trade not found")
	ErrGameIsFinished = errors.New("game is finished")
)

// RobberState holds the pending robber actions of the active player.
type RobberState struct {
	MustReposition bool
	CanSteal       bool
}

// Advancement describes what changed when the turn moved on.
type Advancement struct {
	Previous      types.PlayerID
	PhaseChanged  bool
	ClearedTrades int
}

type State struct {
	phase      types.Phase
	order      []types.PlayerID
	active     int
	round      int
	diceThrown bool
	discards   map[types.PlayerID]int
	robber     RobberState
	trades     []*types.TradeOffer
	maxPlayers int
	winner     types.PlayerID
}

// New creates the state of an empty session waiting for players.
func New(maxPlayers int) *State {
	return &State{
		phase:      types.PhaseWaiting,
		discards:   make(map[types.PlayerID]int),
		maxPlayers: maxPlayers,
	}
}

func (s *State) Phase() types.Phase {
	return s.phase
}

func (s *State) Round() int {
	return s.round
}

func (s *State) MaxPlayers() int {
	return s.maxPlayers
}

// Order returns a copy of the seating order.
func (s *State) Order() []types.PlayerID {
	out := make([]types.PlayerID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *State) PlayerCount() int {
	return len(s.order)
}

func (s *State) Seated(p types.PlayerID) bool {
	return s.indexOf(p) >= 0
}

// Host returns the first seated player.
func (s *State) Host() (types.PlayerID, bool) {
	if len(s.order) == 0 {
		return types.NoPlayer, false
	}
	return s.order[0], true
}

// ActivePlayer returns the player whose turn it is. There is none while waiting.
func (s *State) ActivePlayer() (types.PlayerID, bool) {
	if s.phase == types.PhaseWaiting || len(s.order) == 0 {
		return types.NoPlayer, false
	}
	return s.order[s.active], true
}

func (s *State) IsActive(p types.PlayerID) bool {
	active, ok := s.ActivePlayer()
	return ok && active == p
}

func (s *State) DiceThrown() bool {
	return s.diceThrown
}

func (s *State) SetDiceThrown() {
	s.diceThrown = true
}

// Join seats a player and reports whether the session is now full.
func (s *State) Join(p types.PlayerID) (bool, error) {
	if p == types.NoPlayer {
		return false, ErrInvalidPlayer
	}
	if s.phase != types.PhaseWaiting {
		return false, ErrNotWaiting
	}
	if s.Seated(p) {
		return false, ErrAlreadySeated
	}
	if len(s.order) >= s.maxPlayers {
		return false, ErrGameFull
	}
	s.order = append(s.order, p)
	return len(s.order) == s.maxPlayers, nil
}

// Start moves from waiting to preparing with the first seated player active.
func (s *State) Start() error {
	if s.phase != types.PhaseWaiting {
		return ErrNotWaiting
	}
	if len(s.order) == 0 {
		return ErrNoPlayers
	}
	s.phase = types.PhasePreparing
	s.round = 1
	s.active = 0
	return nil
}

// forward reports whether the current preparation round runs in seating order.
// Odd rounds go forward and even rounds go back, so the last seat places twice in a row.
func (s *State) forward() bool {
	return s.round%2 == 1
}

// Advance hands the turn to the next player.
func (s *State) Advance() Advancement {
	adv := Advancement{
		ClearedTrades: len(s.trades),
	}
	adv.Previous, _ = s.ActivePlayer()
	s.diceThrown = false
	s.trades = nil
	s.robber = RobberState{}

	n := len(s.order)
	if n == 0 {
		return adv
	}

	switch s.phase {
	case types.PhasePreparing:
		if s.forward() {
			if s.active < n-1 {
				s.active++
				return adv
			}
		} else if s.active > 0 {
			s.active--
			return adv
		}
		adv.PhaseChanged = s.endPreparingRound()
	case types.PhasePlaying:
		s.active = (s.active + 1) % n
		if s.active == 0 {
			s.round++
		}
	}
	return adv
}

// endPreparingRound starts the next round where the last one ended, or starts
// play once every preparation round is done.
func (s *State) endPreparingRound() bool {
	s.round++
	if s.round > constants.PreparingRounds {
		s.phase = types.PhasePlaying
		s.active = 0
		return true
	}
	if s.forward() {
		s.active = 0
	} else {
		s.active = len(s.order) - 1
	}
	return false
}

// Removal describes what changed when a player left.
type Removal struct {
	WasActive    bool
	PhaseChanged bool
}

// Remove drops a player from the seating order. The active seat is recomputed
// against the remaining players. When the active player leaves, the next player
// in turn order starts a fresh turn.
func (s *State) Remove(p types.PlayerID) (Removal, error) {
	idx := s.indexOf(p)
	if idx < 0 {
		return Removal{}, ErrNotSeated
	}

	removal := Removal{
		WasActive: s.phase != types.PhaseWaiting && idx == s.active,
	}

	s.order = append(s.order[:idx], s.order[idx+1:]...)
	delete(s.discards, p)
	kept := s.trades[:0]
	for _, t := range s.trades {
		if !t.Involves(p) {
			kept = append(kept, t)
		}
	}
	s.trades = kept

	if s.phase == types.PhaseWaiting {
		return removal, nil
	}

	n := len(s.order)
	if n == 0 {
		s.active = 0
		return removal, nil
	}

	if idx < s.active {
		s.active--
		return removal, nil
	}
	if idx > s.active {
		return removal, nil
	}

	s.diceThrown = false
	s.trades = nil
	s.robber = RobberState{}

	switch s.phase {
	case types.PhasePreparing:
		if s.forward() {
			if idx < n {
				return removal, nil
			}
		} else if idx > 0 {
			s.active = idx - 1
			return removal, nil
		}
		removal.PhaseChanged = s.endPreparingRound()
	case types.PhasePlaying:
		if idx >= n {
			s.active = 0
			s.round++
		}
	}
	return removal, nil
}

func (s *State) indexOf(p types.PlayerID) int {
	for i, seated := range s.order {
		if seated == p {
			return i
		}
	}
	return -1
}

// PendingDiscard returns how many cards p still has to discard.
func (s *State) PendingDiscard(p types.PlayerID) int {
	return s.discards[p]
}

func (s *State) SetPendingDiscard(p types.PlayerID, n int) {
	if n <= 0 {
		delete(s.discards, p)
		return
	}
	s.discards[p] = n
}

// PendingDiscards returns a copy of every outstanding discard.
func (s *State) PendingDiscards() map[types.PlayerID]int {
	out := make(map[types.PlayerID]int, len(s.discards))
	for p, n := range s.discards {
		out[p] = n
	}
	return out
}

func (s *State) HasPendingDiscards() bool {
	return len(s.discards) > 0
}

func (s *State) Robber() RobberState {
	return s.robber
}

func (s *State) SetRobber(r RobberState) {
	s.robber = r
}

// RobberPending reports whether the active player still has to move the robber or steal.
func (s *State) RobberPending() bool {
	return s.robber.MustReposition || s.robber.CanSteal
}

// CanEndTurn reports whether p may end the current turn.
func (s *State) CanEndTurn(p types.PlayerID) bool {
	return s.phase == types.PhasePlaying &&
		!s.Finished() &&
		s.IsActive(p) &&
		s.diceThrown &&
		!s.HasPendingDiscards() &&
		!s.RobberPending()
}

// Trades returns copies of the pending trade offers.
func (s *State) Trades() []*types.TradeOffer {
	out := make([]*types.TradeOffer, 0, len(s.trades))
	for _, t := range s.trades {
		out = append(out, t.Clone())
	}
	return out
}

// UpsertTrade stores an offer under a fresh id. An existing offer between the
// same sender and receiver is replaced and returned.
func (s *State) UpsertTrade(offer *types.TradeOffer) (stored *types.TradeOffer, replaced *types.TradeOffer) {
	stored = offer.Clone()
	stored.ID = uuid.New()
	for i, t := range s.trades {
		if t.Sender == offer.Sender && t.Receiver == offer.Receiver {
			s.trades[i] = stored
			return stored.Clone(), t
		}
	}
	s.trades = append(s.trades, stored)
	return stored.Clone(), nil
}

// Trade returns a copy of the offer with the given id.
func (s *State) Trade(id uuid.UUID) (*types.TradeOffer, bool) {
	for _, t := range s.trades {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return nil, false
}

func (s *State) RemoveTrade(id uuid.UUID) error {
	for i, t := range s.trades {
		if t.ID == id {
			s.trades = append(s.trades[:i], s.trades[i+1:]...)
			return nil
		}
	}
	return ErrNoSuchTrade
}

// Finish records the winner. Every later command is rejected.
func (s *State) Finish(winner types.PlayerID) {
	s.winner = winner
}

func (s *State) Finished() bool {
	return s.winner != types.NoPlayer
}

func (s *State) Winner() (types.PlayerID, bool) {
	return s.winner, s.winner != types.NoPlayer
}

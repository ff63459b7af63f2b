// Package rules is the authoritative rules engine of a game session.
//
// An Engine owns every piece of session state: the board, the player ledgers,
// the turn state and the event bus. Commands are validated completely before
// anything is mutated; a rejected command has no effect.
package rules

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cbodonnell/settlers/pkg/game/board"
	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/dice"
	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/ledger"
	"github.com/cbodonnell/settlers/pkg/game/scoring"
	"github.com/cbodonnell/settlers/pkg/game/turn"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/google/uuid"
)

// NewEngineOptions contains options for creating a new Engine.
type NewEngineOptions struct {
	SessionID             uuid.UUID
	MaxPlayers            int
	VictoryPointsTarget   int
	MaxCardsBeforeDiscard int
	Seed                  int64
	RevealRandomTiles     bool
	Logger                *log.Logger
}

// DefaultEngineOptions returns the standard session settings with a time based seed.
func DefaultEngineOptions() NewEngineOptions {
	return NewEngineOptions{
		MaxPlayers:            constants.MaxPlayers,
		VictoryPointsTarget:   constants.VictoryPointsTarget,
		MaxCardsBeforeDiscard: constants.MaxCardsBeforeDiscard,
		Seed:                  time.Now().UnixNano(),
		RevealRandomTiles:     true,
	}
}

type Engine struct {
	mu sync.Mutex

	sessionID             uuid.UUID
	victoryPointsTarget   int
	maxCardsBeforeDiscard int

	rng      *rand.Rand
	diceSeed int64
	lastRoll dice.Roll

	board   *board.Board
	turn    *turn.State
	ledgers map[types.PlayerID]*ledger.Ledger
	names   map[types.PlayerID]string
	bus     *events.Bus
	log     *log.Logger
}

func NewEngine(opts NewEngineOptions) *Engine {
	defaults := DefaultEngineOptions()
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = defaults.MaxPlayers
	}
	if opts.VictoryPointsTarget <= 0 {
		opts.VictoryPointsTarget = defaults.VictoryPointsTarget
	}
	if opts.MaxCardsBeforeDiscard <= 0 {
		opts.MaxCardsBeforeDiscard = defaults.MaxCardsBeforeDiscard
	}
	if opts.SessionID == uuid.Nil {
		opts.SessionID = uuid.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	e := &Engine{
		sessionID:             opts.SessionID,
		victoryPointsTarget:   opts.VictoryPointsTarget,
		maxCardsBeforeDiscard: opts.MaxCardsBeforeDiscard,
		rng:                   rng,
		board:                 board.New(board.Options{Rand: rng, RevealRandomTiles: opts.RevealRandomTiles}),
		turn:                  turn.New(opts.MaxPlayers),
		ledgers:               make(map[types.PlayerID]*ledger.Ledger),
		names:                 make(map[types.PlayerID]string),
		bus:                   events.NewBus(),
		log:                   logger.WithField("session", opts.SessionID.String()),
	}
	e.diceSeed = rng.Int63()
	return e
}

func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

func (e *Engine) VictoryPointsTarget() int {
	return e.victoryPointsTarget
}

// Events returns the bus the engine publishes on. Handlers run while the engine
// is locked and must not call back into it.
func (e *Engine) Events() *events.Bus {
	return e.bus
}

func (e *Engine) Phase() types.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn.Phase()
}

func (e *Engine) Winner() (types.PlayerID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn.Winner()
}

// Standings returns the score breakdown of every seated player.
func (e *Engine) Standings() map[types.PlayerID]scoring.Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.standings()
}

// AddPlayer seats a player. Filling the last seat starts the game.
func (e *Engine) AddPlayer(p types.PlayerID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	full, err := e.turn.Join(p)
	if err != nil {
		return fmt.Errorf("failed to seat player %d: %w", p, err)
	}
	e.ledgers[p] = ledger.New()
	e.names[p] = name
	e.bus.Publish(events.TypePlayerJoined, events.Player(p), events.PlayerJoined{Player: p, Name: name})

	if full {
		e.start()
	}
	return nil
}

// RemovePlayer unseats a player. Board pieces stay; trades and discards of the
// player are dropped. When the active player leaves the next one starts a fresh turn.
func (e *Engine) RemovePlayer(p types.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	removal, err := e.turn.Remove(p)
	if err != nil {
		return fmt.Errorf("failed to remove player %d: %w", p, err)
	}
	delete(e.ledgers, p)
	delete(e.names, p)
	e.bus.Publish(events.TypePlayerLeft, events.Player(p), events.PlayerLeft{Player: p})

	if removal.PhaseChanged {
		e.finishPreparation()
	}
	if removal.WasActive {
		active, _ := e.turn.ActivePlayer()
		e.bus.Publish(events.TypeTurnAdvanced, events.Session(), events.TurnAdvanced{
			Previous: p,
			Active:   active,
			Round:    e.turn.Round(),
		})
	}
	return nil
}

// Execute validates and applies a command. It reports whether the command was accepted.
func (e *Engine) Execute(cmd Command) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := cmd.validate(e); err != nil {
		e.log.Debug("Rejected %T from player %d: %v", cmd, cmd.Caller(), err)
		return false
	}
	cmd.apply(e)
	e.checkGameOver()
	return true
}

// start moves the session into preparation and grants the initial placements.
func (e *Engine) start() {
	if err := e.turn.Start(); err != nil {
		panic(fmt.Sprintf("failed to start game: %v", err))
	}
	for _, p := range e.turn.Order() {
		l := e.ledgers[p]
		l.GrantFreeBuilding(types.BuildTypeSettlement, constants.PreparingRounds)
		l.GrantFreeBuilding(types.BuildTypeStreet, constants.PreparingRounds)
	}
	e.log.Info("Game started with %d players", e.turn.PlayerCount())
	e.publishPhase()
}

func (e *Engine) publishPhase() {
	e.bus.Publish(events.TypePhaseChanged, events.Session(), events.PhaseChanged{
		Phase: e.turn.Phase(),
		Round: e.turn.Round(),
	})
}

// advanceTurn hands the turn to the next player and publishes what changed.
func (e *Engine) advanceTurn() {
	adv := e.turn.Advance()
	if adv.ClearedTrades > 0 {
		e.bus.Publish(events.TypeTradesCleared, events.Session(), events.TradesCleared{Count: adv.ClearedTrades})
	}
	if adv.PhaseChanged {
		e.finishPreparation()
	}
	active, _ := e.turn.ActivePlayer()
	e.bus.Publish(events.TypeTurnAdvanced, events.Session(), events.TurnAdvanced{
		Previous: adv.Previous,
		Active:   active,
		Round:    e.turn.Round(),
	})
}

// finishPreparation runs once preparation is over: every tile next to a
// building is revealed and owners receive one resource per producing tile.
func (e *Engine) finishPreparation() {
	changed := make(map[types.PlayerID]bool)
	for _, n := range e.board.Nodes {
		if !n.Occupied() {
			continue
		}
		l, seated := e.ledgers[n.Owner]
		for _, tile := range n.Tiles {
			e.discover(tile)
			resource, ok := tile.Terrain.Resource()
			if !ok || !seated {
				continue
			}
			e.must(l.Add(resource, 1))
			changed[n.Owner] = true
		}
	}
	e.publishPhase()
	for _, p := range e.turn.Order() {
		if changed[p] {
			e.publishResources(p)
		}
	}
}

func (e *Engine) discover(t *board.Tile) {
	if !e.board.Discover(t) {
		return
	}
	e.bus.Publish(events.TypeTileDiscovered, events.Tile(t.ID), events.TileDiscovered{
		Tile:    t.ID,
		Terrain: t.Terrain,
		Number:  t.Number,
	})
}

func (e *Engine) publishResources(p types.PlayerID) {
	l, ok := e.ledgers[p]
	if !ok {
		return
	}
	e.bus.Publish(events.TypeResourcesChanged, events.Player(p), events.ResourcesChanged{
		Player:    p,
		Resources: resourceMap(l),
	})
}

// checkGameOver finishes the game once the active player reaches the target.
func (e *Engine) checkGameOver() {
	if e.turn.Finished() || e.turn.Phase() != types.PhasePlaying {
		return
	}
	active, ok := e.turn.ActivePlayer()
	if !ok {
		return
	}
	vp := e.standings()[active].VictoryPoints
	if vp < e.victoryPointsTarget {
		return
	}
	e.turn.Finish(active)
	e.log.Info("Player %d won with %d victory points", active, vp)
	e.bus.Publish(events.TypeGameOver, events.Session(), events.GameOver{Winner: active, VictoryPoints: vp})
}

func (e *Engine) standings() map[types.PlayerID]scoring.Standing {
	return scoring.Standings(e.board, e.turn.Order(), func(p types.PlayerID) *ledger.Ledger {
		return e.ledgers[p]
	})
}

// ledger returns the ledger of a seated player.
func (e *Engine) ledger(p types.PlayerID) (*ledger.Ledger, error) {
	l, ok := e.ledgers[p]
	if !ok {
		return nil, ErrNotSeated
	}
	return l, nil
}

// must panics on errors that validation should have ruled out.
func (e *Engine) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("rules invariant violated in session %s: %v", e.sessionID, err))
	}
}

func resourceMap(l *ledger.Ledger) map[types.Resource]int {
	out := make(map[types.Resource]int, types.NumResources)
	for r, n := range l.Resources() {
		out[types.Resource(r)] = n
	}
	return out
}

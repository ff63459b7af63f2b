package rules

import (
	"fmt"
	"io"
	"testing"

	"github.com/cbodonnell/settlers/pkg/game/board"
	"github.com/cbodonnell/settlers/pkg/game/dice"
	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, configure ...func(*NewEngineOptions)) *Engine {
	t.Helper()
	opts := NewEngineOptions{
		Seed:   1,
		Logger: log.New(io.Discard, log.LogLevelError),
	}
	for _, f := range configure {
		f(&opts)
	}
	return NewEngine(opts)
}

func seat(t *testing.T, e *Engine, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, e.AddPlayer(types.PlayerID(i), fmt.Sprintf("player-%d", i)))
	}
}

func activePlayer(t *testing.T, e *Engine) types.PlayerID {
	t.Helper()
	p, ok := e.turn.ActivePlayer()
	require.True(t, ok)
	return p
}

// freeNode returns a node p may settle on during preparation, avoiding harbors.
func freeNode(t *testing.T, e *Engine, p types.PlayerID) *board.Node {
	t.Helper()
	for _, n := range e.board.Nodes {
		if n.Harbor == nil && e.board.CanPlaceSettlement(n, p, types.PhasePreparing) {
			return n
		}
	}
	t.Fatal("no free node")
	return nil
}

// placeInitial runs the preparation rounds and returns the active player of each turn.
func placeInitial(t *testing.T, e *Engine) []types.PlayerID {
	t.Helper()
	var order []types.PlayerID
	for e.turn.Phase() == types.PhasePreparing {
		p := activePlayer(t, e)
		order = append(order, p)

		node := freeNode(t, e, p)
		require.True(t, e.Execute(BuildSettlement{Player: p, Node: node.ID}))

		var street *board.Edge
		for _, s := range node.Streets {
			if e.board.CanPlaceStreet(s, p, types.PhasePreparing) {
				street = s
				break
			}
		}
		require.NotNil(t, street)
		require.True(t, e.Execute(BuildStreet{Player: p, Edge: street.ID}))
	}
	return order
}

// playingEngine returns a session in the playing phase with player 1 active.
func playingEngine(t *testing.T, players int, configure ...func(*NewEngineOptions)) *Engine {
	t.Helper()
	e := newTestEngine(t, configure...)
	seat(t, e, players)
	if e.turn.Phase() == types.PhaseWaiting {
		require.True(t, e.Execute(StartGame{Player: 1}))
	}
	placeInitial(t, e)
	require.Equal(t, types.PhasePlaying, e.turn.Phase())
	require.Equal(t, types.PlayerID(1), activePlayer(t, e))
	return e
}

// seedFor returns the first dice seed whose roll total satisfies want.
func seedFor(want func(total int) bool) int64 {
	for seed := int64(0); ; seed++ {
		if want(dice.RollTwo(seed).Total()) {
			return seed
		}
	}
}

// roll makes p roll the dice with the first seed whose total satisfies want.
func roll(t *testing.T, e *Engine, p types.PlayerID, want func(total int) bool) int {
	t.Helper()
	e.diceSeed = seedFor(want)
	require.True(t, e.Execute(RollDice{Player: p}))
	return e.lastRoll.Total()
}

func notSeven(total int) bool { return total != 7 }

func seven(total int) bool { return total == 7 }

// setHand replaces the resources of p.
func setHand(t *testing.T, e *Engine, p types.PlayerID, hand map[types.Resource]int) {
	t.Helper()
	l := e.ledgers[p]
	for _, r := range types.AllResources {
		require.NoError(t, l.Remove(r, l.Count(r)))
		require.NoError(t, l.Add(r, hand[r]))
	}
}

func hand(e *Engine, p types.PlayerID) map[types.Resource]int {
	return resourceMap(e.ledgers[p])
}

// recorder collects every published event.
type recorder struct {
	events []events.Event
}

func record(e *Engine) *recorder {
	r := &recorder{}
	e.Events().Subscribe(func(ev events.Event) { r.events = append(r.events, ev) })
	return r
}

func (r *recorder) kinds() []events.Type {
	out := make([]events.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) count(t events.Type) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// stableSnapshot returns a snapshot without the wall clock timestamp.
func stableSnapshot(e *Engine) *types.GameSnapshot {
	s := e.Snapshot()
	s.Timestamp = 0
	return s
}

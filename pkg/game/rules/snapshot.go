package rules

import (
	"time"

	"github.com/cbodonnell/settlers/pkg/game/types"
)

// Snapshot returns the full replicated view of the session. Sequence is the
// number of the last published event.
func (e *Engine) Snapshot() *types.GameSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, _ := e.turn.ActivePlayer()
	winner, _ := e.turn.Winner()
	robber := e.turn.Robber()

	s := &types.GameSnapshot{
		SessionID:       e.sessionID,
		Sequence:        e.bus.Sequence(),
		Timestamp:       time.Now().UnixMilli(),
		Phase:           e.turn.Phase(),
		Round:           e.turn.Round(),
		ActivePlayer:    active,
		PlayerOrder:     e.turn.Order(),
		DiceThrown:      e.turn.DiceThrown(),
		LastRoll:        [2]int{e.lastRoll.First, e.lastRoll.Second},
		RobberTile:      -1,
		RobberMustMove:  robber.MustReposition,
		RobberCanSteal:  robber.CanSteal,
		PendingDiscards: e.turn.PendingDiscards(),
		Trades:          e.turn.Trades(),
		Winner:          winner,
	}
	if t := e.board.Robber(); t != nil {
		s.RobberTile = t.ID
	}

	for _, t := range e.board.Tiles {
		s.Tiles = append(s.Tiles, types.TileSnapshot{
			ID:         t.ID,
			Terrain:    t.Terrain,
			Number:     t.Number,
			Discovered: t.Discovered,
			Blocked:    t.Blocked,
			Q:          t.Coord.Q,
			R:          t.Coord.R,
			S:          t.Coord.S,
		})
	}
	for _, n := range e.board.Nodes {
		node := types.NodeSnapshot{
			ID:     n.ID,
			Owner:  n.Owner,
			Level:  n.Level,
			Harbor: -1,
		}
		if n.Harbor != nil {
			node.Harbor = n.Harbor.ID
		}
		s.Nodes = append(s.Nodes, node)
	}
	for _, edge := range e.board.Edges {
		s.Edges = append(s.Edges, types.EdgeSnapshot{
			ID:    edge.ID,
			Owner: edge.Owner,
			Nodes: [2]int{edge.Nodes[0].ID, edge.Nodes[1].ID},
		})
	}
	for _, h := range e.board.Harbors {
		harbor := types.HarborSnapshot{
			ID:    h.ID,
			Nodes: [2]int{h.Nodes[0].ID, h.Nodes[1].ID},
		}
		if h.Resource != nil {
			r := *h.Resource
			harbor.Resource = &r
		}
		s.Harbors = append(s.Harbors, harbor)
	}

	standings := e.standings()
	for _, p := range e.turn.Order() {
		l := e.ledgers[p]
		cards := make(map[types.DevelopmentCard]int)
		held := 0
		for c, n := range l.PlayableCards() {
			if n > 0 {
				cards[types.DevelopmentCard(c)] = n
				held += n
			}
		}
		st := standings[p]
		s.Players = append(s.Players, types.PlayerSnapshot{
			ID:               p,
			Name:             e.names[p],
			Resources:        resourceMap(l),
			PlayableCards:    cards,
			DevelopmentCards: held,
			BoughtCards:      l.BoughtCards(),
			KnightsPlayed:    l.KnightsPlayed(),
			VictoryPoints:    st.VictoryPoints,
			LongestRoad:      st.LongestRoad,
			HasLongestRoad:   st.HasLongestRoad,
			HasLargestArmy:   st.HasLargestArmy,
		})
	}
	return s
}

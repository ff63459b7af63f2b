// Package scoring computes victory points and the longest road and largest army awards.
package scoring

import (
	"github.com/cbodonnell/settlers/pkg/game/board"
	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/ledger"
	"github.com/cbodonnell/settlers/pkg/game/types"
)

// Standing is the score breakdown of one player.
type Standing struct {
	Player         types.PlayerID
	BuildingPoints int
	BonusPoints    int
	LongestRoad    int
	KnightsPlayed  int
	HasLongestRoad bool
	HasLargestArmy bool
	VictoryPoints  int
}

// LedgerSource returns the ledger of a seated player.
type LedgerSource func(p types.PlayerID) *ledger.Ledger

// BuildingPoints sums the levels of every settlement and city owned by p.
func BuildingPoints(b *board.Board, p types.PlayerID) int {
	points := 0
	for _, n := range b.SettlementsOwnedBy(p) {
		points += int(n.Level)
	}
	return points
}

// LongestRoad returns the number of edges in the longest trail of streets owned by p.
// A trail cannot pass through a node occupied by another player and visits each node once.
func LongestRoad(b *board.Board, p types.PlayerID) int {
	longest := 0
	edges := make(map[*board.Edge]bool)
	nodes := make(map[*board.Node]bool)
	for _, e := range b.StreetsOwnedBy(p) {
		for _, start := range e.Nodes {
			nodes[start] = true
			if l := walk(e, start, p, edges, nodes); l > longest {
				longest = l
			}
			nodes[start] = false
		}
	}
	return longest
}

// walk returns the length of the longest trail that starts with e, entered from the node from.
func walk(e *board.Edge, from *board.Node, p types.PlayerID, edges map[*board.Edge]bool, nodes map[*board.Node]bool) int {
	edges[e] = true
	defer func() { edges[e] = false }()

	to := e.Other(from)
	if to.OccupiedByOther(p) || nodes[to] {
		return 1
	}

	nodes[to] = true
	defer func() { nodes[to] = false }()

	best := 0
	for _, next := range to.Streets {
		if next.Owner != p || edges[next] {
			continue
		}
		if l := walk(next, to, p, edges, nodes); l > best {
			best = l
		}
	}
	return 1 + best
}

// HasLongestRoad reports whether p holds the longest road award given every player's road length.
func HasLongestRoad(lengths map[types.PlayerID]int, p types.PlayerID) bool {
	return leads(lengths, p, constants.LongestRoadMinimum)
}

// HasLargestArmy reports whether p holds the largest army award given every player's knights played.
func HasLargestArmy(knights map[types.PlayerID]int, p types.PlayerID) bool {
	return leads(knights, p, constants.LargestArmyMinimum)
}

// leads reports whether p reaches the minimum and is strictly ahead of everyone else.
// Ties award nobody.
func leads(values map[types.PlayerID]int, p types.PlayerID, minimum int) bool {
	mine, ok := values[p]
	if !ok || mine < minimum {
		return false
	}
	for other, v := range values {
		if other != p && v >= mine {
			return false
		}
	}
	return true
}

// Standings computes the score breakdown of every player.
func Standings(b *board.Board, players []types.PlayerID, ledgerOf LedgerSource) map[types.PlayerID]Standing {
	roads := make(map[types.PlayerID]int, len(players))
	knights := make(map[types.PlayerID]int, len(players))
	for _, p := range players {
		roads[p] = LongestRoad(b, p)
		knights[p] = ledgerOf(p).KnightsPlayed()
	}

	out := make(map[types.PlayerID]Standing, len(players))
	for _, p := range players {
		s := Standing{
			Player:         p,
			BuildingPoints: BuildingPoints(b, p),
			BonusPoints:    ledgerOf(p).BonusVictoryPoints(),
			LongestRoad:    roads[p],
			KnightsPlayed:  knights[p],
			HasLongestRoad: HasLongestRoad(roads, p),
			HasLargestArmy: HasLargestArmy(knights, p),
		}
		s.VictoryPoints = s.BuildingPoints + s.BonusPoints
		if s.HasLongestRoad {
			s.VictoryPoints += constants.LongestRoadBonus
		}
		if s.HasLargestArmy {
			s.VictoryPoints += constants.LargestArmyBonus
		}
		out[p] = s
	}
	return out
}

// VictoryPoints returns the victory points of p among players.
func VictoryPoints(b *board.Board, players []types.PlayerID, ledgerOf LedgerSource, p types.PlayerID) int {
	return Standings(b, players, ledgerOf)[p].VictoryPoints
}

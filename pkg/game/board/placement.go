package board

import "github.com/cbodonnell/settlers/pkg/game/types"

// IsBlocked reports whether n or any node one edge away already holds a building.
func (b *Board) IsBlocked(n *Node) bool {
	if n.Occupied() {
		return true
	}
	for _, neighbor := range n.Neighbors() {
		if neighbor.Occupied() {
			return true
		}
	}
	return false
}

// CanPlaceSettlement reports whether p may build a settlement on n in the given phase.
// During preparation no road is needed; while playing, a street of p must end at n.
func (b *Board) CanPlaceSettlement(n *Node, p types.PlayerID, phase types.Phase) bool {
	if n == nil || p == types.NoPlayer || b.IsBlocked(n) {
		return false
	}
	switch phase {
	case types.PhasePreparing:
		return true
	case types.PhasePlaying:
		return n.HasOwnedStreet(p)
	default:
		return false
	}
}

// CanPlaceStreet reports whether p may build a street on e in the given phase.
//
// During preparation the street must extend a settlement of p that has no street yet.
// While playing it must touch a building of p, or continue a street of p through a
// node that no other player occupies.
func (b *Board) CanPlaceStreet(e *Edge, p types.PlayerID, phase types.Phase) bool {
	if e == nil || p == types.NoPlayer || e.Occupied() {
		return false
	}

	ownsEndpoint := false
	for _, n := range e.Nodes {
		if n.Occupied() && n.Owner == p {
			ownsEndpoint = true
			if phase == types.PhasePreparing && n.hasAnyStreet() {
				return false
			}
		}
	}

	switch phase {
	case types.PhasePreparing:
		return ownsEndpoint
	case types.PhasePlaying:
		if ownsEndpoint {
			return true
		}
		for _, connected := range e.Connected {
			if connected.Owner != p {
				continue
			}
			shared := e.SharedNode(connected)
			if shared != nil && !shared.OccupiedByOther(p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

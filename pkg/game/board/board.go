// Package board holds the static topology of a session's map: hex tiles, the
// settlement nodes on their corners, the street edges between the nodes, and
// the harbors on the coast.
package board

import (
	"errors"
	"math"

	"github.com/cbodonnell/settlers/pkg/game/types"
)

var (
	// ErrOccupied is returned when building on a node or edge that already has an owner.
	ErrOccupied = errors.New("already occupied")
	// ErrNotOwner is returned when upgrading a settlement owned by someone else.
	ErrNotOwner = errors.New("not the owner")
	// ErrWrongLevel is returned when upgrading something that is not a settlement.
	ErrWrongLevel = errors.New("wrong building level")
)

// Cube is a cube hex coordinate. Q+R+S is always zero.
type Cube struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

func (c Cube) Add(o Cube) Cube {
	return Cube{Q: c.Q + o.Q, R: c.R + o.R, S: c.S + o.S}
}

// Point is a position in board space.
type Point struct {
	X float64
	Y float64
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

type Tile struct {
	ID         int
	Terrain    types.Terrain
	Number     int
	Discovered bool
	Blocked    bool
	Coord      Cube
	Position   Point
}

// Node is a settlement slot on a tile corner.
type Node struct {
	ID       int
	Level    types.Level
	Owner    types.PlayerID
	Streets  []*Edge
	Tiles    []*Tile
	Harbor   *Harbor
	Position Point
}

func (n *Node) Occupied() bool {
	return n.Level != types.LevelNone
}

// OccupiedByOther reports whether the node holds a building of a player other than p.
func (n *Node) OccupiedByOther(p types.PlayerID) bool {
	return n.Occupied() && n.Owner != p
}

// Neighbors returns the nodes one edge away.
func (n *Node) Neighbors() []*Node {
	out := make([]*Node, 0, len(n.Streets))
	for _, e := range n.Streets {
		out = append(out, e.Other(n))
	}
	return out
}

// HasOwnedStreet reports whether any street ending at the node is owned by p.
func (n *Node) HasOwnedStreet(p types.PlayerID) bool {
	for _, e := range n.Streets {
		if e.Owner == p {
			return true
		}
	}
	return false
}

func (n *Node) hasAnyStreet() bool {
	for _, e := range n.Streets {
		if e.Occupied() {
			return true
		}
	}
	return false
}

// Edge is a street slot between two nodes.
type Edge struct {
	ID        int
	Owner     types.PlayerID
	Nodes     [2]*Node
	Connected []*Edge
}

func (e *Edge) Occupied() bool {
	return e.Owner != types.NoPlayer
}

// Other returns the endpoint opposite n.
func (e *Edge) Other(n *Node) *Node {
	if e.Nodes[0] == n {
		return e.Nodes[1]
	}
	return e.Nodes[0]
}

// SharedNode returns the endpoint shared with o, or nil when the edges do not touch.
func (e *Edge) SharedNode(o *Edge) *Node {
	for _, a := range e.Nodes {
		for _, b := range o.Nodes {
			if a == b {
				return a
			}
		}
	}
	return nil
}

// Harbor improves bank trades for the owners of its nodes. A nil Resource is a generic harbor.
type Harbor struct {
	ID       int
	Resource *types.Resource
	Nodes    [2]*Node
}

func (h *Harbor) Generic() bool {
	return h.Resource == nil
}

type Board struct {
	Tiles   []*Tile
	Nodes   []*Node
	Edges   []*Edge
	Harbors []*Harbor
	robber  *Tile
}

func (b *Board) Tile(id int) (*Tile, bool) {
	if id < 0 || id >= len(b.Tiles) {
		return nil, false
	}
	return b.Tiles[id], true
}

func (b *Board) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(b.Nodes) {
		return nil, false
	}
	return b.Nodes[id], true
}

func (b *Board) Edge(id int) (*Edge, bool) {
	if id < 0 || id >= len(b.Edges) {
		return nil, false
	}
	return b.Edges[id], true
}

// AdjacentTiles returns the tiles touching a node.
func (b *Board) AdjacentTiles(n *Node) []*Tile {
	out := make([]*Tile, len(n.Tiles))
	copy(out, n.Tiles)
	return out
}

// TileNodes returns the nodes on the corners of a tile.
func (b *Board) TileNodes(t *Tile) []*Node {
	var out []*Node
	for _, n := range b.Nodes {
		for _, nt := range n.Tiles {
			if nt == t {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Robber returns the tile the robber stands on.
func (b *Board) Robber() *Tile {
	return b.robber
}

// MoveRobber blocks t and unblocks the previous robber tile, which is returned.
func (b *Board) MoveRobber(t *Tile) *Tile {
	previous := b.robber
	if previous != nil {
		previous.Blocked = false
	}
	t.Blocked = true
	b.robber = t
	return previous
}

// Discover reveals a tile and reports whether it was hidden before.
func (b *Board) Discover(t *Tile) bool {
	if t.Discovered {
		return false
	}
	t.Discovered = true
	return true
}

// Build places a level one settlement for p.
func (b *Board) Build(n *Node, p types.PlayerID) error {
	if n.Occupied() {
		return ErrOccupied
	}
	n.Owner = p
	n.Level = types.LevelSettlement
	return nil
}

// Upgrade turns a settlement of p into a city.
func (b *Board) Upgrade(n *Node, p types.PlayerID) error {
	if n.Owner != p {
		return ErrNotOwner
	}
	if n.Level != types.LevelSettlement {
		return ErrWrongLevel
	}
	n.Level = types.LevelCity
	return nil
}

// SetStreetOwner assigns an unowned edge to p.
func (b *Board) SetStreetOwner(e *Edge, p types.PlayerID) error {
	if e.Occupied() {
		return ErrOccupied
	}
	e.Owner = p
	return nil
}

// SettlementsOwnedBy returns every occupied node owned by p.
func (b *Board) SettlementsOwnedBy(p types.PlayerID) []*Node {
	var out []*Node
	for _, n := range b.Nodes {
		if n.Occupied() && n.Owner == p {
			out = append(out, n)
		}
	}
	return out
}

// StreetsOwnedBy returns every edge owned by p.
func (b *Board) StreetsOwnedBy(p types.PlayerID) []*Edge {
	var out []*Edge
	for _, e := range b.Edges {
		if e.Owner == p {
			out = append(out, e)
		}
	}
	return out
}

// HarborsOwnedBy returns the harbors attached to a settlement or city of p.
func (b *Board) HarborsOwnedBy(p types.PlayerID) []*Harbor {
	var out []*Harbor
	for _, h := range b.Harbors {
		for _, n := range h.Nodes {
			if n.Occupied() && n.Owner == p {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

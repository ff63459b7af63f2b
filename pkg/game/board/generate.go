package board

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/solarlune/resolv"
)

const (
	// adjacencyEpsilon is added to the closest tile distance when collecting a node's tiles
	adjacencyEpsilon = 0.1
	// cornerEpsilon is the distance under which two tile corners are the same node
	cornerEpsilon = 0.5
	// cornerSize is the side of the square used to index a corner in the spatial grid
	cornerSize = 2.0
	// spaceOffset moves board coordinates into the positive range of the spatial grid
	spaceOffset = 64.0
	spaceSize   = 128
	cellSize    = 8

	tagCorner = "corner"
)

// directions walks one side of a ring each, starting from the top of the ring.
var directions = [6]Cube{
	{Q: -1, R: 0, S: 1},
	{Q: 0, R: -1, S: 1},
	{Q: 1, R: -1, S: 0},
	{Q: 1, R: 0, S: -1},
	{Q: 0, R: 1, S: -1},
	{Q: -1, R: 1, S: 0},
}

// ringStart is the offset from the center to the first tile of ring one.
var ringStart = Cube{Q: 0, R: 1, S: -1}

// Composition is the fixed multiset of terrains on a standard board.
var Composition = []types.Terrain{
	types.TerrainPasture, types.TerrainPasture, types.TerrainPasture, types.TerrainPasture,
	types.TerrainForest, types.TerrainForest, types.TerrainForest, types.TerrainForest,
	types.TerrainMountains, types.TerrainMountains, types.TerrainMountains,
	types.TerrainHills, types.TerrainHills, types.TerrainHills,
	types.TerrainFields, types.TerrainFields, types.TerrainFields, types.TerrainFields,
	types.TerrainDesert,
}

// NumberTokens are dealt onto the producing tiles.
var NumberTokens = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// Options configures board generation.
type Options struct {
	// Rand drives every shuffle. The same source yields the same board.
	Rand *rand.Rand
	// RevealRandomTiles starts each tile discovered with probability one half.
	RevealRandomTiles bool
}

// New generates a board from the standard composition.
func New(opts Options) *Board {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	terrains := make([]types.Terrain, len(Composition))
	copy(terrains, Composition)
	rng.Shuffle(len(terrains), func(i, j int) { terrains[i], terrains[j] = terrains[j], terrains[i] })

	numbers := make([]int, len(NumberTokens))
	copy(numbers, NumberTokens)
	rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

	b := &Board{}
	for i, coord := range Spiral(constants.BoardRadius) {
		tile := &Tile{
			ID:       i,
			Terrain:  terrains[i],
			Coord:    coord,
			Position: AxialToPosition(coord),
		}
		if tile.Terrain == types.TerrainDesert {
			tile.Discovered = true
			b.robber = tile
			tile.Blocked = true
		} else {
			tile.Number = numbers[0]
			numbers = numbers[1:]
		}
		b.Tiles = append(b.Tiles, tile)
	}

	b.buildGraph()
	b.placeHarbors(rng)

	if opts.RevealRandomTiles {
		for _, tile := range b.Tiles {
			if rng.Intn(2) == 1 {
				tile.Discovered = true
			}
		}
	}

	return b
}

// Spiral returns the cube coordinates of a hex board: the center, then each ring
// k of 6k tiles, walking k steps along each direction.
func Spiral(radius int) []Cube {
	coords := []Cube{{}}
	for k := 1; k <= radius; k++ {
		pos := Cube{Q: ringStart.Q * k, R: ringStart.R * k, S: ringStart.S * k}
		for _, dir := range directions {
			for step := 0; step < k; step++ {
				pos = pos.Add(dir)
				coords = append(coords, pos)
			}
		}
	}
	return coords
}

// AxialToPosition returns the center of a flat-top tile.
func AxialToPosition(c Cube) Point {
	return Point{
		X: float64(c.Q) * 0.75 * constants.TileWidth,
		Y: -float64(c.R-c.S) * 0.5 * constants.TileHeight,
	}
}

// corners returns the six corners of a tile, counter clockwise from the right.
func corners(center Point) [6]Point {
	r := constants.TileWidth / 2
	h := constants.TileHeight / 2
	return [6]Point{
		{X: center.X + r, Y: center.Y},
		{X: center.X + r/2, Y: center.Y + h},
		{X: center.X - r/2, Y: center.Y + h},
		{X: center.X - r, Y: center.Y},
		{X: center.X - r/2, Y: center.Y - h},
		{X: center.X + r/2, Y: center.Y - h},
	}
}

// cornerIndex deduplicates tile corners. The spatial grid narrows the candidates
// and the exact distance decides.
type cornerIndex struct {
	space *resolv.Space
	nodes map[*resolv.Object]*Node
}

func newCornerIndex() *cornerIndex {
	return &cornerIndex{
		space: resolv.NewSpace(spaceSize, spaceSize, cellSize, cellSize),
		nodes: make(map[*resolv.Object]*Node),
	}
}

func (c *cornerIndex) findOrAdd(p Point, create func() *Node) *Node {
	obj := resolv.NewObject(p.X+spaceOffset-cornerSize/2, p.Y+spaceOffset-cornerSize/2, cornerSize, cornerSize, tagCorner)
	c.space.Add(obj)
	if collision := obj.Check(0, 0, tagCorner); collision != nil {
		for _, other := range collision.Objects {
			if node, ok := c.nodes[other]; ok && node.Position.Distance(p) < cornerEpsilon {
				c.space.Remove(obj)
				return node
			}
		}
	}
	node := create()
	c.nodes[obj] = node
	return node
}

func (b *Board) buildGraph() {
	index := newCornerIndex()
	edges := make(map[[2]int]*Edge)

	for _, tile := range b.Tiles {
		var tileNodes [6]*Node
		for i, p := range corners(tile.Position) {
			tileNodes[i] = index.findOrAdd(p, func() *Node {
				node := &Node{ID: len(b.Nodes), Position: p}
				b.Nodes = append(b.Nodes, node)
				return node
			})
		}
		for i := range tileNodes {
			a, c := tileNodes[i], tileNodes[(i+1)%len(tileNodes)]
			key := [2]int{a.ID, c.ID}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if _, ok := edges[key]; ok {
				continue
			}
			edge := &Edge{ID: len(b.Edges), Nodes: [2]*Node{b.Nodes[key[0]], b.Nodes[key[1]]}}
			edges[key] = edge
			b.Edges = append(b.Edges, edge)
			a.Streets = append(a.Streets, edge)
			c.Streets = append(c.Streets, edge)
		}
	}

	for _, node := range b.Nodes {
		node.Tiles = b.closestTiles(node.Position)
	}

	for _, edge := range b.Edges {
		for _, node := range edge.Nodes {
			for _, other := range node.Streets {
				if other != edge {
					edge.Connected = append(edge.Connected, other)
				}
			}
		}
	}
}

// closestTiles returns every tile within the closest tile distance plus epsilon.
func (b *Board) closestTiles(p Point) []*Tile {
	closest := math.MaxFloat64
	for _, tile := range b.Tiles {
		closest = math.Min(closest, tile.Position.Distance(p))
	}
	var out []*Tile
	for _, tile := range b.Tiles {
		if tile.Position.Distance(p) <= closest+adjacencyEpsilon {
			out = append(out, tile)
		}
	}
	return out
}

// coastalEdges returns the edges bordering exactly one tile, ordered by angle around the center.
func (b *Board) coastalEdges() []*Edge {
	var coast []*Edge
	for _, edge := range b.Edges {
		shared := 0
		for _, t := range edge.Nodes[0].Tiles {
			for _, u := range edge.Nodes[1].Tiles {
				if t == u {
					shared++
				}
			}
		}
		if shared == 1 {
			coast = append(coast, edge)
		}
	}
	angle := func(e *Edge) float64 {
		x := (e.Nodes[0].Position.X + e.Nodes[1].Position.X) / 2
		y := (e.Nodes[0].Position.Y + e.Nodes[1].Position.Y) / 2
		return math.Atan2(y, x)
	}
	sort.SliceStable(coast, func(i, j int) bool { return angle(coast[i]) < angle(coast[j]) })
	return coast
}

func (b *Board) placeHarbors(rng *rand.Rand) {
	kinds := make([]*types.Resource, 0, constants.HarborCount)
	for i := 0; i < constants.GenericHarborCount; i++ {
		kinds = append(kinds, nil)
	}
	for _, r := range types.AllResources {
		r := r
		kinds = append(kinds, &r)
	}
	rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })

	coast := b.coastalEdges()
	if len(coast) < len(kinds) {
		return
	}
	for i, kind := range kinds {
		edge := coast[i*len(coast)/len(kinds)]
		harbor := &Harbor{
			ID:       i,
			Resource: kind,
			Nodes:    edge.Nodes,
		}
		for _, node := range edge.Nodes {
			node.Harbor = harbor
		}
		b.Harbors = append(b.Harbors, harbor)
	}
}

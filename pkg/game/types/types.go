package types

import (
	"fmt"
)

// PlayerID identifies a seat in a session. It is the transport client ID of the player.
type PlayerID uint32

// NoPlayer marks an unowned board piece. Client ID 0 is reserved for the server.
const NoPlayer PlayerID = 0

// Resource is one of the five tradeable resource kinds.
type Resource uint8

const (
	ResourceWood Resource = iota
	ResourceBrick
	ResourceSheep
	ResourceWheat
	ResourceOre
)

// NumResources is the number of resource kinds.
const NumResources = 5

// AllResources lists every resource kind in ledger order.
var AllResources = [NumResources]Resource{
	ResourceWood,
	ResourceBrick,
	ResourceSheep,
	ResourceWheat,
	ResourceOre,
}

var resourceNames = []string{"wood", "brick", "sheep", "wheat", "ore"}

func (r Resource) Valid() bool {
	return int(r) < NumResources
}

func (r Resource) String() string {
	return enumName(resourceNames, r)
}

func (r Resource) MarshalText() ([]byte, error) {
	return marshalEnum(resourceNames, r)
}

func (r *Resource) UnmarshalText(text []byte) error {
	return unmarshalEnum(resourceNames, text, r)
}

// ResourceAmount is a quantity of a single resource kind.
type ResourceAmount struct {
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount"`
}

// Terrain is the kind of a board tile.
type Terrain uint8

const (
	TerrainForest Terrain = iota
	TerrainHills
	TerrainPasture
	TerrainFields
	TerrainMountains
	TerrainDesert
)

var terrainNames = []string{"forest", "hills", "pasture", "fields", "mountains", "desert"}

// Resource returns the resource produced by the terrain. The desert produces nothing.
func (t Terrain) Resource() (Resource, bool) {
	switch t {
	case TerrainForest:
		return ResourceWood, true
	case TerrainHills:
		return ResourceBrick, true
	case TerrainPasture:
		return ResourceSheep, true
	case TerrainFields:
		return ResourceWheat, true
	case TerrainMountains:
		return ResourceOre, true
	default:
		return 0, false
	}
}

func (t Terrain) String() string {
	return enumName(terrainNames, t)
}

func (t Terrain) MarshalText() ([]byte, error) {
	return marshalEnum(terrainNames, t)
}

func (t *Terrain) UnmarshalText(text []byte) error {
	return unmarshalEnum(terrainNames, text, t)
}

// Phase is the game phase. Phases only move forward.
type Phase uint8

const (
	PhaseWaiting Phase = iota
	PhasePreparing
	PhasePlaying
)

var phaseNames = []string{"waiting", "preparing", "playing"}

func (p Phase) String() string {
	return enumName(phaseNames, p)
}

func (p Phase) MarshalText() ([]byte, error) {
	return marshalEnum(phaseNames, p)
}

func (p *Phase) UnmarshalText(text []byte) error {
	return unmarshalEnum(phaseNames, text, p)
}

// Level is the building level of a settlement node.
type Level uint8

const (
	LevelNone Level = iota
	LevelSettlement
	LevelCity
)

var levelNames = []string{"none", "settlement", "city"}

func (l Level) String() string {
	return enumName(levelNames, l)
}

func (l Level) MarshalText() ([]byte, error) {
	return marshalEnum(levelNames, l)
}

func (l *Level) UnmarshalText(text []byte) error {
	return unmarshalEnum(levelNames, text, l)
}

func enumName[T ~uint8](names []string, v T) string {
	if int(v) >= len(names) {
		return "unknown"
	}
	return names[v]
}

func marshalEnum[T ~uint8](names []string, v T) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, fmt.Errorf("invalid enum value %d", v)
	}
	return []byte(names[v]), nil
}

func unmarshalEnum[T ~uint8](names []string, text []byte, v *T) error {
	for i, name := range names {
		if name == string(text) {
			*v = T(i)
			return nil
		}
	}
	return fmt.Errorf("unknown value %q", string(text))
}

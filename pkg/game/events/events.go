// Package events is the state change notification bus of a game session.
// Only the rules engine publishes; anything else may subscribe.
package events

import (
	"fmt"
	"strconv"

	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

type Type uint8

const (
	TypePlayerJoined Type = iota
	TypePlayerLeft
	TypePhaseChanged
	TypeTurnAdvanced
	TypeDiceRolled
	TypeResourcesChanged
	TypeSettlementBuilt
	TypeSettlementUpgraded
	TypeStreetBuilt
	TypeTileDiscovered
	TypeTileBlocked
	TypeTileUnblocked
	TypeDiscardRequired
	TypeResourceStolen
	TypeTradeProposed
	TypeTradeAccepted
	TypeTradesCleared
	TypeDevelopmentCardBought
	TypeDevelopmentCardPlayed
	TypeKnightsHanged
	TypeMonopolyDeclared
	TypeGameOver
)

var typeNames = []string{
	"player_joined",
	"player_left",
	"phase_changed",
	"turn_advanced",
	"dice_rolled",
	"resources_changed",
	"settlement_built",
	"settlement_upgraded",
	"street_built",
	"tile_discovered",
	"tile_blocked",
	"tile_unblocked",
	"discard_required",
	"resource_stolen",
	"trade_proposed",
	"trade_accepted",
	"trades_cleared",
	"development_card_bought",
	"development_card_played",
	"knights_hanged",
	"monopoly_declared",
	"game_over",
}

func (t Type) String() string {
	if int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("invalid event type %d", t)
	}
	return []byte(typeNames[t]), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	for i, name := range typeNames {
		if name == string(text) {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", string(text))
}

type EntityKind string

const (
	EntitySession EntityKind = "session"
	EntityPlayer  EntityKind = "player"
	EntityTile    EntityKind = "tile"
	EntityNode    EntityKind = "node"
	EntityEdge    EntityKind = "edge"
	EntityTrade   EntityKind = "trade"
)

// EntityRef names the entity an event is about.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id,omitempty"`
}

func Session() EntityRef {
	return EntityRef{Kind: EntitySession}
}

func Player(p types.PlayerID) EntityRef {
	return EntityRef{Kind: EntityPlayer, ID: strconv.FormatUint(uint64(p), 10)}
}

func Tile(id int) EntityRef {
	return EntityRef{Kind: EntityTile, ID: strconv.Itoa(id)}
}

func Node(id int) EntityRef {
	return EntityRef{Kind: EntityNode, ID: strconv.Itoa(id)}
}

func Edge(id int) EntityRef {
	return EntityRef{Kind: EntityEdge, ID: strconv.Itoa(id)}
}

func Trade(id uuid.UUID) EntityRef {
	return EntityRef{Kind: EntityTrade, ID: id.String()}
}

// Event is a single state change. Seq increases by one per published event.
type Event struct {
	Seq     uint64      `json:"seq"`
	Type    Type        `json:"type"`
	Entity  EntityRef   `json:"entity"`
	Payload interface{} `json:"payload,omitempty"`
}

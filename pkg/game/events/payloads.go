package events

import (
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

type PlayerJoined struct {
	Player types.PlayerID `json:"player"`
	Name   string         `json:"name"`
}

type PlayerLeft struct {
	Player types.PlayerID `json:"player"`
}

type PhaseChanged struct {
	Phase types.Phase `json:"phase"`
	Round int         `json:"round"`
}

type TurnAdvanced struct {
	Previous types.PlayerID `json:"previous"`
	Active   types.PlayerID `json:"active"`
	Round    int            `json:"round"`
}

type DiceRolled struct {
	Player types.PlayerID `json:"player"`
	First  int            `json:"first"`
	Second int            `json:"second"`
	Total  int            `json:"total"`
}

// ResourcesChanged carries the full resource balance of a player after a change.
type ResourcesChanged struct {
	Player    types.PlayerID         `json:"player"`
	Resources map[types.Resource]int `json:"resources"`
}

type SettlementBuilt struct {
	Player types.PlayerID `json:"player"`
	Node   int            `json:"node"`
	Free   bool           `json:"free"`
}

type SettlementUpgraded struct {
	Player types.PlayerID `json:"player"`
	Node   int            `json:"node"`
}

type StreetBuilt struct {
	Player types.PlayerID `json:"player"`
	Edge   int            `json:"edge"`
	Free   bool           `json:"free"`
}

type TileDiscovered struct {
	Tile    int           `json:"tile"`
	Terrain types.Terrain `json:"terrain"`
	Number  int           `json:"number"`
}

type TileBlocked struct {
	Tile int `json:"tile"`
}

type TileUnblocked struct {
	Tile int `json:"tile"`
}

type DiscardRequired struct {
	Player types.PlayerID `json:"player"`
	Count  int            `json:"count"`
}

type ResourceStolen struct {
	Thief    types.PlayerID `json:"thief"`
	Victim   types.PlayerID `json:"victim"`
	Resource types.Resource `json:"resource"`
}

type TradeProposed struct {
	Offer    *types.TradeOffer `json:"offer"`
	Replaced *uuid.UUID        `json:"replaced,omitempty"`
}

type TradeAccepted struct {
	Offer *types.TradeOffer `json:"offer"`
}

type TradesCleared struct {
	Count int `json:"count"`
}

// DevelopmentCardBought does not reveal the card drawn.
type DevelopmentCardBought struct {
	Player types.PlayerID `json:"player"`
}

type DevelopmentCardPlayed struct {
	Player types.PlayerID        `json:"player"`
	Card   types.DevelopmentCard `json:"card"`
}

// KnightsHanged lists the knights each opponent lost. Opponents who lost none are left out.
type KnightsHanged struct {
	Player types.PlayerID         `json:"player"`
	Hanged map[types.PlayerID]int `json:"hanged"`
}

type MonopolyDeclared struct {
	Player   types.PlayerID `json:"player"`
	Resource types.Resource `json:"resource"`
	Taken    int            `json:"taken"`
}

type GameOver struct {
	Winner        types.PlayerID `json:"winner"`
	VictoryPoints int            `json:"victory_points"`
}

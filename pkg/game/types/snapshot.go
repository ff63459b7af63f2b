package types

import "github.com/google/uuid"

// GameSnapshot is the full replicated view of a session. Peers mirror it read-only.
type GameSnapshot struct {
	SessionID       uuid.UUID        `json:"sessionID"`
	Sequence        uint64           `json:"sequence"`
	Timestamp       int64            `json:"timestamp"`
	Phase           Phase            `json:"phase"`
	Round           int              `json:"round"`
	ActivePlayer    PlayerID         `json:"activePlayer"`
	PlayerOrder     []PlayerID       `json:"playerOrder"`
	DiceThrown      bool             `json:"diceThrown"`
	LastRoll        [2]int           `json:"lastRoll"`
	RobberTile      int              `json:"robberTile"`
	RobberMustMove  bool             `json:"robberMustMove"`
	RobberCanSteal  bool             `json:"robberCanSteal"`
	PendingDiscards map[PlayerID]int `json:"pendingDiscards"`
	Trades          []*TradeOffer    `json:"trades"`
	Winner          PlayerID         `json:"winner"`
	Tiles           []TileSnapshot   `json:"tiles"`
	Nodes           []NodeSnapshot   `json:"nodes"`
	Edges           []EdgeSnapshot   `json:"edges"`
	Harbors         []HarborSnapshot `json:"harbors"`
	Players         []PlayerSnapshot `json:"players"`
}

type TileSnapshot struct {
	ID         int     `json:"id"`
	Terrain    Terrain `json:"terrain"`
	Number     int     `json:"number"`
	Discovered bool    `json:"discovered"`
	Blocked    bool    `json:"blocked"`
	Q          int     `json:"q"`
	R          int     `json:"r"`
	S          int     `json:"s"`
}

type NodeSnapshot struct {
	ID     int      `json:"id"`
	Owner  PlayerID `json:"owner"`
	Level  Level    `json:"level"`
	Harbor int      `json:"harbor"`
}

type EdgeSnapshot struct {
	ID    int      `json:"id"`
	Owner PlayerID `json:"owner"`
	Nodes [2]int   `json:"nodes"`
}

type HarborSnapshot struct {
	ID       int       `json:"id"`
	Resource *Resource `json:"resource,omitempty"`
	Nodes    [2]int    `json:"nodes"`
}

type PlayerSnapshot struct {
	ID        PlayerID         `json:"id"`
	Name      string           `json:"name"`
	Resources map[Resource]int `json:"resources"`
	// PlayableCards is only filled in for the player a snapshot is addressed to.
	PlayableCards    map[DevelopmentCard]int `json:"playableCards,omitempty"`
	DevelopmentCards int                     `json:"developmentCards"`
	BoughtCards      int                     `json:"boughtCards"`
	KnightsPlayed    int                     `json:"knightsPlayed"`
	VictoryPoints    int                     `json:"victoryPoints"`
	LongestRoad      int                     `json:"longestRoad"`
	HasLongestRoad   bool                    `json:"hasLongestRoad"`
	HasLargestArmy   bool                    `json:"hasLargestArmy"`
}

// Player returns the snapshot of a player, or nil when the player is not seated.
func (s *GameSnapshot) Player(id PlayerID) *PlayerSnapshot {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// RedactFor returns a copy of s for viewer. Only the viewer's playable cards
// are broken down by type; everyone else shows a count. Viewer 0 sees no
// player's cards.
func (s *GameSnapshot) RedactFor(viewer PlayerID) *GameSnapshot {
	out := *s
	if s.Players != nil {
		out.Players = make([]PlayerSnapshot, len(s.Players))
		for i, p := range s.Players {
			if p.ID != viewer {
				p.PlayableCards = nil
			}
			out.Players[i] = p
		}
	}
	return &out
}

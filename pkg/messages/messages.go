package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

const (
	// MessageBufferSize represents the maximum size of a message
	MessageBufferSize = 4096
)

type MessageType byte

// Message types
const (
	MessageTypeClientLogin MessageType = iota + 1
	MessageTypeClientStartGame
	MessageTypeClientRollDice
	MessageTypeClientBuildSettlement
	MessageTypeClientBuildStreet
	MessageTypeClientUpgradeToCity
	MessageTypeClientTradeWithBank
	MessageTypeClientProposeTrade
	MessageTypeClientAcceptTrade
	MessageTypeClientBuyDevelopmentCard
	MessageTypeClientPlayDevelopmentCard
	MessageTypeClientMoveRobber
	MessageTypeClientStealResource
	MessageTypeClientDiscardResource
	MessageTypeClientEndTurn
	MessageTypeClientPing
	MessageTypeServerLoginSuccess
	MessageTypeServerLoginFailure
	MessageTypeServerGameEvent
	MessageTypeServerGameSnapshot
	MessageTypeServerPong
)

var messageTypeNames = map[MessageType]string{
	MessageTypeClientLogin:               "client_login",
	MessageTypeClientStartGame:           "client_start_game",
	MessageTypeClientRollDice:            "client_roll_dice",
	MessageTypeClientBuildSettlement:     "client_build_settlement",
	MessageTypeClientBuildStreet:         "client_build_street",
	MessageTypeClientUpgradeToCity:       "client_upgrade_to_city",
	MessageTypeClientTradeWithBank:       "client_trade_with_bank",
	MessageTypeClientProposeTrade:        "client_propose_trade",
	MessageTypeClientAcceptTrade:         "client_accept_trade",
	MessageTypeClientBuyDevelopmentCard:  "client_buy_development_card",
	MessageTypeClientPlayDevelopmentCard: "client_play_development_card",
	MessageTypeClientMoveRobber:          "client_move_robber",
	MessageTypeClientStealResource:       "client_steal_resource",
	MessageTypeClientDiscardResource:     "client_discard_resource",
	MessageTypeClientEndTurn:             "client_end_turn",
	MessageTypeClientPing:                "client_ping",
	MessageTypeServerLoginSuccess:        "server_login_success",
	MessageTypeServerLoginFailure:        "server_login_failure",
	MessageTypeServerGameEvent:           "server_game_event",
	MessageTypeServerGameSnapshot:        "server_game_snapshot",
	MessageTypeServerPong:                "server_pong",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("message_type(%d)", byte(t))
}

// IsClientCommand reports whether t carries a game command from a client.
func (t MessageType) IsClientCommand() bool {
	return t >= MessageTypeClientStartGame && t <= MessageTypeClientEndTurn
}

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     MessageType     `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// NewMessage builds a message with the JSON encoding of payload.
func NewMessage(clientID uint32, t MessageType, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", t, err)
	}
	return &Message{
		ClientID: clientID,
		Type:     t,
		Payload:  b,
	}, nil
}

// DecodePayload unmarshals the message payload into v.
func (m *Message) DecodePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", m.Type, err)
	}
	return nil
}

type ClientLogin struct {
	IDToken string `json:"idToken"`
}

type ServerLoginSuccess struct {
	ClientID uint32 `json:"clientID"`
}

type ServerLoginFailure struct {
	Reason string `json:"reason"`
}

type ClientPing struct {
	Timestamp int64 `json:"timestamp"`
}

type ServerPong struct {
	ClientPingTimestamp int64 `json:"clientPingTimestamp"`
	ServerTimestamp     int64 `json:"serverTimestamp"`
}

// Command payloads carry an optional caller id. A non-zero Player must match
// the client id of the connection the message arrived on.

type ClientStartGame struct {
	Player types.PlayerID `json:"player,omitempty"`
}

type ClientRollDice struct {
	Player types.PlayerID `json:"player,omitempty"`
}

type ClientBuildSettlement struct {
	Player types.PlayerID `json:"player,omitempty"`
	Node   int            `json:"node"`
}

type ClientBuildStreet struct {
	Player types.PlayerID `json:"player,omitempty"`
	Edge   int            `json:"edge"`
}

type ClientUpgradeToCity struct {
	Player types.PlayerID `json:"player,omitempty"`
	Node   int            `json:"node"`
}

type ClientTradeWithBank struct {
	Player types.PlayerID `json:"player,omitempty"`
	Give   types.Resource `json:"give"`
	Get    types.Resource `json:"get"`
}

type ClientProposeTrade struct {
	Player   types.PlayerID         `json:"player,omitempty"`
	Receiver types.PlayerID         `json:"receiver"`
	Give     []types.ResourceAmount `json:"give"`
	Receive  []types.ResourceAmount `json:"receive"`
}

type ClientAcceptTrade struct {
	Player  types.PlayerID `json:"player,omitempty"`
	TradeID uuid.UUID      `json:"tradeID"`
}

type ClientBuyDevelopmentCard struct {
	Player types.PlayerID `json:"player,omitempty"`
}

type ClientPlayDevelopmentCard struct {
	Player    types.PlayerID        `json:"player,omitempty"`
	Card      types.DevelopmentCard `json:"card"`
	Resources []types.Resource      `json:"resources,omitempty"`
	Resource  types.Resource        `json:"resource"`
}

type ClientMoveRobber struct {
	Player types.PlayerID `json:"player,omitempty"`
	Tile   int            `json:"tile"`
}

type ClientStealResource struct {
	Player types.PlayerID `json:"player,omitempty"`
	Target types.PlayerID `json:"target"`
}

type ClientDiscardResource struct {
	Player   types.PlayerID `json:"player,omitempty"`
	Resource types.Resource `json:"resource"`
}

type ClientEndTurn struct {
	Player types.PlayerID `json:"player,omitempty"`
}

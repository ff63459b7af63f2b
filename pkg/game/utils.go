package game

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cbodonnell/settlers/pkg/game/rules"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/messages"
	"github.com/cbodonnell/settlers/pkg/repositories/models"
)

// ErrCallerMismatch is returned when a payload names a caller other than the
// client the message arrived from.
var ErrCallerMismatch = errors.New("caller does not match client")

// CommandFromMessage decodes a client command message. The caller of the
// command is the client id stamped on the message by the transport.
func CommandFromMessage(m *messages.Message) (rules.Command, error) {
	caller := types.PlayerID(m.ClientID)
	checkCaller := func(p types.PlayerID) error {
		if p != types.NoPlayer && p != caller {
			return fmt.Errorf("%w: payload names %d, client is %d", ErrCallerMismatch, p, caller)
		}
		return nil
	}

	switch m.Type {
	case messages.MessageTypeClientStartGame:
		payload := &messages.ClientStartGame{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.StartGame{Player: caller}, checkCaller(payload.Player)
	case messages.MessageTypeClientRollDice:
		payload := &messages.ClientRollDice{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.RollDice{Player: caller}, checkCaller(payload.Player)
	case messages.MessageTypeClientBuildSettlement:
		payload := &messages.ClientBuildSettlement{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.BuildSettlement{Player: caller, Node: payload.Node}, checkCaller(payload.Player)
	case messages.MessageTypeClientBuildStreet:
		payload := &messages.ClientBuildStreet{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.BuildStreet{Player: caller, Edge: payload.Edge}, checkCaller(payload.Player)
	case messages.MessageTypeClientUpgradeToCity:
		payload := &messages.ClientUpgradeToCity{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.UpgradeToCity{Player: caller, Node: payload.Node}, checkCaller(payload.Player)
	case messages.MessageTypeClientTradeWithBank:
		payload := &messages.ClientTradeWithBank{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.TradeWithBank{Player: caller, Give: payload.Give, Get: payload.Get}, checkCaller(payload.Player)
	case messages.MessageTypeClientProposeTrade:
		payload := &messages.ClientProposeTrade{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.ProposeTrade{
			Player:   caller,
			Receiver: payload.Receiver,
			Give:     payload.Give,
			Receive:  payload.Receive,
		}, checkCaller(payload.Player)
	case messages.MessageTypeClientAcceptTrade:
		payload := &messages.ClientAcceptTrade{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.AcceptTrade{Player: caller, TradeID: payload.TradeID}, checkCaller(payload.Player)
	case messages.MessageTypeClientBuyDevelopmentCard:
		payload := &messages.ClientBuyDevelopmentCard{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.BuyDevelopmentCard{Player: caller}, checkCaller(payload.Player)
	case messages.MessageTypeClientPlayDevelopmentCard:
		payload := &messages.ClientPlayDevelopmentCard{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.PlayDevelopmentCard{
			Player:    caller,
			Card:      payload.Card,
			Resources: payload.Resources,
			Resource:  payload.Resource,
		}, checkCaller(payload.Player)
	case messages.MessageTypeClientMoveRobber:
		payload := &messages.ClientMoveRobber{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.MoveRobber{Player: caller, Tile: payload.Tile}, checkCaller(payload.Player)
	case messages.MessageTypeClientStealResource:
		payload := &messages.ClientStealResource{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.StealResource{Player: caller, Target: payload.Target}, checkCaller(payload.Player)
	case messages.MessageTypeClientDiscardResource:
		payload := &messages.ClientDiscardResource{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.DiscardResource{Player: caller, Resource: payload.Resource}, checkCaller(payload.Player)
	case messages.MessageTypeClientEndTurn:
		payload := &messages.ClientEndTurn{}
		if err := m.DecodePayload(payload); err != nil {
			return nil, err
		}
		return rules.EndTurn{Player: caller}, checkCaller(payload.Player)
	}

	return nil, fmt.Errorf("unhandled message type: %s", m.Type)
}

// MatchResultFromSnapshot summarizes a finished session, best player first.
func MatchResultFromSnapshot(s *types.GameSnapshot, victoryPointsTarget int, finishedAt time.Time) *models.MatchResult {
	result := &models.MatchResult{
		SessionID:           s.SessionID,
		WinnerID:            uint32(s.Winner),
		Rounds:              s.Round,
		VictoryPointsTarget: victoryPointsTarget,
		FinishedAt:          finishedAt.UTC(),
		Standings:           make([]models.PlayerResult, 0, len(s.Players)),
	}

	for _, p := range s.Players {
		if p.ID == s.Winner {
			result.WinnerName = p.Name
		}
		result.Standings = append(result.Standings, models.PlayerResult{
			PlayerID:       uint32(p.ID),
			Name:           p.Name,
			VictoryPoints:  p.VictoryPoints,
			LongestRoad:    p.LongestRoad,
			KnightsPlayed:  p.KnightsPlayed,
			HasLongestRoad: p.HasLongestRoad,
			HasLargestArmy: p.HasLargestArmy,
		})
	}
	sort.SliceStable(result.Standings, func(i, j int) bool {
		return result.Standings[i].VictoryPoints > result.Standings[j].VictoryPoints
	})

	return result
}

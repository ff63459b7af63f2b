package rules

import (
	"fmt"

	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/dice"
	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/ledger"
	"github.com/cbodonnell/settlers/pkg/game/turn"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

// Command is a player action. Player is always the caller.
type Command interface {
	Caller() types.PlayerID
	validate(e *Engine) error
	apply(e *Engine)
}

type StartGame struct {
	Player types.PlayerID
}

type RollDice struct {
	Player types.PlayerID
}

type BuildSettlement struct {
	Player types.PlayerID
	Node   int
}

type BuildStreet struct {
	Player types.PlayerID
	Edge   int
}

type UpgradeToCity struct {
	Player types.PlayerID
	Node   int
}

type TradeWithBank struct {
	Player types.PlayerID
	Give   types.Resource
	Get    types.Resource
}

type ProposeTrade struct {
	Player   types.PlayerID
	Receiver types.PlayerID
	Give     []types.ResourceAmount
	Receive  []types.ResourceAmount
}

type AcceptTrade struct {
	Player  types.PlayerID
	TradeID uuid.UUID
}

type BuyDevelopmentCard struct {
	Player types.PlayerID
}

// PlayDevelopmentCard plays a card. Resources holds the picks of a year of
// plenty card and Resource the declaration of a monopoly card.
type PlayDevelopmentCard struct {
	Player    types.PlayerID
	Card      types.DevelopmentCard
	Resources []types.Resource
	Resource  types.Resource
}

type MoveRobber struct {
	Player types.PlayerID
	Tile   int
}

type StealResource struct {
	Player types.PlayerID
	Target types.PlayerID
}

type DiscardResource struct {
	Player   types.PlayerID
	Resource types.Resource
}

type EndTurn struct {
	Player types.PlayerID
}

func (c StartGame) Caller() types.PlayerID           { return c.Player }
func (c RollDice) Caller() types.PlayerID            { return c.Player }
func (c BuildSettlement) Caller() types.PlayerID     { return c.Player }
func (c BuildStreet) Caller() types.PlayerID         { return c.Player }
func (c UpgradeToCity) Caller() types.PlayerID       { return c.Player }
func (c TradeWithBank) Caller() types.PlayerID       { return c.Player }
func (c ProposeTrade) Caller() types.PlayerID        { return c.Player }
func (c AcceptTrade) Caller() types.PlayerID         { return c.Player }
func (c BuyDevelopmentCard) Caller() types.PlayerID  { return c.Player }
func (c PlayDevelopmentCard) Caller() types.PlayerID { return c.Player }
func (c MoveRobber) Caller() types.PlayerID          { return c.Player }
func (c StealResource) Caller() types.PlayerID       { return c.Player }
func (c DiscardResource) Caller() types.PlayerID     { return c.Player }
func (c EndTurn) Caller() types.PlayerID             { return c.Player }

// requireActive checks that the game is running and p holds the turn.
func (e *Engine) requireActive(p types.PlayerID) (*ledger.Ledger, error) {
	if e.turn.Finished() {
		return nil, ErrGameOver
	}
	l, err := e.ledger(p)
	if err != nil {
		return nil, err
	}
	if !e.turn.IsActive(p) {
		return nil, ErrNotActive
	}
	return l, nil
}

func (e *Engine) requirePlaying() error {
	if e.turn.Phase() != types.PhasePlaying {
		return ErrWrongPhase
	}
	return nil
}

// requireBuildTurn checks that p may spend resources right now.
func (e *Engine) requireBuildTurn(p types.PlayerID) (*ledger.Ledger, error) {
	l, err := e.requireActive(p)
	if err != nil {
		return nil, err
	}
	if e.turn.HasPendingDiscards() {
		return nil, ErrPendingDiscards
	}
	if e.turn.RobberPending() {
		return nil, ErrRobberPending
	}
	if e.turn.Phase() == types.PhasePlaying && !e.turn.DiceThrown() {
		return nil, ErrDiceNotThrown
	}
	return l, nil
}

func (c StartGame) validate(e *Engine) error {
	if e.turn.Phase() != types.PhaseWaiting {
		return ErrWrongPhase
	}
	host, ok := e.turn.Host()
	if !ok || host != c.Player {
		return ErrNotHost
	}
	if e.turn.PlayerCount() < constants.MinPlayers {
		return ErrNotEnoughPlayers
	}
	return nil
}

func (c StartGame) apply(e *Engine) {
	e.start()
}

func (c RollDice) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if _, err := e.requireActive(c.Player); err != nil {
		return err
	}
	if e.turn.DiceThrown() {
		return ErrDiceThrown
	}
	if e.turn.RobberPending() {
		return ErrRobberPending
	}
	return nil
}

func (c RollDice) apply(e *Engine) {
	roll := dice.RollTwo(e.diceSeed)
	e.diceSeed = e.rng.Int63()
	e.lastRoll = roll
	e.turn.SetDiceThrown()

	total := roll.Total()
	e.bus.Publish(events.TypeDiceRolled, events.Player(c.Player), events.DiceRolled{
		Player: c.Player,
		First:  roll.First,
		Second: roll.Second,
		Total:  total,
	})

	if total == 7 {
		for _, p := range e.turn.Order() {
			held := e.ledgers[p].Total()
			if held <= e.maxCardsBeforeDiscard {
				continue
			}
			e.turn.SetPendingDiscard(p, held/2)
			e.bus.Publish(events.TypeDiscardRequired, events.Player(p), events.DiscardRequired{Player: p, Count: held / 2})
		}
		e.turn.SetRobber(turn.RobberState{MustReposition: true})
		return
	}

	changed := make(map[types.PlayerID]bool)
	for _, n := range e.board.Nodes {
		l, ok := e.ledgers[n.Owner]
		if !n.Occupied() || !ok {
			continue
		}
		for _, tile := range n.Tiles {
			if tile.Number != total || tile.Blocked {
				continue
			}
			resource, ok := tile.Terrain.Resource()
			if !ok {
				continue
			}
			e.must(l.Add(resource, int(n.Level)))
			changed[n.Owner] = true
		}
	}
	for _, p := range e.turn.Order() {
		if changed[p] {
			e.publishResources(p)
		}
	}
}

func (c BuildSettlement) validate(e *Engine) error {
	l, err := e.requireBuildTurn(c.Player)
	if err != nil {
		return err
	}
	node, ok := e.board.Node(c.Node)
	if !ok {
		return ErrUnknownReference
	}
	phase := e.turn.Phase()
	if !e.board.CanPlaceSettlement(node, c.Player, phase) {
		return ErrCannotPlace
	}
	if phase == types.PhasePreparing && len(e.board.SettlementsOwnedBy(c.Player)) >= e.turn.Round() {
		return ErrPlacementLimit
	}
	if !l.CanAfford(types.BuildTypeSettlement) {
		return ErrCannotAfford
	}
	return nil
}

func (c BuildSettlement) apply(e *Engine) {
	node, _ := e.board.Node(c.Node)
	free, err := e.ledgers[c.Player].Charge(types.BuildTypeSettlement)
	e.must(err)
	e.must(e.board.Build(node, c.Player))

	e.bus.Publish(events.TypeSettlementBuilt, events.Node(node.ID), events.SettlementBuilt{
		Player: c.Player,
		Node:   node.ID,
		Free:   free,
	})
	if !free {
		e.publishResources(c.Player)
	}
	if e.turn.Phase() == types.PhasePlaying {
		for _, tile := range node.Tiles {
			e.discover(tile)
		}
	}
}

func (c BuildStreet) validate(e *Engine) error {
	l, err := e.requireBuildTurn(c.Player)
	if err != nil {
		return err
	}
	edge, ok := e.board.Edge(c.Edge)
	if !ok {
		return ErrUnknownReference
	}
	phase := e.turn.Phase()
	if !e.board.CanPlaceStreet(edge, c.Player, phase) {
		return ErrCannotPlace
	}
	if phase == types.PhasePreparing && len(e.board.StreetsOwnedBy(c.Player)) >= e.turn.Round() {
		return ErrPlacementLimit
	}
	if !l.CanAfford(types.BuildTypeStreet) {
		return ErrCannotAfford
	}
	return nil
}

func (c BuildStreet) apply(e *Engine) {
	edge, _ := e.board.Edge(c.Edge)
	free, err := e.ledgers[c.Player].Charge(types.BuildTypeStreet)
	e.must(err)
	e.must(e.board.SetStreetOwner(edge, c.Player))

	e.bus.Publish(events.TypeStreetBuilt, events.Edge(edge.ID), events.StreetBuilt{
		Player: c.Player,
		Edge:   edge.ID,
		Free:   free,
	})
	if !free {
		e.publishResources(c.Player)
	}
	if e.turn.Phase() == types.PhasePreparing {
		e.advanceTurn()
	}
}

func (c UpgradeToCity) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	l, err := e.requireBuildTurn(c.Player)
	if err != nil {
		return err
	}
	node, ok := e.board.Node(c.Node)
	if !ok {
		return ErrUnknownReference
	}
	if node.Owner != c.Player || node.Level != types.LevelSettlement {
		return ErrCannotPlace
	}
	if !l.CanAfford(types.BuildTypeCity) {
		return ErrCannotAfford
	}
	return nil
}

func (c UpgradeToCity) apply(e *Engine) {
	node, _ := e.board.Node(c.Node)
	_, err := e.ledgers[c.Player].Charge(types.BuildTypeCity)
	e.must(err)
	e.must(e.board.Upgrade(node, c.Player))

	e.bus.Publish(events.TypeSettlementUpgraded, events.Node(node.ID), events.SettlementUpgraded{
		Player: c.Player,
		Node:   node.ID,
	})
	e.publishResources(c.Player)
}

// TradeRatio returns how many units of give p has to pay the bank for one unit.
func (e *Engine) TradeRatio(p types.PlayerID, give types.Resource) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tradeRatio(p, give)
}

func (e *Engine) tradeRatio(p types.PlayerID, give types.Resource) int {
	ratio := constants.BankTradeRatio
	for _, h := range e.board.HarborsOwnedBy(p) {
		switch {
		case h.Generic():
			ratio = min(ratio, constants.GenericHarborTradeRatio)
		case *h.Resource == give:
			ratio = min(ratio, constants.ResourceHarborTradeRatio)
		}
	}
	return ratio
}

func (c TradeWithBank) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	l, err := e.requireBuildTurn(c.Player)
	if err != nil {
		return err
	}
	if !c.Give.Valid() || !c.Get.Valid() || c.Give == c.Get {
		return ErrInvalidResource
	}
	if l.Count(c.Give) < e.tradeRatio(c.Player, c.Give) {
		return ErrCannotAfford
	}
	return nil
}

func (c TradeWithBank) apply(e *Engine) {
	l := e.ledgers[c.Player]
	e.must(l.Remove(c.Give, e.tradeRatio(c.Player, c.Give)))
	e.must(l.Add(c.Get, 1))
	e.publishResources(c.Player)
}

// validAmounts accepts a non-empty list naming each resource at most once,
// with amounts in 1..MaxTradeAmount.
func validAmounts(amounts []types.ResourceAmount) bool {
	if len(amounts) == 0 {
		return false
	}
	var seen [types.NumResources]bool
	for _, a := range amounts {
		if !a.Resource.Valid() || a.Amount <= 0 || a.Amount > constants.MaxTradeAmount {
			return false
		}
		if seen[a.Resource] {
			return false
		}
		seen[a.Resource] = true
	}
	return true
}

func (c ProposeTrade) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if e.turn.Finished() {
		return ErrGameOver
	}
	if _, err := e.ledger(c.Player); err != nil {
		return err
	}
	if _, err := e.ledger(c.Receiver); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	if c.Receiver == c.Player {
		return ErrInvalidTrade
	}
	if !e.turn.IsActive(c.Player) && !e.turn.IsActive(c.Receiver) {
		return ErrNotActive
	}
	if !validAmounts(c.Give) || !validAmounts(c.Receive) {
		return ErrInvalidTrade
	}
	return nil
}

func (c ProposeTrade) apply(e *Engine) {
	stored, replaced := e.turn.UpsertTrade(&types.TradeOffer{
		Sender:   c.Player,
		Receiver: c.Receiver,
		Give:     c.Give,
		Receive:  c.Receive,
	})
	payload := events.TradeProposed{Offer: stored}
	if replaced != nil {
		payload.Replaced = &replaced.ID
	}
	e.bus.Publish(events.TypeTradeProposed, events.Trade(stored.ID), payload)
}

func (c AcceptTrade) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if e.turn.Finished() {
		return ErrGameOver
	}
	offer, ok := e.turn.Trade(c.TradeID)
	if !ok {
		return ErrUnknownReference
	}
	if offer.Receiver != c.Player {
		return ErrNotReceiver
	}
	sender, err := e.ledger(offer.Sender)
	if err != nil {
		return err
	}
	receiver, err := e.ledger(offer.Receiver)
	if err != nil {
		return err
	}
	if !sender.Has(offer.Give) || !receiver.Has(offer.Receive) {
		return ErrCannotAfford
	}
	return nil
}

func (c AcceptTrade) apply(e *Engine) {
	offer, _ := e.turn.Trade(c.TradeID)
	sender := e.ledgers[offer.Sender]
	receiver := e.ledgers[offer.Receiver]

	e.must(sender.RemoveAll(offer.Give))
	e.must(receiver.RemoveAll(offer.Receive))
	e.must(receiver.AddAll(offer.Give))
	e.must(sender.AddAll(offer.Receive))
	e.must(e.turn.RemoveTrade(offer.ID))

	e.bus.Publish(events.TypeTradeAccepted, events.Trade(offer.ID), events.TradeAccepted{Offer: offer})
	e.publishResources(offer.Sender)
	e.publishResources(offer.Receiver)
}

// cardWeights are the draw weights of each card kind, out of cardWeightTotal.
var cardWeights = []struct {
	card   types.DevelopmentCard
	weight int
}{
	{types.DevelopmentCardVictoryPoint, 20},
	{types.DevelopmentCardKnight, 48},
	{types.DevelopmentCardRoadBuilding, 8},
	{types.DevelopmentCardYearOfPlenty, 8},
	{types.DevelopmentCardMonopoly, 8},
	{types.DevelopmentCardHangedKnights, 8},
}

const cardWeightTotal = 100

func (e *Engine) drawCard() types.DevelopmentCard {
	n := e.rng.Intn(cardWeightTotal)
	for _, w := range cardWeights {
		if n < w.weight {
			return w.card
		}
		n -= w.weight
	}
	return types.DevelopmentCardKnight
}

func (c BuyDevelopmentCard) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	l, err := e.requireBuildTurn(c.Player)
	if err != nil {
		return err
	}
	if !l.Has(types.Cost(types.BuildTypeDevelopmentCard)) {
		return ErrCannotAfford
	}
	return nil
}

func (c BuyDevelopmentCard) apply(e *Engine) {
	l := e.ledgers[c.Player]
	e.must(l.RemoveAll(types.Cost(types.BuildTypeDevelopmentCard)))
	l.AddBoughtCard(e.drawCard())

	e.bus.Publish(events.TypeDevelopmentCardBought, events.Player(c.Player), events.DevelopmentCardBought{Player: c.Player})
	e.publishResources(c.Player)
}

func (c PlayDevelopmentCard) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	l, err := e.requireActive(c.Player)
	if err != nil {
		return err
	}
	if e.turn.HasPendingDiscards() {
		return ErrPendingDiscards
	}
	if e.turn.RobberPending() {
		return ErrRobberPending
	}
	if !l.HasPlayableCard(c.Card) {
		return ErrNoPlayableCard
	}
	switch c.Card {
	case types.DevelopmentCardYearOfPlenty:
		if len(c.Resources) != constants.YearOfPlentyResources {
			return ErrInvalidResource
		}
		for _, r := range c.Resources {
			if !r.Valid() {
				return ErrInvalidResource
			}
		}
	case types.DevelopmentCardMonopoly:
		if !c.Resource.Valid() {
			return ErrInvalidResource
		}
	}
	return nil
}

func (c PlayDevelopmentCard) apply(e *Engine) {
	l := e.ledgers[c.Player]
	e.must(l.RemovePlayableCard(c.Card))
	e.bus.Publish(events.TypeDevelopmentCardPlayed, events.Player(c.Player), events.DevelopmentCardPlayed{
		Player: c.Player,
		Card:   c.Card,
	})

	switch c.Card {
	case types.DevelopmentCardKnight:
		l.AddKnight()
		e.turn.SetRobber(turn.RobberState{MustReposition: true})
	case types.DevelopmentCardHangedKnights:
		// every opponent keeps at most one knight fewer than the caller
		limit := l.KnightsPlayed() - 1
		hanged := make(map[types.PlayerID]int)
		for _, p := range e.turn.Order() {
			if p == c.Player {
				continue
			}
			if n := e.ledgers[p].CapKnights(limit); n > 0 {
				hanged[p] = n
			}
		}
		e.bus.Publish(events.TypeKnightsHanged, events.Player(c.Player), events.KnightsHanged{
			Player: c.Player,
			Hanged: hanged,
		})
	case types.DevelopmentCardVictoryPoint:
		l.AddVictoryPoint()
	case types.DevelopmentCardRoadBuilding:
		l.GrantFreeBuilding(types.BuildTypeStreet, constants.RoadBuildingStreets)
	case types.DevelopmentCardYearOfPlenty:
		for _, r := range c.Resources {
			e.must(l.Add(r, 1))
		}
		e.publishResources(c.Player)
	case types.DevelopmentCardMonopoly:
		taken := 0
		var victims []types.PlayerID
		for _, p := range e.turn.Order() {
			if p == c.Player {
				continue
			}
			other := e.ledgers[p]
			n := other.Count(c.Resource)
			if n == 0 {
				continue
			}
			e.must(other.Remove(c.Resource, n))
			taken += n
			victims = append(victims, p)
		}
		e.must(l.Add(c.Resource, taken))
		e.bus.Publish(events.TypeMonopolyDeclared, events.Player(c.Player), events.MonopolyDeclared{
			Player:   c.Player,
			Resource: c.Resource,
			Taken:    taken,
		})
		for _, p := range victims {
			e.publishResources(p)
		}
		e.publishResources(c.Player)
	}
}

// stealTargets returns the opponents with a building on the robber tile and
// at least one resource card.
func (e *Engine) stealTargets(thief types.PlayerID) []types.PlayerID {
	seen := make(map[types.PlayerID]bool)
	var out []types.PlayerID
	for _, n := range e.board.TileNodes(e.board.Robber()) {
		if !n.Occupied() || n.Owner == thief || seen[n.Owner] {
			continue
		}
		l, ok := e.ledgers[n.Owner]
		if !ok || l.Total() == 0 {
			continue
		}
		seen[n.Owner] = true
		out = append(out, n.Owner)
	}
	return out
}

func (c MoveRobber) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if _, err := e.requireActive(c.Player); err != nil {
		return err
	}
	if !e.turn.Robber().MustReposition {
		return ErrRobberNotPending
	}
	if e.turn.HasPendingDiscards() {
		return ErrPendingDiscards
	}
	tile, ok := e.board.Tile(c.Tile)
	if !ok {
		return ErrUnknownReference
	}
	if !tile.Discovered || tile == e.board.Robber() {
		return ErrInvalidRobberTarget
	}
	return nil
}

func (c MoveRobber) apply(e *Engine) {
	tile, _ := e.board.Tile(c.Tile)
	previous := e.board.MoveRobber(tile)
	if previous != nil {
		e.bus.Publish(events.TypeTileUnblocked, events.Tile(previous.ID), events.TileUnblocked{Tile: previous.ID})
	}
	e.bus.Publish(events.TypeTileBlocked, events.Tile(tile.ID), events.TileBlocked{Tile: tile.ID})
	e.turn.SetRobber(turn.RobberState{CanSteal: len(e.stealTargets(c.Player)) > 0})
}

func (c StealResource) validate(e *Engine) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if _, err := e.requireActive(c.Player); err != nil {
		return err
	}
	if !e.turn.Robber().CanSteal {
		return ErrRobberNotPending
	}
	for _, p := range e.stealTargets(c.Player) {
		if p == c.Target {
			return nil
		}
	}
	return ErrInvalidRobberTarget
}

func (c StealResource) apply(e *Engine) {
	victim := e.ledgers[c.Target]
	var held []types.Resource
	for _, r := range types.AllResources {
		if victim.Count(r) > 0 {
			held = append(held, r)
		}
	}
	stolen := held[e.rng.Intn(len(held))]
	e.must(victim.Remove(stolen, 1))
	e.must(e.ledgers[c.Player].Add(stolen, 1))
	e.turn.SetRobber(turn.RobberState{})

	e.bus.Publish(events.TypeResourceStolen, events.Player(c.Target), events.ResourceStolen{
		Thief:    c.Player,
		Victim:   c.Target,
		Resource: stolen,
	})
	e.publishResources(c.Target)
	e.publishResources(c.Player)
}

func (c DiscardResource) validate(e *Engine) error {
	if e.turn.Finished() {
		return ErrGameOver
	}
	l, err := e.ledger(c.Player)
	if err != nil {
		return err
	}
	if e.turn.PendingDiscard(c.Player) == 0 {
		return ErrNoDiscardPending
	}
	if !c.Resource.Valid() {
		return ErrInvalidResource
	}
	if l.Count(c.Resource) < 1 {
		return ErrCannotAfford
	}
	return nil
}

func (c DiscardResource) apply(e *Engine) {
	e.must(e.ledgers[c.Player].Remove(c.Resource, 1))
	left := e.turn.PendingDiscard(c.Player) - 1
	e.turn.SetPendingDiscard(c.Player, left)

	e.bus.Publish(events.TypeDiscardRequired, events.Player(c.Player), events.DiscardRequired{Player: c.Player, Count: left})
	e.publishResources(c.Player)
}

func (c EndTurn) validate(e *Engine) error {
	if e.turn.Finished() {
		return ErrGameOver
	}
	if !e.turn.CanEndTurn(c.Player) {
		return ErrCannotEndTurn
	}
	return nil
}

func (c EndTurn) apply(e *Engine) {
	e.ledgers[c.Player].ConvertBoughtCards()
	e.advanceTurn()
}

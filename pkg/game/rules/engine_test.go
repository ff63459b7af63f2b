package rules

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_fullTableStartsPreparation(t *testing.T) {
	e := newTestEngine(t)
	rec := record(e)

	seat(t, e, 3)
	assert.Equal(t, types.PhaseWaiting, e.Phase())
	seat4 := types.PlayerID(4)
	require.NoError(t, e.AddPlayer(seat4, "player-4"))
	assert.Equal(t, types.PhasePreparing, e.Phase())
	assert.Equal(t, 1, e.turn.Round())
	assert.Equal(t, types.PlayerID(1), activePlayer(t, e))
	assert.Equal(t, 4, rec.count(events.TypePlayerJoined))
	assert.Equal(t, 1, rec.count(events.TypePhaseChanged))

	assert.Error(t, e.AddPlayer(5, "late"))

	for p := types.PlayerID(1); p <= 4; p++ {
		assert.Equal(t, 2, e.ledgers[p].FreeBuildings(types.BuildTypeSettlement))
		assert.Equal(t, 2, e.ledgers[p].FreeBuildings(types.BuildTypeStreet))
	}
}

func TestEngine_preparationSnakeOrder(t *testing.T) {
	e := newTestEngine(t)
	seat(t, e, 4)

	order := placeInitial(t, e)
	assert.Equal(t, []types.PlayerID{1, 2, 3, 4, 4, 3, 2, 1}, order)
	assert.Equal(t, types.PhasePlaying, e.Phase())
	assert.Equal(t, 3, e.turn.Round())
	assert.Equal(t, types.PlayerID(1), activePlayer(t, e))

	for p := types.PlayerID(1); p <= 4; p++ {
		assert.Len(t, e.board.SettlementsOwnedBy(p), 2)
		assert.Len(t, e.board.StreetsOwnedBy(p), 2)
		assert.Equal(t, 0, e.ledgers[p].FreeBuildings(types.BuildTypeSettlement))
		assert.Equal(t, 0, e.ledgers[p].FreeBuildings(types.BuildTypeStreet))
	}
}

func TestEngine_preparationRevealsTilesAndGrantsResources(t *testing.T) {
	e := newTestEngine(t)
	seat(t, e, 4)
	placeInitial(t, e)

	for p := types.PlayerID(1); p <= 4; p++ {
		want := make(map[types.Resource]int)
		for _, n := range e.board.SettlementsOwnedBy(p) {
			for _, tile := range n.Tiles {
				assert.True(t, tile.Discovered, "tile %d next to node %d", tile.ID, n.ID)
				if r, ok := tile.Terrain.Resource(); ok {
					want[r]++
				}
			}
		}
		got := hand(e, p)
		for _, r := range types.AllResources {
			assert.Equal(t, want[r], got[r], "player %d %s", p, r)
		}
	}
}

func TestEngine_preparationRules(t *testing.T) {
	e := newTestEngine(t)
	seat(t, e, 4)

	node := freeNode(t, e, 1)
	assert.False(t, e.Execute(BuildSettlement{Player: 2, Node: node.ID}), "not the active player")
	assert.False(t, e.Execute(BuildStreet{Player: 1, Edge: node.Streets[0].ID}), "street before settlement")
	assert.False(t, e.Execute(RollDice{Player: 1}), "no dice while preparing")
	assert.False(t, e.Execute(BuildSettlement{Player: 1, Node: len(e.board.Nodes)}), "unknown node")

	require.True(t, e.Execute(BuildSettlement{Player: 1, Node: node.ID}))
	other := freeNode(t, e, 1)
	assert.False(t, e.Execute(BuildSettlement{Player: 1, Node: other.ID}), "one settlement per round")

	for _, p := range []types.PlayerID{1, 2, 3, 4} {
		assert.False(t, e.board.CanPlaceSettlement(node, p, types.PhasePreparing))
		assert.False(t, e.board.CanPlaceSettlement(node, p, types.PhasePlaying))
	}
	assert.Equal(t, types.PlayerID(1), activePlayer(t, e), "only the street ends the turn")
}

func TestEngine_StartGame(t *testing.T) {
	e := newTestEngine(t)
	seat(t, e, 1)
	assert.False(t, e.Execute(StartGame{Player: 1}), "one player is not enough")

	seat2 := types.PlayerID(2)
	require.NoError(t, e.AddPlayer(seat2, "player-2"))
	assert.False(t, e.Execute(StartGame{Player: 2}), "only the host starts")
	assert.True(t, e.Execute(StartGame{Player: 1}))
	assert.Equal(t, types.PhasePreparing, e.Phase())
	assert.False(t, e.Execute(StartGame{Player: 1}), "already started")
}

func TestEngine_RollDice_production(t *testing.T) {
	e := playingEngine(t, 4)

	// roll the number of a producing tile next to player 1
	target := 0
	for _, n := range e.board.SettlementsOwnedBy(1) {
		for _, tile := range n.Tiles {
			if _, ok := tile.Terrain.Resource(); ok && !tile.Blocked {
				target = tile.Number
			}
		}
	}
	require.NotZero(t, target)

	before := make(map[types.PlayerID]map[types.Resource]int)
	want := make(map[types.PlayerID]map[types.Resource]int)
	for p := types.PlayerID(1); p <= 4; p++ {
		before[p] = hand(e, p)
		want[p] = make(map[types.Resource]int)
		for _, n := range e.board.SettlementsOwnedBy(p) {
			for _, tile := range n.Tiles {
				r, ok := tile.Terrain.Resource()
				if ok && tile.Number == target && !tile.Blocked {
					want[p][r] += int(n.Level)
				}
			}
		}
	}
	require.NotEmpty(t, want[1])

	total := roll(t, e, 1, func(total int) bool { return total == target })
	assert.Equal(t, target, total)
	assert.True(t, e.turn.DiceThrown())
	assert.False(t, e.Execute(RollDice{Player: 1}), "already rolled")

	for p := types.PlayerID(1); p <= 4; p++ {
		got := hand(e, p)
		for _, r := range types.AllResources {
			assert.Equal(t, before[p][r]+want[p][r], got[r], "player %d %s", p, r)
		}
	}
}

func TestEngine_RollDice_blockedTileProducesNothing(t *testing.T) {
	e := playingEngine(t, 2)

	node := e.board.SettlementsOwnedBy(1)[0]
	var tile = node.Tiles[0]
	for _, nt := range node.Tiles {
		if _, ok := nt.Terrain.Resource(); ok {
			tile = nt
		}
	}
	if _, ok := tile.Terrain.Resource(); !ok {
		t.Skip("settlement only touches the desert")
	}
	e.board.MoveRobber(tile)

	// the other player's settlements may share the number, so only count this tile
	before := hand(e, 1)
	roll(t, e, 1, func(total int) bool { return total == tile.Number })
	r, _ := tile.Terrain.Resource()
	gained := hand(e, 1)[r] - before[r]
	expected := 0
	for _, n := range e.board.SettlementsOwnedBy(1) {
		for _, nt := range n.Tiles {
			if nt != tile && !nt.Blocked && nt.Number == tile.Number {
				if nr, ok := nt.Terrain.Resource(); ok && nr == r {
					expected += int(n.Level)
				}
			}
		}
	}
	assert.Equal(t, expected, gained)
}

func TestEngine_sevenForcesDiscardAndRobber(t *testing.T) {
	e := playingEngine(t, 4)
	setHand(t, e, 1, map[types.Resource]int{types.ResourceWood: 9})
	rec := record(e)

	roll(t, e, 1, seven)
	assert.Equal(t, 4, e.turn.PendingDiscard(1))
	assert.True(t, e.turn.Robber().MustReposition)
	assert.Equal(t, 1, rec.count(events.TypeDiscardRequired))

	assert.False(t, e.Execute(EndTurn{Player: 1}), "discard pending")
	setHand(t, e, 2, map[types.Resource]int{types.ResourceOre: 1})
	target := -1
	for _, tile := range e.board.Tiles {
		if !tile.Discovered || tile == e.board.Robber() {
			continue
		}
		for _, n := range e.board.TileNodes(tile) {
			if n.Occupied() && n.Owner == 2 {
				target = tile.ID
			}
		}
		if target != -1 {
			break
		}
	}
	require.NotEqual(t, -1, target, "a tile next to player 2")
	assert.False(t, e.Execute(MoveRobber{Player: 1, Tile: target}), "discards come first")
	assert.False(t, e.Execute(DiscardResource{Player: 1, Resource: types.ResourceBrick}), "no brick held")
	assert.False(t, e.Execute(DiscardResource{Player: 2, Resource: types.ResourceWood}), "nothing to discard")

	for i := 0; i < 4; i++ {
		require.True(t, e.Execute(DiscardResource{Player: 1, Resource: types.ResourceWood}))
	}
	assert.Equal(t, 0, e.turn.PendingDiscard(1))
	assert.Equal(t, 5, e.ledgers[1].Count(types.ResourceWood))
	assert.False(t, e.Execute(DiscardResource{Player: 1, Resource: types.ResourceWood}))

	assert.False(t, e.Execute(EndTurn{Player: 1}), "robber must move")
	assert.False(t, e.Execute(MoveRobber{Player: 1, Tile: e.board.Robber().ID}), "must leave the current tile")
	assert.False(t, e.Execute(MoveRobber{Player: 2, Tile: target}), "not the active player")

	previous := e.board.Robber()
	require.True(t, e.Execute(MoveRobber{Player: 1, Tile: target}))
	assert.False(t, previous.Blocked)
	assert.True(t, e.board.Tiles[target].Blocked)
	assert.False(t, e.turn.Robber().MustReposition)

	require.True(t, e.turn.Robber().CanSteal)
	assert.False(t, e.Execute(EndTurn{Player: 1}), "steal pending")
	victims := e.stealTargets(1)
	require.Contains(t, victims, types.PlayerID(2))
	thiefBefore := e.ledgers[1].Total()
	victimBefore := e.ledgers[2].Total()

	assert.False(t, e.Execute(StealResource{Player: 1, Target: 1}))
	require.True(t, e.Execute(StealResource{Player: 1, Target: 2}))
	assert.Equal(t, thiefBefore+1, e.ledgers[1].Total())
	assert.Equal(t, victimBefore-1, e.ledgers[2].Total())
	assert.False(t, e.Execute(StealResource{Player: 1, Target: 2}), "one steal per robber move")

	assert.True(t, e.Execute(EndTurn{Player: 1}))
	assert.Equal(t, types.PlayerID(2), activePlayer(t, e))
}

func TestEngine_stealTargets(t *testing.T) {
	e := playingEngine(t, 2)
	tile := e.board.Robber()

	var corner = e.board.TileNodes(tile)[0]
	for _, n := range e.board.TileNodes(tile) {
		if !n.Occupied() {
			corner = n
			break
		}
	}
	if corner.Occupied() {
		t.Skip("every corner of the robber tile is taken")
	}
	require.NoError(t, e.board.Build(corner, 2))

	setHand(t, e, 1, nil)
	setHand(t, e, 2, nil)
	assert.Empty(t, e.stealTargets(1), "nothing to steal")
	setHand(t, e, 2, map[types.Resource]int{types.ResourceOre: 1})
	assert.Equal(t, []types.PlayerID{2}, e.stealTargets(1))
	assert.Empty(t, e.stealTargets(2), "no stealing from yourself")
}

func TestEngine_TradeWithBank(t *testing.T) {
	e := playingEngine(t, 4)
	require.Empty(t, e.board.HarborsOwnedBy(1))
	assert.False(t, e.Execute(TradeWithBank{Player: 1, Give: types.ResourceWood, Get: types.ResourceBrick}), "dice not thrown")
	roll(t, e, 1, notSeven)

	assert.Equal(t, 4, e.TradeRatio(1, types.ResourceWood))

	setHand(t, e, 1, map[types.Resource]int{types.ResourceWood: 3})
	assert.False(t, e.Execute(TradeWithBank{Player: 1, Give: types.ResourceWood, Get: types.ResourceBrick}))
	assert.Equal(t, map[types.Resource]int{types.ResourceWood: 3, types.ResourceBrick: 0, types.ResourceSheep: 0, types.ResourceWheat: 0, types.ResourceOre: 0}, hand(e, 1))

	setHand(t, e, 1, map[types.Resource]int{types.ResourceWood: 4})
	assert.False(t, e.Execute(TradeWithBank{Player: 1, Give: types.ResourceWood, Get: types.ResourceWood}), "same resource")
	assert.False(t, e.Execute(TradeWithBank{Player: 2, Give: types.ResourceWood, Get: types.ResourceBrick}), "not the active player")
	require.True(t, e.Execute(TradeWithBank{Player: 1, Give: types.ResourceWood, Get: types.ResourceBrick}))
	assert.Equal(t, 0, e.ledgers[1].Count(types.ResourceWood))
	assert.Equal(t, 1, e.ledgers[1].Count(types.ResourceBrick))
}

func TestEngine_tradeRatio(t *testing.T) {
	e := newTestEngine(t)

	var generic, specific = e.board.Harbors[0], e.board.Harbors[0]
	for _, h := range e.board.Harbors {
		if h.Generic() {
			generic = h
		} else {
			specific = h
		}
	}
	require.True(t, generic.Generic())
	require.False(t, specific.Generic())
	resource := *specific.Resource
	other := types.Resource((int(resource) + 1) % types.NumResources)

	require.NoError(t, e.board.Build(generic.Nodes[0], 1))
	require.NoError(t, e.board.Build(specific.Nodes[0], 2))

	assert.Equal(t, 3, e.tradeRatio(1, resource))
	assert.Equal(t, 3, e.tradeRatio(1, other))
	assert.Equal(t, 2, e.tradeRatio(2, resource))
	assert.Equal(t, 4, e.tradeRatio(2, other))
	assert.Equal(t, 4, e.tradeRatio(3, resource))

	require.NoError(t, e.board.Build(specific.Nodes[1], 1))
	assert.Equal(t, 2, e.tradeRatio(1, resource), "the better ratio wins")
}

func TestEngine_playerTrades(t *testing.T) {
	e := playingEngine(t, 3)
	wheat := []types.ResourceAmount{{Resource: types.ResourceWheat, Amount: 2}}
	ore := []types.ResourceAmount{{Resource: types.ResourceOre, Amount: 1}}
	brick := []types.ResourceAmount{{Resource: types.ResourceBrick, Amount: 1}}
	sheep := []types.ResourceAmount{{Resource: types.ResourceSheep, Amount: 1}}

	require.True(t, e.Execute(ProposeTrade{Player: 1, Receiver: 2, Give: wheat, Receive: ore}))
	first := e.turn.Trades()[0]
	require.True(t, e.Execute(ProposeTrade{Player: 1, Receiver: 2, Give: brick, Receive: sheep}))
	trades := e.turn.Trades()
	require.Len(t, trades, 1, "the second offer replaces the first")
	second := trades[0]
	assert.Equal(t, brick, second.Give)
	assert.NotEqual(t, first.ID, second.ID)

	tests := []struct {
		name string
		cmd  ProposeTrade
	}{
		{name: "self", cmd: ProposeTrade{Player: 1, Receiver: 1, Give: brick, Receive: sheep}},
		{name: "unknown receiver", cmd: ProposeTrade{Player: 1, Receiver: 9, Give: brick, Receive: sheep}},
		{name: "nobody active", cmd: ProposeTrade{Player: 2, Receiver: 3, Give: brick, Receive: sheep}},
		{name: "empty give", cmd: ProposeTrade{Player: 1, Receiver: 3, Receive: sheep}},
		{name: "zero amount", cmd: ProposeTrade{Player: 1, Receiver: 3, Give: []types.ResourceAmount{{Resource: types.ResourceOre}}, Receive: sheep}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, e.Execute(tt.cmd))
		})
	}
	assert.Len(t, e.turn.Trades(), 1)

	setHand(t, e, 1, map[types.Resource]int{types.ResourceBrick: 1})
	setHand(t, e, 2, nil)
	assert.False(t, e.Execute(AcceptTrade{Player: 2, TradeID: second.ID}), "receiver cannot pay")

	setHand(t, e, 2, map[types.Resource]int{types.ResourceSheep: 1})
	assert.False(t, e.Execute(AcceptTrade{Player: 2, TradeID: first.ID}), "replaced offer")
	assert.False(t, e.Execute(AcceptTrade{Player: 3, TradeID: second.ID}), "not the receiver")
	assert.False(t, e.Execute(AcceptTrade{Player: 1, TradeID: second.ID}), "sender cannot accept")

	require.True(t, e.Execute(AcceptTrade{Player: 2, TradeID: second.ID}))
	assert.Equal(t, 0, e.ledgers[1].Count(types.ResourceBrick))
	assert.Equal(t, 1, e.ledgers[1].Count(types.ResourceSheep))
	assert.Equal(t, 1, e.ledgers[2].Count(types.ResourceBrick))
	assert.Equal(t, 0, e.ledgers[2].Count(types.ResourceSheep))
	assert.Empty(t, e.turn.Trades())
	assert.False(t, e.Execute(AcceptTrade{Player: 2, TradeID: second.ID}), "already accepted")
}

func TestEngine_playerTradesRejectOverflowingAmounts(t *testing.T) {
	e := playingEngine(t, 2)
	setHand(t, e, 1, map[types.Resource]int{types.ResourceSheep: 2, types.ResourceWood: 1})
	setHand(t, e, 2, map[types.Resource]int{types.ResourceSheep: 2, types.ResourceWood: 1})
	before1, before2 := hand(e, 1), hand(e, 2)

	huge := []types.ResourceAmount{{Resource: types.ResourceWood, Amount: math.MaxInt}}
	hugeTwice := []types.ResourceAmount{
		{Resource: types.ResourceWood, Amount: math.MaxInt},
		{Resource: types.ResourceWood, Amount: math.MaxInt},
	}
	twice := []types.ResourceAmount{
		{Resource: types.ResourceWood, Amount: 1},
		{Resource: types.ResourceWood, Amount: 1},
	}
	sheep := []types.ResourceAmount{{Resource: types.ResourceSheep, Amount: 1}}

	tests := []struct {
		name string
		cmd  ProposeTrade
	}{
		{name: "huge give", cmd: ProposeTrade{Player: 2, Receiver: 1, Give: huge, Receive: sheep}},
		{name: "wrapping give", cmd: ProposeTrade{Player: 2, Receiver: 1, Give: hugeTwice, Receive: sheep}},
		{name: "duplicate give", cmd: ProposeTrade{Player: 2, Receiver: 1, Give: twice, Receive: sheep}},
		{name: "huge receive", cmd: ProposeTrade{Player: 1, Receiver: 2, Give: sheep, Receive: huge}},
		{name: "wrapping receive", cmd: ProposeTrade{Player: 1, Receiver: 2, Give: sheep, Receive: hugeTwice}},
		{name: "duplicate receive", cmd: ProposeTrade{Player: 1, Receiver: 2, Give: sheep, Receive: twice}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, e.Execute(tt.cmd))
		})
	}
	require.Empty(t, e.turn.Trades())
	assert.False(t, e.Execute(AcceptTrade{Player: 1}))
	assert.Equal(t, before1, hand(e, 1))
	assert.Equal(t, before2, hand(e, 2))
}

func TestEngine_tradesClearOnEndTurn(t *testing.T) {
	e := playingEngine(t, 2)
	rec := record(e)
	require.True(t, e.Execute(ProposeTrade{
		Player:   2,
		Receiver: 1,
		Give:     []types.ResourceAmount{{Resource: types.ResourceOre, Amount: 1}},
		Receive:  []types.ResourceAmount{{Resource: types.ResourceWood, Amount: 1}},
	}), "the receiver is active")
	roll(t, e, 1, notSeven)
	require.True(t, e.Execute(EndTurn{Player: 1}))
	assert.Empty(t, e.turn.Trades())
	assert.Equal(t, 1, rec.count(events.TypeTradesCleared))
}

func TestEngine_builds(t *testing.T) {
	e := playingEngine(t, 2)
	roll(t, e, 1, notSeven)

	node := e.board.SettlementsOwnedBy(1)[0]
	setHand(t, e, 1, nil)
	assert.False(t, e.Execute(UpgradeToCity{Player: 1, Node: node.ID}), "cannot afford")

	setHand(t, e, 1, map[types.Resource]int{types.ResourceWheat: 2, types.ResourceOre: 3})
	assert.False(t, e.Execute(UpgradeToCity{Player: 2, Node: node.ID}), "not the active player")
	require.True(t, e.Execute(UpgradeToCity{Player: 1, Node: node.ID}))
	assert.Equal(t, types.LevelCity, node.Level)
	assert.Equal(t, 0, e.ledgers[1].Total())

	setHand(t, e, 1, map[types.Resource]int{types.ResourceWheat: 2, types.ResourceOre: 3})
	assert.False(t, e.Execute(UpgradeToCity{Player: 1, Node: node.ID}), "already a city")

	var street = -1
	for _, edge := range e.board.Edges {
		if e.board.CanPlaceStreet(edge, 1, types.PhasePlaying) {
			street = edge.ID
			break
		}
	}
	require.NotEqual(t, -1, street)
	setHand(t, e, 1, nil)
	assert.False(t, e.Execute(BuildStreet{Player: 1, Edge: street}), "cannot afford")
	setHand(t, e, 1, map[types.Resource]int{types.ResourceWood: 1, types.ResourceBrick: 1})
	require.True(t, e.Execute(BuildStreet{Player: 1, Edge: street}))
	assert.Equal(t, types.PlayerID(1), e.board.Edges[street].Owner)
	assert.Equal(t, 0, e.ledgers[1].Total())
	assert.Equal(t, types.PlayerID(1), activePlayer(t, e), "streets do not end the turn while playing")

	assert.False(t, e.Execute(BuildSettlement{Player: 1, Node: node.ID}), "occupied")
}

func TestEngine_EndTurn(t *testing.T) {
	e := playingEngine(t, 3)
	rec := record(e)

	assert.False(t, e.Execute(EndTurn{Player: 1}), "dice not thrown")
	assert.False(t, e.Execute(EndTurn{Player: 1}), "still rejected")
	roll(t, e, 1, notSeven)
	assert.False(t, e.Execute(EndTurn{Player: 2}), "not the active player")
	require.True(t, e.Execute(EndTurn{Player: 1}))
	assert.Equal(t, types.PlayerID(2), activePlayer(t, e))
	assert.False(t, e.turn.DiceThrown())

	roll(t, e, 2, notSeven)
	require.True(t, e.Execute(EndTurn{Player: 2}))
	roll(t, e, 3, notSeven)
	require.True(t, e.Execute(EndTurn{Player: 3}))
	assert.Equal(t, types.PlayerID(1), activePlayer(t, e))
	assert.Equal(t, 4, e.turn.Round())
	assert.Equal(t, 3, rec.count(events.TypeTurnAdvanced))
}

func TestEngine_rejectedCommandsChangeNothing(t *testing.T) {
	e := playingEngine(t, 3)
	rec := record(e)
	before := stableSnapshot(e)

	cmds := []Command{
		EndTurn{Player: 1},
		RollDice{Player: 2},
		BuildSettlement{Player: 1, Node: 0},
		BuildStreet{Player: 2, Edge: 0},
		MoveRobber{Player: 1, Tile: 0},
		StealResource{Player: 1, Target: 2},
		DiscardResource{Player: 3, Resource: types.ResourceOre},
		AcceptTrade{Player: 2},
		PlayDevelopmentCard{Player: 1, Card: types.DevelopmentCardKnight},
		StartGame{Player: 1},
	}
	for _, cmd := range cmds {
		for i := 0; i < 2; i++ {
			assert.False(t, e.Execute(cmd), "%T attempt %d", cmd, i)
		}
	}
	assert.Equal(t, before, stableSnapshot(e))
	assert.Empty(t, rec.events)
}

func TestEngine_RemovePlayer(t *testing.T) {
	e := playingEngine(t, 3)
	roll(t, e, 1, notSeven)
	require.True(t, e.Execute(ProposeTrade{
		Player:   1,
		Receiver: 2,
		Give:     []types.ResourceAmount{{Resource: types.ResourceOre, Amount: 1}},
		Receive:  []types.ResourceAmount{{Resource: types.ResourceWood, Amount: 1}},
	}))
	rec := record(e)
	pieces := len(e.board.SettlementsOwnedBy(1))

	require.NoError(t, e.RemovePlayer(1))
	assert.Equal(t, types.PlayerID(2), activePlayer(t, e))
	assert.False(t, e.turn.DiceThrown())
	assert.Empty(t, e.turn.Trades())
	assert.Len(t, e.board.SettlementsOwnedBy(1), pieces, "pieces stay on the board")
	assert.Equal(t, []events.Type{events.TypePlayerLeft, events.TypeTurnAdvanced}, rec.kinds())

	assert.False(t, e.Execute(RollDice{Player: 1}), "removed players cannot act")
	assert.True(t, e.Execute(RollDice{Player: 2}))

	require.NoError(t, e.RemovePlayer(3))
	assert.Equal(t, types.PlayerID(2), activePlayer(t, e))
	assert.True(t, e.turn.DiceThrown(), "the active player keeps the turn")
	assert.Error(t, e.RemovePlayer(3))
}

func TestEngine_gameOver(t *testing.T) {
	e := playingEngine(t, 2, func(o *NewEngineOptions) { o.VictoryPointsTarget = 3 })
	rec := record(e)
	l := e.ledgers[1]
	l.AddBoughtCard(types.DevelopmentCardVictoryPoint)
	l.ConvertBoughtCards()

	require.True(t, e.Execute(PlayDevelopmentCard{Player: 1, Card: types.DevelopmentCardVictoryPoint}))
	winner, ok := e.Winner()
	assert.True(t, ok)
	assert.Equal(t, types.PlayerID(1), winner)
	assert.Equal(t, 1, rec.count(events.TypeGameOver))
	assert.Equal(t, types.PlayerID(1), e.Snapshot().Winner)

	assert.False(t, e.Execute(RollDice{Player: 1}))
	assert.False(t, e.Execute(ProposeTrade{
		Player:   1,
		Receiver: 2,
		Give:     []types.ResourceAmount{{Resource: types.ResourceOre, Amount: 1}},
		Receive:  []types.ResourceAmount{{Resource: types.ResourceWood, Amount: 1}},
	}))
	assert.Equal(t, 1, rec.count(events.TypeGameOver))
}

func TestEngine_Snapshot(t *testing.T) {
	e := playingEngine(t, 2)
	s := e.Snapshot()

	assert.Equal(t, e.SessionID(), s.SessionID)
	assert.Equal(t, e.Events().Sequence(), s.Sequence)
	assert.Equal(t, types.PhasePlaying, s.Phase)
	assert.Equal(t, types.PlayerID(1), s.ActivePlayer)
	assert.Equal(t, []types.PlayerID{1, 2}, s.PlayerOrder)
	assert.Len(t, s.Tiles, 19)
	assert.Len(t, s.Nodes, 54)
	assert.Len(t, s.Edges, 72)
	assert.Len(t, s.Harbors, 9)
	assert.Equal(t, e.board.Robber().ID, s.RobberTile)

	require.Len(t, s.Players, 2)
	p1 := s.Player(1)
	require.NotNil(t, p1)
	assert.Equal(t, "player-1", p1.Name)
	assert.Equal(t, 2, p1.VictoryPoints)
	assert.Equal(t, hand(e, 1), p1.Resources)
	assert.Nil(t, s.Player(3))

	owned := 0
	for _, n := range s.Nodes {
		if n.Owner == 1 {
			owned++
			assert.Equal(t, types.LevelSettlement, n.Level)
		}
	}
	assert.Equal(t, 2, owned)
}

func TestEngine_SnapshotRedactFor(t *testing.T) {
	e := playingEngine(t, 2)
	givePlayable(e, 1, types.DevelopmentCardKnight)
	givePlayable(e, 1, types.DevelopmentCardMonopoly)
	givePlayable(e, 2, types.DevelopmentCardVictoryPoint)
	s := e.Snapshot()

	tests := []struct {
		name   string
		viewer types.PlayerID
		shown  map[types.PlayerID]bool
	}{
		{name: "player 1", viewer: 1, shown: map[types.PlayerID]bool{1: true}},
		{name: "player 2", viewer: 2, shown: map[types.PlayerID]bool{2: true}},
		{name: "public", viewer: 0, shown: map[types.PlayerID]bool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.RedactFor(tt.viewer)
			require.Len(t, got.Players, 2)
			assert.Equal(t, 2, got.Player(1).DevelopmentCards)
			assert.Equal(t, 1, got.Player(2).DevelopmentCards)
			for _, p := range got.Players {
				if tt.shown[p.ID] {
					assert.Equal(t, s.Player(p.ID).PlayableCards, p.PlayableCards)
				} else {
					assert.Nil(t, p.PlayableCards)
				}
			}
		})
	}
	assert.NotNil(t, s.Player(1).PlayableCards, "the source snapshot is left untouched")
}

// TestEngine_randomCommands drives the engine with arbitrary commands and checks
// that balances never go negative and that settlement owners never change.
func TestEngine_randomCommands(t *testing.T) {
	e := newTestEngine(t, func(o *NewEngineOptions) { o.VictoryPointsTarget = 1000 })
	seat(t, e, 4)
	rng := rand.New(rand.NewSource(99))
	owners := make(map[int]types.PlayerID)

	randomResource := func() types.Resource {
		return types.Resource(rng.Intn(types.NumResources))
	}
	randomAmounts := func() []types.ResourceAmount {
		return []types.ResourceAmount{{Resource: randomResource(), Amount: rng.Intn(3)}}
	}

	for step := 0; step < 3000; step++ {
		p := types.PlayerID(rng.Intn(4) + 1)
		if rng.Intn(20) == 0 {
			for _, r := range types.AllResources {
				require.NoError(t, e.ledgers[p].Add(r, 1))
			}
		}

		var cmd Command
		switch rng.Intn(14) {
		case 0:
			cmd = RollDice{Player: p}
		case 1:
			cmd = BuildSettlement{Player: p, Node: rng.Intn(len(e.board.Nodes))}
		case 2:
			cmd = BuildStreet{Player: p, Edge: rng.Intn(len(e.board.Edges))}
		case 3:
			cmd = UpgradeToCity{Player: p, Node: rng.Intn(len(e.board.Nodes))}
		case 4:
			cmd = TradeWithBank{Player: p, Give: randomResource(), Get: randomResource()}
		case 5:
			cmd = ProposeTrade{Player: p, Receiver: types.PlayerID(rng.Intn(4) + 1), Give: randomAmounts(), Receive: randomAmounts()}
		case 6:
			if trades := e.turn.Trades(); len(trades) > 0 {
				cmd = AcceptTrade{Player: p, TradeID: trades[rng.Intn(len(trades))].ID}
			} else {
				cmd = EndTurn{Player: p}
			}
		case 7:
			cmd = BuyDevelopmentCard{Player: p}
		case 8:
			cmd = PlayDevelopmentCard{
				Player:    p,
				Card:      types.DevelopmentCard(rng.Intn(types.NumDevelopmentCards)),
				Resources: []types.Resource{randomResource(), randomResource()},
				Resource:  randomResource(),
			}
		case 9:
			cmd = MoveRobber{Player: p, Tile: rng.Intn(len(e.board.Tiles))}
		case 10:
			cmd = StealResource{Player: p, Target: types.PlayerID(rng.Intn(4) + 1)}
		case 11:
			cmd = DiscardResource{Player: p, Resource: randomResource()}
		default:
			cmd = EndTurn{Player: p}
		}
		e.Execute(cmd)

		for q, l := range e.ledgers {
			for _, r := range types.AllResources {
				require.GreaterOrEqual(t, l.Count(r), 0, "player %d %s after %T", q, r, cmd)
			}
		}
		for _, n := range e.board.Nodes {
			if !n.Occupied() {
				continue
			}
			if owner, ok := owners[n.ID]; ok {
				require.Equal(t, owner, n.Owner, "node %d changed owner", n.ID)
			}
			owners[n.ID] = n.Owner
		}
	}
	assert.NotEmpty(t, owners)
}

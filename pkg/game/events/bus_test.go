package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var global, dice, tile []Event
	bus.Subscribe(func(e Event) { global = append(global, e) })
	bus.SubscribeType(TypeDiceRolled, func(e Event) { dice = append(dice, e) })
	bus.SubscribeEntity(Tile(3), func(e Event) { tile = append(tile, e) })

	bus.Publish(TypeDiceRolled, Player(1), DiceRolled{Player: 1, First: 3, Second: 4, Total: 7})
	bus.Publish(TypeTileBlocked, Tile(3), TileBlocked{Tile: 3})
	bus.Publish(TypeTileBlocked, Tile(4), TileBlocked{Tile: 4})

	require.Len(t, global, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{global[0].Seq, global[1].Seq, global[2].Seq})
	require.Len(t, dice, 1)
	assert.Equal(t, DiceRolled{Player: 1, First: 3, Second: 4, Total: 7}, dice[0].Payload)
	require.Len(t, tile, 1)
	assert.Equal(t, uint64(2), tile[0].Seq)
	assert.Equal(t, uint64(3), bus.Sequence())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	unsubscribe := bus.SubscribeType(TypeGameOver, func(Event) { calls++ })
	other := 0
	bus.SubscribeType(TypeGameOver, func(Event) { other++ })

	bus.Publish(TypeGameOver, Session(), GameOver{Winner: 1})
	unsubscribe()
	unsubscribe()
	bus.Publish(TypeGameOver, Session(), GameOver{Winner: 1})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestEvent_json(t *testing.T) {
	e := Event{
		Seq:     7,
		Type:    TypeStreetBuilt,
		Entity:  Edge(12),
		Payload: StreetBuilt{Player: 2, Edge: 12},
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"seq": 7,
		"type": "street_built",
		"entity": {"kind": "edge", "id": "12"},
		"payload": {"player": 2, "edge": 12, "free": false}
	}`, string(b))

	var decoded struct {
		Type Type `json:"type"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, TypeStreetBuilt, decoded.Type)
}

func TestType_String(t *testing.T) {
	assert.Len(t, typeNames, int(TypeGameOver)+1)
	assert.Equal(t, "monopoly_declared", TypeMonopolyDeclared.String())
	assert.Equal(t, "unknown", Type(200).String())
}

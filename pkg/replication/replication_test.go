package replication

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannels(t *testing.T) {
	id := uuid.MustParse("7b0c4d52-5f3e-4a8b-9e51-2d7f8f8c1a10")
	assert.Equal(t, "settlers:7b0c4d52-5f3e-4a8b-9e51-2d7f8f8c1a10:events", EventsChannel(id))
	assert.Equal(t, "settlers:7b0c4d52-5f3e-4a8b-9e51-2d7f8f8c1a10:snapshot", SnapshotChannel(id))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	ctx := context.Background()
	assert.NoError(t, p.PublishEvent(ctx, uuid.New(), events.Event{Seq: 1}))
	assert.NoError(t, p.PublishSnapshot(ctx, &types.GameSnapshot{}))
	assert.NoError(t, p.Close())
}

func TestFollower_apply(t *testing.T) {
	m := mirror.New()
	f := NewFollower(nil, m)
	session := uuid.New()

	encode := func(seq uint64, round int) string {
		b, err := json.Marshal(&types.GameSnapshot{SessionID: session, Sequence: seq, Round: round})
		require.NoError(t, err)
		return string(b)
	}

	require.NoError(t, f.apply(encode(4, 2)))
	require.NoError(t, f.apply(encode(3, 1)))
	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, latest.Round, "stale snapshots are ignored")

	assert.Error(t, f.apply("{"))
}

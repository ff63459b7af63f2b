// Package replication fans session events and snapshots out to other
// processes, which keep a read-only mirror of the session.
package replication

import (
	"context"
	"fmt"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/google/uuid"
)

// ChannelPrefix prefixes every pub/sub channel name
const ChannelPrefix = "settlers"

type Publisher interface {
	PublishEvent(ctx context.Context, sessionID uuid.UUID, event events.Event) error
	PublishSnapshot(ctx context.Context, snapshot *types.GameSnapshot) error
	Close() error
}

// EventsChannel is the channel carrying the events of a session
func EventsChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:events", ChannelPrefix, sessionID)
}

// SnapshotChannel is the channel carrying the snapshots of a session
func SnapshotChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:snapshot", ChannelPrefix, sessionID)
}

// SnapshotPattern matches the snapshot channel of every session
const SnapshotPattern = ChannelPrefix + ":*:snapshot"

var _ Publisher = NoopPublisher{}

// NoopPublisher drops everything. It is used when replication is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(ctx context.Context, sessionID uuid.UUID, event events.Event) error {
	return nil
}

func (NoopPublisher) PublishSnapshot(ctx context.Context, snapshot *types.GameSnapshot) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

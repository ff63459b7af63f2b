package types

// ConnectPlayerEvent is queued for the game loop when an authenticated client connects.
type ConnectPlayerEvent struct {
	ClientID uint32
	UserID   string
	Name     string
}

// DisconnectPlayerEvent is queued for the game loop when a client goes away.
type DisconnectPlayerEvent struct {
	ClientID uint32
}

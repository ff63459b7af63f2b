package types

import "github.com/google/uuid"

// TradeOffer is a pending player-to-player trade. The sender pays Give and the
// receiver pays Receive when the receiver accepts.
type TradeOffer struct {
	ID       uuid.UUID        `json:"id"`
	Sender   PlayerID         `json:"sender"`
	Receiver PlayerID         `json:"receiver"`
	Give     []ResourceAmount `json:"give"`
	Receive  []ResourceAmount `json:"receive"`
}

// Clone returns a deep copy of the offer.
func (t *TradeOffer) Clone() *TradeOffer {
	out := &TradeOffer{
		ID:       t.ID,
		Sender:   t.Sender,
		Receiver: t.Receiver,
		Give:     make([]ResourceAmount, len(t.Give)),
		Receive:  make([]ResourceAmount, len(t.Receive)),
	}
	copy(out.Give, t.Give)
	copy(out.Receive, t.Receive)
	return out
}

// Involves reports whether the player is either side of the offer.
func (t *TradeOffer) Involves(player PlayerID) bool {
	return t.Sender == player || t.Receiver == player
}

// Package ledger tracks what a single player holds: resource cards, development
// cards, free building entitlements, knights played and bonus victory points.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/cbodonnell/settlers/pkg/game/types"
)

var (
	// ErrInsufficientResources is returned when removing more than the balance.
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrNoSuchCard is returned when removing a development card the player cannot play.
	ErrNoSuchCard = errors.New("no playable card of that type")
	// ErrInvalidAmount is returned for negative amounts or unknown resources.
	ErrInvalidAmount = errors.New("invalid amount")
)

type Ledger struct {
	resources     [types.NumResources]int
	playable      [types.NumDevelopmentCards]int
	bought        [types.NumDevelopmentCards]int
	freeBuildings map[types.BuildType]int
	knights       int
	bonusPoints   int
}

func New() *Ledger {
	return &Ledger{
		freeBuildings: make(map[types.BuildType]int),
	}
}

// Count returns the balance of one resource.
func (l *Ledger) Count(r types.Resource) int {
	if !r.Valid() {
		return 0
	}
	return l.resources[r]
}

// Total returns the number of resource cards held.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.resources {
		total += n
	}
	return total
}

// Resources returns a copy of every balance indexed by resource.
func (l *Ledger) Resources() [types.NumResources]int {
	return l.resources
}

// Has reports whether every cost can be paid at once. Repeated resources add up.
// Each cost is checked against what is left after the previous ones, so the
// check never sums amounts.
func (l *Ledger) Has(costs []types.ResourceAmount) bool {
	left := l.resources
	for _, c := range costs {
		if !c.Resource.Valid() || c.Amount < 0 || left[c.Resource] < c.Amount {
			return false
		}
		left[c.Resource] -= c.Amount
	}
	return true
}

func (l *Ledger) Add(r types.Resource, amount int) error {
	if !r.Valid() || amount < 0 || l.resources[r] > math.MaxInt-amount {
		return ErrInvalidAmount
	}
	l.resources[r] += amount
	return nil
}

func (l *Ledger) Remove(r types.Resource, amount int) error {
	if !r.Valid() || amount < 0 {
		return ErrInvalidAmount
	}
	if l.resources[r] < amount {
		return fmt.Errorf("remove %d %s from %d: %w", amount, r, l.resources[r], ErrInsufficientResources)
	}
	l.resources[r] -= amount
	return nil
}

// RemoveAll removes every cost, or nothing when any cost cannot be paid.
func (l *Ledger) RemoveAll(costs []types.ResourceAmount) error {
	if !l.Has(costs) {
		return ErrInsufficientResources
	}
	for _, c := range costs {
		l.resources[c.Resource] -= c.Amount
	}
	return nil
}

// AddAll adds every amount, or nothing when any amount is invalid or a
// balance would overflow.
func (l *Ledger) AddAll(amounts []types.ResourceAmount) error {
	next := l.resources
	for _, a := range amounts {
		if !a.Resource.Valid() || a.Amount < 0 || next[a.Resource] > math.MaxInt-a.Amount {
			return ErrInvalidAmount
		}
		next[a.Resource] += a.Amount
	}
	l.resources = next
	return nil
}

func (l *Ledger) HasFreeBuilding(b types.BuildType) bool {
	return l.freeBuildings[b] > 0
}

func (l *Ledger) FreeBuildings(b types.BuildType) int {
	return l.freeBuildings[b]
}

func (l *Ledger) GrantFreeBuilding(b types.BuildType, n int) {
	l.freeBuildings[b] += n
}

// ConsumeFreeBuilding uses one entitlement and reports whether there was one.
func (l *Ledger) ConsumeFreeBuilding(b types.BuildType) bool {
	if l.freeBuildings[b] == 0 {
		return false
	}
	l.freeBuildings[b]--
	return true
}

// CanAfford reports whether Charge would succeed.
func (l *Ledger) CanAfford(b types.BuildType) bool {
	return l.HasFreeBuilding(b) || l.Has(types.Cost(b))
}

// Charge pays for a build: an entitlement is used first, otherwise the standard cost.
// It reports whether an entitlement was used.
func (l *Ledger) Charge(b types.BuildType) (free bool, err error) {
	if l.ConsumeFreeBuilding(b) {
		return true, nil
	}
	if err := l.RemoveAll(types.Cost(b)); err != nil {
		return false, fmt.Errorf("charge %s: %w", b, err)
	}
	return false, nil
}

// AddBoughtCard adds a card that becomes playable after ConvertBoughtCards.
func (l *Ledger) AddBoughtCard(c types.DevelopmentCard) {
	l.bought[c]++
}

// ConvertBoughtCards makes every card bought this turn playable.
func (l *Ledger) ConvertBoughtCards() {
	for i, n := range l.bought {
		l.playable[i] += n
		l.bought[i] = 0
	}
}

func (l *Ledger) HasPlayableCard(c types.DevelopmentCard) bool {
	return c.Valid() && l.playable[c] > 0
}

func (l *Ledger) RemovePlayableCard(c types.DevelopmentCard) error {
	if !l.HasPlayableCard(c) {
		return ErrNoSuchCard
	}
	l.playable[c]--
	return nil
}

// PlayableCards returns the count of each playable card kind.
func (l *Ledger) PlayableCards() [types.NumDevelopmentCards]int {
	return l.playable
}

// BoughtCards returns the number of cards bought this turn.
func (l *Ledger) BoughtCards() int {
	total := 0
	for _, n := range l.bought {
		total += n
	}
	return total
}

func (l *Ledger) KnightsPlayed() int {
	return l.knights
}

func (l *Ledger) AddKnight() {
	l.knights++
}

// CapKnights lowers the played knights to at most limit and returns how many were removed.
func (l *Ledger) CapKnights(limit int) int {
	limit = max(limit, 0)
	if l.knights <= limit {
		return 0
	}
	removed := l.knights - limit
	l.knights = limit
	return removed
}

// BonusVictoryPoints returns the victory points not tied to buildings or awards.
func (l *Ledger) BonusVictoryPoints() int {
	return l.bonusPoints
}

func (l *Ledger) AddVictoryPoint() {
	l.bonusPoints++
}

// Package dice rolls the two six-sided dice used for resource production.
package dice

import "math/rand"

// Sides is the number of faces on each die.
const Sides = 6

// Roll is the result of rolling two dice.
type Roll struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// Total returns the sum of both dice.
func (r Roll) Total() int {
	return r.First + r.Second
}

// RollTwo rolls 2d6 from the given seed.
//
// RollTwo is deterministic: the same seed always produces the same roll, so a
// peer that knows the seed can replay the result.
func RollTwo(seed int64) Roll {
	rng := rand.New(rand.NewSource(seed))
	return Roll{
		First:  rng.Intn(Sides) + 1,
		Second: rng.Intn(Sides) + 1,
	}
}

// Package dice provides the randomness abstraction, the d6 pool resolution
// engine, and free-form dice expressions for the table kit.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for every roll in this package.
//
// Implementations are not required to be safe for concurrent use. The table
// server shares one Source across every console connection and serializes
// draws through Roller.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// d6 draws one six-sided die from src.
//
// Postcondition: 1 <= result <= 6.
func d6(src Source) int {
	return src.Intn(6) + 1
}

// RollResult is the audit trail of a free-form expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int // kept dice, highest first when a keep-highest clause applied
	Dropped    []int
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d6+3 → [4 5] +3 = 12".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", r.Expression, strings.Join(parts, " "), r.Modifier, r.Total())
}

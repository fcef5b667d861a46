package rules

import (
	"fmt"
	"strings"
)

// Direction selects whether a bounded counter is raised or lowered.
type Direction int

const (
	Increase Direction = iota
	Decrease
)

// String returns "increase" or "decrease".
func (d Direction) String() string {
	switch d {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "unknown"
	}
}

// ParseDirection converts console input into a Direction.
// Accepted forms (case-insensitive): "+", "up", "inc", "increase", "-",
// "down", "dec", "decrease".
//
// Postcondition: Returns a Direction or an error wrapping ErrInvalidArgument.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "up", "inc", "increase":
		return Increase, nil
	case "-", "down", "dec", "decrease":
		return Decrease, nil
	}
	return 0, fmt.Errorf("%w: direction %q must be + or -", ErrInvalidArgument, s)
}

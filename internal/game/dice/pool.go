package dice

import (
	"fmt"

	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

// Pool limits and defaults.
const (
	MinPool          = 1
	MaxPool          = 50
	DefaultThreshold = 5

	// edgeRerollMax is the highest face an edge spend re-rolls.
	edgeRerollMax = 2
)

// PoolRequest describes a single d6 pool check.
type PoolRequest struct {
	// Size is the number of dice in the pool, 1..50.
	Size int
	// Threshold is the success floor, 1..6. Zero selects DefaultThreshold.
	Threshold int
	// UseEdge re-rolls every die showing 1 or 2 exactly once.
	UseEdge bool
}

// Summary is the evaluation of a rolled pool.
//
// Invariant: CriticalGlitch implies Glitch; Glitch implies Successes == 0.
type Summary struct {
	Successes       int
	Ones            int
	GlitchThreshold int
	TotalDice       int
	Threshold       int
	Glitch          bool
	CriticalGlitch  bool
}

// PoolResult is the complete outcome of RollPool.
type PoolResult struct {
	// Dice holds the final face of every die, in roll order.
	Dice []int
	// Initial holds the faces before any edge re-roll.
	Initial []int
	// Rerolled[i] is true when die i was re-rolled by edge.
	Rerolled []bool
	UsedEdge bool
	Summary  Summary
}

// RerollCount returns how many dice edge re-rolled.
func (p PoolResult) RerollCount() int {
	n := 0
	for _, r := range p.Rerolled {
		if r {
			n++
		}
	}
	return n
}

func resolveThreshold(t int) (int, error) {
	if t == 0 {
		return DefaultThreshold, nil
	}
	if t < 1 || t > 6 {
		return 0, fmt.Errorf("%w: threshold %d must be 1-6", rules.ErrInvalidArgument, t)
	}
	return t, nil
}

// RollPool rolls and evaluates a d6 pool.
//
// Precondition: src must be non-nil.
// Postcondition: on success len(Dice) == req.Size and every die is in [1,6];
// on error no value has been drawn from src.
func RollPool(req PoolRequest, src Source) (PoolResult, error) {
	if req.Size < MinPool || req.Size > MaxPool {
		return PoolResult{}, fmt.Errorf("%w: pool size %d must be %d-%d", rules.ErrInvalidArgument, req.Size, MinPool, MaxPool)
	}
	threshold, err := resolveThreshold(req.Threshold)
	if err != nil {
		return PoolResult{}, err
	}

	initial := make([]int, req.Size)
	for i := range initial {
		initial[i] = d6(src)
	}

	final := make([]int, req.Size)
	copy(final, initial)
	rerolled := make([]bool, req.Size)
	if req.UseEdge {
		for i, v := range initial {
			if v <= edgeRerollMax {
				final[i] = d6(src)
				rerolled[i] = true
			}
		}
	}

	summary, err := Summarize(final, req.Size, threshold)
	if err != nil {
		return PoolResult{}, err
	}
	return PoolResult{
		Dice:     final,
		Initial:  initial,
		Rerolled: rerolled,
		UsedEdge: req.UseEdge,
		Summary:  summary,
	}, nil
}

// Summarize counts successes and ones in dice and decides glitch status.
// The glitch threshold is ceil(poolSize/2) of the pool as declared, not of
// len(dice).
//
// Postcondition: returns an error wrapping rules.ErrInvalidArgument when
// poolSize is outside [1,50] or threshold is outside [1,6].
func Summarize(dice []int, poolSize, threshold int) (Summary, error) {
	if poolSize < MinPool || poolSize > MaxPool {
		return Summary{}, fmt.Errorf("%w: pool size %d must be %d-%d", rules.ErrInvalidArgument, poolSize, MinPool, MaxPool)
	}
	if threshold < 1 || threshold > 6 {
		return Summary{}, fmt.Errorf("%w: threshold %d must be 1-6", rules.ErrInvalidArgument, threshold)
	}

	s := Summary{
		GlitchThreshold: (poolSize + 1) / 2,
		TotalDice:       poolSize,
		Threshold:       threshold,
	}
	for _, d := range dice {
		if d >= threshold {
			s.Successes++
		}
		if d == 1 {
			s.Ones++
		}
	}
	s.Glitch = s.Ones >= s.GlitchThreshold && s.Successes == 0
	s.CriticalGlitch = s.Glitch && s.Ones == poolSize
	return s, nil
}

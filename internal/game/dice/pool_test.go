package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

func TestRollPool_OneSuccessBlocksGlitch(t *testing.T) {
	src := newSeq(1, 1, 1, 1, 1, 1, 2, 3, 4, 5)
	res, err := dice.RollPool(dice.PoolRequest{Size: 10, Threshold: 5}, src)
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 2, 3, 4, 5}, res.Dice)
	assert.Equal(t, 1, s.Successes)
	assert.Equal(t, 6, s.Ones)
	assert.Equal(t, 5, s.GlitchThreshold)
	assert.Equal(t, 10, s.TotalDice)
	assert.False(t, s.Glitch)
	assert.False(t, s.CriticalGlitch)
}

func TestRollPool_AllOnesIsCriticalGlitch(t *testing.T) {
	res, err := dice.RollPool(dice.PoolRequest{Size: 4}, newSeq(1, 1, 1, 1))
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, 0, s.Successes)
	assert.Equal(t, 4, s.Ones)
	assert.Equal(t, 2, s.GlitchThreshold)
	assert.Equal(t, dice.DefaultThreshold, s.Threshold)
	assert.True(t, s.Glitch)
	assert.True(t, s.CriticalGlitch)
}

func TestRollPool_GlitchWithoutCritical(t *testing.T) {
	res, err := dice.RollPool(dice.PoolRequest{Size: 5}, newSeq(1, 1, 1, 3, 4))
	require.NoError(t, err)
	assert.True(t, res.Summary.Glitch)
	assert.False(t, res.Summary.CriticalGlitch)
}

func TestRollPool_EdgeRerollsOnlyLowDice(t *testing.T) {
	// initial 1 2 3 6, then re-rolls for the first two dice: 1 5
	res, err := dice.RollPool(dice.PoolRequest{Size: 4, UseEdge: true}, newSeq(1, 2, 3, 6, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 6}, res.Initial)
	assert.Equal(t, []int{1, 5, 3, 6}, res.Dice)
	assert.Equal(t, []bool{true, true, false, false}, res.Rerolled)
	assert.Equal(t, 2, res.RerollCount())
	assert.True(t, res.UsedEdge)
	assert.Equal(t, 2, res.Summary.Successes)
	assert.Equal(t, 1, res.Summary.Ones)
}

func TestRollPool_EdgeRerollIsNotRecursive(t *testing.T) {
	// the re-rolled 1 stays a 1
	src := newSeq(1, 1)
	res, err := dice.RollPool(dice.PoolRequest{Size: 1, UseEdge: true}, src)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Dice)
	assert.Equal(t, 2, src.pos)
	assert.True(t, res.Summary.CriticalGlitch)
}

func TestRollPool_NoEdgeDrawsExactlyPoolSize(t *testing.T) {
	src := newSeq(2, 2, 2)
	res, err := dice.RollPool(dice.PoolRequest{Size: 3}, src)
	require.NoError(t, err)
	assert.Equal(t, 3, src.pos)
	assert.Equal(t, 0, res.RerollCount())
}

func TestRollPool_CustomThreshold(t *testing.T) {
	res, err := dice.RollPool(dice.PoolRequest{Size: 4, Threshold: 4}, newSeq(4, 3, 6, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Successes)
	assert.Equal(t, 4, res.Summary.Threshold)
}

func TestRollPool_RejectsOutOfRangeWithoutDrawing(t *testing.T) {
	cases := []dice.PoolRequest{
		{Size: 0},
		{Size: -3},
		{Size: 51},
		{Size: 5, Threshold: 7},
		{Size: 5, Threshold: -1},
	}
	for _, req := range cases {
		src := newSeq()
		_, err := dice.RollPool(req, src)
		require.Error(t, err, "request %+v", req)
		assert.True(t, errors.Is(err, rules.ErrInvalidArgument), "request %+v", req)
		assert.Equal(t, 0, src.pos, "request %+v must not draw", req)
	}
}

// The glitch threshold follows the declared pool size, not the number of
// dice handed to Summarize.
func TestSummarize_GlitchThresholdUsesPoolSize(t *testing.T) {
	s, err := dice.Summarize([]int{1, 1}, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, s.GlitchThreshold)
	assert.Equal(t, 2, s.Ones)
	assert.False(t, s.Glitch)
}

func TestSummarize_GlitchThresholdUnchangedByEdge(t *testing.T) {
	// 3 dice: 1 1 4, edge re-rolls both ones into ones again
	res, err := dice.RollPool(dice.PoolRequest{Size: 3, UseEdge: true}, newSeq(1, 1, 4, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.GlitchThreshold)
	assert.True(t, res.Summary.Glitch)
	assert.False(t, res.Summary.CriticalGlitch)
}

func TestSummarize_RejectsZeroPool(t *testing.T) {
	_, err := dice.Summarize(nil, 0, 5)
	assert.True(t, errors.Is(err, rules.ErrInvalidArgument))
}

func TestProperty_RollPool_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(dice.MinPool, dice.MaxPool).Draw(rt, "size")
		threshold := rapid.IntRange(0, 6).Draw(rt, "threshold")
		edge := rapid.Bool().Draw(rt, "edge")
		seed := rapid.Uint64().Draw(rt, "seed")

		res, err := dice.RollPool(dice.PoolRequest{Size: size, Threshold: threshold, UseEdge: edge}, dice.NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if len(res.Dice) != size || len(res.Initial) != size || len(res.Rerolled) != size {
			rt.Fatalf("want %d dice, got %d/%d/%d", size, len(res.Dice), len(res.Initial), len(res.Rerolled))
		}
		for i, d := range res.Dice {
			if d < 1 || d > 6 {
				rt.Fatalf("die %d out of range: %d", i, d)
			}
		}
		s := res.Summary
		if s.GlitchThreshold != (size+1)/2 {
			rt.Fatalf("glitch threshold %d, want ceil(%d/2)", s.GlitchThreshold, size)
		}
		if s.CriticalGlitch && !s.Glitch {
			rt.Fatalf("critical glitch without glitch")
		}
		if s.Glitch && s.Successes != 0 {
			rt.Fatalf("glitch with %d successes", s.Successes)
		}
		if s.TotalDice != size {
			rt.Fatalf("total dice %d, want %d", s.TotalDice, size)
		}
	})
}

func TestProperty_RollPool_EdgeTouchesOnlyLowDice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.SliceOfN(rapid.IntRange(1, 6), 1, dice.MaxPool).Draw(rt, "initial")
		var low int
		for _, v := range initial {
			if v <= 2 {
				low++
			}
		}
		rerolls := rapid.SliceOfN(rapid.IntRange(1, 6), low, low).Draw(rt, "rerolls")

		faces := append(append([]int{}, initial...), rerolls...)
		res, err := dice.RollPool(dice.PoolRequest{Size: len(initial), UseEdge: true}, newSeq(faces...))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		next := 0
		for i, v := range initial {
			if v >= 3 {
				if res.Dice[i] != v || res.Rerolled[i] {
					rt.Fatalf("die %d (%d) must not be re-rolled", i, v)
				}
				continue
			}
			if !res.Rerolled[i] || res.Dice[i] != rerolls[next] {
				rt.Fatalf("die %d (%d) must take re-roll %d, got %d", i, v, rerolls[next], res.Dice[i])
			}
			next++
		}
	})
}

func TestProperty_RollPool_SeedReproduces(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(dice.MinPool, dice.MaxPool).Draw(rt, "size")
		edge := rapid.Bool().Draw(rt, "edge")
		seed := rapid.Uint64().Draw(rt, "seed")
		req := dice.PoolRequest{Size: size, UseEdge: edge}

		a, errA := dice.RollPool(req, dice.NewSeededSource(seed))
		b, errB := dice.RollPool(req, dice.NewSeededSource(seed))
		if errA != nil || errB != nil {
			rt.Fatalf("unexpected errors: %v %v", errA, errB)
		}
		assert.Equal(rt, a, b)
	})
}

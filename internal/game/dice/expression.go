package dice

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

// exprPattern matches "[N]dS[khK][+M|-M]".
var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression limits.
const (
	MaxSides    = 1000
	MaxModifier = 1000
)

// Expression is a parsed free-form dice expression such as "2d6+3" or "4d6kh3".
//
// Invariant: 1 <= Count <= MaxPool, 2 <= Sides <= MaxSides,
// 0 <= KeepHighest < Count, |Modifier| <= MaxModifier.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	KeepHighest int // 0 keeps every die
	Modifier    int
}

// ParseExpression parses expr. The die count defaults to 1 when omitted and
// whitespace is ignored.
//
// Postcondition: Returns a valid Expression or an error wrapping
// rules.ErrInvalidArgument.
func ParseExpression(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	s := strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("%w: malformed dice expression %q", rules.ErrInvalidArgument, raw)
	}

	e := Expression{Raw: raw, Count: 1}
	fields := []struct {
		text string
		dst  *int
		what string
	}{
		{m[1], &e.Count, "die count"},
		{m[2], &e.Sides, "die sides"},
		{m[3], &e.KeepHighest, "keep count"},
		{m[4], &e.Modifier, "modifier"},
	}
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		n, err := strconv.Atoi(f.text)
		if err != nil {
			return Expression{}, fmt.Errorf("%w: %s in %q is out of range", rules.ErrInvalidArgument, f.what, raw)
		}
		*f.dst = n
	}

	switch {
	case e.Count < 1 || e.Count > MaxPool:
		return Expression{}, fmt.Errorf("%w: die count in %q must be 1-%d", rules.ErrInvalidArgument, raw, MaxPool)
	case e.Sides < 2 || e.Sides > MaxSides:
		return Expression{}, fmt.Errorf("%w: die sides in %q must be 2-%d", rules.ErrInvalidArgument, raw, MaxSides)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("%w: kh%d in %q must be > 0 and < %d", rules.ErrInvalidArgument, e.KeepHighest, raw, e.Count)
	case e.Modifier < -MaxModifier || e.Modifier > MaxModifier:
		return Expression{}, fmt.Errorf("%w: modifier in %q must be within ±%d", rules.ErrInvalidArgument, raw, MaxModifier)
	}
	return e, nil
}

// RollExpression rolls e with src.
//
// Postcondition: len(Dice) == Count (or KeepHighest when set), and Dice plus
// Dropped hold every rolled value.
func RollExpression(e Expression, src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}

	res := RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
	if e.KeepHighest > 0 {
		sorted := slices.Clone(rolled)
		slices.SortFunc(sorted, func(a, b int) int { return cmp.Compare(b, a) })
		res.Dice = sorted[:e.KeepHighest]
		res.Dropped = sorted[e.KeepHighest:]
	}
	return res
}

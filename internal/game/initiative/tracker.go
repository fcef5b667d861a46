// Package initiative tracks combat turn order: who is in the fight, in what
// order they act, and whose turn it is.
package initiative

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

// State is the coarse state of a Tracker.
type State int

const (
	StateEmpty State = iota
	StateActive
)

// String returns "empty" or "active".
func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "empty"
}

// Entry is one participant in the initiative order.
type Entry struct {
	ID    string
	Name  string
	Score int
	// Edge counts edge points banked against this entry; never negative.
	Edge int
}

// Tracker is the ordered initiative list for one table.
//
// Invariant: 0 <= turn < len(entries) when entries is non-empty; turn == 0
// when entries is empty.
//
// A Tracker is owned by a single session and is not safe for concurrent use.
type Tracker struct {
	entries []*Entry
	turn    int
	newID   func() string
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithIDGenerator replaces the default uuid-based entry ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) { t.newID = gen }
}

// NewTracker returns an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{newID: uuid.NewString}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ParseScore converts console input into an initiative score.
//
// Postcondition: Returns the integer or an error wrapping rules.ErrInvalidArgument.
func ParseScore(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: initiative score %q is not an integer", rules.ErrInvalidArgument, s)
	}
	return v, nil
}

// Add appends a participant to the end of the order with zero edge.
//
// Precondition: name must contain a non-space character.
// Postcondition: Returns the new entry ID, or an error wrapping
// rules.ErrInvalidArgument with the tracker unchanged.
func (t *Tracker) Add(name string, score int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: initiative name must not be empty", rules.ErrInvalidArgument)
	}
	e := &Entry{ID: t.newID(), Name: name, Score: score}
	t.entries = append(t.entries, e)
	return e.ID, nil
}

func (t *Tracker) checkIndex(i int) error {
	if i < 0 || i >= len(t.entries) {
		return fmt.Errorf("%w: initiative index %d (have %d entries)", rules.ErrIndexOutOfRange, i, len(t.entries))
	}
	return nil
}

// Remove deletes the entry at index i. When the current turn falls off the
// end of the shortened list it restarts at the top.
//
// Postcondition: Returns an error wrapping rules.ErrIndexOutOfRange when i
// is invalid.
func (t *Tracker) Remove(i int) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	if t.turn >= len(t.entries) && t.turn > 0 {
		t.turn = 0
	}
	return nil
}

// RemoveByID deletes the entry with the given ID, with the same turn rule
// as Remove.
func (t *Tracker) RemoveByID(id string) error {
	i := t.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: no initiative entry with id %q", rules.ErrIndexOutOfRange, id)
	}
	return t.Remove(i)
}

// IndexOf returns the position of the entry with the given ID, or -1.
func (t *Tracker) IndexOf(id string) int {
	return slices.IndexFunc(t.entries, func(e *Entry) bool { return e.ID == id })
}

// AdjustEdge raises or lowers the edge counter of the entry at index i.
// Increase is unbounded; decrease stops at zero.
func (t *Tracker) AdjustEdge(i int, dir rules.Direction) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	e := t.entries[i]
	switch dir {
	case rules.Increase:
		e.Edge++
	case rules.Decrease:
		if e.Edge > 0 {
			e.Edge--
		}
	default:
		return fmt.Errorf("%w: unknown direction %d", rules.ErrInvalidArgument, dir)
	}
	return nil
}

// Sort orders entries by score, highest first, keeping the relative order
// of ties, and restarts the round at the top.
func (t *Tracker) Sort() {
	slices.SortStableFunc(t.entries, func(a, b *Entry) int { return cmp.Compare(b.Score, a.Score) })
	t.turn = 0
}

// Advance passes the turn to the next entry, wrapping to the top after the
// last one.
//
// Postcondition: Returns an error wrapping rules.ErrEmptyState when there
// are no entries.
func (t *Tracker) Advance() error {
	if len(t.entries) == 0 {
		return fmt.Errorf("%w: no participants in initiative", rules.ErrEmptyState)
	}
	t.turn = (t.turn + 1) % len(t.entries)
	return nil
}

// Clear removes every entry and resets the turn.
func (t *Tracker) Clear() {
	t.entries = nil
	t.turn = 0
}

// Entries returns a copy of the current order.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// Len returns the number of entries.
func (t *Tracker) Len() int { return len(t.entries) }

// Turn returns the index of the entry whose turn it is. It is 0 and
// meaningless when the tracker is empty.
func (t *Tracker) Turn() int { return t.turn }

// Current returns the entry whose turn it is.
func (t *Tracker) Current() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return *t.entries[t.turn], true
}

// State reports whether the tracker has any entries.
func (t *Tracker) State() State {
	if len(t.entries) == 0 {
		return StateEmpty
	}
	return StateActive
}

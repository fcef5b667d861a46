// Package session tracks the live console tables: one Table per connection,
// holding that connection's initiative order and working character sheet.
package session

import (
	"time"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/initiative"
)

// Table is the state of one console connection.
//
// A Table is owned by the goroutine serving its connection and is not safe
// for concurrent use. The Manager only reads its immutable fields.
type Table struct {
	// ID uniquely identifies the table for logging.
	ID string
	// RemoteAddr is the client address the table was opened for.
	RemoteAddr string
	// OpenedAt is when the connection was accepted.
	OpenedAt time.Time

	// Tracker is the table's initiative order.
	Tracker *initiative.Tracker
	// Sheet is the character being edited. Never nil.
	Sheet *character.Character
	// LastPool is the most recent pool result, or nil before the first roll.
	LastPool *dice.PoolResult
}

// ResetSheet replaces the working sheet with a blank one.
//
// Postcondition: t.Sheet is a fresh character.New().
func (t *Table) ResetSheet() {
	t.Sheet = character.New()
}

// Info is the read-only view of a table exposed by Manager.List.
type Info struct {
	ID         string
	RemoteAddr string
	OpenedAt   time.Time
}

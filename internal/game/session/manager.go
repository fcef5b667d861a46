package session

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/initiative"
)

// Manager tracks all open tables. All methods are safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*Table
	now    func() time.Time
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		tables: make(map[string]*Table),
		now:    time.Now,
	}
}

// Open creates and registers a table for a new connection.
//
// Postcondition: the returned table has a unique ID, an empty tracker and a
// blank sheet.
func (m *Manager) Open(remoteAddr string) *Table {
	t := &Table{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		OpenedAt:   m.now(),
		Tracker:    initiative.NewTracker(),
		Sheet:      character.New(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
	return t
}

// Close unregisters a table.
//
// Postcondition: Returns an error if id is not open.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[id]; !ok {
		return fmt.Errorf("table %q not open", id)
	}
	delete(m.tables, id)
	return nil
}

// Get returns the open table with the given ID.
func (m *Manager) Get(id string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	return t, ok
}

// Count returns the number of open tables.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// List returns every open table ordered by opening time.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, Info{ID: t.ID, RemoteAddr: t.RemoteAddr, OpenedAt: t.OpenedAt})
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

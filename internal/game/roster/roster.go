// Package roster keeps the list of saved characters. The whole list is
// stored as a single JSON document under one key of a BlobStore.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
)

// DefaultKey is the storage key of the saved-character list.
const DefaultKey = "shadowrun_characters"

var (
	// ErrBlobNotFound is returned by a BlobStore when the key is absent.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrCharacterNotFound is returned when no saved character has the name.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterExists is returned by Save when the name is taken and
	// overwriting was not requested.
	ErrCharacterExists = errors.New("character already exists")
)

// BlobStore is a key-value store of opaque documents.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Summary is the list-view of a saved character.
type Summary struct {
	Name        string
	Edge        int
	SkillCount  int
	TotalRating int
}

// Roster is the saved-character list. All methods are safe for concurrent use.
type Roster struct {
	store  BlobStore
	key    string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a Roster persisting under key in store. An empty key selects
// DefaultKey.
//
// Precondition: store and logger must be non-nil.
func New(store BlobStore, key string, logger *zap.Logger) *Roster {
	if key == "" {
		key = DefaultKey
	}
	return &Roster{store: store, key: key, logger: logger}
}

func (r *Roster) read(ctx context.Context) ([]*character.Character, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster %q: %w", r.key, err)
	}
	var chars []*character.Character
	if err := json.Unmarshal(data, &chars); err != nil {
		return nil, fmt.Errorf("decoding roster %q: %w", r.key, err)
	}
	return chars, nil
}

func (r *Roster) write(ctx context.Context, chars []*character.Character) error {
	data, err := json.Marshal(chars)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	if err := r.store.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("writing roster %q: %w", r.key, err)
	}
	return nil
}

func indexByName(chars []*character.Character, name string) int {
	return slices.IndexFunc(chars, func(c *character.Character) bool { return c.Name == name })
}

// Save stores a copy of c. A character with the same name is replaced only
// when overwrite is true; otherwise ErrCharacterExists is returned.
//
// Postcondition: Returns nil, a validation error wrapping
// rules.ErrInvalidArgument, ErrCharacterExists, or a storage error.
func (r *Roster) Save(ctx context.Context, c *character.Character, overwrite bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	chars, err := r.read(ctx)
	if err != nil {
		return err
	}
	saved := c.Clone()
	if i := indexByName(chars, c.Name); i >= 0 {
		if !overwrite {
			return fmt.Errorf("%w: %q", ErrCharacterExists, c.Name)
		}
		chars[i] = saved
	} else {
		chars = append(chars, saved)
	}
	if err := r.write(ctx, chars); err != nil {
		return err
	}
	r.logger.Info("character saved", zap.String("name", c.Name), zap.Bool("overwrite", overwrite))
	return nil
}

// Load returns a copy of the saved character with the exact given name.
func (r *Roster) Load(ctx context.Context, name string) (*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chars, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByName(chars, name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
	}
	return chars[i].Clone(), nil
}

// List summarises every saved character in save order.
func (r *Roster) List(ctx context.Context) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chars, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(chars))
	for _, c := range chars {
		out = append(out, Summary{
			Name:        c.Name,
			Edge:        c.Edge,
			SkillCount:  len(c.Skills),
			TotalRating: c.TotalSkillRating(),
		})
	}
	return out, nil
}

// Delete removes the named character.
func (r *Roster) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chars, err := r.read(ctx)
	if err != nil {
		return err
	}
	i := indexByName(chars, name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
	}
	if err := r.write(ctx, slices.Delete(chars, i, i+1)); err != nil {
		return err
	}
	r.logger.Info("character deleted", zap.String("name", name))
	return nil
}

// Clear removes every saved character by deleting the roster key.
func (r *Roster) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clearing roster %q: %w", r.key, err)
	}
	r.logger.Info("roster cleared", zap.String("key", r.key))
	return nil
}

package roster_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/roster"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

func newRoster(t *testing.T) (*roster.Roster, *roster.MemoryStore) {
	t.Helper()
	store := roster.NewMemoryStore()
	return roster.New(store, "", zaptest.NewLogger(t)), store
}

func sheet(name string, skills ...int) *character.Character {
	c := character.New()
	c.SetName(name)
	for i, r := range skills {
		_, _ = c.AddSkill(fmt.Sprintf("skill%d", i), r)
	}
	return c
}

func TestRoster_EmptyList(t *testing.T) {
	r, _ := newRoster(t)
	list, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRoster_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	r, store := newRoster(t)

	require.NoError(t, r.Save(ctx, sheet("Ghost", 4, 5), false))
	require.NoError(t, r.Save(ctx, sheet("Brick"), false))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []roster.Summary{
		{Name: "Ghost", Edge: 1, SkillCount: 2, TotalRating: 9},
		{Name: "Brick", Edge: 1, SkillCount: 0, TotalRating: 0},
	}, list)

	got, err := r.Load(ctx, "Ghost")
	require.NoError(t, err)
	assert.Len(t, got.Skills, 2)

	raw, err := store.Get(ctx, roster.DefaultKey)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Ghost", decoded[0]["name"])
	assert.Contains(t, decoded[0], "attributes")
}

func TestRoster_SaveStoresACopy(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)
	c := sheet("Ghost", 3)
	require.NoError(t, r.Save(ctx, c, false))

	c.Skills[0].Rating = 12
	got, err := r.Load(ctx, "Ghost")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Skills[0].Rating)
}

func TestRoster_SaveDuplicateNeedsOverwrite(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)
	require.NoError(t, r.Save(ctx, sheet("Ghost"), false))

	err := r.Save(ctx, sheet("Ghost", 6), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, roster.ErrCharacterExists))

	require.NoError(t, r.Save(ctx, sheet("Ghost", 6), true))
	list, _ := r.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].TotalRating)
}

func TestRoster_SaveRejectsInvalid(t *testing.T) {
	r, _ := newRoster(t)
	err := r.Save(context.Background(), character.New(), false)
	assert.True(t, errors.Is(err, rules.ErrInvalidArgument))
}

func TestRoster_LoadAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)
	_, err := r.Load(ctx, "Nobody")
	assert.True(t, errors.Is(err, roster.ErrCharacterNotFound))
	assert.True(t, errors.Is(r.Delete(ctx, "Nobody"), roster.ErrCharacterNotFound))
}

func TestRoster_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	r, store := newRoster(t)
	require.NoError(t, r.Save(ctx, sheet("A"), false))
	require.NoError(t, r.Save(ctx, sheet("B"), false))

	require.NoError(t, r.Delete(ctx, "A"))
	list, _ := r.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Name)

	require.NoError(t, r.Clear(ctx))
	_, err := store.Get(ctx, roster.DefaultKey)
	assert.True(t, errors.Is(err, roster.ErrBlobNotFound))
	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRoster_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	r, store := newRoster(t)
	require.NoError(t, store.Put(ctx, roster.DefaultKey, []byte("{not json")))
	_, err := r.List(ctx)
	assert.Error(t, err)
}

type failingStore struct{ *roster.MemoryStore }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestRoster_StoreErrorsPropagate(t *testing.T) {
	r := roster.New(failingStore{roster.NewMemoryStore()}, "k", zaptest.NewLogger(t))
	err := r.Save(context.Background(), sheet("A"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRoster_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Save(ctx, sheet(fmt.Sprintf("runner%d", i)), false))
		}(i)
	}
	wg.Wait()
	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestProperty_Roster_NamesAreUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		r := roster.New(roster.NewMemoryStore(), "", zaptest.NewLogger(t))
		n := rapid.IntRange(1, 15).Draw(rt, "n")
		for i := 0; i < n; i++ {
			name := rapid.SampledFrom([]string{"A", "B", "C"}).Draw(rt, "name")
			_ = r.Save(ctx, sheet(name), rapid.Bool().Draw(rt, "overwrite"))
		}
		list, err := r.List(ctx)
		if err != nil {
			rt.Fatalf("list: %v", err)
		}
		seen := map[string]bool{}
		for _, s := range list {
			if seen[s.Name] {
				rt.Fatalf("duplicate %q in roster", s.Name)
			}
			seen[s.Name] = true
		}
	})
}

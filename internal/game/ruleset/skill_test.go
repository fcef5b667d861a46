package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sixthworld/internal/game/ruleset"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSkills(t *testing.T) {
	path := writeFile(t, `
skills:
  - id: firearms
    name: Firearms
    attribute: agility
  - id: con
    name: Con
    attribute: charisma
    description: Lying for fun and profit.
`)
	cat, err := ruleset.LoadSkills(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	s, ok := cat.Lookup("FIREARMS")
	require.True(t, ok)
	assert.Equal(t, "agility", s.Attribute)

	s, ok = cat.Lookup("con")
	require.True(t, ok)
	assert.Equal(t, "Con", s.Name)

	_, ok = cat.Lookup("piloting")
	assert.False(t, ok)

	all := cat.All()
	assert.Equal(t, "Con", all[0].Name)
	assert.Equal(t, "Firearms", all[1].Name)
}

func TestLoadSkills_Errors(t *testing.T) {
	_, err := ruleset.LoadSkills(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ruleset.LoadSkills(writeFile(t, "skills: [unterminated"))
	assert.Error(t, err)

	_, err = ruleset.LoadSkills(writeFile(t, "skills:\n  - id: x\n    name: X\n"))
	assert.Error(t, err, "missing attribute must be rejected")
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := ruleset.NewCatalog([]*ruleset.Skill{
		{ID: "a", Name: "Alpha", Attribute: "logic"},
		{ID: "b", Name: "alpha", Attribute: "logic"},
	})
	assert.Error(t, err)
}

func TestShippedCatalogLoads(t *testing.T) {
	cat, err := ruleset.LoadSkills(filepath.Join("..", "..", "..", "content", "skills.yaml"))
	require.NoError(t, err)
	assert.Greater(t, cat.Len(), 10)
	_, ok := cat.Lookup("Firearms")
	assert.True(t, ok)
}

func TestProperty_Lookup_CaseInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(rt, "name")
		cat, err := ruleset.NewCatalog([]*ruleset.Skill{{ID: "id-" + name, Name: name, Attribute: "logic"}})
		if err != nil {
			rt.Fatalf("NewCatalog: %v", err)
		}
		if _, ok := cat.Lookup(" " + name + " "); !ok {
			rt.Fatalf("lookup of %q failed", name)
		}
	})
}

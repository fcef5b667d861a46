package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

func TestParseFlags_Modes(t *testing.T) {
	_, err := parseFlags(nil, io.Discard)
	assert.ErrorContains(t, err, "exactly one of")

	_, err = parseFlags([]string{"-pool", "5", "-expr", "2d6"}, io.Discard)
	assert.ErrorContains(t, err, "exactly one of")

	_, err = parseFlags([]string{"-sheet", "x.yaml"}, io.Discard)
	assert.ErrorContains(t, err, "go together")

	o, err := parseFlags([]string{"-pool", "8", "-threshold", "4", "-edge", "-seed", "3"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8, o.pool)
	assert.Equal(t, 4, o.threshold)
	assert.True(t, o.edge)
	assert.True(t, o.seed.Given())
	assert.Equal(t, uint64(3), o.seed.Value())

	o, err = parseFlags([]string{"-pool", "8"}, io.Discard)
	require.NoError(t, err)
	assert.False(t, o.seed.Given())
}

func TestRun_SeedZeroReplays(t *testing.T) {
	var first, second bytes.Buffer
	args := []string{"-pool", "20", "-seed", "0", "-plain"}
	require.NoError(t, run(args, &first))
	require.NoError(t, run(args, &second))
	assert.Equal(t, first.String(), second.String())
}

func TestRun_SeedReplays(t *testing.T) {
	var first, second bytes.Buffer
	args := []string{"-pool", "12", "-edge", "-seed", "2070", "-plain"}
	require.NoError(t, run(args, &first))
	require.NoError(t, run(args, &second))

	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), "Pool 12, threshold 5, edge")
	assert.NotContains(t, first.String(), "\033[")
}

func TestRun_Expression(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-expr", "3d6+1", "-seed", "9", "-plain"}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "3d6+1 → ["))
}

func TestRun_RejectsOutOfRangePool(t *testing.T) {
	err := run([]string{"-pool", "51"}, io.Discard)
	assert.ErrorIs(t, err, rules.ErrInvalidArgument)
}

func TestRun_SheetSkillTest(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "wraith.yaml")
	require.NoError(t, os.WriteFile(sheet, []byte(`
name: Wraith
attributes:
  agility: 5
edge: 2
skills:
  - name: Firearms
    rating: 4
`), 0o600))

	var out bytes.Buffer
	err := run([]string{"-sheet", sheet, "-skill", "firearms", "-skills", "../../content/skills.yaml", "-seed", "1", "-plain"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wraith: Firearms (agility)")
	assert.Contains(t, out.String(), "Pool 9, threshold 5")
}

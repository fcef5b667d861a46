package character_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

func TestYAML_ExportImport(t *testing.T) {
	c := character.New()
	c.SetName("Ghost")
	_, _ = c.SetAttribute("reaction", 5)
	_, _ = c.AddSkill("Firearms", 6)
	_, _ = c.AddSpecialization("Firearms", "Rifles")

	data, err := character.EncodeYAML(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Ghost")
	assert.Contains(t, string(data), "specialization: Rifles")
	assert.NotContains(t, string(data), c.Skills[0].ID)

	back, err := character.DecodeYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "Ghost", back.Name)
	assert.Equal(t, 5, back.Attributes.Reaction)
	require.Len(t, back.Skills, 1)
	assert.Equal(t, 6, back.Skills[0].Rating)
	assert.NotEmpty(t, back.Skills[0].ID)
	require.Len(t, back.Specializations, 1)
	assert.Equal(t, "Rifles", back.Specializations[0].Area)
}

func TestDecodeYAML_RejectsOutOfRange(t *testing.T) {
	_, err := character.DecodeYAML([]byte(`
name: Brick
attributes: {strength: 9, agility: 3, reaction: 3, body: 3, charisma: 3, intuition: 3, logic: 3, willpower: 3}
edge: 1
`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, rules.ErrInvalidArgument))
}

func TestDecodeYAML_Malformed(t *testing.T) {
	_, err := character.DecodeYAML([]byte("name: [unterminated"))
	assert.True(t, errors.Is(err, rules.ErrInvalidArgument))
}

package character

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

// EncodeYAML renders c as a human-readable YAML sheet.
func EncodeYAML(c *Character) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	return out, nil
}

// DecodeYAML parses a YAML sheet on top of the New defaults. Out-of-range
// values are rejected rather than clamped.
//
// Postcondition: Returns a valid Character with fresh skill IDs, or an error.
func DecodeYAML(data []byte) (*Character, error) {
	c := New()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: parsing character sheet: %v", rules.ErrInvalidArgument, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	skills, specs := c.Skills, c.Specializations
	c.Skills, c.Specializations = []Skill{}, []Specialization{}
	for _, s := range skills {
		if _, err := c.AddSkill(s.Name, s.Rating); err != nil {
			return nil, err
		}
	}
	for _, sp := range specs {
		if _, err := c.AddSpecialization(sp.Skill, sp.Area); err != nil {
			return nil, err
		}
	}
	return c, nil
}

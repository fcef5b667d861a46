// Package ruleset loads static rules content (the active-skill catalog) from
// YAML files.
package ruleset

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Skill is one entry of the active-skill catalog.
//
// Precondition: ID, Name and Attribute must be non-empty after loading.
type Skill struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Attribute   string `yaml:"attribute"`
	Description string `yaml:"description"`
}

// catalogFile is the on-disk layout of a skills YAML file.
type catalogFile struct {
	Skills []*Skill `yaml:"skills"`
}

// Catalog indexes skills by ID and by lower-cased name.
type Catalog struct {
	skills []*Skill
	byKey  map[string]*Skill
}

// NewCatalog builds a Catalog from skills.
//
// Postcondition: Returns an error when a skill is missing a field or two
// skills share an ID or name.
func NewCatalog(skills []*Skill) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]*Skill, 2*len(skills))}
	for _, s := range skills {
		if s == nil || s.ID == "" || s.Name == "" || s.Attribute == "" {
			return nil, fmt.Errorf("skill entry %+v must have id, name and attribute", s)
		}
		for _, key := range []string{strings.ToLower(s.ID), strings.ToLower(s.Name)} {
			if prev, dup := c.byKey[key]; dup && prev != s {
				return nil, fmt.Errorf("duplicate skill key %q", key)
			}
			c.byKey[key] = s
		}
		c.skills = append(c.skills, s)
	}
	return c, nil
}

// LoadSkills reads a skills catalog YAML file.
//
// Precondition: path must be a readable YAML file with a top-level "skills" list.
// Postcondition: Returns a Catalog or a non-nil error.
func LoadSkills(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing skills file %s: %w", path, err)
	}
	return NewCatalog(f.Skills)
}

// Lookup finds a skill by ID or display name, ignoring case.
func (c *Catalog) Lookup(key string) (*Skill, bool) {
	s, ok := c.byKey[strings.ToLower(strings.TrimSpace(key))]
	return s, ok
}

// All returns the skills sorted by name.
func (c *Catalog) All() []*Skill {
	out := slices.Clone(c.skills)
	slices.SortFunc(out, func(a, b *Skill) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of skills.
func (c *Catalog) Len() int { return len(c.skills) }

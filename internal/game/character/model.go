// Package character defines the Sixth World character sheet and the pure
// editing operations applied to it.
package character

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
)

// Sheet limits.
const (
	MinAttribute     = 1
	MaxAttribute     = 6
	DefaultAttribute = 3
	MinEdge          = 0
	MaxEdge          = 7
	DefaultEdge      = 1
	MinSkillRating   = 0
	MaxSkillRating   = 12
)

// AttributeNames lists the eight attributes in sheet order.
var AttributeNames = []string{
	"strength", "agility", "reaction", "body",
	"charisma", "intuition", "logic", "willpower",
}

// Attributes holds the eight physical and mental attributes.
type Attributes struct {
	Strength  int `json:"strength" yaml:"strength"`
	Agility   int `json:"agility" yaml:"agility"`
	Reaction  int `json:"reaction" yaml:"reaction"`
	Body      int `json:"body" yaml:"body"`
	Charisma  int `json:"charisma" yaml:"charisma"`
	Intuition int `json:"intuition" yaml:"intuition"`
	Logic     int `json:"logic" yaml:"logic"`
	Willpower int `json:"willpower" yaml:"willpower"`
}

func (a *Attributes) field(name string) (*int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strength", "str":
		return &a.Strength, nil
	case "agility", "agi":
		return &a.Agility, nil
	case "reaction", "rea":
		return &a.Reaction, nil
	case "body", "bod":
		return &a.Body, nil
	case "charisma", "cha":
		return &a.Charisma, nil
	case "intuition", "int":
		return &a.Intuition, nil
	case "logic", "log":
		return &a.Logic, nil
	case "willpower", "wil":
		return &a.Willpower, nil
	}
	return nil, fmt.Errorf("%w: unknown attribute %q", rules.ErrInvalidArgument, name)
}

// Get returns the named attribute. Three-letter abbreviations are accepted.
func (a Attributes) Get(name string) (int, error) {
	p, err := a.field(name)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// Values returns the attributes in AttributeNames order.
func (a Attributes) Values() []int {
	return []int{a.Strength, a.Agility, a.Reaction, a.Body, a.Charisma, a.Intuition, a.Logic, a.Willpower}
}

// Skill is a rated skill on the sheet.
type Skill struct {
	ID     string `json:"id,omitempty" yaml:"-"`
	Name   string `json:"name" yaml:"name"`
	Rating int    `json:"rating" yaml:"rating"`
}

// Specialization narrows a skill to an area of expertise.
type Specialization struct {
	ID    string `json:"id,omitempty" yaml:"-"`
	Skill string `json:"skill" yaml:"skill"`
	Area  string `json:"specialization" yaml:"specialization"`
}

// Character is a complete character sheet.
type Character struct {
	Name            string           `json:"name" yaml:"name"`
	Attributes      Attributes       `json:"attributes" yaml:"attributes"`
	Edge            int              `json:"edge" yaml:"edge"`
	Skills          []Skill          `json:"skills" yaml:"skills"`
	Specializations []Specialization `json:"specializations" yaml:"specializations"`
}

// New returns a blank sheet: every attribute 3, edge 1, no skills.
func New() *Character {
	a := DefaultAttribute
	return &Character{
		Attributes: Attributes{
			Strength: a, Agility: a, Reaction: a, Body: a,
			Charisma: a, Intuition: a, Logic: a, Willpower: a,
		},
		Edge:            DefaultEdge,
		Skills:          []Skill{},
		Specializations: []Specialization{},
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// SetName replaces the character name, trimming surrounding space.
func (c *Character) SetName(name string) {
	c.Name = strings.TrimSpace(name)
}

// SetAttribute sets the named attribute, clamping value into [1,6].
//
// Postcondition: Returns the stored value, or an error wrapping
// rules.ErrInvalidArgument for an unknown attribute.
func (c *Character) SetAttribute(name string, value int) (int, error) {
	p, err := c.Attributes.field(name)
	if err != nil {
		return 0, err
	}
	*p = clamp(value, MinAttribute, MaxAttribute)
	return *p, nil
}

// AdjustEdge moves edge one step, staying within [0,7].
func (c *Character) AdjustEdge(dir rules.Direction) int {
	switch dir {
	case rules.Increase:
		c.Edge = clamp(c.Edge+1, MinEdge, MaxEdge)
	case rules.Decrease:
		c.Edge = clamp(c.Edge-1, MinEdge, MaxEdge)
	}
	return c.Edge
}

// AddSkill appends a skill with rating clamped into [0,12].
//
// Postcondition: Returns the new skill, or an error wrapping
// rules.ErrInvalidArgument when name is blank.
func (c *Character) AddSkill(name string, rating int) (Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Skill{}, fmt.Errorf("%w: skill name must not be empty", rules.ErrInvalidArgument)
	}
	s := Skill{ID: uuid.NewString(), Name: name, Rating: clamp(rating, MinSkillRating, MaxSkillRating)}
	c.Skills = append(c.Skills, s)
	return s, nil
}

// RemoveSkill deletes the skill at index i.
func (c *Character) RemoveSkill(i int) error {
	if i < 0 || i >= len(c.Skills) {
		return fmt.Errorf("%w: skill index %d (have %d)", rules.ErrIndexOutOfRange, i, len(c.Skills))
	}
	c.Skills = slices.Delete(c.Skills, i, i+1)
	return nil
}

// RemoveSkillByID deletes the skill with the given ID.
func (c *Character) RemoveSkillByID(id string) error {
	i := slices.IndexFunc(c.Skills, func(s Skill) bool { return s.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: no skill with id %q", rules.ErrIndexOutOfRange, id)
	}
	return c.RemoveSkill(i)
}

// Skill finds a skill by case-insensitive name.
func (c *Character) Skill(name string) (Skill, bool) {
	for _, s := range c.Skills {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Skill{}, false
}

// AddSpecialization appends a specialization.
//
// Precondition: skill and area must both be non-blank.
func (c *Character) AddSpecialization(skill, area string) (Specialization, error) {
	skill, area = strings.TrimSpace(skill), strings.TrimSpace(area)
	if skill == "" || area == "" {
		return Specialization{}, fmt.Errorf("%w: specialization needs a skill and an area", rules.ErrInvalidArgument)
	}
	sp := Specialization{ID: uuid.NewString(), Skill: skill, Area: area}
	c.Specializations = append(c.Specializations, sp)
	return sp, nil
}

// RemoveSpecialization deletes the specialization at index i.
func (c *Character) RemoveSpecialization(i int) error {
	if i < 0 || i >= len(c.Specializations) {
		return fmt.Errorf("%w: specialization index %d (have %d)", rules.ErrIndexOutOfRange, i, len(c.Specializations))
	}
	c.Specializations = slices.Delete(c.Specializations, i, i+1)
	return nil
}

// TotalSkillRating sums every skill rating.
func (c *Character) TotalSkillRating() int {
	total := 0
	for _, s := range c.Skills {
		total += s.Rating
	}
	return total
}

// DicePool returns attribute + skill rating for a test. An unrated skill
// contributes nothing. The result is clamped into [dice.MinPool, dice.MaxPool]
// so it is always rollable, even from a hand-edited sheet.
func (c *Character) DicePool(skill, attribute string) (int, error) {
	attr, err := c.Attributes.Get(attribute)
	if err != nil {
		return 0, err
	}
	pool := attr
	if s, ok := c.Skill(skill); ok {
		pool += s.Rating
	}
	return min(max(pool, dice.MinPool), dice.MaxPool), nil
}

// Validate checks the sheet before it is saved.
//
// Postcondition: Returns nil, or an error wrapping rules.ErrInvalidArgument
// that lists every violation.
func (c *Character) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	for i, v := range c.Attributes.Values() {
		if v < MinAttribute || v > MaxAttribute {
			errs = append(errs, fmt.Sprintf("%s must be %d-%d, got %d", AttributeNames[i], MinAttribute, MaxAttribute, v))
		}
	}
	if c.Edge < MinEdge || c.Edge > MaxEdge {
		errs = append(errs, fmt.Sprintf("edge must be %d-%d, got %d", MinEdge, MaxEdge, c.Edge))
	}
	for _, s := range c.Skills {
		if s.Rating < MinSkillRating || s.Rating > MaxSkillRating {
			errs = append(errs, fmt.Sprintf("skill %q rating must be %d-%d, got %d", s.Name, MinSkillRating, MaxSkillRating, s.Rating))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", rules.ErrInvalidArgument, strings.Join(errs, "; "))
	}
	return nil
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	out := *c
	out.Skills = slices.Clone(c.Skills)
	out.Specializations = slices.Clone(c.Specializations)
	if out.Skills == nil {
		out.Skills = []Skill{}
	}
	if out.Specializations == nil {
		out.Specializations = []Specialization{}
	}
	return &out
}

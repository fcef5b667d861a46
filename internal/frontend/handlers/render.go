package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/sixthworld/internal/frontend/telnet"
	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/command"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/initiative"
	"github.com/cory-johannsen/sixthworld/internal/game/roster"
	"github.com/cory-johannsen/sixthworld/internal/game/ruleset"
)

// renderDie colours one final die face: hits green, ones red.
func renderDie(face, threshold int) string {
	s := strconv.Itoa(face)
	switch {
	case face >= threshold:
		return telnet.Styled(s, telnet.Bold, telnet.BrightGreen)
	case face == 1:
		return telnet.Colorize(telnet.Red, s)
	default:
		return s
	}
}

// RenderPool formats a pool roll. Dice re-rolled by edge show their
// original face struck through as "2>5".
func RenderPool(res dice.PoolResult) string {
	sum := res.Summary
	var b strings.Builder

	header := fmt.Sprintf("Pool %d, threshold %d", sum.TotalDice, sum.Threshold)
	if res.UsedEdge {
		header += fmt.Sprintf(", edge (%d re-rolled)", res.RerollCount())
	}
	b.WriteString(telnet.Colorize(telnet.BrightCyan, header))
	b.WriteString("\n")

	faces := make([]string, len(res.Dice))
	for i, face := range res.Dice {
		faces[i] = renderDie(face, sum.Threshold)
		if i < len(res.Rerolled) && res.Rerolled[i] {
			faces[i] = telnet.Colorf(telnet.Dim, "%d>", res.Initial[i]) + faces[i]
		}
	}
	b.WriteString("[" + strings.Join(faces, " ") + "]\n")

	b.WriteString(fmt.Sprintf("Hits: %s  Ones: %d (glitch at %d)",
		telnet.Styled(strconv.Itoa(sum.Successes), telnet.Bold, telnet.BrightGreen),
		sum.Ones, sum.GlitchThreshold))

	switch {
	case sum.CriticalGlitch:
		b.WriteString("\n" + telnet.Styled("CRITICAL GLITCH!", telnet.Bold, telnet.BrightRed))
	case sum.Glitch:
		b.WriteString("\n" + telnet.Styled("GLITCH!", telnet.Bold, telnet.BrightYellow))
	}
	return b.String()
}

// RenderExpression formats an expression roll.
func RenderExpression(res dice.RollResult) string {
	return telnet.Colorize(telnet.BrightCyan, res.String())
}

// TurnCounter returns "N/M" for the current turn, or "-/0" when the
// tracker is empty.
func TurnCounter(t *initiative.Tracker) string {
	if t.Len() == 0 {
		return "-/0"
	}
	return fmt.Sprintf("%d/%d", t.Turn()+1, t.Len())
}

// RenderTracker formats the initiative order with 1-based positions and a
// marker on the entry whose turn it is.
func RenderTracker(t *initiative.Tracker) string {
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightCyan, "Initiative  turn %s", TurnCounter(t)))

	entries := t.Entries()
	if len(entries) == 0 {
		b.WriteString("\n" + telnet.Colorize(telnet.Dim, "  (nobody in the order)"))
		return b.String()
	}

	width := 4
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	for i, e := range entries {
		marker := "  "
		name := telnet.PadRight(e.Name, width)
		if i == t.Turn() {
			marker = telnet.Colorize(telnet.BrightYellow, "> ")
			name = telnet.Styled(name, telnet.Bold)
		}
		line := fmt.Sprintf("\n%s%2d. %s  %3d", marker, i+1, name, e.Score)
		if e.Edge > 0 {
			line += telnet.Colorf(telnet.Magenta, "  edge %d", e.Edge)
		}
		b.WriteString(line)
	}
	return b.String()
}

// RenderSheet formats a character sheet. Skills and specializations carry
// the 1-based positions the remove commands take.
func RenderSheet(c *character.Character) string {
	var b strings.Builder

	name := c.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(telnet.Styled(name, telnet.Bold, telnet.BrightYellow))
	b.WriteString(fmt.Sprintf("  edge %d/%d\n", c.Edge, character.MaxEdge))

	values := c.Attributes.Values()
	cells := make([]string, len(character.AttributeNames))
	for i, attr := range character.AttributeNames {
		cells[i] = fmt.Sprintf("%s %d", strings.ToUpper(attr[:3]), values[i])
	}
	b.WriteString(telnet.Colorize(telnet.Cyan, strings.Join(cells[:4], "  ")) + "\n")
	b.WriteString(telnet.Colorize(telnet.Cyan, strings.Join(cells[4:], "  ")))

	if len(c.Skills) == 0 {
		b.WriteString("\n" + telnet.Colorize(telnet.Dim, "No skills."))
	} else {
		b.WriteString(fmt.Sprintf("\nSkills (total rating %d):", c.TotalSkillRating()))
		for i, s := range c.Skills {
			b.WriteString(fmt.Sprintf("\n  %2d. %s %d", i+1, s.Name, s.Rating))
		}
	}
	if len(c.Specializations) > 0 {
		b.WriteString("\nSpecializations:")
		for i, sp := range c.Specializations {
			b.WriteString(fmt.Sprintf("\n  %2d. %s (%s)", i+1, sp.Skill, sp.Area))
		}
	}
	return b.String()
}

// RenderRoster formats the saved-character list.
func RenderRoster(list []roster.Summary) string {
	if len(list) == 0 {
		return telnet.Colorize(telnet.Dim, "No saved characters.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightCyan, "Saved characters (%d)", len(list)))
	for _, s := range list {
		b.WriteString(fmt.Sprintf("\n  %s  edge %d/%d  skills %d  total rating %d",
			telnet.Styled(s.Name, telnet.Bold), s.Edge, character.MaxEdge, s.SkillCount, s.TotalRating))
	}
	return b.String()
}

// RenderSkills formats the skill catalog.
func RenderSkills(cat *ruleset.Catalog) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightCyan, "Skills"))
	for _, s := range cat.All() {
		b.WriteString(fmt.Sprintf("\n  %-14s %s", s.Name, telnet.Colorize(telnet.Dim, s.Attribute)))
	}
	return b.String()
}

// RenderHelp lists commands grouped by category.
func RenderHelp(r *command.Registry) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightCyan, "Commands"))
	cats := r.CommandsByCategory()
	for _, cat := range command.CategoryOrder {
		cmds := cats[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("\n" + telnet.Colorize(telnet.Yellow, strings.ToUpper(cat)))
		for _, c := range cmds {
			b.WriteString(fmt.Sprintf("\n  %s %s", telnet.Colorize(telnet.Green, c.Name), c.Help))
		}
	}
	b.WriteString("\n" + telnet.Colorize(telnet.Dim, "Type 'help <command>' for usage."))
	return b.String()
}

// RenderCommandHelp shows the usage of one command.
func RenderCommandHelp(c *command.Command) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Green, c.Name))
	if c.Usage != "" {
		b.WriteString(" " + c.Usage)
	}
	b.WriteString("\n  " + c.Help)
	if len(c.Aliases) > 0 {
		b.WriteString("\n  " + telnet.Colorf(telnet.Dim, "aliases: %s", strings.Join(c.Aliases, ", ")))
	}
	return b.String()
}

// RenderError formats a failure message.
func RenderError(msg string) string {
	return telnet.Colorize(telnet.Red, msg)
}

// RenderInfo formats a confirmation message.
func RenderInfo(msg string) string {
	return telnet.Colorize(telnet.Green, msg)
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/command"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/initiative"
	"github.com/cory-johannsen/sixthworld/internal/game/roster"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
	"github.com/cory-johannsen/sixthworld/internal/game/session"
)

// consoleContext carries all inputs a console handler needs.
type consoleContext struct {
	ctx  context.Context
	h    *ConsoleHandler
	tbl  *session.Table
	cmd  *command.Command
	args []string
}

// usageError asks Execute to print the command's usage line.
type usageError struct{}

func (usageError) Error() string { return "usage" }

// consoleHandlerFunc is the signature for all console dispatch functions.
type consoleHandlerFunc func(cc *consoleContext) (Reply, error)

// ConsoleHandlers returns the map from Handler constant to console function.
// Exported so the wiring test can check every built-in command has one.
func ConsoleHandlers() map[string]consoleHandlerFunc {
	return consoleHandlerMap
}

// consoleHandlerMap is the single source of truth for console dispatch.
// To add a command: add it to command.BuiltinCommands AND add an entry here.
var consoleHandlerMap = map[string]consoleHandlerFunc{
	command.HandlerRoll:   handleRoll,
	command.HandlerTest:   handleTest,
	command.HandlerSkills: handleSkills,
	command.HandlerInit:   handleInit,
	command.HandlerChar:   handleChar,
	command.HandlerSave:   handleSave,
	command.HandlerLoad:   handleLoad,
	command.HandlerList:   handleList,
	command.HandlerDelete: handleDelete,
	command.HandlerWipe:   handleWipe,
	command.HandlerHelp:   handleHelp,
	command.HandlerQuit:   handleQuit,
}

func text(s string) (Reply, error) { return Reply{Text: s}, nil }

// parsePosition converts a 1-based position typed by the user into an index.
func parsePosition(arg, what string, n int) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s position %q is not a number", rules.ErrInvalidArgument, what, arg)
	}
	if pos < 1 || pos > n {
		return 0, fmt.Errorf("%w: no %s #%d (have %d)", rules.ErrIndexOutOfRange, what, pos, n)
	}
	return pos - 1, nil
}

// parseRollOptions reads the optional "[threshold] [edge]" tail of roll and
// test, in either order.
func parseRollOptions(args []string, defaultThreshold int) (threshold int, edge bool, err error) {
	threshold = defaultThreshold
	seen := false
	for _, a := range args {
		switch strings.ToLower(a) {
		case "edge", "e", "+edge":
			edge = true
			continue
		}
		v, convErr := strconv.Atoi(a)
		if convErr != nil || seen {
			return 0, false, usageError{}
		}
		threshold, seen = v, true
	}
	return threshold, edge, nil
}

func handleRoll(cc *consoleContext) (Reply, error) {
	if len(cc.args) == 0 {
		return Reply{}, usageError{}
	}
	first := cc.args[0]
	if strings.ContainsAny(first, "dD") {
		if len(cc.args) > 1 {
			return Reply{}, usageError{}
		}
		res, err := cc.h.opts.Roller.Expr(strings.ToLower(first))
		if err != nil {
			return Reply{}, err
		}
		return text(RenderExpression(res))
	}

	size, err := strconv.Atoi(first)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: pool %q is not a number", rules.ErrInvalidArgument, first)
	}
	if size < dice.MinPool || size > dice.MaxPool {
		return Reply{}, fmt.Errorf("%w: pool must be between %d and %d dice", rules.ErrInvalidArgument, dice.MinPool, dice.MaxPool)
	}
	threshold, edge, err := parseRollOptions(cc.args[1:], cc.h.opts.DefaultThreshold)
	if err != nil {
		return Reply{}, err
	}
	return rollPool(cc, dice.PoolRequest{Size: size, Threshold: threshold, UseEdge: edge}, "")
}

func rollPool(cc *consoleContext, req dice.PoolRequest, title string) (Reply, error) {
	res, err := cc.h.opts.Roller.Pool(req)
	if err != nil {
		return Reply{}, err
	}
	cc.tbl.LastPool = &res
	out := RenderPool(res)
	if title != "" {
		out = title + "\n" + out
	}
	return text(out)
}

func handleTest(cc *consoleContext) (Reply, error) {
	if len(cc.args) == 0 {
		return Reply{}, usageError{}
	}
	cat := cc.h.opts.Catalog
	if cat == nil {
		return Reply{}, fmt.Errorf("%w: no skill catalog is loaded", rules.ErrInvalidArgument)
	}
	skill, ok := cat.Lookup(cc.args[0])
	if !ok {
		return Reply{}, fmt.Errorf("%w: unknown skill %q (see 'skills')", rules.ErrInvalidArgument, cc.args[0])
	}
	threshold, edge, err := parseRollOptions(cc.args[1:], cc.h.opts.DefaultThreshold)
	if err != nil {
		return Reply{}, err
	}

	sheet := cc.tbl.Sheet
	pool, err := sheet.DicePool(skill.Name, skill.Attribute)
	if err != nil {
		return Reply{}, err
	}
	attr, _ := sheet.Attributes.Get(skill.Attribute)
	rating := 0
	if s, ok := sheet.Skill(skill.Name); ok {
		rating = s.Rating
	}
	title := fmt.Sprintf("%s test: %s %d + %s %d", sheetName(sheet), skill.Attribute, attr, skill.Name, rating)
	return rollPool(cc, dice.PoolRequest{Size: pool, Threshold: threshold, UseEdge: edge}, title)
}

func sheetName(c *character.Character) string {
	if c.Name == "" {
		return "Unnamed"
	}
	return c.Name
}

func handleSkills(cc *consoleContext) (Reply, error) {
	if cc.h.opts.Catalog == nil {
		return text(RenderError("No skill catalog is loaded."))
	}
	return text(RenderSkills(cc.h.opts.Catalog))
}

func handleInit(cc *consoleContext) (Reply, error) {
	tr := cc.tbl.Tracker
	if len(cc.args) == 0 {
		return text(RenderTracker(tr))
	}
	sub, rest := strings.ToLower(cc.args[0]), cc.args[1:]

	switch sub {
	case "show":
	case "add":
		if len(rest) < 2 {
			return Reply{}, usageError{}
		}
		score, err := initiative.ParseScore(rest[len(rest)-1])
		if err != nil {
			return Reply{}, err
		}
		if _, err := tr.Add(strings.Join(rest[:len(rest)-1], " "), score); err != nil {
			return Reply{}, err
		}
	case "remove", "rm":
		if len(rest) != 1 {
			return Reply{}, usageError{}
		}
		i, err := parsePosition(rest[0], "initiative entry", tr.Len())
		if err != nil {
			return Reply{}, err
		}
		if err := tr.Remove(i); err != nil {
			return Reply{}, err
		}
	case "edge":
		if len(rest) != 2 {
			return Reply{}, usageError{}
		}
		i, err := parsePosition(rest[0], "initiative entry", tr.Len())
		if err != nil {
			return Reply{}, err
		}
		dir, err := rules.ParseDirection(rest[1])
		if err != nil {
			return Reply{}, err
		}
		if err := tr.AdjustEdge(i, dir); err != nil {
			return Reply{}, err
		}
	case "sort":
		tr.Sort()
	case "next", "n":
		if err := tr.Advance(); err != nil {
			return Reply{}, fmt.Errorf("%w: nobody is in the initiative order", rules.ErrEmptyState)
		}
	case "clear":
		tr.Clear()
	default:
		return Reply{}, usageError{}
	}
	return text(RenderTracker(tr))
}

func handleChar(cc *consoleContext) (Reply, error) {
	sheet := cc.tbl.Sheet
	if len(cc.args) == 0 {
		return text(RenderSheet(sheet))
	}
	sub, rest := strings.ToLower(cc.args[0]), cc.args[1:]

	switch sub {
	case "show":
	case "new":
		cc.tbl.ResetSheet()
		sheet = cc.tbl.Sheet
	case "name":
		if len(rest) == 0 {
			return Reply{}, usageError{}
		}
		sheet.SetName(strings.Join(rest, " "))
	case "attr":
		if len(rest) != 2 {
			return Reply{}, usageError{}
		}
		v, err := strconv.Atoi(rest[1])
		if err != nil {
			return Reply{}, fmt.Errorf("%w: attribute value %q is not a number", rules.ErrInvalidArgument, rest[1])
		}
		if _, err := sheet.SetAttribute(rest[0], v); err != nil {
			return Reply{}, err
		}
	case "edge":
		if len(rest) != 1 {
			return Reply{}, usageError{}
		}
		dir, err := rules.ParseDirection(rest[0])
		if err != nil {
			return Reply{}, err
		}
		sheet.AdjustEdge(dir)
	case "skill":
		if err := editSkills(sheet, rest); err != nil {
			return Reply{}, err
		}
	case "spec":
		if err := editSpecializations(sheet, rest); err != nil {
			return Reply{}, err
		}
	case "export":
		data, err := character.EncodeYAML(sheet)
		if err != nil {
			return Reply{}, err
		}
		return text(strings.TrimRight(string(data), "\n"))
	default:
		return Reply{}, usageError{}
	}
	return text(RenderSheet(sheet))
}

// editSkills handles "skill add <name...> <rating>" and "skill remove <n>".
func editSkills(sheet *character.Character, args []string) error {
	if len(args) == 0 {
		return usageError{}
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return usageError{}
		}
		last := args[len(args)-1]
		rating, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("%w: skill rating %q is not a number", rules.ErrInvalidArgument, last)
		}
		_, err = sheet.AddSkill(strings.Join(args[1:len(args)-1], " "), rating)
		return err
	case "remove", "rm":
		if len(args) != 2 {
			return usageError{}
		}
		i, err := parsePosition(args[1], "skill", len(sheet.Skills))
		if err != nil {
			return err
		}
		return sheet.RemoveSkill(i)
	}
	return usageError{}
}

// editSpecializations handles "spec add <skill> <area...>" and "spec remove <n>".
func editSpecializations(sheet *character.Character, args []string) error {
	if len(args) == 0 {
		return usageError{}
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return usageError{}
		}
		_, err := sheet.AddSpecialization(args[1], strings.Join(args[2:], " "))
		return err
	case "remove", "rm":
		if len(args) != 2 {
			return usageError{}
		}
		i, err := parsePosition(args[1], "specialization", len(sheet.Specializations))
		if err != nil {
			return err
		}
		return sheet.RemoveSpecialization(i)
	}
	return usageError{}
}

func handleSave(cc *consoleContext) (Reply, error) {
	force := false
	switch {
	case len(cc.args) == 1 && strings.EqualFold(cc.args[0], "force"):
		force = true
	case len(cc.args) != 0:
		return Reply{}, usageError{}
	}
	sheet := cc.tbl.Sheet
	err := cc.h.opts.Roster.Save(cc.ctx, sheet, force)
	if errors.Is(err, roster.ErrCharacterExists) {
		return text(RenderError(fmt.Sprintf("A character named %q is already saved. Type 'save force' to overwrite it.", sheet.Name)))
	}
	if err != nil {
		return Reply{}, err
	}
	return text(RenderInfo(fmt.Sprintf("Saved %q.", sheet.Name)))
}

func handleLoad(cc *consoleContext) (Reply, error) {
	if len(cc.args) == 0 {
		return Reply{}, usageError{}
	}
	c, err := cc.h.opts.Roster.Load(cc.ctx, strings.Join(cc.args, " "))
	if err != nil {
		return Reply{}, err
	}
	cc.tbl.Sheet = c
	return text(RenderInfo(fmt.Sprintf("Loaded %q for editing.", c.Name)) + "\n" + RenderSheet(c))
}

func handleList(cc *consoleContext) (Reply, error) {
	list, err := cc.h.opts.Roster.List(cc.ctx)
	if err != nil {
		return Reply{}, err
	}
	return text(RenderRoster(list))
}

func handleDelete(cc *consoleContext) (Reply, error) {
	if len(cc.args) == 0 {
		return Reply{}, usageError{}
	}
	name := strings.Join(cc.args, " ")
	if err := cc.h.opts.Roster.Delete(cc.ctx, name); err != nil {
		return Reply{}, err
	}
	return text(RenderInfo(fmt.Sprintf("Deleted %q.", name)))
}

func handleWipe(cc *consoleContext) (Reply, error) {
	if len(cc.args) != 1 || !strings.EqualFold(cc.args[0], "confirm") {
		return text(RenderError("This deletes EVERY saved character and cannot be undone. Type 'wipe confirm' to proceed."))
	}
	if err := cc.h.opts.Roster.Clear(cc.ctx); err != nil {
		return Reply{}, err
	}
	return text(RenderInfo("All saved characters deleted."))
}

func handleHelp(cc *consoleContext) (Reply, error) {
	if len(cc.args) == 0 {
		return text(RenderHelp(cc.h.registry))
	}
	cmd, ok := cc.h.registry.Resolve(cc.args[0])
	if !ok {
		return Reply{}, fmt.Errorf("%w: no command %q", rules.ErrInvalidArgument, cc.args[0])
	}
	return text(RenderCommandHelp(cmd))
}

func handleQuit(*consoleContext) (Reply, error) {
	return Reply{Text: RenderInfo("Goodbye, chummer."), Quit: true}, nil
}

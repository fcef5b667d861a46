// Package command defines the console commands, their aliases, and the
// line parser that splits input into a command and arguments.
package command

// Categories group commands in help output.
const (
	CategoryDice       = "dice"
	CategoryInitiative = "initiative"
	CategorySheet      = "sheet"
	CategoryRoster     = "roster"
	CategorySystem     = "system"
)

// CategoryOrder is the order categories are listed in help.
var CategoryOrder = []string{CategoryDice, CategoryInitiative, CategorySheet, CategoryRoster, CategorySystem}

// Handler identifiers bind commands to console handler functions.
const (
	HandlerRoll   = "roll"
	HandlerTest   = "test"
	HandlerInit   = "init"
	HandlerChar   = "char"
	HandlerSave   = "save"
	HandlerLoad   = "load"
	HandlerList   = "list"
	HandlerDelete = "delete"
	HandlerWipe   = "wipe"
	HandlerSkills = "skills"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown in help.
	Usage string
	// Help is the one-line description.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the console function that runs the command.
	Handler string
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "roll", Aliases: []string{"r"}, Usage: "<pool> [threshold] [edge] | <NdS[khK][+M]>", Help: "Roll a d6 pool, or a dice expression", Category: CategoryDice, Handler: HandlerRoll},
		{Name: "test", Aliases: []string{"t"}, Usage: "<skill> [threshold] [edge]", Help: "Roll attribute + skill for the current sheet", Category: CategoryDice, Handler: HandlerTest},
		{Name: "skills", Aliases: nil, Usage: "", Help: "List the skill catalog", Category: CategoryDice, Handler: HandlerSkills},

		{Name: "init", Aliases: []string{"i", "ini"}, Usage: "add|remove|edge|sort|next|clear|show ...", Help: "Manage the initiative order", Category: CategoryInitiative, Handler: HandlerInit},

		{Name: "char", Aliases: []string{"c", "sheet"}, Usage: "new|name|attr|edge|skill|spec|show|export ...", Help: "Edit the current character sheet", Category: CategorySheet, Handler: HandlerChar},

		{Name: "save", Aliases: nil, Usage: "[force]", Help: "Save the current sheet to the roster", Category: CategoryRoster, Handler: HandlerSave},
		{Name: "load", Aliases: nil, Usage: "<name>", Help: "Load a saved sheet", Category: CategoryRoster, Handler: HandlerLoad},
		{Name: "list", Aliases: []string{"ls"}, Usage: "", Help: "List saved sheets", Category: CategoryRoster, Handler: HandlerList},
		{Name: "delete", Aliases: []string{"del", "rm"}, Usage: "<name>", Help: "Delete a saved sheet", Category: CategoryRoster, Handler: HandlerDelete},
		{Name: "wipe", Aliases: nil, Usage: "confirm", Help: "Delete every saved sheet", Category: CategoryRoster, Handler: HandlerWipe},

		{Name: "help", Aliases: []string{"?"}, Usage: "[command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Usage: "", Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}

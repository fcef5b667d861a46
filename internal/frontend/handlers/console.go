// Package handlers implements the table console: a telnet.SessionHandler
// that turns command lines into calls on the dice engine, the initiative
// tracker, the character sheet and the roster, and renders the results.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/frontend/telnet"
	"github.com/cory-johannsen/sixthworld/internal/game/command"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/roster"
	"github.com/cory-johannsen/sixthworld/internal/game/ruleset"
	"github.com/cory-johannsen/sixthworld/internal/game/rules"
	"github.com/cory-johannsen/sixthworld/internal/game/session"
)

const banner = `
` + telnet.BrightCyan + `  //  SIXTH WORLD  //  table console` + telnet.Reset + `

  Type ` + telnet.Green + `help` + telnet.Reset + ` for commands, ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// Prompt is written before every command line.
const Prompt = "sixthworld> "

// Options configures a ConsoleHandler.
type Options struct {
	// Roller rolls every pool and expression. Required.
	Roller *dice.Roller
	// Roster stores saved sheets. Required.
	Roster *roster.Roster
	// Catalog resolves skills for the test command. Nil disables it.
	Catalog *ruleset.Catalog
	// Tables tracks open connections. Required.
	Tables *session.Manager
	// DefaultThreshold is used when a roll names none. Zero selects
	// dice.DefaultThreshold.
	DefaultThreshold int
	// Logger is required.
	Logger *zap.Logger
}

// ConsoleHandler implements telnet.SessionHandler.
type ConsoleHandler struct {
	opts     Options
	registry *command.Registry
}

// NewConsoleHandler creates a ConsoleHandler.
//
// Precondition: opts.Roller, opts.Roster, opts.Tables and opts.Logger must be non-nil.
func NewConsoleHandler(opts Options) *ConsoleHandler {
	if opts.DefaultThreshold == 0 {
		opts.DefaultThreshold = dice.DefaultThreshold
	}
	return &ConsoleHandler{opts: opts, registry: command.DefaultRegistry()}
}

// Reply is the outcome of one command line.
type Reply struct {
	// Text is the rendered output; may be empty.
	Text string
	// Quit ends the session after Text is written.
	Quit bool
}

// HandleSession implements telnet.SessionHandler. It opens a table for the
// connection and runs commands until the client quits or ctx is cancelled.
//
// Postcondition: the table is closed. Returns nil on a clean quit.
func (h *ConsoleHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	tbl := h.opts.Tables.Open(conn.RemoteAddr().String())
	log := h.opts.Logger.With(zap.String("table", tbl.ID))
	defer func() {
		_ = h.opts.Tables.Close(tbl.ID)
		log.Info("table closed", zap.Duration("duration", time.Since(start)))
	}()
	log.Info("table opened", zap.String("remote_addr", tbl.RemoteAddr))

	if err := conn.WriteLine(banner); err != nil {
		return fmt.Errorf("sending banner: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down."))
			return err
		}
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, Prompt)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		reply := h.Execute(ctx, tbl, line)
		if reply.Text != "" {
			if err := conn.WriteLine(reply.Text); err != nil {
				return fmt.Errorf("writing reply: %w", err)
			}
		}
		if reply.Quit {
			return nil
		}
	}
}

// Execute runs one command line against tbl. Failures are rendered into
// the reply; Execute itself never fails.
func (h *ConsoleHandler) Execute(ctx context.Context, tbl *session.Table, line string) Reply {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return Reply{}
	}
	cmd, ok := h.registry.Resolve(parsed.Command)
	if !ok {
		msg := fmt.Sprintf("Unknown command %q.", parsed.Command)
		if name, ok := h.registry.Suggest(parsed.Command); ok {
			return Reply{Text: RenderError(fmt.Sprintf("%s Did you mean %q?", msg, name))}
		}
		return Reply{Text: RenderError(msg + " Type 'help' for commands.")}
	}
	fn, ok := consoleHandlerMap[cmd.Handler]
	if !ok {
		h.opts.Logger.Error("command has no handler", zap.String("command", cmd.Name))
		return Reply{Text: RenderError("That command is not available.")}
	}

	reply, err := fn(&consoleContext{ctx: ctx, h: h, tbl: tbl, cmd: cmd, args: parsed.Args})
	if err != nil {
		return Reply{Text: h.describeError(cmd, err)}
	}
	return reply
}

// describeError renders err for the user. Rule violations are the user's
// to fix; anything else is logged as a server fault.
func (h *ConsoleHandler) describeError(cmd *command.Command, err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return RenderError(fmt.Sprintf("Usage: %s %s", cmd.Name, cmd.Usage))
	case errors.Is(err, rules.ErrInvalidArgument),
		errors.Is(err, rules.ErrIndexOutOfRange),
		errors.Is(err, rules.ErrEmptyState),
		errors.Is(err, roster.ErrCharacterNotFound),
		errors.Is(err, roster.ErrCharacterExists):
		return RenderError(err.Error())
	}
	h.opts.Logger.Error("command failed", zap.String("command", cmd.Name), zap.Error(err))
	return RenderError("Something went wrong: " + err.Error())
}

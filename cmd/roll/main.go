// Package main is a one-shot dice roller for the command line.
//
//	roll -pool 12 -edge
//	roll -pool 8 -threshold 4 -seed 99
//	roll -expr 4d6kh3
//	roll -sheet wraith.yaml -skill firearms
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/config"
	"github.com/cory-johannsen/sixthworld/internal/frontend/handlers"
	"github.com/cory-johannsen/sixthworld/internal/frontend/telnet"
	"github.com/cory-johannsen/sixthworld/internal/game/character"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/ruleset"
	"github.com/cory-johannsen/sixthworld/internal/observability"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "roll:", err)
		}
		os.Exit(2)
	}
}

type options struct {
	pool      int
	threshold int
	edge      bool
	seed      dice.Seed
	expr      string
	sheet     string
	skill     string
	skills    string
	plain     bool
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("roll", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.pool, "pool", 0, "number of d6 in the pool (1-50)")
	fs.IntVar(&o.threshold, "threshold", 0, "success threshold 1-6 (0 = default 5)")
	fs.BoolVar(&o.edge, "edge", false, "re-roll every 1 and 2 once")
	fs.Var(&o.seed, "seed", "replay seed (default: crypto randomness)")
	fs.StringVar(&o.expr, "expr", "", "dice expression such as 2d6+3 or 4d6kh3")
	fs.StringVar(&o.sheet, "sheet", "", "character sheet YAML for a skill test")
	fs.StringVar(&o.skill, "skill", "", "skill to test from -sheet")
	fs.StringVar(&o.skills, "skills", "content/skills.yaml", "skill catalog YAML")
	fs.BoolVar(&o.plain, "plain", false, "disable ANSI colour")
	fs.BoolVar(&o.verbose, "v", false, "log every draw to stderr")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	modes := 0
	for _, set := range []bool{o.pool != 0, o.expr != "", o.sheet != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return o, errors.New("exactly one of -pool, -expr or -sheet is required")
	}
	if (o.sheet == "") != (o.skill == "") {
		return o, errors.New("-sheet and -skill go together")
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(config.LoggingConfig{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	roller := dice.NewLoggedRoller(o.seed.Source(), logger)

	out, err := roll(o, roller, logger)
	if err != nil {
		return err
	}
	if o.plain {
		out = telnet.StripANSI(out)
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func roll(o options, roller *dice.Roller, logger *zap.Logger) (string, error) {
	switch {
	case o.expr != "":
		res, err := roller.Expr(o.expr)
		if err != nil {
			return "", err
		}
		return handlers.RenderExpression(res), nil

	case o.sheet != "":
		data, err := os.ReadFile(o.sheet)
		if err != nil {
			return "", err
		}
		c, err := character.DecodeYAML(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", o.sheet, err)
		}
		catalog, err := ruleset.LoadSkills(o.skills)
		if err != nil {
			return "", err
		}
		skill, ok := catalog.Lookup(o.skill)
		if !ok {
			return "", fmt.Errorf("unknown skill %q", o.skill)
		}
		size, err := c.DicePool(skill.Name, skill.Attribute)
		if err != nil {
			return "", err
		}
		logger.Debug("skill test", zap.String("character", c.Name), zap.String("skill", skill.Name), zap.Int("pool", size))
		res, err := roller.Pool(dice.PoolRequest{Size: size, Threshold: o.threshold, UseEdge: o.edge})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s (%s)\n%s", c.Name, skill.Name, skill.Attribute, handlers.RenderPool(res)), nil
	}

	res, err := roller.Pool(dice.PoolRequest{Size: o.pool, Threshold: o.threshold, UseEdge: o.edge})
	if err != nil {
		return "", err
	}
	return handlers.RenderPool(res), nil
}

// Command migrate manages the table server's PostgreSQL schema.
//
//	migrate [-config path] [-source url] up|down|version|force <v> [steps]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/config"
	"github.com/cory-johannsen/sixthworld/internal/observability"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	source := fs.String("source", "file://migrations", "migration source URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	op, err := parseOp(fs.Args())
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	m, err := migrate.New(*source, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger.Sugar()}

	start := time.Now()
	err = op.apply(m)
	unchanged := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !unchanged {
		return fmt.Errorf("%s: %w", op.name, err)
	}

	version, dirty, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		fmt.Fprintln(stdout, "no migrations applied")
		return nil
	}
	if verr != nil {
		return fmt.Errorf("reading version: %w", verr)
	}
	status := "ok"
	if unchanged {
		status = "no change"
	}
	fmt.Fprintf(stdout, "%s: %s, version %d dirty=%t [%s]\n", op.name, status, version, dirty, time.Since(start).Round(time.Millisecond))
	return nil
}

// operation is one parsed migrate sub-command.
type operation struct {
	name  string
	apply func(*migrate.Migrate) error
}

// parseOp turns the positional arguments into an operation. "up" and "down"
// take an optional step count; "force" takes the version to mark clean.
func parseOp(args []string) (operation, error) {
	if len(args) == 0 {
		return operation{name: "up", apply: (*migrate.Migrate).Up}, nil
	}
	name, rest := args[0], args[1:]
	n := 0
	if len(rest) > 0 {
		v, err := strconv.Atoi(rest[0])
		if err != nil {
			return operation{}, fmt.Errorf("%s: %q is not a number", name, rest[0])
		}
		n = v
	}
	switch name {
	case "up":
		if n > 0 {
			return operation{name: name, apply: func(m *migrate.Migrate) error { return m.Steps(n) }}, nil
		}
		return operation{name: name, apply: (*migrate.Migrate).Up}, nil
	case "down":
		if n > 0 {
			return operation{name: name, apply: func(m *migrate.Migrate) error { return m.Steps(-n) }}, nil
		}
		return operation{name: name, apply: (*migrate.Migrate).Down}, nil
	case "version":
		return operation{name: name, apply: func(*migrate.Migrate) error { return nil }}, nil
	case "force":
		if len(rest) == 0 {
			return operation{}, errors.New("force: a version is required")
		}
		return operation{name: name, apply: func(m *migrate.Migrate) error { return m.Force(n) }}, nil
	}
	return operation{}, fmt.Errorf("unknown operation %q: want up, down, version or force", name)
}

// migrateLogger adapts zap to migrate.Logger.
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...any) { l.s.Infof(format, v...) }

func (l migrateLogger) Verbose() bool { return l.s.Desugar().Core().Enabled(zap.DebugLevel) }

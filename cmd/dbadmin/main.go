package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/edvin/hostadmin/internal/cliutil"
	"github.com/edvin/hostadmin/internal/config"
	"github.com/edvin/hostadmin/internal/db"
	"github.com/edvin/hostadmin/internal/logging"
	"github.com/edvin/hostadmin/internal/maria"
	"github.com/edvin/hostadmin/internal/pgsql"
	"github.com/edvin/hostadmin/internal/result"
	"github.com/edvin/hostadmin/internal/secrets"
)

// accountManager is satisfied by both engine managers.
type accountManager interface {
	CreateUser(ctx context.Context, name string) (result.Result[secrets.Password], error)
	ResetPassword(ctx context.Context, name string) (result.Result[secrets.Password], error)
	DropUser(ctx context.Context, name string) (result.Result[struct{}], error)
	GrantDatabase(ctx context.Context, user, database string) (result.Result[struct{}], error)
	RevokeDatabase(ctx context.Context, user, database string) (result.Result[struct{}], error)
	CreateDatabase(ctx context.Context, name string) (result.Result[struct{}], error)
	ListDatabases(ctx context.Context, like string) ([]string, error)
	DropDatabase(ctx context.Context, name string) (result.Result[struct{}], error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	engine := fs.String("engine", "maria", "Database engine: maria or pgsql")
	profilePath := fs.String("profile", "", "Path to YAML connection profile")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if *profilePath != "" {
		profile, err := config.LoadProfile(*profilePath)
		if err != nil {
			fatal(err)
		}
		profile.Apply(cfg)
		*engine = profile.Engine
	}

	logger := logging.NewLogger(cfg)
	ctx := context.Background()

	var mgr accountManager
	var cleanup func()
	switch *engine {
	case "maria":
		if cfg.MariaDSN == "" {
			fatal(errors.New("MARIA_DSN is not set"))
		}
		conn, err := db.OpenMaria(ctx, cfg.MariaDSN)
		if err != nil {
			fatal(err)
		}
		cleanup = func() { conn.Close() }
		mgr = maria.NewManager(maria.Wrap(conn), logger)
	case "pgsql":
		if cfg.PostgresURL == "" {
			fatal(errors.New("POSTGRES_URL is not set"))
		}
		pool, err := db.NewAccountPool(ctx, cfg.PostgresURL)
		if err != nil {
			fatal(err)
		}
		cleanup = func() { pool.Close() }
		mgr = pgsql.NewManager(pool, logger)
	default:
		fatal(fmt.Errorf("unknown engine: %s", *engine))
	}

	err = run(ctx, mgr, command, fs.Args())
	cleanup()
	if err != nil {
		if errors.Is(err, cliutil.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted.")
			os.Exit(1)
		}
		fatal(err)
	}
}

func run(ctx context.Context, mgr accountManager, command string, args []string) error {
	prompt := cliutil.NewPrompt()

	switch command {
	case "create-user":
		name := oneArg(command, "NAME", args)
		res, err := mgr.CreateUser(ctx, name)
		if err != nil {
			return err
		}
		if res.Changed() {
			fmt.Printf("created user %s\npassword: %s\n", name, res.Value)
		} else {
			fmt.Printf("user %s already exists\n", name)
		}

	case "reset-password":
		name := oneArg(command, "NAME", args)
		res, err := mgr.ResetPassword(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("reset password for %s\npassword: %s\n", name, res.Value)

	case "drop-user":
		name := oneArg(command, "NAME", args)
		if err := prompt.Confirm(fmt.Sprintf("Drop user %s?", name)); err != nil {
			return err
		}
		res, err := mgr.DropUser(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("drop user %s: %s\n", name, res.State)

	case "grant":
		user, database := twoArgs(command, "USER DATABASE", args)
		res, err := mgr.GrantDatabase(ctx, user, database)
		if err != nil {
			return err
		}
		fmt.Printf("grant %s on %s: %s\n", user, database, res.State)

	case "revoke":
		user, database := twoArgs(command, "USER DATABASE", args)
		res, err := mgr.RevokeDatabase(ctx, user, database)
		if err != nil {
			return err
		}
		fmt.Printf("revoke %s on %s: %s\n", user, database, res.State)

	case "create-database":
		name := oneArg(command, "NAME", args)
		res, err := mgr.CreateDatabase(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("create database %s: %s\n", name, res.State)

	case "list-databases":
		like := "%"
		if len(args) > 0 {
			like = args[0]
		}
		names, err := mgr.ListDatabases(ctx, like)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}

	case "drop-database":
		name := oneArg(command, "NAME", args)
		if err := prompt.Confirm(fmt.Sprintf("Drop database %s and all of its tables?", name)); err != nil {
			return err
		}
		res, err := mgr.DropDatabase(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("drop database %s: %s\n", name, res.State)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	return nil
}

func oneArg(command, usage string, args []string) string {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: dbadmin %s [flags] %s\n", command, usage)
		os.Exit(1)
	}
	return args[0]
}

func twoArgs(command, usage string, args []string) (string, string) {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: dbadmin %s [flags] %s\n", command, usage)
		os.Exit(1)
	}
	return args[0], args[1]
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  dbadmin create-user [flags] NAME
  dbadmin reset-password [flags] NAME
  dbadmin drop-user [flags] NAME
  dbadmin grant [flags] USER DATABASE
  dbadmin revoke [flags] USER DATABASE
  dbadmin create-database [flags] NAME
  dbadmin list-databases [flags] [PATTERN]
  dbadmin drop-database [flags] NAME

Commands:
  create-user      Create a database user with a generated password
  reset-password   Generate and set a new password for an existing user
  drop-user        Drop a user and all of its grants
  grant            Grant all privileges on a database to a user
  revoke           Revoke a user's privileges on a database
  create-database  Create a database (no privileges granted)
  list-databases   List databases matching a LIKE pattern
  drop-database    Drop a database and all of its tables

Flags:
  -engine string   Database engine: maria or pgsql (default "maria")
  -profile string  Path to YAML connection profile`)
}

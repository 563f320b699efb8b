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
	"github.com/edvin/hostadmin/internal/membership"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	fs.Parse(os.Args[2:])
	args := fs.Args()

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if cfg.MemberDatabaseDSN == "" {
		fatal(errors.New("MEMBER_DATABASE_DSN is not set"))
	}

	logger := logging.NewLogger(cfg)
	ctx := context.Background()

	bdb, err := db.OpenMemberDB(ctx, cfg.MemberDatabaseDSN)
	if err != nil {
		fatal(err)
	}
	defer bdb.Close()

	store := membership.NewStore(bdb)
	scripts := membership.NewScripts(
		membership.NewManager(bdb, logger),
		cliutil.NewPrompt(),
		logger,
	)

	err = run(ctx, store, scripts, command, args)
	if err != nil {
		if errors.Is(err, cliutil.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted.")
			os.Exit(1)
		}
		fatal(err)
	}
}

func run(ctx context.Context, store *membership.Store, scripts *membership.Scripts, command string, args []string) error {
	switch command {
	case "grant-admin":
		member, society, err := resolvePair(ctx, store, command, args)
		if err != nil {
			return err
		}
		return scripts.GrantAdmin(ctx, member, society)

	case "revoke-admin":
		member, society, err := resolvePair(ctx, store, command, args)
		if err != nil {
			return err
		}
		return scripts.RevokeAdmin(ctx, member, society)

	case "delete":
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: groupadmin delete SOCIETY\n")
			os.Exit(1)
		}
		society, err := store.GetSociety(ctx, args[0])
		if err != nil {
			return err
		}
		return scripts.DeleteGroup(ctx, society)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
		return nil
	}
}

func resolvePair(ctx context.Context, store *membership.Store, command string, args []string) (*membership.Member, *membership.Society, error) {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: groupadmin %s CRSID SOCIETY\n", command)
		os.Exit(1)
	}
	member, err := store.GetMember(ctx, args[0])
	if err != nil {
		return nil, nil, err
	}
	society, err := store.GetSociety(ctx, args[1])
	if err != nil {
		return nil, nil, err
	}
	return member, society, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  groupadmin grant-admin CRSID SOCIETY
  groupadmin revoke-admin CRSID SOCIETY
  groupadmin delete SOCIETY

Commands:
  grant-admin   Add a member to a group account's admins
  revoke-admin  Remove a member from a group account's admins
  delete        Delete a group account and its records

The member record store is taken from MEMBER_DATABASE_DSN.`)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/storage"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	logger    core.Logger
	out       io.Writer
	openDB    func(ctx context.Context) (*sql.DB, error)
	openStore func(ctx context.Context) (*storage.Store, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|down|status                                - manage the postgres schema")
	fmt.Fprintln(cli.out, "  seed                                                  - insert the demo data set into the configured store")
	fmt.Fprintln(cli.out, "  export students -format csv|xlsx [-search S] [-status S] [-o FILE]")
	fmt.Fprintln(cli.out, "  export gradebook -class ID [-o FILE]                  - write the gradebook of a class as xlsx")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2])
	case "seed":
		return cli.seed(ctx)
	case "export":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.export(ctx, args[2], args[3:])
	default:
		cli.printUsage()
		return errHelp
	}
}

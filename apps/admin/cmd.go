package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/upload"
)

var (
	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("migrations need the postgres catalog driver")
)

type commandLine struct {
	ctx     context.Context
	out     io.Writer
	db      *sql.DB // nil unless the catalog lives in postgres
	catalog *catalog.Service
	uploads *upload.Client
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]             - run a goose migration command (up, down, status...)")
	fmt.Fprintln(cli.out, "  seed -file FILE                    - load products from a JSON array")
	fmt.Fprintln(cli.out, "  accounts                           - list the configured image host accounts")
	fmt.Fprintln(cli.out, "  upload -file FILE [-folder FOLDER] - upload an image with account failover")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedFile := seedCmd.String("file", "", "Path to a JSON array of products.")

	uploadCmd := flag.NewFlagSet("upload", flag.ExitOnError)
	uploadFile := uploadCmd.String("file", "", "Path to the image to upload.")
	uploadFolder := uploadCmd.String("folder", upload.DefaultFolder, "Destination folder.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)
	case "accounts":
		cli.accounts()
		return nil
	case "upload":
		if err := uploadCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *uploadFile == "" {
			uploadCmd.Usage()
			return errHelp
		}
		return cli.upload(*uploadFile, *uploadFolder)
	default:
		cli.printUsage()
		return errHelp
	}
}

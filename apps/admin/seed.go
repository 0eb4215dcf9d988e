package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) seed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening products file")
	}
	defer func() { _ = f.Close() }()

	prods, err := cli.catalog.Seed(cli.ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "seeded %d products\n", len(prods))
	return nil
}

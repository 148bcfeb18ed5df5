package main

import (
	"os"

	"github.com/hakobayato/ldadf/cli"
)

func main() {
	if err := cli.New().Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

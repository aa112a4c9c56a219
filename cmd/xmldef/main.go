package main

import (
	"fmt"
	"os"

	"github.com/viant/afs"

	"github.com/0muji4/xmldef/internal/cli"
)

func main() {
	if err := cli.New(afs.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xmldef:", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/eventledger/eventledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

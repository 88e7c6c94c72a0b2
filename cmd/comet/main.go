package main

import (
	"os"

	"github.com/dshills/comet/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

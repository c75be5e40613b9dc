package main

import (
	"os"

	"github.com/brandonbloom/testwrap/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}

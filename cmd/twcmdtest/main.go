// twcmdtest runs a command in a disposable work directory and checks that
// no staged test files survive it. See internal/twcmdtest.
package main

import (
	"os"

	"github.com/brandonbloom/testwrap/internal/twcmdtest"
)

func main() {
	os.Exit(twcmdtest.Main(os.Args[1:]))
}

// Command cryptoboxctl is a thin CLI over a single cryptobox container:
// create it, open it, and inspect or mutate its namespace tree.
package main

import (
	"fmt"
	"os"

	"github.com/cryptobox/cryptobox/cmd/cryptoboxctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

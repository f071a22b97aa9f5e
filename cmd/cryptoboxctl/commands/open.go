package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the container and print its info",
	Long: `Open validates the container's password and schema, then prints
its path and current data-usage preferences (write mode, cluster size).

Every other cryptoboxctl subcommand opens the container itself for the
duration of that single command; there is no persistent "current
session" between invocations.`,
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	c, err := openExisting()
	if err != nil {
		return err
	}
	defer c.Close()

	info, err := c.Info()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:                %s\n", info.Path)
	fmt.Fprintf(out, "transactional write: %v\n", info.Preferences.TransactionalWrite)
	fmt.Fprintf(out, "cluster size:        %d bytes\n", info.Preferences.ClusterLevel.Bytes())
	return nil
}

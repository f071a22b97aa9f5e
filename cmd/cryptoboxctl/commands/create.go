package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/internal/cli/prompt"
	"github.com/cryptobox/cryptobox/pkg/container"
)

var (
	createTransactional bool
	createClusterSize   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new, empty container",
	Long: `Create initializes a fresh metadata.db/payload.dat pair in the
--container directory, which must not already hold a container.

The password is never taken on the command line; create always prompts
for it (with confirmation) on the terminal.`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().BoolVar(&createTransactional, "transactional", false, "default new files to transactional writes")
	createCmd.Flags().StringVar(&createClusterSize, "cluster-size", "min", "default cluster-size level: min, 64k, 256k, 1m, max")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prefs, err := cfg.DataUsagePreferences()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("transactional") {
		prefs.TransactionalWrite = createTransactional
	}
	if cmd.Flags().Changed("cluster-size") {
		level, err := clusterLevelFlag(createClusterSize)
		if err != nil {
			return err
		}
		prefs.ClusterLevel = level
	}

	password, err := prompt.NewPassword()
	if err != nil {
		return handlePromptErr(err)
	}

	c, err := container.Create(containerDir, password, prefs)
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "created container at %s\n", containerDir)
	return nil
}

// Package commands implements the cryptoboxctl CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/config"
)

var (
	cfgFile      string
	containerDir string
)

var rootCmd = &cobra.Command{
	Use:   "cryptoboxctl",
	Short: "Inspect and manipulate a cryptobox encrypted container",
	Long: `cryptoboxctl operates on a single cryptobox container: a pair of
files (metadata.db, payload.dat) in a directory, holding an encrypted
folder/file/symlink/direct-link tree.

Use "cryptoboxctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/cryptobox/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&containerDir, "container", ".", "container directory")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(lnCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	config.InitLogging(cfg)
	return cfg, nil
}

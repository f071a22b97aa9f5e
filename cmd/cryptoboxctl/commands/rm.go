package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove an element",
	Long: `rm removes the element at path. Folders are removed recursively
along with their descendants; the root cannot be removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	path := args[0]

	c, err := openExisting()
	if err != nil {
		return err
	}
	defer c.Close()

	elem, err := c.GetElement(path)
	if err != nil {
		return err
	}
	if elem == nil {
		return fmt.Errorf("%s: no such element", path)
	}
	return elem.Remove()
}

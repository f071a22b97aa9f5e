package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/namespace"
)

var mvCmd = &cobra.Command{
	Use:   "mv <path> <new-parent-path>",
	Short: "Reparent an element under a different folder",
	Long: `mv moves the element at path so that it becomes a child of the
folder at newParentPath, keeping its current name. Use "rename" within
the same folder is not supported by this command; create a differently
named copy with put instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

func runMv(cmd *cobra.Command, args []string) error {
	path, newParentPath := args[0], args[1]

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

	parentElem, err := c.GetElement(newParentPath)
	if err != nil {
		return err
	}
	if parentElem == nil {
		return fmt.Errorf("%s: no such folder", newParentPath)
	}
	parentType, err := parentElem.Type()
	if err != nil {
		return err
	}
	if parentType != namespace.TypeFolder {
		return fmt.Errorf("%s: not a folder", newParentPath)
	}

	newParent := &namespace.Folder{Element: *parentElem}
	return elem.MoveToEntry(newParent)
}

package commands

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/namespace"
)

var lnDirect bool

var lnCmd = &cobra.Command{
	Use:   "ln <target-path> <link-path>",
	Short: "Create a symlink or direct-link",
	Long: `ln creates linkPath as a new link pointing at targetPath. By
default it creates a SymLink, whose target is re-resolved by path on
every access and need not currently exist. With --direct it creates a
DirectLink instead, bound to targetPath's element id at creation time;
targetPath must already exist.`,
	Args: cobra.ExactArgs(2),
	RunE: runLn,
}

func init() {
	lnCmd.Flags().BoolVar(&lnDirect, "direct", false, "create a DirectLink bound to the target's id instead of a path-based SymLink")
}

func runLn(cmd *cobra.Command, args []string) error {
	targetPath, linkPath := args[0], args[1]

	c, err := openExisting()
	if err != nil {
		return err
	}
	defer c.Close()

	parentPath, name := path.Split(linkPath)
	if name == "" {
		return fmt.Errorf("%s: not a valid link path", linkPath)
	}
	if len(parentPath) > 1 {
		parentPath = parentPath[:len(parentPath)-1]
	}
	parentElem, err := c.GetElement(parentPath)
	if err != nil {
		return err
	}
	if parentElem == nil {
		return fmt.Errorf("%s: parent folder does not exist", linkPath)
	}
	parentType, err := parentElem.Type()
	if err != nil {
		return err
	}
	if parentType != namespace.TypeFolder {
		return fmt.Errorf("%s: parent is not a folder", linkPath)
	}
	parent := &namespace.Folder{Element: *parentElem}

	if lnDirect {
		target, err := c.GetElement(targetPath)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%s: no such element", targetPath)
		}
		_, err = parent.CreateDirectLink(name, "", target)
		return err
	}

	_, err = parent.CreateSymLink(name, "", targetPath)
	return err
}

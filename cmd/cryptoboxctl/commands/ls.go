package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/namespace"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder's children",
	Long:  `ls resolves path (default "/") and lists its immediate children.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	path := namespace.Separator
	if len(args) == 1 {
		path = args[0]
	}

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
	typ, err := elem.Type()
	if err != nil {
		return err
	}
	if typ != namespace.TypeFolder {
		return fmt.Errorf("%s: not a folder", path)
	}

	folder := &namespace.Folder{Element: *elem}
	it, err := folder.Iterator()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for it.HasNext() {
		child, childType, err := it.Next()
		if err != nil {
			return err
		}
		name, err := child.Name()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-6s %s\n", typeLabel(childType), name)
	}
	return nil
}

func typeLabel(t namespace.Type) string {
	switch t {
	case namespace.TypeFolder:
		return "dir"
	case namespace.TypeFile:
		return "file"
	case namespace.TypeSymLink:
		return "link"
	case namespace.TypeDirectLink:
		return "dlink"
	default:
		return "?"
	}
}

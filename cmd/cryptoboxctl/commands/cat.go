package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/progress"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's content to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

func runCat(cmd *cobra.Command, args []string) error {
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
	typ, err := elem.Type()
	if err != nil {
		return err
	}
	if typ != namespace.TypeFile {
		return fmt.Errorf("%s: not a file", path)
	}

	file := &namespace.File{Element: *elem}
	size, err := file.Size()
	if err != nil {
		return err
	}

	_, err = file.Read(cmd.OutOrStdout(), size, progress.NopObserver{})
	return err
}

package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/cryptobox/cryptobox/pkg/container"
	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/progress"
)

var putCmd = &cobra.Command{
	Use:   "put <local-file> <container-path>",
	Short: "Write a local file's content into the container",
	Long: `put reads localFile from the host filesystem and writes its full
content into containerPath, creating containerPath as a new file if it
does not already exist (its parent folder must exist).`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath, containerPath := args[0], args[1]

	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()
	stat, err := src.Stat()
	if err != nil {
		return err
	}

	c, err := openExisting()
	if err != nil {
		return err
	}
	defer c.Close()

	file, err := resolveOrCreateFile(c, containerPath)
	if err != nil {
		return err
	}

	n, err := file.Write(src, stat.Size(), progress.NopObserver{})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", n, containerPath)
	return nil
}

// resolveOrCreateFile returns the File at containerPath, creating it (and
// requiring its parent folder to already exist) if absent.
func resolveOrCreateFile(c *container.Container, containerPath string) (*namespace.File, error) {
	elem, err := c.GetElement(containerPath)
	if err != nil {
		return nil, err
	}
	if elem != nil {
		typ, err := elem.Type()
		if err != nil {
			return nil, err
		}
		if typ != namespace.TypeFile {
			return nil, fmt.Errorf("%s: exists and is not a file", containerPath)
		}
		return &namespace.File{Element: *elem}, nil
	}

	parentPath, name := path.Split(containerPath)
	if name == "" {
		return nil, fmt.Errorf("%s: not a valid file path", containerPath)
	}
	if len(parentPath) > 1 {
		parentPath = parentPath[:len(parentPath)-1]
	}
	parentElem, err := c.GetElement(parentPath)
	if err != nil {
		return nil, err
	}
	if parentElem == nil {
		return nil, fmt.Errorf("%s: parent folder does not exist", containerPath)
	}
	parentType, err := parentElem.Type()
	if err != nil {
		return nil, err
	}
	if parentType != namespace.TypeFolder {
		return nil, fmt.Errorf("%s: parent is not a folder", containerPath)
	}
	parent := &namespace.Folder{Element: *parentElem}
	return parent.CreateFile(name, "")
}

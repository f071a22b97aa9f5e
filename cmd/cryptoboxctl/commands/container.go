package commands

import (
	"errors"
	"fmt"

	"github.com/cryptobox/cryptobox/internal/cli/prompt"
	"github.com/cryptobox/cryptobox/pkg/container"
)

// openExisting opens the container at containerDir, always prompting for
// its password on the terminal.
func openExisting() (*container.Container, error) {
	password, err := prompt.Password("Container password")
	if err != nil {
		return nil, handlePromptErr(err)
	}
	return container.Open(containerDir, password)
}

func handlePromptErr(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		return fmt.Errorf("aborted")
	}
	return err
}

// Package prompt provides interactive terminal prompts for cryptoboxctl.
package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// ErrPasswordMismatch indicates a New/confirmation password pair didn't match.
var ErrPasswordMismatch = errors.New("passwords do not match")

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return err
}

// Password prompts for a password input with masking, no length requirement.
// Used to unlock an existing container.
func Password(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	result, err := prompt.Run()
	return result, wrapError(err)
}

// NewPassword prompts for a fresh container password with confirmation,
// rejecting anything under 8 characters. Used by "create".
func NewPassword() (string, error) {
	first := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			return nil
		},
	}
	password, err := first.Run()
	if err != nil {
		return "", wrapError(err)
	}

	confirm := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
	}
	confirmed, err := confirm.Run()
	if err != nil {
		return "", wrapError(err)
	}
	if password != confirmed {
		return "", ErrPasswordMismatch
	}
	return password, nil
}

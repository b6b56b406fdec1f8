package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch indicates passwords don't match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// maxPasswordBytes is the longest password bcrypt accepts; longer inputs
// would be silently truncated, so they are rejected at the prompt.
const maxPasswordBytes = 72

// Password prompts for a password input with masking.
// No validation is applied: use this for passwords that are checked
// against the store, such as the current password during a change.
func Password(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	result, err := prompt.Run()
	return result, wrapError(err)
}

// NewPassword prompts for a new password with confirmation.
func NewPassword() (string, error) {
	return PasswordWithConfirmation("New password", "Confirm password")
}

// PasswordWithConfirmation prompts for a new password and confirmation.
// The password must be non-empty and fit bcrypt's input limit.
// Returns ErrPasswordMismatch if the two entries differ.
func PasswordWithConfirmation(label, confirmLabel string) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: validatePassword,
	}

	password, err := prompt.Run()
	if err != nil {
		return "", wrapError(err)
	}

	confirm, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", ErrPasswordMismatch
	}

	return password, nil
}

func validatePassword(input string) error {
	if input == "" {
		return errors.New("password must not be empty")
	}
	if len(input) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

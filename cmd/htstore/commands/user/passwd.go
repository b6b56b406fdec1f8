package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/prompt"
)

var (
	passwdCurrent string
	passwdNew     string
	passwdReset   bool
)

var passwdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password",
	Long: `Change a user's password in the default credential file.

By default the current password is verified before the change. Use
--reset to skip that check, for example when an administrator resets a
forgotten password.

Examples:
  # Change a password interactively
  htstore user passwd alice

  # Reset a forgotten password (no current password check)
  htstore user passwd alice --reset

  # Change a password with flags (passwords visible in shell history)
  htstore user passwd alice --current oldpass --new newpass`,
	Args: cobra.ExactArgs(1),
	RunE: runPasswd,
}

func init() {
	passwdCmd.Flags().StringVarP(&passwdCurrent, "current", "c", "", "Current password (prompts if not provided)")
	passwdCmd.Flags().StringVarP(&passwdNew, "new", "n", "", "New password (prompts if not provided)")
	passwdCmd.Flags().BoolVar(&passwdReset, "reset", false, "Skip current password verification")
	passwdCmd.MarkFlagsMutuallyExclusive("current", "reset")
}

func runPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	s, cfg, err := cmdutil.LoadStore()
	if err != nil {
		return err
	}

	// Get current password interactively unless resetting
	current := passwdCurrent
	if current == "" && !passwdReset {
		current, err = prompt.Password("Current password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	// Get new password interactively if not provided
	newPwd := passwdNew
	if newPwd == "" {
		newPwd, err = prompt.PasswordWithConfirmation("New password", "Confirm new password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	ctx, cancel := cmdutil.MutationContext(cfg)
	defer cancel()

	if err := s.ChangePassword(ctx, username, current, newPwd); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Password changed for '%s'", username))

	return nil
}

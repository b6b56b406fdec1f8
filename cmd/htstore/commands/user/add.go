package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/prompt"
	"github.com/marmos91/htstore/pkg/store"
)

var addPassword string

var addCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Long: `Add a new user to the default credential file.

The password is hashed with bcrypt before it is written. If --password is
not provided, you will be prompted to enter it interactively.

The default credential file is created on first use, so adding the very
first user needs no preparation beyond a configuration file.

Examples:
  # Add a user interactively
  htstore user add alice

  # Add a user non-interactively (password visible in shell history)
  htstore user add alice --password secret`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addPassword, "password", "p", "", "Password (prompts if not provided)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	s, cfg, err := cmdutil.LoadStore()
	if err != nil {
		return err
	}

	password := addPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	ctx, cancel := cmdutil.MutationContext(cfg)
	defer cancel()

	if err := s.AddUser(ctx, username, password); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	added := store.User{Username: username, Groups: []string{defaultGroup(cfg)}}
	return cmdutil.PrintResourceWithSuccess(os.Stdout, added,
		fmt.Sprintf("User '%s' added successfully", username))
}

// Package user implements user management commands for htstore.
package user

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/pkg/config"
)

// Cmd is the parent command for user management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage users in the configured htpasswd files.

New users and password changes always land in the default credential
file. Listing and verification see every configured file.

Examples:
  # List all users
  htstore user list

  # Add a user (prompts for the password)
  htstore user add alice

  # Add a user non-interactively
  htstore user add alice --password secret

  # Change a password
  htstore user passwd alice

  # Check a password
  htstore user verify alice`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(passwdCmd)
	Cmd.AddCommand(verifyCmd)
}

// defaultGroup returns the access group of the default credential file.
func defaultGroup(cfg *config.Config) string {
	for _, f := range cfg.Store.Files {
		if f.Default {
			return f.Group
		}
	}
	return ""
}

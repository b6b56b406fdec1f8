package user

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/output"
	"github.com/marmos91/htstore/pkg/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List the users from every configured credential file.

Each user is shown with the access groups granted by the files that
contain them.

Examples:
  # List users as table
  htstore user list

  # List as JSON
  htstore user list -o json

  # List as YAML
  htstore user list -o yaml`,
	RunE: runList,
}

// UserList is a list of users for table rendering.
type UserList []store.User

// Headers implements TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "GROUPS"}
}

// Rows implements TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		rows = append(rows, []string{u.Username, cmdutil.JoinGroups(u.Groups)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	s, _, err := cmdutil.LoadStore()
	if err != nil {
		return err
	}

	if err := s.Reload(context.Background()); err != nil {
		return fmt.Errorf("failed to read credential files: %w", err)
	}

	users := s.Users()

	emptyMsg := "No users found. Add one with: htstore user add <username>"
	if err := cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, emptyMsg, UserList(users)); err != nil {
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err == nil && format == output.FormatTable && len(users) > 0 {
		fmt.Printf("\n%s total\n", pluralize(len(users), "user"))
	}

	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

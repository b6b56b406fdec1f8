package user

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/output"
	"github.com/marmos91/htstore/internal/cli/prompt"
)

var verifyPassword string

var verifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Verify a user's password",
	Long: `Verify a username and password against the credential files.

Exits with status 0 when the credentials are valid and 1 otherwise,
so the command works in scripts as well as interactively.

Examples:
  # Verify interactively
  htstore user verify alice

  # Verify in a script
  htstore user verify alice --password "$PASSWORD" -o json

Note that an unknown username and a wrong password are indistinguishable
in the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// VerifyResult reports the outcome of a credential check.
type VerifyResult struct {
	Username      string   `json:"username"         yaml:"username"`
	Authenticated bool     `json:"authenticated"    yaml:"authenticated"`
	Groups        []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyPassword, "password", "p", "", "Password (prompts if not provided)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	username := args[0]

	s, _, err := cmdutil.LoadStore()
	if err != nil {
		return err
	}

	password := verifyPassword
	if password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	groups, ok, err := s.Authenticate(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	result := VerifyResult{Username: username, Authenticated: ok, Groups: groups}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		if err := output.PrintJSON(os.Stdout, result); err != nil {
			return err
		}
	case output.FormatYAML:
		if err := output.PrintYAML(os.Stdout, result); err != nil {
			return err
		}
	default:
		if ok {
			cmdutil.PrintSuccess(fmt.Sprintf("Credentials OK for '%s' (groups: %s)",
				username, cmdutil.JoinGroups(groups)))
		}
	}

	if !ok {
		return fmt.Errorf("authentication failed for user %q", username)
	}

	return nil
}

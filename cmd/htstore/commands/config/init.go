package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/prompt"
	"github.com/marmos91/htstore/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration file",
	Long: `Create a sample htstore configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/htstore/config.yaml.
Use --config to specify a custom path.

If the file already exists you are asked before it is overwritten;
--force skips the question.

Examples:
  # Initialize with default location
  htstore config init

  # Initialize with custom path
  htstore config init --config /etc/htstore/config.yaml

  # Force overwrite existing config
  htstore config init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cmdutil.Flags.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		confirmed, err := prompt.ConfirmWithForce(
			fmt.Sprintf("Configuration file already exists at %s. Overwrite?", configPath), initForce)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Existence was just confirmed interactively, so overwrite unconditionally
	if err := config.InitConfigToPath(configPath, true); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to point at your htpasswd files")
	fmt.Println("  2. Add a first user with: htstore user add <username>")
	fmt.Printf("  3. Or use a custom config: htstore user add <username> --config %s\n", configPath)

	return nil
}

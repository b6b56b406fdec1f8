package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the htstore configuration file.

Checks for syntax errors, missing required fields, and invalid values,
and warns about credential files that do not exist yet.

Examples:
  # Validate default config
  htstore config validate

  # Validate specific config file
  htstore config validate --config /etc/htstore/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := cmdutil.Flags.ConfigPath

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	for _, f := range cfg.Store.Files {
		if _, err := os.Stat(f.Path); err == nil {
			continue
		}
		if f.Default {
			// The default file is bootstrapped by the first user add
			warnings = append(warnings,
				fmt.Sprintf("default credential file %s does not exist yet (created on first 'user add')", f.Path))
		} else {
			warnings = append(warnings,
				fmt.Sprintf("credential file %s does not exist - authentication will fail until it does", f.Path))
		}
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Credential files: %d\n", len(cfg.Store.Files))
	for _, f := range cfg.Store.Files {
		marker := ""
		if f.Default {
			marker = " (default)"
		}
		fmt.Printf("    %s -> group %q%s\n", f.Path, f.Group, marker)
	}
	fmt.Printf("  Max users:        %s\n", describeMaxUsers(cfg.Store.MaxUsers))
	fmt.Printf("  Lock timeout:     %s\n", cfg.Store.LockTimeout)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}

func describeMaxUsers(n int) string {
	switch {
	case n < 0:
		return "adding users disabled"
	case n == 0:
		return "unbounded"
	default:
		return fmt.Sprintf("%d", n)
	}
}

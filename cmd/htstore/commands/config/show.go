package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/htstore/cmd/htstore/cmdutil"
	"github.com/marmos91/htstore/internal/cli/output"
	"github.com/marmos91/htstore/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective htstore configuration, with defaults applied.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  htstore config show

  # Show as JSON
  htstore config show --output json

  # Show specific config file
  htstore config show --config /etc/htstore/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(cmdutil.Flags.ConfigPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}

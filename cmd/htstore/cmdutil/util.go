// Package cmdutil provides shared utilities for htstore commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marmos91/htstore/internal/cli/output"
	"github.com/marmos91/htstore/internal/cli/prompt"
	"github.com/marmos91/htstore/internal/logger"
	"github.com/marmos91/htstore/pkg/config"
	"github.com/marmos91/htstore/pkg/store"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigPath string
	Output     string
	NoColor    bool
}

// LoadStore loads the configuration, initializes logging, and opens the
// credential store. Commands that read or mutate users go through here so
// they all share the same setup.
func LoadStore() (*store.Store, *config.Config, error) {
	cfg, err := config.MustLoad(Flags.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	if err := InitLogger(cfg); err != nil {
		return nil, nil, err
	}

	s, err := config.CreateStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	// SetMetrics tolerates nil, so this is safe when metrics are disabled
	s.SetMetrics(config.CreateMetrics(cfg.Metrics))

	return s, cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// MutationContext returns a context bounded by the configured lock timeout.
// Mutations block on the credential file lock; the timeout keeps a stuck
// writer from hanging the CLI forever.
func MutationContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Store.LockTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), cfg.Store.LockTimeout)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// PrintResourceWithSuccess prints a resource in the specified format.
// For table format, it displays a success message. For JSON/YAML, it outputs the resource.
// This is useful for add, change, and similar operations.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		PrintSuccess(successMsg)
		return nil
	}
}

// JoinGroups renders a group list for table display, with "-" for none.
func JoinGroups(groups []string) string {
	if len(groups) == 0 {
		return "-"
	}
	return strings.Join(groups, ", ")
}

// HandleAbort checks if error is an abort (Ctrl+C) and prints a message.
// Returns nil for abort (user cancelled), otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

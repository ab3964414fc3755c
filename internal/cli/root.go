// Package cli provides the command-line interface for valueset.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Konsultn-Engineering/valueset/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "valueset",
		Short: "Resolve coded values through a catalog of SQL templates",
		Long: `valueset looks values up through an ordered catalog of query templates.

Tables are tried in declared order and each table's templates in order. A
template runs only when every {placeholder} it names has a parameter, and the
first one that returns a row answers the lookup.`,
		Version: Version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog document path (default: queries.yaml)")
	rootCmd.PersistentFlags().String("driver", "", "database provider: postgres, mysql or sqlite")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newLookupCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration with the command's flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := cfg.Logger(w)
	if err != nil {
		return nil, err
	}
	return logger.With("app", "valueset"), nil
}

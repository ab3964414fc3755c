package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/valueset/binding"
	"github.com/Konsultn-Engineering/valueset/catalog"
	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/resolver"
	"github.com/spf13/cobra"
)

// ErrNotFound is returned by lookup when no template produced a row.
var ErrNotFound = errors.New("no value found")

// parseParams turns name=value arguments into parameters. The first
// occurrence of a name wins.
func parseParams(args []string) (binding.Params, error) {
	params := make(binding.Params, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", arg)
		}
		if _, seen := params[name]; !seen {
			params[name] = value
		}
	}
	return params, nil
}

func newLookupCommand() *cobra.Command {
	var tables []string

	cmd := &cobra.Command{
		Use:   "lookup [--table id]... [name=value]...",
		Short: "Resolve one lookup and print the row as JSON",
		Example: `  valueset lookup concept_id=8507
  valueset lookup --table gender concept_name=MALE`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cat, err := catalog.LoadFile(cfg.Catalog)
			if err != nil {
				return err
			}

			session := connector.NewSession(cfg.Driver, cfg.Database, connector.WithSessionLogger(logger))
			if err := session.Open(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			exec, err := session.Executor()
			if err != nil {
				return err
			}

			res, err := resolver.New(cat, exec, resolver.WithLogger(logger)).
				ResolveTables(cmd.Context(), tables, params)
			if err != nil {
				return err
			}

			out := map[string]string{}
			if res.Found() {
				out = res.Strings()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if !res.Found() {
				return ErrNotFound
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&tables, "table", nil, "restrict the search to this table id (repeatable)")
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Konsultn-Engineering/valueset/catalog"
	pluralizer "github.com/gertd/go-pluralize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var pluralizeClient = pluralizer.NewClient()

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [path]",
		Short: "Validate a catalog and list its tables",
		Long: `Load a catalog document, report any format error and print its tables
and templates in resolution order. Without a path the configured catalog is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Catalog
			}

			cat, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}
			renderCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func renderCatalog(w io.Writer, cat *catalog.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"table", "#", "placeholders", "columns", "query"})

	for _, tbl := range cat.Tables() {
		for i, tmpl := range tbl.Templates {
			t.AppendRow(table.Row{
				tbl.ID,
				i,
				strings.Join(tmpl.Placeholders, ", "),
				strings.Join(tmpl.Labels(), ", "),
				tmpl.Text,
			})
		}
		t.AppendSeparator()
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "%s, %s\n",
		pluralizeClient.Pluralize("table", cat.Len(), true),
		pluralizeClient.Pluralize("template", cat.TemplateCount(), true))
}

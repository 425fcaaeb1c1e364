package commands

import (
	"github.com/spf13/cobra"

	"github.com/lutaml/unibuf/internal/cli/ui"
)

// NewParseCommand builds `unibuf parse FILE --schema S [-t TYPE] [-o OUT]
// [--format json|yaml|textproto]`.
func NewParseCommand() *cobra.Command {
	var schemaPath, typeName, outPath, format string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a schema-backed data file and print it as structured data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			resolved, err := schema.ResolveType(typeName, noColor)
			if err != nil {
				return err
			}
			msg, err := readData(args[0], schema, resolved)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			if err := writeOutput(msg, format, outPath, schema, resolved); err != nil {
				return err
			}
			if outPath != "" {
				ui.WriteSuccess(cmd.OutOrStdout(), "wrote "+outPath, noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (.proto, .capnp, or .fbs)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "message/struct/table name (prompted if ambiguous)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml, or textproto")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	cmd.MarkFlagRequired("schema")

	return cmd
}

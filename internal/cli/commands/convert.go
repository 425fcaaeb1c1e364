package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lutaml/unibuf/internal/cli/ui"
)

// NewConvertCommand builds `unibuf convert FILE --schema S --to FMT [-o OUT]`,
// FMT one of json, yaml, textproto, or binpb. Per the convert-is-a-superset
// decision, --to binpb is accepted in addition to the three generic
// interchange formats, re-encoding into the schema's own proto3 wire format.
func NewConvertCommand() *cobra.Command {
	var schemaPath, typeName, toFormat, outPath string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a schema-backed data file to another format",
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
			if toFormat == "binpb" && schema.Kind != KindProto {
				return fmt.Errorf("--to binpb requires a proto3 schema, got %s", schemaPath)
			}
			if err := writeOutput(msg, toFormat, outPath, schema, resolved); err != nil {
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
	cmd.Flags().StringVar(&toFormat, "to", "", "target format: json, yaml, textproto, or binpb")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	cmd.MarkFlagRequired("schema")
	cmd.MarkFlagRequired("to")

	return cmd
}

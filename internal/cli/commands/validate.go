package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lutaml/unibuf/internal/cli/ui"
	"github.com/lutaml/unibuf/internal/validate"
)

// NewValidateCommand builds `unibuf validate FILE --schema S [-t TYPE]`.
// Validation runs against the proto3 type-checking rules described for the
// schema validator; Cap'n Proto and FlatBuffers schemas are not supported
// here, since the source system defines no equivalent declared-type checker
// for them.
func NewValidateCommand() *cobra.Command {
	var schemaPath, typeName string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a data file's fields against its declared proto3 types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			if schema.Kind != KindProto {
				return fmt.Errorf("validate only supports proto3 schemas (.proto), got %s", schemaPath)
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

			issues, err := validate.Validate(msg, schema.Proto, resolved)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s is valid for %s", args[0], resolved), noColor)
				return nil
			}

			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", issue.Field, issue.Message)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.ValidationFailedError(len(issues), noColor))
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("validation failed with %d issue(s)", len(issues))
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "proto3 schema file (.proto)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "message name (prompted if ambiguous)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	cmd.MarkFlagRequired("schema")

	return cmd
}

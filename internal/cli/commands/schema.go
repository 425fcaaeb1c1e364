package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

// NewSchemaCommand builds `unibuf schema FILE [--format text|json|yaml]`.
func NewSchemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Show the messages/structs/tables declared in a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			summary := summarize(schema)

			switch strings.ToLower(format) {
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderSummaryText(summary))
			case "json":
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(summary)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unrecognized format %q (expected text, json, or yaml)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, or yaml")
	return cmd
}

// typeSummary is the format-agnostic shape rendered by all three --format
// modes: one entry per declared message/struct/table, naming its fields.
type typeSummary struct {
	Kind   string       `json:"kind" yaml:"kind"`
	Name   string       `json:"name" yaml:"name"`
	Fields []fieldEntry `json:"fields" yaml:"fields"`
}

type fieldEntry struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type schemaSummary struct {
	Path  string        `json:"path" yaml:"path"`
	Kind  string        `json:"kind" yaml:"kind"`
	Types []typeSummary `json:"types" yaml:"types"`
}

func summarize(s *LoadedSchema) schemaSummary {
	out := schemaSummary{Path: s.Path, Kind: string(s.Kind)}
	switch s.Kind {
	case KindProto:
		for _, m := range s.Proto.Messages {
			out.Types = append(out.Types, protoMessageSummary(m))
		}
	case KindCapnp:
		for _, st := range s.Capnp.Structs {
			out.Types = append(out.Types, capnpStructSummary(st))
		}
	case KindFbs:
		for _, t := range s.Fbs.Tables {
			out.Types = append(out.Types, fbsTableSummary(t))
		}
		for _, st := range s.Fbs.Structs {
			out.Types = append(out.Types, fbsStructSummary(st))
		}
	}
	return out
}

func protoMessageSummary(m *protoschema.MessageDef) typeSummary {
	ts := typeSummary{Kind: "message", Name: m.Name}
	for _, f := range m.Fields {
		t := f.Type
		if f.IsMap() {
			t = fmt.Sprintf("map<%s, %s>", f.KeyType, f.ValueType)
		} else if f.IsRepeated() {
			t = "repeated " + t
		}
		ts.Fields = append(ts.Fields, fieldEntry{Name: f.Name, Type: t})
	}
	return ts
}

func capnpStructSummary(st *capnpschema.StructDef) typeSummary {
	ts := typeSummary{Kind: "struct", Name: st.Name}
	for _, f := range st.Fields {
		ts.Fields = append(ts.Fields, fieldEntry{Name: f.Name, Type: f.Type.Name})
	}
	return ts
}

func fbsTableSummary(t *fbsschema.TableDef) typeSummary {
	ts := typeSummary{Kind: "table", Name: t.Name}
	for _, f := range t.Fields {
		ts.Fields = append(ts.Fields, fieldEntry{Name: f.Name, Type: f.Type.Name})
	}
	return ts
}

func fbsStructSummary(st *fbsschema.StructDef) typeSummary {
	ts := typeSummary{Kind: "struct", Name: st.Name}
	for _, f := range st.Fields {
		ts.Fields = append(ts.Fields, fieldEntry{Name: f.Name, Type: f.Type.Name})
	}
	return ts
}

func renderSummaryText(s schemaSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", s.Path, s.Kind)
	for _, t := range s.Types {
		fmt.Fprintf(&b, "  %s %s\n", t.Kind, t.Name)
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "    %s: %s\n", f.Name, f.Type)
		}
	}
	return b.String()
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lutaml/unibuf"
	"github.com/lutaml/unibuf/internal/grammar/textproto"
)

// readData loads path as a Message, parsing text-format input directly and
// decoding binary input through schema's resolved typeName. Only proto3
// schemas define a text format; Cap'n Proto and FlatBuffers input is always
// decoded as their binary wire format.
func readData(path string, schema *LoadedSchema, typeName string) (*unibuf.Message, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}

	if schema.Kind == KindProto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txtpb", ".textproto":
			return unibuf.ParseTextproto(content)
		}
	}
	return schema.Decode(content, typeName)
}

// writeOutput renders msg in format ("json", "yaml", "textproto", or
// "binpb") and writes it to outPath, or to stdout when outPath is "".
func writeOutput(msg *unibuf.Message, format, outPath string, schema *LoadedSchema, typeName string) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case "json":
		data, err = json.MarshalIndent(msg.ToH(), "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(msg.ToH())
	case "textproto":
		data = []byte(textproto.Emit(msg))
	case "binpb":
		if schema == nil {
			return fmt.Errorf("--to binpb requires --schema")
		}
		data, err = schema.Encode(msg, typeName)
	default:
		return fmt.Errorf("unrecognized format %q (expected json, yaml, textproto, or binpb)", format)
	}
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

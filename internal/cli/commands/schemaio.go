package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"go.uber.org/zap"

	"github.com/lutaml/unibuf"
	"github.com/lutaml/unibuf/internal/cli/ui"
	"github.com/lutaml/unibuf/internal/codec/capnp"
	"github.com/lutaml/unibuf/internal/codec/flatbuf"
	"github.com/lutaml/unibuf/internal/codec/protowire"
)

// SchemaKind identifies which of the three IDLs a loaded schema file speaks.
type SchemaKind string

const (
	KindProto SchemaKind = "proto"
	KindCapnp SchemaKind = "capnp"
	KindFbs   SchemaKind = "fbs"
)

// LoadedSchema wraps exactly one of the three schema families behind a
// single decode/encode/candidate-types surface, so the parse/validate/
// convert/schema commands don't need a type switch at every call site.
type LoadedSchema struct {
	Kind  SchemaKind
	Path  string
	Proto *unibuf.ProtoSchema
	Capnp *unibuf.CapnpSchema
	Fbs   *unibuf.FbsSchema
}

// loadSchema parses path as whichever IDL its extension names.
func loadSchema(path string) (*LoadedSchema, error) {
	ext := strings.ToLower(filepath.Ext(path))
	logger.Debug("loading schema", zap.String("path", path), zap.String("ext", ext))
	switch ext {
	case ".proto":
		s, err := unibuf.ParseSchema(path)
		if err != nil {
			return nil, err
		}
		return &LoadedSchema{Kind: KindProto, Path: path, Proto: s}, nil
	case ".capnp":
		s, err := unibuf.ParseCapnProtoSchema(path)
		if err != nil {
			return nil, err
		}
		return &LoadedSchema{Kind: KindCapnp, Path: path, Capnp: s}, nil
	case ".fbs":
		s, err := unibuf.ParseFlatBuffersSchema(path)
		if err != nil {
			return nil, err
		}
		return &LoadedSchema{Kind: KindFbs, Path: path, Fbs: s}, nil
	default:
		return nil, fmt.Errorf("unrecognized schema extension %q (expected .proto, .capnp, or .fbs)", ext)
	}
}

// CandidateTypes lists every top-level message/struct/table name a -t TYPE
// flag could name.
func (s *LoadedSchema) CandidateTypes() []string {
	var names []string
	switch s.Kind {
	case KindProto:
		for _, m := range s.Proto.Messages {
			names = append(names, m.Name)
		}
	case KindCapnp:
		for _, st := range s.Capnp.Structs {
			names = append(names, st.Name)
		}
	case KindFbs:
		for _, t := range s.Fbs.Tables {
			names = append(names, t.Name)
		}
		for _, st := range s.Fbs.Structs {
			names = append(names, st.Name)
		}
	}
	return names
}

// ResolveType returns explicit if non-empty and valid, the sole candidate
// when the schema declares exactly one, an interactive survey.Select prompt
// when it declares several, or a fuzzy-matched TypeNotFoundError otherwise.
func (s *LoadedSchema) ResolveType(explicit string, noColor bool) (string, error) {
	candidates := s.CandidateTypes()
	if explicit != "" {
		for _, c := range candidates {
			if c == explicit {
				return explicit, nil
			}
		}
		suggestions := ui.FindSimilar(explicit, candidates, nil)
		return "", fmt.Errorf("%s", ui.TypeNotFoundError(explicit, s.Path, suggestions, noColor))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("schema %s declares no message/struct/table", s.Path)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	var chosen string
	prompt := &survey.Select{
		Message: fmt.Sprintf("%s declares multiple types, which one?", s.Path),
		Options: candidates,
	}
	if err := survey.AskOne(prompt, &chosen); err != nil {
		return "", err
	}
	return chosen, nil
}

// Decode parses data (already known to be this schema's binary wire format)
// against the resolved type name.
func (s *LoadedSchema) Decode(data []byte, typeName string) (*unibuf.Message, error) {
	logger.Debug("decoding binary data", zap.String("kind", string(s.Kind)), zap.String("type", typeName), zap.Int("bytes", len(data)))
	switch s.Kind {
	case KindProto:
		return protowire.Decode(data, s.Proto, typeName)
	case KindCapnp:
		return capnp.Decode(data, s.Capnp, typeName)
	case KindFbs:
		return flatbuf.Decode(data, s.Fbs, typeName)
	default:
		return nil, fmt.Errorf("unknown schema kind %q", s.Kind)
	}
}

// Encode serializes msg into this schema's binary wire format for typeName.
func (s *LoadedSchema) Encode(msg *unibuf.Message, typeName string) ([]byte, error) {
	switch s.Kind {
	case KindProto:
		return protowire.Encode(msg, s.Proto, typeName)
	case KindCapnp:
		return capnp.Encode(msg, s.Capnp, typeName)
	case KindFbs:
		return flatbuf.Encode(msg, s.Fbs, typeName)
	default:
		return nil, fmt.Errorf("unknown schema kind %q", s.Kind)
	}
}

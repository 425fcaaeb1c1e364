package unibuf

import (
	"github.com/lutaml/unibuf/internal/grammar/textproto"
)

// ParseTextproto parses Protocol Buffers text-format content into a Message.
// No schema is required: textproto carries field names directly, and enum
// fields are represented as their symbolic identifier.
func ParseTextproto(content []byte) (*Message, error) {
	return textproto.Parse(string(content), "<content>")
}

// ParseTextprotoFile reads path and parses it as textproto.
func ParseTextprotoFile(path string) (*Message, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return textproto.Parse(string(content), path)
}

// ToTextproto renders msg back into Protocol Buffers text format.
func ToTextproto(msg *Message) string {
	return textproto.Emit(msg)
}

package textproto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lutaml/unibuf/internal/model"
)

// Emit renders a model.Message as Protocol Buffers text format.
func Emit(msg *model.Message) string {
	var b strings.Builder
	writeFields(&b, msg, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func writeFields(b *strings.Builder, msg *model.Message, depth int) {
	for _, f := range msg.Fields {
		if f.IsMap {
			writeMapField(b, f, depth)
			continue
		}
		writeValue(b, f.Name, f.Value, depth)
	}
}

func writeMapField(b *strings.Builder, f model.Field, depth int) {
	indent(b, depth)
	b.WriteString(f.Name)
	b.WriteString(" {\n")
	for i, k := range f.Value.MapKeys {
		indent(b, depth+1)
		b.WriteString("key: ")
		b.WriteString(scalarLiteral(k))
		b.WriteString("\n")
		indent(b, depth+1)
		b.WriteString("value: ")
		b.WriteString(scalarLiteral(f.Value.MapValues[i]))
		b.WriteString("\n")
	}
	indent(b, depth)
	b.WriteString("}\n")
}

func writeValue(b *strings.Builder, name string, v model.Value, depth int) {
	switch v.Kind {
	case model.KindMessage:
		indent(b, depth)
		b.WriteString(name)
		b.WriteString(" {\n")
		if v.Message != nil {
			writeFields(b, v.Message, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case model.KindList:
		writeList(b, name, v.List, depth)
	default:
		indent(b, depth)
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(scalarLiteral(v))
		b.WriteString("\n")
	}
}

func writeList(b *strings.Builder, name string, items []model.Value, depth int) {
	if len(items) == 0 {
		indent(b, depth)
		b.WriteString(name)
		b.WriteString(": []\n")
		return
	}
	if items[0].Kind == model.KindMessage {
		for _, item := range items {
			writeValue(b, name, item, depth)
		}
		return
	}
	if len(items) < 5 {
		indent(b, depth)
		b.WriteString(name)
		b.WriteString(": [")
		for i, item := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(scalarLiteral(item))
		}
		b.WriteString("]\n")
		return
	}
	indent(b, depth)
	b.WriteString(name)
	b.WriteString(": [\n")
	for _, item := range items {
		indent(b, depth+1)
		b.WriteString(scalarLiteral(item))
		b.WriteString(",\n")
	}
	indent(b, depth)
	b.WriteString("]\n")
}

func scalarLiteral(v model.Value) string {
	switch v.Kind {
	case model.KindScalar:
		switch v.ScalarKind {
		case model.ScalarString:
			return quoteString(v.Str)
		case model.ScalarInt:
			return strconv.FormatInt(v.Int, 10)
		case model.ScalarFloat:
			return strconv.FormatFloat(v.Float, 'g', -1, 64)
		case model.ScalarBool:
			return strconv.FormatBool(v.Bool)
		case model.ScalarNull:
			return quoteString("")
		}
	case model.KindMessage:
		return fmt.Sprintf("{ %s }", strings.TrimSpace(Emit(v.Message)))
	}
	return quoteString("")
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

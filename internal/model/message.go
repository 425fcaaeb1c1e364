package model

import "strconv"

// Field is a single named entry in a Message. Repeated proto fields appear
// as multiple Field entries sharing the same Name; ordering is preserved for
// round-trip equality.
type Field struct {
	Name  string
	Value Value
	IsMap bool
}

// Message is an ordered, duplicate-allowing sequence of fields.
type Message struct {
	Fields []Field
}

// NewMessageTree creates an empty Message.
func NewMessageTree() *Message {
	return &Message{}
}

// Append adds a field, preserving insertion order.
func (m *Message) Append(name string, v Value) {
	m.Fields = append(m.Fields, Field{Name: name, Value: v})
}

// AppendMap adds a map-typed field.
func (m *Message) AppendMap(name string, v Value) {
	m.Fields = append(m.Fields, Field{Name: name, Value: v, IsMap: true})
}

// FieldCount returns the number of fields, matching field_count == fields.length.
func (m *Message) FieldCount() int { return len(m.Fields) }

// FindField returns the first field with the given name, if any.
func (m *Message) FindField(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// FindFields returns all fields with the given name, in order — used for
// repeated fields.
func (m *Message) FindFields(name string) []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// FieldNames returns unique field names, preserving first-seen order.
func (m *Message) FieldNames() []string {
	seen := make(map[string]struct{}, len(m.Fields))
	var names []string
	for _, f := range m.Fields {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		names = append(names, f.Name)
	}
	return names
}

// Equal reports structural, order-sensitive equality between two messages.
func (m *Message) Equal(other *Message) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if len(m.Fields) != len(other.Fields) {
		return false
	}
	for i := range m.Fields {
		if m.Fields[i].Name != other.Fields[i].Name {
			return false
		}
		if m.Fields[i].IsMap != other.Fields[i].IsMap {
			return false
		}
		if !m.Fields[i].Value.Equal(other.Fields[i].Value) {
			return false
		}
	}
	return true
}

// ToH returns the message as a plain map[string]any tree, collapsing
// repeated fields into slices. Intended for feeding external JSON/YAML
// emitters; the core performs no encoding-dependent normalization beyond
// this projection.
func (m *Message) ToH() map[string]any {
	out := make(map[string]any, len(m.Fields))
	for _, name := range m.FieldNames() {
		matches := m.FindFields(name)
		if len(matches) == 1 && !matches[0].IsMap {
			out[name] = valueToH(matches[0].Value)
			continue
		}
		if matches[0].IsMap {
			out[name] = valueToH(matches[0].Value)
			continue
		}
		list := make([]any, len(matches))
		for i, f := range matches {
			list[i] = valueToH(f.Value)
		}
		out[name] = list
	}
	return out
}

func valueToH(v Value) any {
	switch v.Kind {
	case KindScalar:
		switch v.ScalarKind {
		case ScalarString:
			return v.Str
		case ScalarInt:
			return v.Int
		case ScalarFloat:
			return v.Float
		case ScalarBool:
			return v.Bool
		default:
			return nil
		}
	case KindMessage:
		if v.Message == nil {
			return nil
		}
		return v.Message.ToH()
	case KindList:
		list := make([]any, len(v.List))
		for i, item := range v.List {
			list[i] = valueToH(item)
		}
		return list
	case KindMap:
		out := make(map[string]any, len(v.MapKeys))
		for i, k := range v.MapKeys {
			out[scalarKeyString(k)] = valueToH(v.MapValues[i])
		}
		return out
	}
	return nil
}

func scalarKeyString(v Value) string {
	switch v.ScalarKind {
	case ScalarString:
		return v.Str
	case ScalarBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ScalarInt:
		return strconv.FormatInt(v.Int, 10)
	default:
		return ""
	}
}

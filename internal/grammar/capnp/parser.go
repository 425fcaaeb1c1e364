// Package capnp parses Cap'n Proto schema (.capnp) source into a validated
// github.com/lutaml/unibuf/internal/schema/capnp.Schema.
package capnp

import (
	"strconv"
	"strings"

	"github.com/lutaml/unibuf/internal/lexer/capnp"
	"github.com/lutaml/unibuf/internal/model"
	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

// Parser consumes a Cap'n Proto token stream and builds a Schema.
type Parser struct {
	tokens []capnp.Token
	pos    int
	source string
}

// Parse lexes and parses Cap'n Proto schema source into a built, validated
// Schema.
func Parse(source, file string) (*capnpschema.Schema, error) {
	tokens, err := capnp.New(source, file).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, source: source}
	return p.parseFile()
}

func (p *Parser) peek() capnp.Token { return p.tokens[p.pos] }

func (p *Parser) advance() capnp.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt capnp.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) checkIdent(text string) bool {
	return p.peek().Type == capnp.TokenIdent && p.peek().Lexeme == text
}

func (p *Parser) expect(tt capnp.TokenType, what string) (capnp.Token, error) {
	if !p.check(tt) {
		return capnp.Token{}, p.errAt(p.peek(), "expected "+what+", got "+p.peek().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errAt(t capnp.Token, msg string) error {
	loc := model.SourceLocation{File: t.File, Line: t.Line, Column: t.Column}
	return &model.ParseError{
		Phase:    "parser",
		Message:  msg,
		Location: loc,
		Context:  model.ExtractSourceContext(loc, p.source),
	}
}

func (p *Parser) parseFile() (*capnpschema.Schema, error) {
	schema := &capnpschema.Schema{}

	for !p.check(capnp.TokenEOF) {
		switch {
		case p.check(capnp.TokenAt):
			if err := p.parseFileID(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("using"):
			u, err := p.parseUsing()
			if err != nil {
				return nil, err
			}
			schema.Usings = append(schema.Usings, u)
		case p.checkIdent("const"):
			c, err := p.parseConst()
			if err != nil {
				return nil, err
			}
			schema.Constants = append(schema.Constants, c)
		case p.checkIdent("struct"):
			st, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			schema.Structs = append(schema.Structs, st)
		case p.checkIdent("enum"):
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			schema.Enums = append(schema.Enums, e)
		case p.checkIdent("interface"):
			i, err := p.parseInterface()
			if err != nil {
				return nil, err
			}
			schema.Interfaces = append(schema.Interfaces, i)
		default:
			return nil, p.errAt(p.peek(), "unexpected top-level token "+p.peek().Lexeme)
		}
	}

	if err := schema.Build(); err != nil {
		return nil, &model.SchemaValidationError{Message: err.Error()}
	}
	resolveEnumFields(schema, schema.Structs)
	return schema, nil
}

// resolveEnumFields marks fields whose declared type names an EnumDef as
// IsEnum, so the codec places them in the data section as UInt16 rather
// than treating them as a struct pointer.
func resolveEnumFields(schema *capnpschema.Schema, structs []*capnpschema.StructDef) {
	for _, st := range structs {
		markEnumFields(schema, st.Fields)
		for _, u := range st.Unions {
			markEnumFields(schema, u.Fields)
		}
		for _, g := range st.Groups {
			markEnumFields(schema, g.Fields)
		}
		resolveEnumFields(schema, st.NestedStructs)
	}
}

func markEnumFields(schema *capnpschema.Schema, fields []*capnpschema.FieldDef) {
	for _, f := range fields {
		if f.Type.Kind == capnpschema.TypeUser {
			if _, ok := schema.EnumByName(f.Type.Name); ok {
				f.IsEnum = true
			}
		}
	}
}

func (p *Parser) parseFileID(schema *capnpschema.Schema) error {
	p.advance() // '@'
	tok, err := p.expect(capnp.TokenInt, "a hex file id")
	if err != nil {
		return err
	}
	schema.FileID = tok.Lexeme
	_, _ = p.expect(capnp.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseUsing() (capnpschema.Using, error) {
	p.advance() // "using"
	aliasTok, err := p.expect(capnp.TokenIdent, "an alias name")
	if err != nil {
		return capnpschema.Using{}, err
	}
	if _, err := p.expect(capnp.TokenEquals, "'='"); err != nil {
		return capnpschema.Using{}, err
	}
	if err := p.expectKeyword("import"); err != nil {
		return capnpschema.Using{}, err
	}
	pathTok, err := p.expect(capnp.TokenString, "an import path")
	if err != nil {
		return capnpschema.Using{}, err
	}
	_, _ = p.expect(capnp.TokenSemicolon, "';'")
	return capnpschema.Using{Alias: aliasTok.Lexeme, ImportPath: pathTok.Lexeme}, nil
}

func (p *Parser) expectKeyword(word string) error {
	if !p.checkIdent(word) {
		return p.errAt(p.peek(), "expected '"+word+"'")
	}
	p.advance()
	return nil
}

func (p *Parser) parseConst() (*capnpschema.ConstDef, error) {
	p.advance() // "const"
	nameTok, err := p.expect(capnp.TokenIdent, "a constant name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenColon, "':'"); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenEquals, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseLiteralText()
	if err != nil {
		return nil, err
	}
	_, _ = p.expect(capnp.TokenSemicolon, "';'")
	return &capnpschema.ConstDef{Name: nameTok.Lexeme, Type: t, Value: value}, nil
}

func (p *Parser) parseType() (capnpschema.FieldType, error) {
	tok, err := p.expect(capnp.TokenIdent, "a type name")
	if err != nil {
		return capnpschema.FieldType{}, err
	}
	if tok.Lexeme == "List" && p.check(capnp.TokenLParen) {
		p.advance() // '('
		elem, err := p.parseType()
		if err != nil {
			return capnpschema.FieldType{}, err
		}
		if _, err := p.expect(capnp.TokenRParen, "')'"); err != nil {
			return capnpschema.FieldType{}, err
		}
		return capnpschema.FieldType{Kind: capnpschema.TypeList, Name: "List", Element: &elem}, nil
	}
	if capnpschema.IsPrimitiveName(tok.Lexeme) {
		return capnpschema.FieldType{Kind: capnpschema.TypePrimitive, Name: tok.Lexeme}, nil
	}
	return capnpschema.FieldType{Kind: capnpschema.TypeUser, Name: tok.Lexeme}, nil
}

// parseLiteralText captures a default/const value's literal form as raw
// text; typed interpretation is deferred to the codec.
func (p *Parser) parseLiteralText() (string, error) {
	switch p.peek().Type {
	case capnp.TokenInt:
		return p.advance().Lexeme, nil
	case capnp.TokenString:
		return strconv.Quote(p.advance().Lexeme), nil
	case capnp.TokenIdent:
		return p.advance().Lexeme, nil
	case capnp.TokenLParen:
		return p.parseParenLiteral()
	default:
		return "", p.errAt(p.peek(), "expected a literal value")
	}
}

func (p *Parser) parseParenLiteral() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok := p.peek()
		switch tok.Type {
		case capnp.TokenLParen:
			depth++
		case capnp.TokenRParen:
			depth--
		case capnp.TokenEOF:
			return "", p.errAt(tok, "unterminated literal")
		}
		b.WriteString(tok.Lexeme)
		p.advance()
		if depth == 0 {
			break
		}
		b.WriteString(" ")
	}
	return b.String(), nil
}

func (p *Parser) parseAnnotations() ([]capnpschema.Annotation, error) {
	var out []capnpschema.Annotation
	for p.check(capnp.TokenDollar) {
		p.advance()
		nameTok, err := p.expect(capnp.TokenIdent, "an annotation name")
		if err != nil {
			return nil, err
		}
		ann := capnpschema.Annotation{Name: nameTok.Lexeme}
		if p.check(capnp.TokenLParen) {
			p.advance()
			value, err := p.parseLiteralText()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(capnp.TokenRParen, "')'"); err != nil {
				return nil, err
			}
			ann.Value = value
		}
		out = append(out, ann)
	}
	return out, nil
}

func (p *Parser) parseStruct() (*capnpschema.StructDef, error) {
	p.advance() // "struct"
	nameTok, err := p.expect(capnp.TokenIdent, "a struct name")
	if err != nil {
		return nil, err
	}
	anns, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	st := &capnpschema.StructDef{Name: nameTok.Lexeme, Annotations: anns}
	for !p.check(capnp.TokenRBrace) {
		if err := p.parseStructMember(st); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(capnp.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseStructMember(st *capnpschema.StructDef) error {
	switch {
	case p.checkIdent("struct"):
		nested, err := p.parseStruct()
		if err != nil {
			return err
		}
		st.NestedStructs = append(st.NestedStructs, nested)
		return nil
	case p.checkIdent("enum"):
		nested, err := p.parseEnum()
		if err != nil {
			return err
		}
		st.NestedEnums = append(st.NestedEnums, nested)
		return nil
	case p.checkIdent("interface"):
		nested, err := p.parseInterface()
		if err != nil {
			return err
		}
		st.NestedInterfaces = append(st.NestedInterfaces, nested)
		return nil
	case p.checkIdent("union"):
		u, err := p.parseUnion("")
		if err != nil {
			return err
		}
		st.Unions = append(st.Unions, u)
		return nil
	}

	// Remaining forms all begin with `name @ordinal ...`.
	nameTok, err := p.expect(capnp.TokenIdent, "a field, group, or union name")
	if err != nil {
		return err
	}
	if _, err := p.expect(capnp.TokenAt, "'@'"); err != nil {
		return err
	}
	ordTok, err := p.expect(capnp.TokenInt, "an ordinal")
	if err != nil {
		return err
	}
	if _, err := p.expect(capnp.TokenColon, "':'"); err != nil {
		return err
	}

	if p.checkIdent("union") {
		p.advance()
		u, err := p.parseUnion(nameTok.Lexeme)
		if err != nil {
			return err
		}
		st.Unions = append(st.Unions, u)
		return nil
	}
	if p.checkIdent("group") {
		p.advance()
		g, err := p.parseGroupBody(nameTok.Lexeme, uint16(ordTok.IntVal))
		if err != nil {
			return err
		}
		st.Groups = append(st.Groups, g)
		return nil
	}

	f, err := p.parseFieldTail(nameTok.Lexeme, uint16(ordTok.IntVal))
	if err != nil {
		return err
	}
	st.Fields = append(st.Fields, f)
	return nil
}

func (p *Parser) parseFieldTail(name string, ordinal uint16) (*capnpschema.FieldDef, error) {
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	f := &capnpschema.FieldDef{Name: name, Ordinal: ordinal, Type: t}
	if p.check(capnp.TokenEquals) {
		p.advance()
		value, err := p.parseLiteralText()
		if err != nil {
			return nil, err
		}
		f.DefaultValue = value
	}
	if _, err := p.parseAnnotations(); err != nil {
		return nil, err
	}
	_, _ = p.expect(capnp.TokenSemicolon, "';'")
	return f, nil
}

func (p *Parser) parseUnion(name string) (*capnpschema.Union, error) {
	if _, err := p.expect(capnp.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	u := &capnpschema.Union{Name: name}
	for !p.check(capnp.TokenRBrace) {
		nameTok, err := p.expect(capnp.TokenIdent, "a union field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(capnp.TokenAt, "'@'"); err != nil {
			return nil, err
		}
		ordTok, err := p.expect(capnp.TokenInt, "an ordinal")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(capnp.TokenColon, "':'"); err != nil {
			return nil, err
		}
		f, err := p.parseFieldTail(nameTok.Lexeme, uint16(ordTok.IntVal))
		if err != nil {
			return nil, err
		}
		u.Fields = append(u.Fields, f)
	}
	if _, err := p.expect(capnp.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Parser) parseGroupBody(name string, ordinal uint16) (*capnpschema.Group, error) {
	if _, err := p.expect(capnp.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	g := &capnpschema.Group{Name: name, Ordinal: ordinal}
	for !p.check(capnp.TokenRBrace) {
		nameTok, err := p.expect(capnp.TokenIdent, "a group field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(capnp.TokenAt, "'@'"); err != nil {
			return nil, err
		}
		ordTok, err := p.expect(capnp.TokenInt, "an ordinal")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(capnp.TokenColon, "':'"); err != nil {
			return nil, err
		}
		f, err := p.parseFieldTail(nameTok.Lexeme, uint16(ordTok.IntVal))
		if err != nil {
			return nil, err
		}
		g.Fields = append(g.Fields, f)
	}
	if _, err := p.expect(capnp.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) parseEnum() (*capnpschema.EnumDef, error) {
	p.advance() // "enum"
	nameTok, err := p.expect(capnp.TokenIdent, "an enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	e := capnpschema.NewEnumDef(nameTok.Lexeme)
	for !p.check(capnp.TokenRBrace) {
		valNameTok, err := p.expect(capnp.TokenIdent, "an enum value name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(capnp.TokenAt, "'@'"); err != nil {
			return nil, err
		}
		ordTok, err := p.expect(capnp.TokenInt, "an ordinal")
		if err != nil {
			return nil, err
		}
		e.AddValue(valNameTok.Lexeme, uint16(ordTok.IntVal))
		_, _ = p.expect(capnp.TokenSemicolon, "';'")
	}
	if _, err := p.expect(capnp.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseInterface() (*capnpschema.InterfaceDef, error) {
	p.advance() // "interface"
	nameTok, err := p.expect(capnp.TokenIdent, "an interface name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	iface := &capnpschema.InterfaceDef{Name: nameTok.Lexeme}
	for !p.check(capnp.TokenRBrace) {
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		iface.Methods = append(iface.Methods, m)
	}
	if _, err := p.expect(capnp.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return iface, nil
}

// parseMethod handles `name @ordinal (paramType) (resultType);` in the
// simplified single-positional-parameter form used by this schema model.
// Cap'n Proto's `->` result arrow is not part of this lexer's token set, so
// a result clause is expressed as a second parenthesized type.
func (p *Parser) parseMethod() (*capnpschema.MethodDef, error) {
	nameTok, err := p.expect(capnp.TokenIdent, "a method name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenAt, "'@'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(capnp.TokenInt, "an ordinal"); err != nil {
		return nil, err
	}
	m := &capnpschema.MethodDef{Name: nameTok.Lexeme}
	if _, err := p.expect(capnp.TokenLParen, "'('"); err != nil {
		return nil, err
	}
	if !p.check(capnp.TokenRParen) {
		pt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		m.ParamType = pt.Name
	}
	if _, err := p.expect(capnp.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	if p.check(capnp.TokenLParen) {
		p.advance()
		if !p.check(capnp.TokenRParen) {
			rt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			m.ResultType = rt.Name
		}
		if _, err := p.expect(capnp.TokenRParen, "')'"); err != nil {
			return nil, err
		}
	}
	_, _ = p.expect(capnp.TokenSemicolon, "';'")
	return m, nil
}

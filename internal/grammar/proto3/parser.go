// Package proto3 parses a proto3 token stream into a validated
// github.com/lutaml/unibuf/internal/schema/proto.Schema.
package proto3

import (
	"strings"

	"github.com/lutaml/unibuf/internal/lexer/proto3"
	"github.com/lutaml/unibuf/internal/model"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

// Parser consumes a proto3 token stream and builds a Schema.
type Parser struct {
	tokens []proto3.Token
	pos    int
	source string
	file   string
}

// Parse lexes and parses proto3 source into a built, validated Schema.
func Parse(source, file string) (*protoschema.Schema, error) {
	tokens, err := proto3.New(source, file).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, source: source, file: file}
	return p.parseFile()
}

func (p *Parser) peek() proto3.Token { return p.tokens[p.pos] }

func (p *Parser) advance() proto3.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt proto3.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) checkIdent(text string) bool {
	return p.peek().Type == proto3.TokenIdent && p.peek().Lexeme == text
}

func (p *Parser) expect(tt proto3.TokenType, what string) (proto3.Token, error) {
	if !p.check(tt) {
		return proto3.Token{}, p.errAt(p.peek(), "expected "+what+", got "+p.peek().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errAt(t proto3.Token, msg string) error {
	loc := model.SourceLocation{File: t.File, Line: t.Line, Column: t.Column}
	return &model.ParseError{
		Phase:    "parser",
		Message:  msg,
		Location: loc,
		Context:  model.ExtractSourceContext(loc, p.source),
	}
}

func (p *Parser) parseFile() (*protoschema.Schema, error) {
	schema := &protoschema.Schema{Syntax: "proto3"}

	for !p.check(proto3.TokenEOF) {
		switch {
		case p.checkIdent("syntax"):
			if err := p.parseSyntax(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("package"):
			if err := p.parsePackage(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("import"):
			if err := p.parseImport(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("message"):
			m, err := p.parseMessage()
			if err != nil {
				return nil, err
			}
			schema.Messages = append(schema.Messages, m)
		case p.checkIdent("enum"):
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			schema.Enums = append(schema.Enums, e)
		default:
			return nil, p.errAt(p.peek(), "unexpected top-level token "+p.peek().Lexeme)
		}
	}

	if err := schema.Build(); err != nil {
		return nil, &model.SchemaValidationError{Message: err.Error()}
	}
	return schema, nil
}

func (p *Parser) parseSyntax(schema *protoschema.Schema) error {
	p.advance() // "syntax"
	if _, err := p.expect(proto3.TokenEquals, "'='"); err != nil {
		return err
	}
	tok, err := p.expect(proto3.TokenString, "a quoted syntax value")
	if err != nil {
		return err
	}
	if tok.Lexeme != "proto3" {
		return p.errAt(tok, "unsupported syntax: "+tok.Lexeme)
	}
	schema.Syntax = tok.Lexeme
	_, _ = p.expect(proto3.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parsePackage(schema *protoschema.Schema) error {
	p.advance() // "package"
	name, err := p.parseDottedName()
	if err != nil {
		return err
	}
	schema.Package = name
	_, _ = p.expect(proto3.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseDottedName() (string, error) {
	var parts []string
	tok, err := p.expect(proto3.TokenIdent, "an identifier")
	if err != nil {
		return "", err
	}
	parts = append(parts, tok.Lexeme)
	for p.check(proto3.TokenDot) {
		p.advance()
		tok, err := p.expect(proto3.TokenIdent, "an identifier")
		if err != nil {
			return "", err
		}
		parts = append(parts, tok.Lexeme)
	}
	return strings.Join(parts, "."), nil
}

func (p *Parser) parseImport(schema *protoschema.Schema) error {
	p.advance() // "import"
	tok, err := p.expect(proto3.TokenString, "an import path")
	if err != nil {
		return err
	}
	schema.Imports = append(schema.Imports, tok.Lexeme)
	_, _ = p.expect(proto3.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseMessage() (*protoschema.MessageDef, error) {
	p.advance() // "message"
	nameTok, err := p.expect(proto3.TokenIdent, "a message name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	m := &protoschema.MessageDef{Name: nameTok.Lexeme}
	for !p.check(proto3.TokenRBrace) {
		switch {
		case p.checkIdent("message"):
			nested, err := p.parseMessage()
			if err != nil {
				return nil, err
			}
			m.NestedMessages = append(m.NestedMessages, nested)
		case p.checkIdent("enum"):
			nested, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			m.NestedEnums = append(m.NestedEnums, nested)
		case p.checkIdent("map"):
			f, err := p.parseMapField()
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, f)
		default:
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, f)
		}
	}
	if _, err := p.expect(proto3.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseField() (*protoschema.FieldDef, error) {
	label := ""
	if p.checkIdent("repeated") {
		p.advance()
		label = "repeated"
	}

	typeTok, err := p.expect(proto3.TokenIdent, "a field type")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(proto3.TokenIdent, "a field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenEquals, "'='"); err != nil {
		return nil, err
	}
	numTok, err := p.expect(proto3.TokenInt, "a field number")
	if err != nil {
		return nil, err
	}
	_, _ = p.expect(proto3.TokenSemicolon, "';'")

	return &protoschema.FieldDef{
		Name:   nameTok.Lexeme,
		Type:   typeTok.Lexeme,
		Number: uint32(numTok.IntVal),
		Label:  label,
	}, nil
}

func (p *Parser) parseMapField() (*protoschema.FieldDef, error) {
	p.advance() // "map"
	if _, err := p.expect(proto3.TokenLAngle, "'<'"); err != nil {
		return nil, err
	}
	keyTok, err := p.expect(proto3.TokenIdent, "a map key type")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenComma, "','"); err != nil {
		return nil, err
	}
	valTok, err := p.expect(proto3.TokenIdent, "a map value type")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenRAngle, "'>'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(proto3.TokenIdent, "a field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenEquals, "'='"); err != nil {
		return nil, err
	}
	numTok, err := p.expect(proto3.TokenInt, "a field number")
	if err != nil {
		return nil, err
	}
	_, _ = p.expect(proto3.TokenSemicolon, "';'")

	return &protoschema.FieldDef{
		Name:      nameTok.Lexeme,
		Type:      "map",
		Number:    uint32(numTok.IntVal),
		KeyType:   keyTok.Lexeme,
		ValueType: valTok.Lexeme,
	}, nil
}

func (p *Parser) parseEnum() (*protoschema.EnumDef, error) {
	p.advance() // "enum"
	nameTok, err := p.expect(proto3.TokenIdent, "an enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(proto3.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	e := protoschema.NewEnumDef(nameTok.Lexeme)
	for !p.check(proto3.TokenRBrace) {
		valNameTok, err := p.expect(proto3.TokenIdent, "an enum value name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(proto3.TokenEquals, "'='"); err != nil {
			return nil, err
		}
		numTok, err := p.expect(proto3.TokenInt, "an enum value number")
		if err != nil {
			return nil, err
		}
		e.AddValue(valNameTok.Lexeme, int32(numTok.IntVal))
		_, _ = p.expect(proto3.TokenSemicolon, "';'")
	}
	if _, err := p.expect(proto3.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return e, nil
}

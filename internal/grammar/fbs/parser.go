// Package fbs parses FlatBuffers schema (.fbs) source into a validated
// github.com/lutaml/unibuf/internal/schema/fbs.Schema.
package fbs

import (
	"strings"

	"github.com/lutaml/unibuf/internal/lexer/fbs"
	"github.com/lutaml/unibuf/internal/model"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

// Parser consumes an fbs token stream and builds a Schema.
type Parser struct {
	tokens []fbs.Token
	pos    int
	source string
}

// Parse lexes and parses FlatBuffers schema source into a built, validated
// Schema.
func Parse(source, file string) (*fbsschema.Schema, error) {
	tokens, err := fbs.New(source, file).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, source: source}
	return p.parseFile()
}

func (p *Parser) peek() fbs.Token { return p.tokens[p.pos] }

func (p *Parser) advance() fbs.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt fbs.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) checkIdent(text string) bool {
	return p.peek().Type == fbs.TokenIdent && p.peek().Lexeme == text
}

func (p *Parser) expect(tt fbs.TokenType, what string) (fbs.Token, error) {
	if !p.check(tt) {
		return fbs.Token{}, p.errAt(p.peek(), "expected "+what+", got "+p.peek().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errAt(t fbs.Token, msg string) error {
	loc := model.SourceLocation{File: t.File, Line: t.Line, Column: t.Column}
	return &model.ParseError{
		Phase:    "parser",
		Message:  msg,
		Location: loc,
		Context:  model.ExtractSourceContext(loc, p.source),
	}
}

func (p *Parser) parseFile() (*fbsschema.Schema, error) {
	schema := &fbsschema.Schema{}

	for !p.check(fbs.TokenEOF) {
		switch {
		case p.checkIdent("namespace"):
			if err := p.parseNamespace(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("include"):
			if err := p.parseInclude(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("attribute"):
			if err := p.parseAttribute(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("root_type"):
			if err := p.parseRootType(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("file_identifier"):
			if err := p.parseFileIdentifier(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("file_extension"):
			if err := p.parseFileExtension(schema); err != nil {
				return nil, err
			}
		case p.checkIdent("table"):
			t, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			schema.Tables = append(schema.Tables, t)
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
		case p.checkIdent("union"):
			u, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			schema.Unions = append(schema.Unions, u)
		default:
			return nil, p.errAt(p.peek(), "unexpected top-level token "+p.peek().Lexeme)
		}
	}

	if err := schema.Build(); err != nil {
		return nil, &model.SchemaValidationError{Message: err.Error()}
	}
	return schema, nil
}

func (p *Parser) parseNamespace(schema *fbsschema.Schema) error {
	p.advance() // "namespace"
	var parts []string
	tok, err := p.expect(fbs.TokenIdent, "an identifier")
	if err != nil {
		return err
	}
	parts = append(parts, tok.Lexeme)
	for p.check(fbs.TokenDot) {
		p.advance()
		tok, err := p.expect(fbs.TokenIdent, "an identifier")
		if err != nil {
			return err
		}
		parts = append(parts, tok.Lexeme)
	}
	schema.Namespace = strings.Join(parts, ".")
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseInclude(schema *fbsschema.Schema) error {
	p.advance() // "include"
	tok, err := p.expect(fbs.TokenString, "an include path")
	if err != nil {
		return err
	}
	schema.Includes = append(schema.Includes, tok.Lexeme)
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseAttribute(schema *fbsschema.Schema) error {
	p.advance() // "attribute"
	tok, err := p.expect(fbs.TokenString, "an attribute name")
	if err != nil {
		return err
	}
	schema.Attributes = append(schema.Attributes, tok.Lexeme)
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseRootType(schema *fbsschema.Schema) error {
	p.advance() // "root_type"
	tok, err := p.expect(fbs.TokenIdent, "a type name")
	if err != nil {
		return err
	}
	schema.RootType = tok.Lexeme
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseFileIdentifier(schema *fbsschema.Schema) error {
	p.advance() // "file_identifier"
	tok, err := p.expect(fbs.TokenString, "a 4-character file identifier")
	if err != nil {
		return err
	}
	schema.FileIdentifier = tok.Lexeme
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseFileExtension(schema *fbsschema.Schema) error {
	p.advance() // "file_extension"
	tok, err := p.expect(fbs.TokenString, "a file extension")
	if err != nil {
		return err
	}
	schema.FileExtension = tok.Lexeme
	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return nil
}

func (p *Parser) parseTable() (*fbsschema.TableDef, error) {
	p.advance() // "table"
	nameTok, err := p.expect(fbs.TokenIdent, "a table name")
	if err != nil {
		return nil, err
	}
	meta, err := p.parseOptionalMetadata()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	t := &fbsschema.TableDef{Name: nameTok.Lexeme, Metadata: meta}
	for !p.check(fbs.TokenRBrace) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, f)
	}
	if _, err := p.expect(fbs.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) parseStruct() (*fbsschema.StructDef, error) {
	p.advance() // "struct"
	nameTok, err := p.expect(fbs.TokenIdent, "a struct name")
	if err != nil {
		return nil, err
	}
	meta, err := p.parseOptionalMetadata()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	st := &fbsschema.StructDef{Name: nameTok.Lexeme, Metadata: meta}
	for !p.check(fbs.TokenRBrace) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, f)
	}
	if _, err := p.expect(fbs.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseField() (*fbsschema.FieldDef, error) {
	nameTok, err := p.expect(fbs.TokenIdent, "a field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenColon, "':'"); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	f := &fbsschema.FieldDef{Name: nameTok.Lexeme, Type: t}

	if p.check(fbs.TokenEquals) {
		p.advance()
		lit, err := p.parseDefaultLiteral()
		if err != nil {
			return nil, err
		}
		f.DefaultValue = lit
	}

	meta, err := p.parseOptionalMetadata()
	if err != nil {
		return nil, err
	}
	f.Metadata = meta
	if _, deprecated := meta["deprecated"]; deprecated {
		f.Deprecated = true
	}

	_, _ = p.expect(fbs.TokenSemicolon, "';'")
	return f, nil
}

func (p *Parser) parseType() (fbsschema.FieldType, error) {
	if p.check(fbs.TokenLBracket) {
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return fbsschema.FieldType{}, err
		}
		if _, err := p.expect(fbs.TokenRBracket, "']'"); err != nil {
			return fbsschema.FieldType{}, err
		}
		return fbsschema.FieldType{Kind: fbsschema.TypeVector, Name: "Vector", Element: &elem}, nil
	}
	tok, err := p.expect(fbs.TokenIdent, "a type name")
	if err != nil {
		return fbsschema.FieldType{}, err
	}
	if fbsschema.ScalarNames[tok.Lexeme] {
		return fbsschema.FieldType{Kind: fbsschema.TypeScalar, Name: tok.Lexeme}, nil
	}
	return fbsschema.FieldType{Kind: fbsschema.TypeUser, Name: tok.Lexeme}, nil
}

func (p *Parser) parseDefaultLiteral() (string, error) {
	negative := false
	if p.check(fbs.TokenMinus) {
		p.advance()
		negative = true
	}
	switch p.peek().Type {
	case fbs.TokenInt:
		tok := p.advance()
		if negative {
			return "-" + tok.Lexeme, nil
		}
		return tok.Lexeme, nil
	case fbs.TokenFloat:
		tok := p.advance()
		if negative {
			return "-" + tok.Lexeme, nil
		}
		return tok.Lexeme, nil
	case fbs.TokenIdent:
		return p.advance().Lexeme, nil
	case fbs.TokenString:
		return p.advance().Lexeme, nil
	default:
		return "", p.errAt(p.peek(), "expected a default value literal")
	}
}

// parseOptionalMetadata parses `(key:value, flag)` metadata, if present.
func (p *Parser) parseOptionalMetadata() (map[string]string, error) {
	if !p.check(fbs.TokenLParen) {
		return nil, nil
	}
	p.advance()
	meta := make(map[string]string)
	for !p.check(fbs.TokenRParen) {
		keyTok, err := p.expect(fbs.TokenIdent, "a metadata key")
		if err != nil {
			return nil, err
		}
		value := ""
		if p.check(fbs.TokenColon) {
			p.advance()
			lit, err := p.parseDefaultLiteral()
			if err != nil {
				return nil, err
			}
			value = lit
		}
		meta[keyTok.Lexeme] = value
		if p.check(fbs.TokenComma) {
			p.advance()
		}
	}
	if _, err := p.expect(fbs.TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return meta, nil
}

func (p *Parser) parseEnum() (*fbsschema.EnumDef, error) {
	p.advance() // "enum"
	nameTok, err := p.expect(fbs.TokenIdent, "an enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenColon, "':'"); err != nil {
		return nil, err
	}
	underlyingTok, err := p.expect(fbs.TokenIdent, "the enum's underlying scalar type")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	e := fbsschema.NewEnumDef(nameTok.Lexeme, underlyingTok.Lexeme)
	var next int64
	for !p.check(fbs.TokenRBrace) {
		valNameTok, err := p.expect(fbs.TokenIdent, "an enum value name")
		if err != nil {
			return nil, err
		}
		number := next
		if p.check(fbs.TokenEquals) {
			p.advance()
			numTok, err := p.expect(fbs.TokenInt, "an enum value number")
			if err != nil {
				return nil, err
			}
			number = numTok.IntVal
		}
		e.AddValue(valNameTok.Lexeme, number)
		next = number + 1
		if p.check(fbs.TokenComma) {
			p.advance()
		}
	}
	if _, err := p.expect(fbs.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseUnion() (*fbsschema.UnionDef, error) {
	p.advance() // "union"
	nameTok, err := p.expect(fbs.TokenIdent, "a union name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(fbs.TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	u := &fbsschema.UnionDef{Name: nameTok.Lexeme}
	for !p.check(fbs.TokenRBrace) {
		memberTok, err := p.expect(fbs.TokenIdent, "a union member name")
		if err != nil {
			return nil, err
		}
		u.Members = append(u.Members, memberTok.Lexeme)
		if p.check(fbs.TokenComma) {
			p.advance()
		}
	}
	if _, err := p.expect(fbs.TokenRBrace, "'}'"); err != nil {
		return nil, err
	}
	return u, nil
}

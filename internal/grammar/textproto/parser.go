// Package textproto parses Protocol Buffers text-format source into the
// generic model.Message tree, and renders a model.Message back to text
// format.
package textproto

import (
	"strings"

	"github.com/lutaml/unibuf/internal/lexer/textproto"
	"github.com/lutaml/unibuf/internal/model"
)

// Parser consumes a textproto token stream and builds a model.Message.
type Parser struct {
	tokens []textproto.Token
	pos    int
	source string
}

// Parse lexes and parses textproto source into a model.Message.
func Parse(source, file string) (*model.Message, error) {
	tokens, err := textproto.New(source, file).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, source: source}
	return p.parseDocument()
}

func (p *Parser) peek() textproto.Token { return p.tokens[p.pos] }

func (p *Parser) advance() textproto.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt textproto.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) expect(tt textproto.TokenType, what string) (textproto.Token, error) {
	if !p.check(tt) {
		return textproto.Token{}, p.errAt(p.peek(), "expected "+what+", got "+p.peek().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errAt(t textproto.Token, msg string) error {
	loc := model.SourceLocation{File: t.File, Line: t.Line, Column: t.Column}
	return &model.ParseError{
		Phase:    "parser",
		Message:  msg,
		Location: loc,
		Context:  model.ExtractSourceContext(loc, p.source),
	}
}

func (p *Parser) parseDocument() (*model.Message, error) {
	msg := model.NewMessageTree()
	for !p.check(textproto.TokenEOF) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, f)
	}
	return msg, nil
}

func (p *Parser) parseField() (model.Field, error) {
	nameTok, err := p.expect(textproto.TokenIdent, "a field name")
	if err != nil {
		return model.Field{}, err
	}
	name := nameTok.Lexeme

	hasColon := false
	if p.check(textproto.TokenColon) {
		p.advance()
		hasColon = true
	}

	if p.check(textproto.TokenLBrace) || p.check(textproto.TokenLAngle) {
		m, err := p.parseMessageValue()
		if err != nil {
			return model.Field{}, err
		}
		p.consumeSeparator()
		return model.Field{Name: name, Value: model.NewMessage(m)}, nil
	}

	if !hasColon {
		return model.Field{}, p.errAt(p.peek(), "expected ':' before scalar value for field "+name)
	}

	if p.check(textproto.TokenLBracket) {
		list, err := p.parseList()
		if err != nil {
			return model.Field{}, err
		}
		p.consumeSeparator()
		return model.Field{Name: name, Value: list}, nil
	}

	val, err := p.parseScalarValue()
	if err != nil {
		return model.Field{}, err
	}
	p.consumeSeparator()
	return model.Field{Name: name, Value: val}, nil
}

func (p *Parser) consumeSeparator() {
	if p.check(textproto.TokenSemicolon) || p.check(textproto.TokenComma) {
		p.advance()
	}
}

func (p *Parser) parseMessageValue() (*model.Message, error) {
	closing := textproto.TokenRBrace
	if p.check(textproto.TokenLAngle) {
		closing = textproto.TokenRAngle
	}
	p.advance() // opening brace/angle

	msg := model.NewMessageTree()
	for !p.check(closing) {
		if p.check(textproto.TokenEOF) {
			return nil, p.errAt(p.peek(), "unterminated message value")
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, f)
	}
	p.advance() // closing brace/angle
	return msg, nil
}

func (p *Parser) parseList() (model.Value, error) {
	p.advance() // '['
	var items []model.Value
	for !p.check(textproto.TokenRBracket) {
		if p.check(textproto.TokenEOF) {
			return model.Value{}, p.errAt(p.peek(), "unterminated list")
		}
		var item model.Value
		var err error
		if p.check(textproto.TokenLBrace) || p.check(textproto.TokenLAngle) {
			m, mErr := p.parseMessageValue()
			if mErr != nil {
				return model.Value{}, mErr
			}
			item = model.NewMessage(m)
		} else {
			item, err = p.parseScalarValue()
			if err != nil {
				return model.Value{}, err
			}
		}
		items = append(items, item)
		if p.check(textproto.TokenComma) {
			p.advance()
		}
	}
	p.advance() // ']'
	return model.NewList(items), nil
}

func (p *Parser) parseScalarValue() (model.Value, error) {
	negative := false
	if p.check(textproto.TokenMinus) {
		p.advance()
		negative = true
	}

	switch p.peek().Type {
	case textproto.TokenInt:
		tok := p.advance()
		n := tok.IntVal
		if negative {
			n = -n
		}
		return model.NewInt(n), nil
	case textproto.TokenFloat:
		tok := p.advance()
		f := tok.FloatVal
		if negative {
			f = -f
		}
		return model.NewFloat(f), nil
	case textproto.TokenString:
		var b strings.Builder
		b.WriteString(p.advance().Lexeme)
		for p.check(textproto.TokenString) {
			b.WriteString(p.advance().Lexeme)
		}
		return model.NewString(b.String()), nil
	case textproto.TokenIdent:
		tok := p.advance()
		switch strings.ToLower(tok.Lexeme) {
		case "true", "t":
			return model.NewBool(true), nil
		case "false", "f":
			return model.NewBool(false), nil
		default:
			return model.NewString(tok.Lexeme), nil
		}
	default:
		return model.Value{}, p.errAt(p.peek(), "expected a scalar value, got "+p.peek().Lexeme)
	}
}

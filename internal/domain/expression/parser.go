// Package expression parses and evaluates design property expressions:
// quantity literals, uncertain values, references to other properties and
// arithmetic over them.
//
// Grammar, lowest precedence first:
//
//	Sum       := Product (('+' | '-') Product)*
//	Product   := Term (('*' | '/') Term)*
//	Term      := '-' Term | '(' Sum ')' | Uncertain | Reference
//	Uncertain := Quantity [('+/-' | '+-') Quantity]
//	Quantity  := <number>[<unit>[<exponent>]]
//	Reference := Word+ ['.' Word]
package expression

import (
	"fmt"
	"strings"
)

// Parse parses source into an expression tree.
func Parse(source string) (Node, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{src: source, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(0, "empty expression")
	}

	node, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok.pos, "unexpected %s", describe(tok))
	}
	return node, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level expressions known to be valid.
func MustParse(source string) Node {
	n, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	src  string
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) advance() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokPlus && tok.kind != tokMinus {
			return left, nil
		}
		p.advance()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: tok.text[0], Left: left, Right: right, Position: tok.pos}
	}
}

func (p *parser) parseProduct() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokStar && tok.kind != tokSlash {
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: tok.text[0], Left: left, Right: right, Position: tok.pos}
	}
}

func (p *parser) parseTerm() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokMinus:
		p.advance()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &NegateNode{Operand: operand, Position: tok.pos}, nil

	case tokLParen:
		p.advance()
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return nil, p.errorf(closing.pos, "expected ')' to close '(' at offset %d, found %s", tok.pos, describe(closing))
		}
		p.advance()
		return inner, nil

	case tokNumber:
		p.advance()
		value := quantityNode(tok)
		pm := p.peek()
		if pm.kind != tokPlusMinus {
			return value, nil
		}
		p.advance()
		errTok := p.peek()
		if errTok.kind != tokNumber {
			return nil, p.errorf(errTok.pos, "expected quantity after %s, found %s", pm.text, describe(errTok))
		}
		p.advance()
		return &UncertainNode{Value: value, Error: quantityNode(errTok), Position: tok.pos}, nil

	case tokIdent:
		return p.parseReference()

	default:
		return nil, p.errorf(tok.pos, "unexpected %s", describe(tok))
	}
}

func (p *parser) parseReference() (Node, error) {
	first := p.advance()
	words := []string{first.text}
	for p.peek().kind == tokIdent {
		words = append(words, p.advance().text)
	}

	if p.peek().kind == tokDot {
		dot := p.advance()
		prop := p.peek()
		if prop.kind != tokIdent {
			return nil, p.errorf(prop.pos, "expected property name after '.' at offset %d, found %s", dot.pos, describe(prop))
		}
		p.advance()
		return &ReferenceNode{
			Object:   strings.Join(words, " "),
			Property: prop.text,
			Position: first.pos,
		}, nil
	}

	last := len(words) - 1
	return &ReferenceNode{
		Object:   strings.Join(words[:last], " "),
		Property: words[last],
		Position: first.pos,
	}, nil
}

func quantityNode(tok token) *QuantityNode {
	return &QuantityNode{
		Text:      tok.text,
		Magnitude: tok.magnitude,
		Unit:      tok.unit,
		Exponent:  tok.exponent,
		Position:  tok.pos,
	}
}

func describe(tok token) string {
	switch tok.kind {
	case tokNumber, tokIdent:
		return fmt.Sprintf("%s %q", tok.kind, tok.text)
	default:
		return tok.kind.String()
	}
}

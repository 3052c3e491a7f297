package expression

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/reglet-dev/verity/internal/domain/quantity"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokDot
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokPlusMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "quantity"
	case tokIdent:
		return "identifier"
	case tokDot:
		return "'.'"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokPlusMinus:
		return "'+/-'"
	default:
		return "unknown token"
	}
}

// token is a lexeme with its byte offset in the source.
type token struct {
	kind tokenKind
	text string
	pos  int

	// Quantity literal parts, set for tokNumber only.
	magnitude float64
	unit      string
	exponent  int
}

// lexer splits a property string into tokens. A unit symbol and its integer
// exponent must be glued to the number ("4m2"), matching the literal forms
// accepted in design properties.
type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
			return l.toks, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) peekRune(offset int) (rune, int) {
	if offset >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[offset:])
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, w := l.peekRune(l.pos)
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += w
	}
}

func (l *lexer) emit(kind tokenKind, start int) {
	l.toks = append(l.toks, token{kind: kind, text: l.src[start:l.pos], pos: start})
}

func (l *lexer) next() error {
	start := l.pos
	r, w := l.peekRune(l.pos)

	switch {
	case r >= '0' && r <= '9':
		return l.number()
	case isIdentStart(r):
		l.pos += w
		for l.pos < len(l.src) {
			r, w = l.peekRune(l.pos)
			if !isIdentPart(r) {
				break
			}
			l.pos += w
		}
		l.emit(tokIdent, start)
		return nil
	}

	l.pos += w
	switch r {
	case '+':
		switch {
		case len(l.src) >= l.pos+2 && l.src[l.pos:l.pos+2] == "/-":
			l.pos += 2
			l.emit(tokPlusMinus, start)
		case l.pos < len(l.src) && l.src[l.pos] == '-':
			l.pos++
			l.emit(tokPlusMinus, start)
		default:
			l.emit(tokPlus, start)
		}
	case '-':
		l.emit(tokMinus, start)
	case '*':
		l.emit(tokStar, start)
	case '/':
		l.emit(tokSlash, start)
	case '(':
		l.emit(tokLParen, start)
	case ')':
		l.emit(tokRParen, start)
	case '.':
		l.emit(tokDot, start)
	default:
		return &SyntaxError{Source: l.src, Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	return nil
}

// number scans <digits>[.<digits>][<unit>[<exponent>]].
func (l *lexer) number() error {
	start := l.pos
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	numText := l.src[start:l.pos]
	magnitude, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return &SyntaxError{Source: l.src, Pos: start, Msg: fmt.Sprintf("malformed number %q", numText)}
	}

	tok := token{kind: tokNumber, pos: start, magnitude: magnitude, exponent: 1}

	unitStart := l.pos
	for l.pos < len(l.src) {
		r, w := l.peekRune(l.pos)
		if !unicode.IsLetter(r) {
			break
		}
		l.pos += w
	}
	tok.unit = l.src[unitStart:l.pos]

	if tok.unit != "" {
		expStart := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos > expStart {
			tok.exponent, err = strconv.Atoi(l.src[expStart:l.pos])
			if err != nil || tok.exponent == 0 {
				return &SyntaxError{Source: l.src, Pos: expStart, Msg: "invalid unit exponent"}
			}
			if tok.exponent > quantity.MaxExponent {
				return &SyntaxError{Source: l.src, Pos: expStart,
					Msg: fmt.Sprintf("unit exponent %d exceeds %d", tok.exponent, quantity.MaxExponent)}
			}
		}
	}

	if l.pos < len(l.src) {
		if r, _ := l.peekRune(l.pos); isIdentPart(r) || r == '.' {
			return &SyntaxError{Source: l.src, Pos: l.pos, Msg: fmt.Sprintf("malformed quantity %q", l.src[start:l.pos+1])}
		}
	}

	tok.text = l.src[start:l.pos]
	l.toks = append(l.toks, tok)
	return nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

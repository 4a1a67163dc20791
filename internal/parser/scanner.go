package parser

import (
	"strings"

	"github.com/felixzheng98/cedarlink/internal/core"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString // raw literal, quotes included
	tokSlot   // "?principal", "?resource", ...
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokSemicolon
	tokEq     // "=="
	tokDColon // "::"
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scanner tokenizes policy source. Line comments ("//" to end of line) are
// treated as whitespace. Condition bodies are not tokenized; the parser
// captures them raw via captureBlock.
type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	start := s.pos
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := s.src[s.pos]
	switch c {
	case '(':
		s.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		s.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case '[':
		s.pos++
		return token{kind: tokLBracket, text: "[", pos: start}, nil
	case ']':
		s.pos++
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case ',':
		s.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case ';':
		s.pos++
		return token{kind: tokSemicolon, text: ";", pos: start}, nil
	case '=':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '=' {
			s.pos += 2
			return token{kind: tokEq, text: "==", pos: start}, nil
		}
		return token{}, core.ParseErrorf("unexpected character '=' at offset %d (did you mean '==')", start)
	case ':':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == ':' {
			s.pos += 2
			return token{kind: tokDColon, text: "::", pos: start}, nil
		}
		return token{}, core.ParseErrorf("unexpected character ':' at offset %d", start)
	case '?':
		s.pos++
		ident := s.scanIdent()
		if ident == "" {
			return token{}, core.ParseErrorf("expected slot name after '?' at offset %d", start)
		}
		return token{kind: tokSlot, text: "?" + ident, pos: start}, nil
	case '"':
		raw, err := s.scanString()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: raw, pos: start}, nil
	}

	if ident := s.scanIdent(); ident != "" {
		return token{kind: tokIdent, text: ident, pos: start}, nil
	}
	return token{}, core.ParseErrorf("unexpected character '%c' at offset %d", c, start)
}

// peek returns the next token without consuming it.
func (s *scanner) peek() (token, error) {
	saved := s.pos
	tok, err := s.next()
	s.pos = saved
	return tok, err
}

func (s *scanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		isAlpha := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && !(isDigit && s.pos > start) {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

// scanString consumes a double-quoted literal and returns it raw, quotes
// and escapes intact. Validation of escapes happens in core.ParseEntityUID.
func (s *scanner) scanString() (string, error) {
	start := s.pos
	s.pos++ // opening quote
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
		case '"':
			s.pos++
			return s.src[start:s.pos], nil
		default:
			s.pos++
		}
	}
	return "", core.ParseErrorf("unterminated string literal at offset %d", start)
}

// captureBlock consumes a brace-delimited condition body and returns it with
// whitespace outside string literals collapsed to single spaces. The body
// must be non-empty and balanced in braces and parentheses.
func (s *scanner) captureBlock() (string, error) {
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '{' {
		return "", core.ParseErrorf("expected '{' at offset %d", s.pos)
	}
	open := s.pos
	s.pos++

	var b strings.Builder
	braces, parens := 1, 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '"':
			raw, err := s.scanString()
			if err != nil {
				return "", err
			}
			b.WriteString(raw)
			continue
		case '{':
			braces++
		case '}':
			braces--
			if braces == 0 {
				s.pos++
				body := strings.TrimSpace(b.String())
				if parens != 0 {
					return "", core.ParseErrorf("unbalanced parentheses in condition at offset %d", open)
				}
				if body == "" {
					return "", core.ParseErrorf("empty condition body at offset %d", open)
				}
				return body, nil
			}
		case '(':
			parens++
		case ')':
			parens--
			if parens < 0 {
				return "", core.ParseErrorf("unbalanced parentheses in condition at offset %d", open)
			}
		case ' ', '\t', '\n', '\r':
			s.skipSpace()
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			continue
		case '/':
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
				s.skipSpace()
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				continue
			}
		}
		b.WriteByte(c)
		s.pos++
	}
	return "", core.ParseErrorf("unterminated condition body starting at offset %d", open)
}

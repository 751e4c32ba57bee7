package codec

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokName
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of object"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokName:
		return "name"
	default:
		return "unknown token"
	}
}

type token struct {
	kind    tokenKind
	text    string // decoded string, number or name text
	off     int    // byte offset of the token start
	escaped bool   // string contained an escape sequence
}

// lexer tokenizes src[pos:end]. It never reads past end.
type lexer struct {
	src []byte
	pos int
	end int
}

func (l *lexer) next() (token, error) {
	for l.pos < l.end && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= l.end {
		return token{kind: tokEOF, off: l.end}, nil
	}

	start := l.pos
	c := l.src[start]
	switch {
	case c == '{':
		l.pos++
		return token{kind: tokLBrace, off: start}, nil
	case c == '}':
		l.pos++
		return token{kind: tokRBrace, off: start}, nil
	case c == '[':
		l.pos++
		return token{kind: tokLBracket, off: start}, nil
	case c == ':':
		l.pos++
		return token{kind: tokColon, off: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, off: start}, nil
	case c == '"':
		return l.lexString()
	case c == '-' || isDigit(c):
		return l.lexNumber()
	case isLetter(c):
		return l.lexName()
	default:
		return token{}, errAt(l.src, start, "unexpected character %q", c)
	}
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	var (
		b       strings.Builder
		escaped bool
	)
	for i := start + 1; i < l.end; i++ {
		c := l.src[i]
		switch c {
		case '"':
			l.pos = i + 1
			return token{kind: tokString, text: b.String(), off: start, escaped: escaped}, nil
		case '\n':
			return token{}, errAt(l.src, i, "newline in string literal")
		case '\\':
			if i+1 >= l.end {
				return token{}, errAt(l.src, start, "unterminated string")
			}
			escaped = true
			i++
			switch l.src[i] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				return token{}, errAt(l.src, i-1, "unicode escapes are not supported")
			default:
				return token{}, errAt(l.src, i-1, "unsupported escape sequence \\%c", l.src[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return token{}, errAt(l.src, start, "unterminated string")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	i := start
	if l.src[i] == '-' {
		i++
	}
	digits := i
	for i < l.end && isDigit(l.src[i]) {
		i++
	}
	if i == digits {
		return token{}, errAt(l.src, start, "expected digit after '-'")
	}
	if i < l.end && l.src[i] == '.' {
		i++
		frac := i
		for i < l.end && isDigit(l.src[i]) {
			i++
		}
		if i == frac {
			return token{}, errAt(l.src, i, "expected digit after '.'")
		}
	}
	if i < l.end {
		switch c := l.src[i]; {
		case c == 'e' || c == 'E':
			return token{}, errAt(l.src, i, "numeric exponents are not supported")
		case isLetter(c) || c == '.' || c == '_':
			return token{}, errAt(l.src, i, "malformed number")
		}
	}
	l.pos = i
	return token{kind: tokNumber, text: string(l.src[start:i]), off: start}, nil
}

func (l *lexer) lexName() (token, error) {
	start := l.pos
	i := start
	for i < l.end && (isLetter(l.src[i]) || isDigit(l.src[i]) || l.src[i] == '_') {
		i++
	}
	l.pos = i
	return token{kind: tokName, text: string(l.src[start:i]), off: start}, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

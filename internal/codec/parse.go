package codec

// ItemsKey is the only key whose value may be an array of objects.
const ItemsKey = "items"

// Kind classifies a parsed value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindName
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindName:
		return "name"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a parsed field value. Text holds the decoded string, the number
// literal or the bare name; Objects holds the elements of an items array.
type Value struct {
	Kind    Kind
	Text    string
	Objects []*Object
	Offset  int
}

// Field is one key/value pair.
type Field struct {
	Key    string
	Value  Value
	Offset int
}

// Object is a parsed record. Fields keep their source order.
type Object struct {
	Fields []Field
	Offset int
}

// Lookup returns the value stored under key.
func (o *Object) Lookup(key string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Parse reads a complete document: a top-level array of flat objects whose
// only nested value is an "items" array of flat objects.
func Parse(data []byte) ([]*Object, error) {
	lo := skipSpace(data, 0)
	if lo >= len(data) {
		return nil, errAt(data, lo, "empty document: expected '['")
	}
	if data[lo] != '[' {
		return nil, errAt(data, lo, "expected '[' at start of document, found %q", data[lo])
	}
	closing, err := matchBracket(data, lo)
	if err != nil {
		return nil, err
	}
	if rest := skipSpace(data, closing+1); rest != len(data) {
		return nil, errAt(data, rest, "unexpected content after closing ']'")
	}
	return parseArray(data, lo, closing+1, false)
}

// parseArray parses the objects of the bracketed region src[lo:hi].
func parseArray(src []byte, lo, hi int, nested bool) ([]*Object, error) {
	spans, err := Spans(src, lo, hi)
	if err != nil {
		return nil, err
	}

	objs := make([]*Object, 0, len(spans))
	prev := lo + 1
	for i, sp := range spans {
		if err := checkGap(src, prev, sp.Start, i > 0); err != nil {
			return nil, err
		}
		obj, err := parseObject(src, sp, nested)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
		prev = sp.End
	}
	if err := checkGap(src, prev, hi-1, false); err != nil {
		return nil, err
	}
	return objs, nil
}

type parser struct {
	lex    lexer
	nested bool
}

func parseObject(src []byte, sp Span, nested bool) (*Object, error) {
	p := &parser{
		lex:    lexer{src: src, pos: sp.Start, end: sp.End},
		nested: nested,
	}
	return p.object()
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	if tok.kind != kind {
		return token{}, p.unexpected(tok, kind.String())
	}
	return tok, nil
}

func (p *parser) unexpected(tok token, want string) error {
	return errAt(p.lex.src, tok.off, "expected %s, found %s", want, tok.kind)
}

func (p *parser) object() (*Object, error) {
	open, err := p.expect(tokLBrace)
	if err != nil {
		return nil, err
	}
	obj := &Object{Offset: open.off}
	seen := make(map[string]bool)

	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokRBrace {
		return obj, p.done()
	}

	for {
		if tok.kind != tokString {
			return nil, p.unexpected(tok, "field name")
		}
		if tok.escaped {
			return nil, errAt(p.lex.src, tok.off, "escape sequences are not allowed in field names")
		}
		if seen[tok.text] {
			return nil, errAt(p.lex.src, tok.off, "duplicate field %q", tok.text)
		}
		seen[tok.text] = true

		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		val, err := p.value(tok.text)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, Field{Key: tok.text, Value: val, Offset: tok.off})

		sep, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch sep.kind {
		case tokComma:
			if tok, err = p.lex.next(); err != nil {
				return nil, err
			}
		case tokRBrace:
			return obj, p.done()
		default:
			return nil, p.unexpected(sep, "',' or '}'")
		}
	}
}

// done checks that nothing follows the closing brace inside the span.
func (p *parser) done() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind != tokEOF {
		return p.unexpected(tok, tokEOF.String())
	}
	return nil
}

func (p *parser) value(key string) (Value, error) {
	tok, err := p.lex.next()
	if err != nil {
		return Value{}, err
	}
	switch tok.kind {
	case tokString:
		return Value{Kind: KindString, Text: tok.text, Offset: tok.off}, nil
	case tokNumber:
		return Value{Kind: KindNumber, Text: tok.text, Offset: tok.off}, nil
	case tokName:
		return Value{Kind: KindName, Text: tok.text, Offset: tok.off}, nil
	case tokLBracket:
		return p.items(key, tok.off)
	case tokLBrace:
		return Value{}, errAt(p.lex.src, tok.off, "nested objects are not supported")
	default:
		return Value{}, p.unexpected(tok, "value")
	}
}

// items parses the array opened at src[open] and advances the lexer past
// its closing bracket.
func (p *parser) items(key string, open int) (Value, error) {
	if p.nested {
		return Value{}, errAt(p.lex.src, open, "arrays are not allowed inside %s elements", ItemsKey)
	}
	if key != ItemsKey {
		return Value{}, errAt(p.lex.src, open, "field %q: arrays are only allowed under %q", key, ItemsKey)
	}
	closing, err := matchBracket(p.lex.src, open)
	if err != nil {
		return Value{}, err
	}
	if closing >= p.lex.end {
		return Value{}, errAt(p.lex.src, open, "unterminated array")
	}
	objs, err := parseArray(p.lex.src, open, closing+1, true)
	if err != nil {
		return Value{}, err
	}
	p.lex.pos = closing + 1
	return Value{Kind: KindArray, Objects: objs, Offset: open}, nil
}

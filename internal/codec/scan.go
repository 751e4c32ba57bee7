package codec

// Span is a half-open byte range [Start, End) of src holding one balanced
// {...} object, braces included.
type Span struct {
	Start int
	End   int
}

// Spans returns every balanced top-level object span inside the bracketed
// region src[lo:hi], where src[lo] is '[' and src[hi-1] is its balancing ']'.
//
// Braces and brackets inside string literals are ignored. Objects nested
// deeper than the region's own elements are part of their enclosing span.
// Spans does not validate what lies between spans; see checkGap.
func Spans(src []byte, lo, hi int) ([]Span, error) {
	if lo < 0 || hi > len(src) || hi-lo < 2 || src[lo] != '[' || src[hi-1] != ']' {
		return nil, errAt(src, lo, "expected bracketed array")
	}

	var (
		spans []Span
		stack []byte
		start = -1
	)
	for i := lo; i < hi; i++ {
		c := src[i]
		switch c {
		case '"':
			end, err := skipString(src, i, hi)
			if err != nil {
				return nil, err
			}
			i = end - 1
		case '[', '{':
			stack = append(stack, c)
			if c == '{' && len(stack) == 2 {
				start = i
			}
		case ']', '}':
			if len(stack) == 0 {
				return nil, errAt(src, i, "unbalanced %q", c)
			}
			open := stack[len(stack)-1]
			if (c == ']') != (open == '[') {
				return nil, errAt(src, i, "mismatched %q closes %q", c, open)
			}
			stack = stack[:len(stack)-1]
			if c == '}' && len(stack) == 1 {
				spans = append(spans, Span{Start: start, End: i + 1})
			}
			if len(stack) == 0 && i != hi-1 {
				return nil, errAt(src, i, "array closed before end of region")
			}
		}
	}
	if len(stack) != 0 {
		return nil, errAt(src, hi, "unterminated array")
	}
	return spans, nil
}

// matchBracket returns the index of the ']' that balances the '[' at
// src[open], skipping string literals.
func matchBracket(src []byte, open int) (int, error) {
	if open >= len(src) || src[open] != '[' {
		return 0, errAt(src, open, "expected '['")
	}
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '"':
			end, err := skipString(src, i, len(src))
			if err != nil {
				return 0, err
			}
			i = end - 1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errAt(src, open, "unterminated array: no matching ']'")
}

// skipString returns the offset just past the string literal that opens at
// src[start]. Escaped quotes do not terminate it.
func skipString(src []byte, start, hi int) (int, error) {
	for i := start + 1; i < hi; i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		case '\n':
			return 0, errAt(src, i, "newline in string literal")
		}
	}
	return 0, errAt(src, start, "unterminated string")
}

// checkGap verifies that src[from:to] holds only whitespace, with exactly
// one comma when comma is set.
func checkGap(src []byte, from, to int, comma bool) error {
	i := skipSpace(src, from)
	if comma {
		if i >= to || src[i] != ',' {
			if i >= to {
				return errAt(src, to, "expected ',' between objects")
			}
			return errAt(src, i, "expected ',' between objects, found %q", src[i])
		}
		i = skipSpace(src, i+1)
	}
	if i < to {
		if src[i] == ',' {
			return errAt(src, i, "unexpected ','")
		}
		return errAt(src, i, "unexpected %q: expected an object", src[i])
	}
	return nil
}

func skipSpace(src []byte, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

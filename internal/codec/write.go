package codec

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const indentUnit = "  "

// escaper handles exactly the five characters the reader understands.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// field is one line of an object block. raw is the already-encoded value;
// items, when non-nil, replaces raw with a nested array block.
type field struct {
	key   string
	raw   string
	items [][]field
}

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

func stringField(key, v string) field {
	return field{key: key, raw: quote(v)}
}

// enumField writes a symbolic enumeration name as a quoted string.
func enumField[T ~string](key string, v T) field {
	return field{key: key, raw: quote(string(v))}
}

func decimalField(key string, v decimal.Decimal) field {
	return field{key: key, raw: v.String()}
}

func intField(key string, v int64) field {
	return field{key: key, raw: strconv.FormatInt(v, 10)}
}

func itemsField(key string, items [][]field) field {
	if items == nil {
		items = [][]field{}
	}
	return field{key: key, items: items}
}

// writeDocument renders records as a top-level array followed by a newline.
func writeDocument(records [][]field) []byte {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	writeElements(&buf, 1, records)
	buf.WriteString("]\n")
	return buf.Bytes()
}

func writeElements(buf *bytes.Buffer, level int, records [][]field) {
	for i, rec := range records {
		writeObject(buf, level, rec)
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
}

func writeObject(buf *bytes.Buffer, level int, fields []field) {
	indent := strings.Repeat(indentUnit, level)
	inner := indent + indentUnit

	buf.WriteString(indent)
	buf.WriteString("{\n")
	for i, f := range fields {
		buf.WriteString(inner)
		buf.WriteString(quote(f.key))
		buf.WriteString(": ")
		if f.items != nil {
			buf.WriteString("[\n")
			writeElements(buf, level+2, f.items)
			buf.WriteString(inner)
			buf.WriteByte(']')
		} else {
			buf.WriteString(f.raw)
		}
		if i < len(fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent)
	buf.WriteByte('}')
}

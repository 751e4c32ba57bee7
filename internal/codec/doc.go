// Package codec reads and writes the flat-file record format used for
// users, products and orders.
//
// The format looks like JSON and the writer always produces valid JSON, but
// the reader is not a general JSON parser. It accepts exactly this grammar:
//
//	document = ws "[" ws [ object { ws "," ws object } ] ws "]" ws
//	object   = "{" ws [ field { ws "," ws field } ] ws "}"
//	field    = key ws ":" ws value
//	key      = '"' { any byte except '"', '\' and newline } '"'
//	value    = string | number | name | items
//	items    = "[" ws [ object { ws "," ws object } ] ws "]"
//	string   = '"' { char | escape } '"'
//	escape   = "\\" | "\"" | "\n" | "\r" | "\t"
//	number   = [ "-" ] digit { digit } [ "." digit { digit } ]
//	name     = letter { letter | digit | "_" }
//
// Constraints beyond the grammar:
//   - An items value may only appear under the key "items" of a top-level
//     object; objects inside it must be flat (one level of nesting only)
//   - Keys never contain escape sequences
//   - Numbers never use exponents; unicode escapes are not supported
//   - Keys must be unique within an object
//
// The writer emits one field per line, two-space indentation per level, and
// escapes only backslash, double quote, newline, carriage return and tab.
// Other control characters are written raw; the reader accepts them, so they
// round-trip, but the file is then not strictly valid JSON.
//
// Enumerations are written by symbolic name as quoted strings. The reader
// also accepts the bare-name form (e.g. "role": ADMIN).
//
// # Reading
//
// Both levels of array (the document and an order's items) are split with
// the same primitive, Spans, which tracks brace/bracket depth and returns
// each balanced top-level {...} span. Each span is then tokenized and parsed
// by a small recursive-descent parser into an ordered Object. Grammar
// violations are reported as *SyntaxError with line and column; missing or
// unconvertible fields as *FieldError.
package codec

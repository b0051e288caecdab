// Package bind rewrites ":name" placeholders into the positional "?" form
// understood by the MySQL driver.
package bind

import (
	"fmt"
	"strings"
)

// Lookup resolves a placeholder name (with its ":" marker) to a value.
type Lookup func(name string) (any, bool)

// MissingError reports a placeholder that has no bound value.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("novasql: no value bound for parameter %s", e.Name)
}

// Compile scans query, replaces every :name outside quoted sections and
// comments with "?" and returns the matching values in order of appearance.
// A placeholder used twice yields its value twice. "::" is left untouched.
// Comments ("-- ", "#", "/* */") are copied verbatim.
func Compile(query string, lookup Lookup) (string, []any, error) {
	var (
		b     strings.Builder
		args  []any
		quote byte
	)
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]

		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && quote != '`' && i+1 < len(query):
				i++
				b.WriteByte(query[i])
			case c == quote:
				quote = 0
			}
			continue
		}

		if end := commentEnd(query, i); end > i {
			b.WriteString(query[i:end])
			i = end - 1
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			b.WriteString("::")
			i++
		case c == ':' && i+1 < len(query) && isNameStart(query[i+1]):
			j := i + 1
			for j < len(query) && isNameChar(query[j]) {
				j++
			}
			name := query[i:j]
			v, ok := lookup(name)
			if !ok {
				return "", nil, &MissingError{Name: name}
			}
			args = append(args, v)
			b.WriteByte('?')
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), args, nil
}

// commentEnd returns the index just past the comment starting at i, or i
// when no comment starts there. Line comments keep their newline in the
// remaining input. "--" opens a comment only when followed by whitespace
// or the end of the query.
func commentEnd(query string, i int) int {
	rest := query[i:]
	switch {
	case rest[0] == '#',
		strings.HasPrefix(rest, "--") && (len(rest) == 2 || isSpace(rest[2])):
		if n := strings.IndexByte(rest, '\n'); n >= 0 {
			return i + n
		}
		return len(query)
	case strings.HasPrefix(rest, "/*"):
		if n := strings.Index(rest[2:], "*/"); n >= 0 {
			return i + 2 + n + 2
		}
		return len(query)
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

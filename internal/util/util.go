package util

import (
	"strings"
)

// Backquote surrounds the given MySQL identifier in backquotes
func Backquote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Doublequote surrounds the given PostgreSQL identifier in double quotes
func Doublequote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Singlequote surrounds the given string in singlequotes. Single quotes
// inside s are doubled; nothing else is escaped.
func Singlequote(s string) string {
	b := strings.Builder{}
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, c := range s {
		if c == '\'' {
			b.WriteByte('\'')
		}
		b.WriteRune(c)
	}
	b.WriteByte('\'')
	return b.String()
}

// MySQLString quotes s as a MySQL string literal. Single quotes are
// doubled, and backslashes and control characters are backslash escaped,
// so the literal never spans lines.
func MySQLString(s string) string {
	b := strings.Builder{}
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// PostgresString quotes s as a PostgreSQL string literal. Strings with
// line breaks become E'' escape strings so the literal never spans lines.
func PostgresString(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return Singlequote(s)
	}

	b := strings.Builder{}
	b.Grow(len(s) + 3)
	b.WriteString("E'")
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

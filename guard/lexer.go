package guard

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const eof = rune(0)

type lexer struct {
	input string

	pos   int
	start int
	width int
	line  int
	col   int

	// open /*! or /*+ comments whose body is being read as tokens
	execDepth int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1, col: 1}
}

func upper(s string) string {
	return strings.ToUpper(s)
}

func (l *lexer) str() string {
	return l.input[l.start:l.pos]
}

// tokens returns every token of the input except whitespace and
// comments, terminated by an EOF token.
func (l *lexer) tokens() []token {
	var list []token
	for {
		line, col := l.line, l.col
		t, s := l.read()
		switch t {
		case SPACE, COMMENT:
			continue
		}
		list = append(list, token{Type: t, Text: s, Pos: l.start, Line: line, Col: col})
		if t == EOF || t == ILLEGAL {
			return list
		}
	}
}

func (l *lexer) read() (tokenType, string) {
	l.start = l.pos

	r := l.next()

	if isSpace(r) {
		return l.runSpace(), ""
	} else if isLetter(r) {
		l.backup()
		return l.runIdent(), l.str()
	} else if isDigit(r) {
		l.backup()
		return l.runNumber()
	}

	switch r {
	case eof:
		if l.execDepth > 0 {
			return ILLEGAL, ""
		}
		return EOF, ""
	case '`':
		return l.runQuote('`', BACKTICK_IDENT)
	case '"':
		return l.runQuote('"', DOUBLE_QUOTE_IDENT)
	case '\'':
		return l.runQuote('\'', STRING)
	case '/':
		if l.peek() == '*' {
			if rest := l.input[l.pos:]; strings.HasPrefix(rest, "*!") || strings.HasPrefix(rest, "*+") {
				return l.runExecComment(), ""
			}
			return l.runCComment(), ""
		}
		return OTHER, "/"
	case '*':
		if l.execDepth > 0 && l.peek() == '/' {
			l.next()
			l.execDepth--
			return SPACE, ""
		}
		return OTHER, "*"
	case '-':
		if l.peek() == '-' {
			l.next()
			l.runToEOL()
			return COMMENT, ""
		}
		return OTHER, "-"
	case '#':
		l.runToEOL()
		return COMMENT, ""
	case '(':
		return LPAREN, "("
	case ')':
		return RPAREN, ")"
	case ';':
		return SEMICOLON, ";"
	case ',':
		return COMMA, ","
	case '.':
		if isDigit(l.peek()) {
			return l.runNumber()
		}
		return DOT, "."
	default:
		return OTHER, string(r)
	}
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// backup steps back over the last rune read. It is never called right
// after a newline.
func (l *lexer) backup() {
	l.pos -= l.width
	if l.width > 0 {
		l.col--
	}
}

func (l *lexer) runSpace() tokenType {
	for isSpace(l.peek()) {
		l.next()
	}
	return SPACE
}

func (l *lexer) runIdent() tokenType {
	for isCharacter(l.peek()) {
		l.next()
	}
	return IDENT
}

// runQuote reads up to the closing pair. A doubled pair or a
// backslash-escaped pair stands for the pair itself.
func (l *lexer) runQuote(pair rune, t tokenType) (tokenType, string) {
	var b bytes.Buffer
	for {
		r := l.next()
		if r == eof {
			return ILLEGAL, b.String()
		} else if r == '\\' {
			if l.peek() == pair || l.peek() == '\\' {
				r = l.next()
			}
		} else if r == pair {
			if l.peek() == pair {
				r = l.next()
			} else {
				return t, b.String()
			}
		}
		b.WriteRune(r)
	}
}

func (l *lexer) runCComment() tokenType {
	l.next() // '*'
	for {
		r := l.next()
		switch r {
		case eof:
			return ILLEGAL
		case '*':
			if l.peek() == '/' {
				l.next()
				return COMMENT
			}
		}
	}
}

// runExecComment reads the opening of a MySQL executable comment
// (/*!50000 ... */) or optimizer hint (/*+ ... */). The server runs the
// body of the former, so the body is lexed like any other input.
func (l *lexer) runExecComment() tokenType {
	l.next() // '*'
	l.next() // '!' or '+'
	for isDigit(l.peek()) {
		l.next()
	}
	l.execDepth++
	return SPACE
}

func (l *lexer) runToEOL() {
	for {
		switch l.peek() {
		case eof:
			return
		case '\n':
			l.next()
			return
		}
		l.next()
	}
}

func (l *lexer) runNumber() (tokenType, string) {
	runDigit := func() {
		for isDigit(l.peek()) {
			l.next()
		}
	}

	runDigit()

	if l.peek() == '.' {
		l.next()
		runDigit()
	}

	switch l.peek() {
	case 'E', 'e':
		l.next()
		if p := l.peek(); p == '-' || p == '+' {
			l.next()
		}
		runDigit()
	}
	return NUMBER, l.str()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isCharacter(r rune) bool {
	return isDigit(r) || isLetter(r) || r == '$'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

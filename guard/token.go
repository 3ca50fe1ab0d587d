package guard

type tokenType int

const (
	ILLEGAL tokenType = iota
	EOF
	SPACE
	COMMENT
	IDENT
	BACKTICK_IDENT
	DOUBLE_QUOTE_IDENT
	STRING
	NUMBER
	LPAREN
	RPAREN
	SEMICOLON
	COMMA
	DOT
	OTHER
)

// token is one lexeme of a console statement. Keywords are reported as
// IDENT; the checker compares their upper-cased text.
type token struct {
	Type tokenType
	Text string
	Pos  int
	Line int
	Col  int
}

func (t token) keyword() string {
	if t.Type != IDENT {
		return ""
	}
	return upper(t.Text)
}

// name reports whether the token can name a table
func (t token) name() bool {
	switch t.Type {
	case IDENT, BACKTICK_IDENT, DOUBLE_QUOTE_IDENT:
		return true
	}
	return false
}

// Package guard keeps the administrative console from modifying tables
// that only the application itself may write to.
package guard

import (
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
)

var mutatingVerbs = mapset.NewSet(
	"INSERT", "UPDATE", "DELETE", "DROP", "TRUNCATE", "ALTER",
	"REPLACE", "CREATE", "RENAME", "GRANT", "REVOKE",
	"LOAD", "COPY", "MERGE",
)

// verbs whose table may directly follow the verb, as in MySQL's
// "INSERT t VALUES ..." or postgres' "COPY t FROM ..."
var tableVerbs = mapset.NewSet("INSERT", "REPLACE", "COPY")

// keywords after which table names follow, for any mutating statement
var tableKeywords = mapset.NewSet("INTO", "UPDATE", "FROM", "TABLE", "JOIN", "TRUNCATE")

// modifiers that may sit between a table keyword and the table name
var tableModifiers = mapset.NewSet("IF", "NOT", "EXISTS", "ONLY", "LOW_PRIORITY", "IGNORE", "QUICK", "DELAYED", "HIGH_PRIORITY", "TEMPORARY")

// Guard checks console statements against a set of restricted tables.
type Guard struct {
	restricted mapset.Set
}

// New creates a Guard refusing modifications of the given tables. Names
// are compared case-insensitively and may be schema qualified.
func New(tables ...string) *Guard {
	restricted := mapset.NewSet()
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			restricted.Add(strings.ToLower(t))
		}
	}
	return &Guard{restricted: restricted}
}

// Restricted returns the number of restricted tables
func (g *Guard) Restricted() int {
	return g.restricted.Cardinality()
}

// Check inspects a console statement. Several statements separated by
// ';' are checked one by one. Read-only statements always pass.
// Statements that modify a restricted table, and any attempt to drop a
// whole database, are refused with an error matching ErrRestricted.
func (g *Guard) Check(stmt string) error {
	tokens := newLexer(stmt).tokens()
	last := tokens[len(tokens)-1]
	if last.Type == ILLEGAL {
		return errors.Errorf(`failed to read statement: unterminated quote or comment at line %d column %d`, last.Line, last.Col)
	}

	start := 0
	for i, t := range tokens {
		if t.Type != SEMICOLON && t.Type != EOF {
			continue
		}
		if err := g.checkTokens(stmt, tokens[start:i]); err != nil {
			return err
		}
		start = i + 1
	}
	return nil
}

func (g *Guard) checkTokens(stmt string, tokens []token) error {
	verbAt := -1
	for i, t := range tokens {
		if t.Type == LPAREN {
			continue
		}
		if t.keyword() != "" {
			verbAt = i
		}
		break
	}
	if verbAt < 0 {
		return nil
	}

	verb := tokens[verbAt].keyword()
	if verb == "WITH" {
		// a CTE is only as dangerous as the statement it feeds
		for i := verbAt + 1; i < len(tokens); i++ {
			switch kw := tokens[i].keyword(); kw {
			case "INSERT", "UPDATE", "DELETE", "MERGE":
				verb, verbAt = kw, i
			}
			if verb != "WITH" {
				break
			}
		}
	}
	if !mutatingVerbs.Contains(verb) {
		return nil
	}

	if verb == "DROP" && verbAt+1 < len(tokens) {
		switch kw := tokens[verbAt+1].keyword(); kw {
		case "DATABASE", "SCHEMA":
			return newViolation(stmt, tokens[verbAt], "", "dropping a %s is not allowed", strings.ToLower(kw))
		}
	}

	for i := verbAt; i < len(tokens); i++ {
		kw := tokens[i].keyword()
		introduces := tableKeywords.Contains(kw) ||
			(i == verbAt && tableVerbs.Contains(verb)) ||
			(verb == "RENAME" && kw == "TO") ||
			((verb == "GRANT" || verb == "REVOKE") && kw == "ON")
		if !introduces {
			continue
		}

		j := i + 1
		for j < len(tokens) && tableModifiers.Contains(tokens[j].keyword()) {
			j++
		}
		for j < len(tokens) && tokens[j].name() {
			start := tokens[j]
			name, next := qualifiedName(tokens, j)
			if g.isRestricted(name) {
				return newViolation(stmt, start, name, "table %s is restricted", name)
			}
			j = next
			if j < len(tokens) && tokens[j].Type == COMMA {
				j++
				continue
			}
			break
		}
	}
	return nil
}

// CheckAll checks every statement of a batch and returns the first
// refusal, annotated with the statement's 1-based index.
func (g *Guard) CheckAll(stmts []string) error {
	for i, stmt := range stmts {
		if err := g.Check(stmt); err != nil {
			return errors.Wrapf(err, `statement %d`, i+1)
		}
	}
	return nil
}

// CheckScript splits a console script the same way dumps are split and
// checks every statement in it.
func (g *Guard) CheckScript(script string) error {
	return g.CheckAll(citydump.Split(script))
}

func (g *Guard) isRestricted(name string) bool {
	name = strings.ToLower(name)
	if g.restricted.Contains(name) {
		return true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return g.restricted.Contains(name[i+1:])
	}
	return false
}

// qualifiedName reads name(.name)* starting at tokens[i] and returns the
// dotted name and the index of the first token after it.
func qualifiedName(tokens []token, i int) (string, int) {
	parts := []string{tokens[i].Text}
	i++
	for i+1 < len(tokens) && tokens[i].Type == DOT && tokens[i+1].name() {
		parts = append(parts, tokens[i+1].Text)
		i += 2
	}
	return strings.Join(parts, "."), i
}

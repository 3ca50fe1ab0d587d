package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	g := New("audit_log", "Users", " smartcity.permissions ")
	assert.Equal(t, 3, g.Restricted())

	testcases := []struct {
		Input string
		Table string
		Error bool
	}{
		{Input: "SELECT * FROM audit_log"},
		{Input: "select count(*) from users where active"},
		{Input: "(SELECT id FROM audit_log) UNION (SELECT id FROM fines)"},
		{Input: "INSERT INTO fines (id, amount) VALUES (1, 10.5)"},
		{Input: "UPDATE fines SET paid = TRUE WHERE id = 3"},
		{Input: "DELETE FROM incidents WHERE note = 'audit_log'"},
		{Input: "UPDATE citizens SET name = 'DELETE FROM audit_log' WHERE id = 1"},
		{Input: "-- DELETE FROM audit_log\nSELECT 1"},
		{Input: "/* DROP DATABASE smartcity */ SELECT 1"},
		{Input: ""},
		{Input: "INSERT INTO audit_log (msg) VALUES ('x')", Table: "audit_log", Error: true},
		{Input: "insert ignore into AUDIT_LOG values (1)", Table: "AUDIT_LOG", Error: true},
		{Input: "UPDATE `users` SET admin = 1", Table: "users", Error: true},
		{Input: `UPDATE "Users" SET admin = 1`, Table: "Users", Error: true},
		{Input: "DELETE FROM smartcity.audit_log", Table: "smartcity.audit_log", Error: true},
		{Input: "UPDATE other.permissions SET x = 1", Error: false},
		{Input: "UPDATE smartcity.permissions SET x = 1", Table: "smartcity.permissions", Error: true},
		{Input: "DROP TABLE IF EXISTS fines, audit_log", Table: "audit_log", Error: true},
		{Input: "TRUNCATE TABLE users", Table: "users", Error: true},
		{Input: "TRUNCATE users", Table: "users", Error: true},
		{Input: "ALTER TABLE users ADD COLUMN x INT", Table: "users", Error: true},
		{Input: "RENAME TABLE fines TO audit_log", Table: "audit_log", Error: true},
		{Input: "DELETE f FROM fines f JOIN users u ON u.id = f.user_id", Table: "users", Error: true},
		{Input: "WITH old AS (SELECT id FROM fines) DELETE FROM audit_log WHERE id IN (SELECT id FROM old)", Table: "audit_log", Error: true},
		{Input: "GRANT SELECT ON audit_log TO reporter", Table: "audit_log", Error: true},
		{Input: "SELECT 1; DELETE FROM audit_log WHERE id = 1;", Table: "audit_log", Error: true},
		{Input: "SELECT 1;;; SELECT 2;"},
		{Input: "DROP DATABASE smartcity", Error: true},
		{Input: "drop schema public cascade", Error: true},
		{Input: "INSERT audit_log (id) VALUES (1)", Table: "audit_log", Error: true},
		{Input: "REPLACE audit_log VALUES (1)", Table: "audit_log", Error: true},
		{Input: "insert low_priority ignore audit_log values (1)", Table: "audit_log", Error: true},
		{Input: "INSERT fines (id) SELECT id FROM audit_log", Table: "audit_log", Error: true},
		{Input: "UPDATE fines SET note = REPLACE(note, 'a', 'b')"},
		{Input: "/*!50000 DELETE FROM audit_log */", Table: "audit_log", Error: true},
		{Input: "SELECT 1 /*!; DELETE FROM users */", Table: "users", Error: true},
		{Input: "/*!40101 SET NAMES utf8mb4 */"},
		{Input: "SELECT /*+ MAX_EXECUTION_TIME(1000) */ * FROM audit_log"},
		{Input: "LOAD DATA LOCAL INFILE '/tmp/log.csv' INTO TABLE audit_log", Table: "audit_log", Error: true},
		{Input: "LOAD DATA INFILE '/tmp/fines.csv' REPLACE INTO TABLE fines"},
		{Input: "COPY audit_log FROM STDIN", Table: "audit_log", Error: true},
		{Input: "copy smartcity.audit_log (id, msg) from '/tmp/log.csv'", Table: "smartcity.audit_log", Error: true},
		{Input: "COPY fines FROM STDIN"},
		{Input: "MERGE INTO users u USING staging s ON u.id = s.id WHEN MATCHED THEN DELETE", Table: "users", Error: true},
	}

	for _, c := range testcases {
		t.Run(c.Input, func(t *testing.T) {
			err := g.Check(c.Input)
			if !c.Error {
				assert.NoError(t, err, "statement should pass")
				return
			}

			if !assert.Error(t, err, "statement should be refused") {
				return
			}
			assert.True(t, IsRestricted(err), "refusals match ErrRestricted")
			v, ok := err.(Violation)
			if !assert.True(t, ok, "expected a Violation, got %T", err) {
				return
			}
			assert.Equal(t, c.Table, v.Table())
		})
	}
}

func TestCheckPosition(t *testing.T) {
	g := New("audit_log")

	err := g.Check("UPDATE fines SET paid = TRUE;\nDELETE FROM\n  audit_log WHERE id = 1")
	if !assert.Error(t, err) {
		return
	}
	v := err.(Violation)
	assert.Equal(t, 3, v.Line())
	assert.Equal(t, 3, v.Col())
	assert.Equal(t, "table audit_log is restricted", v.Message())
	assert.Contains(t, err.Error(), `"  " <---- AROUND HERE`)
}

func TestCheckUnterminated(t *testing.T) {
	err := New("audit_log").Check("UPDATE fines SET note = 'oops")
	if !assert.Error(t, err, "unterminated strings cannot be checked") {
		return
	}
	assert.False(t, IsRestricted(err))

	err = New("audit_log").Check("/*!50000 DELETE FROM fines")
	if !assert.Error(t, err, "unterminated executable comments cannot be checked") {
		return
	}
	assert.False(t, IsRestricted(err))
}

func TestCheckScript(t *testing.T) {
	g := New("audit_log")

	assert.NoError(t, g.CheckScript("-- cleanup\nDELETE FROM fines WHERE paid;\nSELECT * FROM audit_log;"))

	err := g.CheckScript("DELETE FROM fines WHERE paid;\n-- oops\nDELETE FROM\naudit_log;")
	if !assert.Error(t, err) {
		return
	}
	assert.True(t, IsRestricted(err), "refusal survives annotation")
	assert.Contains(t, err.Error(), "statement 2: ")
}

func TestLexer(t *testing.T) {
	tokens := newLexer("INSERT INTO `city``s` VALUES ('it''s', 1.5e-3, \"q\\\"x\") -- trailing\n;").tokens()

	var types []tokenType
	var texts []string
	for _, tok := range tokens {
		types = append(types, tok.Type)
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []tokenType{IDENT, IDENT, BACKTICK_IDENT, IDENT, LPAREN, STRING, COMMA, NUMBER, COMMA, DOUBLE_QUOTE_IDENT, RPAREN, SEMICOLON, EOF}, types)
	assert.Equal(t, []string{"INSERT", "INTO", "city`s", "VALUES", "(", "it's", ",", "1.5e-3", ",", `q"x`, ")", ";", ""}, texts)
}

func TestLexerExecutableComment(t *testing.T) {
	var texts []string
	for _, tok := range newLexer("/* plain */ /*!40101 SET x = 2 * 3 */ /*+ HINT */").tokens() {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"SET", "x", "=", "2", "*", "3", "HINT", ""}, texts)
}

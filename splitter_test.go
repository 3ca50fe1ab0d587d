package citydump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	testcases := []struct {
		Name   string
		Input  string
		Expect []string
	}{
		{
			Name:   "empty",
			Input:  "",
			Expect: nil,
		},
		{
			Name:   "comments and blanks only",
			Input:  "-- Smart City database backup\n\n   \n-- Table: citizens\n\t-- indented comment\n",
			Expect: nil,
		},
		{
			Name:   "single line",
			Input:  "   INSERT INTO citizens (id, name) VALUES (1, 'Ana');   ",
			Expect: []string{"INSERT INTO citizens (id, name) VALUES (1, 'Ana');"},
		},
		{
			Name:  "multi line",
			Input: "INSERT INTO fines (id, amount)\n    VALUES\n  (3, 120.5);",
			Expect: []string{
				"INSERT INTO fines (id, amount) VALUES (3, 120.5);",
			},
		},
		{
			Name:  "missing terminator",
			Input: "DELETE FROM sensors;\nUPDATE fines SET paid = TRUE\nWHERE id = 4",
			Expect: []string{
				"DELETE FROM sensors;",
				"UPDATE fines SET paid = TRUE WHERE id = 4",
			},
		},
		{
			Name:  "round trip",
			Input: strings.Join([]string{"INSERT INTO a (x) VALUES (1);", "-- comment", "INSERT INTO b (y)\nVALUES ('z');"}, "\n"),
			Expect: []string{
				"INSERT INTO a (x) VALUES (1);",
				"INSERT INTO b (y) VALUES ('z');",
			},
		},
		{
			Name:  "inline comment stays statement text",
			Input: "INSERT INTO a (x) VALUES (1); -- first\nINSERT INTO a (x) VALUES (2);",
			Expect: []string{
				"INSERT INTO a (x) VALUES (1); -- first INSERT INTO a (x) VALUES (2);",
			},
		},
		{
			Name:  "quoted semicolon splits the statement",
			Input: "INSERT INTO incidents (note) VALUES ('closed;\nreopened');",
			Expect: []string{
				"INSERT INTO incidents (note) VALUES ('closed;",
				"reopened');",
			},
		},
		{
			Name:  "windows line endings",
			Input: "-- header\r\nINSERT INTO a (x)\r\nVALUES (1);\r\n",
			Expect: []string{
				"INSERT INTO a (x) VALUES (1);",
			},
		},
	}

	for _, c := range testcases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Split(c.Input), "Split result should match")

			got, err := SplitReader(strings.NewReader(c.Input))
			if !assert.NoError(t, err, "SplitReader should succeed") {
				return
			}
			assert.Equal(t, c.Expect, got, "SplitReader should agree with Split")
		})
	}
}

func TestSplitLongLine(t *testing.T) {
	values := strings.Repeat("'x',", 100000)
	stmt := "INSERT INTO sensors (v) VALUES (" + values + "'y');"

	got, err := SplitReader(strings.NewReader("-- big\n" + stmt + "\n"))
	if !assert.NoError(t, err, "lines beyond the default scanner buffer should be read") {
		return
	}
	assert.Equal(t, []string{stmt}, got)
}

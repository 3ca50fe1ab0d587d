package citydump

import (
	"bufio"
	"io"
	"strings"

	"github.com/smartcity/citydump/internal/errors"
)

const commentMarker = "--"

// Split turns a dump into the ordered list of statements it contains.
//
// The dump is processed line by line. Blank lines and lines starting with
// "--" are dropped, remaining lines are trimmed and joined with a single
// space until a line ending in ";" completes the statement. Text left
// over after the last line is returned as a final statement even though
// it lacks its terminator.
//
// Split is not a SQL tokenizer: a ';' that ends a line inside a quoted
// string terminates the statement there, and inline trailing comments are
// kept as statement text. The dump package escapes line breaks inside
// values, so each row it writes is a single line and splits cleanly.
func Split(dump string) []string {
	var s splitter
	for _, line := range strings.Split(dump, "\n") {
		s.line(line)
	}
	return s.finish()
}

// SplitReader is Split over a stream.
func SplitReader(src io.Reader) ([]string, error) {
	var s splitter
	scanner := bufio.NewScanner(src)
	// statements are not length limited, so neither are lines
	scanner.Buffer(make([]byte, 0, 64*1024), int(^uint(0)>>1))
	for scanner.Scan() {
		s.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, `failed to read dump`)
	}
	return s.finish(), nil
}

type splitter struct {
	stmts []string
	acc   strings.Builder
}

func (s *splitter) line(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commentMarker) {
		return
	}

	if s.acc.Len() > 0 {
		s.acc.WriteByte(' ')
	}
	s.acc.WriteString(line)

	if strings.HasSuffix(line, ";") {
		s.emit()
	}
}

func (s *splitter) emit() {
	if stmt := strings.TrimSpace(s.acc.String()); stmt != "" {
		s.stmts = append(s.stmts, stmt)
	}
	s.acc.Reset()
}

func (s *splitter) finish() []string {
	s.emit()
	return s.stmts
}

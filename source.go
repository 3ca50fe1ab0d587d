package citydump

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/smartcity/citydump/internal/errors"
)

// DumpSource is the interface used for objects that provide us with
// the text of a database dump.
type DumpSource interface {
	// WriteDump is responsible for doing whatever necessary to retrieve
	// the dump and write it to the given io.Writer
	WriteDump(io.Writer) error
}

type readerSource struct {
	src io.Reader
}

type localFileSource string

type localGitSource struct {
	dir       string
	file      string
	commitish string
}

// NewDumpSource creates a DumpSource based on the given URI.
// Currently "-" (for stdin), "local-git://...", and "file://..." are
// supported. A string that does not match any of the above patterns
// and has no scheme part is treated as a local file.
func NewDumpSource(uri string) (DumpSource, error) {
	// "-" is a special source, denoting stdin.
	if uri == "-" {
		return NewReaderSource(os.Stdin), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, `failed to parse uri`)
	}

	switch strings.ToLower(u.Scheme) {
	case "local-git":
		// local-git:///path/to/dir?file=backup.sql&commitish=HEAD
		q := u.Query()
		if q.Get("file") == "" {
			return nil, errors.New(`local-git sources require a "file" parameter`)
		}
		commitish := q.Get("commitish")
		if commitish == "" {
			commitish = "HEAD"
		}
		return NewLocalGitSource(u.Path, q.Get("file"), commitish), nil
	case "file", "":
		if u.Host != "" && u.Host != "localhost" {
			return nil, errors.Errorf(`remote hosts for file:// sources are not supported (%s)`, u.Host)
		}
		return NewLocalFileSource(u.Path), nil
	}

	return nil, errors.Errorf(`invalid dump source %q`, uri)
}

// NewReaderSource creates a DumpSource whose contents are read from the
// given io.Reader.
func NewReaderSource(src io.Reader) DumpSource {
	return &readerSource{src: src}
}

// NewLocalFileSource creates a DumpSource whose contents are read from
// the given local file
func NewLocalFileSource(s string) DumpSource {
	return localFileSource(s)
}

// NewLocalGitSource creates a DumpSource whose contents are the given
// file at the given commit in a git repository. Backups kept under
// version control can be restored from any point in their history.
func NewLocalGitSource(gitDir, file, commitish string) DumpSource {
	return &localGitSource{
		dir:       gitDir,
		file:      file,
		commitish: commitish,
	}
}

// ReadStatements reads the whole dump from src and splits it.
func ReadStatements(src DumpSource) (Stmts, error) {
	var buf bytes.Buffer
	if err := src.WriteDump(&buf); err != nil {
		return nil, errors.Wrap(err, `failed to read from source`)
	}
	list, err := SplitReader(&buf)
	if err != nil {
		return nil, err
	}
	return NewStmts(list), nil
}

func (s *readerSource) WriteDump(dst io.Writer) error {
	if _, err := io.Copy(dst, s.src); err != nil {
		return errors.Wrap(err, `failed to write dump to dst`)
	}
	return nil
}

func (s localFileSource) WriteDump(dst io.Writer) error {
	f, err := os.Open(string(s))
	if err != nil {
		return errors.Wrapf(err, `failed to open local file %s`, string(s))
	}
	defer f.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return errors.Wrap(err, `failed to copy file contents to dst`)
	}
	return nil
}

func (s *localGitSource) WriteDump(dst io.Writer) error {
	var out bytes.Buffer
	cmd := exec.Command("git", "show", fmt.Sprintf("%s:%s", s.commitish, s.file))
	cmd.Stdout = &out
	cmd.Dir = s.dir

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, `failed to run git command: %s`, cmd.Args)
	}

	return NewReaderSource(&out).WriteDump(dst)
}

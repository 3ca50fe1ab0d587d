package dump

import (
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/smartcity/citydump/internal/errors"
)

// Diff writes a unified diff between two dumps to dst. Comment lines
// are ignored, so the generation timestamps of the two dumps never show
// up as a difference. It reports whether any difference was found.
func Diff(dst io.Writer, fromName, from, toName, to string) (bool, error) {
	a := dataLines(from)
	b := dataLines(to)

	ud := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return false, errors.Wrap(err, `failed to compute diff`)
	}
	if text == "" {
		return false, nil
	}
	if _, err := io.WriteString(dst, text); err != nil {
		return true, errors.Wrap(err, `failed to write diff`)
	}
	return true, nil
}

func dataLines(s string) []string {
	var lines []string
	for _, line := range difflib.SplitLines(s) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

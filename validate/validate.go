// Package validate holds the checks the administrative screens apply to
// operator input before it reaches the database.
package validate

import (
	"strings"
	"time"

	"github.com/smartcity/citydump/internal/errors"
)

// CPFDigits is the number of digits in a CPF
const CPFDigits = 11

// DateLayout is the layout operators type dates in
const DateLayout = "2006-01-02"

// CPF normalizes a CPF number by dropping the usual punctuation and
// checks that exactly CPFDigits digits remain.
func CPF(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == ' ':
		default:
			return "", errors.Errorf(`invalid character %q in CPF`, r)
		}
	}

	digits := b.String()
	if len(digits) != CPFDigits {
		return "", errors.Errorf(`CPF must have %d digits, got %d`, CPFDigits, len(digits))
	}
	return digits, nil
}

// ParseDate parses a date typed by an operator.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, `failed to parse date %q (expected YYYY-MM-DD)`, s)
	}
	return t, nil
}

// DateRange checks that to does not precede from.
func DateRange(from, to time.Time) error {
	if to.Before(from) {
		return errors.Errorf(`end date %s is before start date %s`, to.Format(DateLayout), from.Format(DateLayout))
	}
	return nil
}

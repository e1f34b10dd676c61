// Package validation holds the form rules shared by the request DTOs.
//
// Rules are pure functions. Rules collects their failures and reports them in a fixed
// order: required-field presence first, then type/format, then length and range bounds.
// Only the first failure per field is reported.
package validation

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Birth year bounds: from MinBirthYear up to the current year minus MinAgeYears.
const (
	MinBirthYear = 1940
	MinAgeYears  = 10
)

var (
	emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	zipRegexp   = regexp.MustCompile(`^[0-9]{5}$`)
	phoneRegexp = regexp.MustCompile(`^[0-9+()/\- ]{6,30}$`)
)

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Email reports whether s has the local@domain.tld shape. No RFC 5322 parsing is attempted.
func Email(s string) bool {
	return emailRegexp.MatchString(strings.TrimSpace(s))
}

// Zip reports whether s is exactly five digits.
func Zip(s string) bool {
	return zipRegexp.MatchString(s)
}

// Phone reports whether s looks like a phone number (digits, spaces, + / ( ) -).
func Phone(s string) bool {
	return phoneRegexp.MatchString(strings.TrimSpace(s))
}

// OneOf reports whether s equals one of allowed.
func OneOf(s string, allowed ...string) bool {
	return slices.Contains(allowed, s)
}

// MaxLen reports whether the trimmed s has at most n characters.
func MaxLen(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) <= n
}

// MaxBirthYear returns the latest accepted birth year at now.
func MaxBirthYear(now time.Time) int {
	return now.Year() - MinAgeYears
}

// BirthYear reports whether year lies in [MinBirthYear, MaxBirthYear(now)].
func BirthYear(year int, now time.Time) bool {
	return year >= MinBirthYear && year <= MaxBirthYear(now)
}

// Date reports whether s is a calendar date in YYYY-MM-DD form.
func Date(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Clock reports whether s is a time of day in HH:MM form.
func Clock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

type phase int

const (
	phaseRequired phase = iota
	phaseFormat
	phaseBound
)

type failure struct {
	phase phase
	field string
	msg   string
}

// Rules accumulates failed checks. The zero value is ready to use.
type Rules struct {
	failures []failure
}

// Required fails field with msg when value is blank.
func (r *Rules) Required(field, value, msg string) {
	if Blank(value) {
		r.add(phaseRequired, field, msg)
	}
}

// Format fails field with msg when ok is false.
func (r *Rules) Format(field string, ok bool, msg string) {
	if !ok {
		r.add(phaseFormat, field, msg)
	}
}

// Bound fails field with msg when ok is false.
func (r *Rules) Bound(field string, ok bool, msg string) {
	if !ok {
		r.add(phaseBound, field, msg)
	}
}

func (r *Rules) add(p phase, field, msg string) {
	r.failures = append(r.failures, failure{phase: p, field: field, msg: msg})
}

// Errors returns the messages in phase order, keeping only the earliest-phase failure of
// each field. It returns nil when every check passed.
func (r *Rules) Errors() []string {
	if len(r.failures) == 0 {
		return nil
	}
	first := make(map[string]phase, len(r.failures))
	for _, f := range r.failures {
		if p, ok := first[f.field]; !ok || f.phase < p {
			first[f.field] = f.phase
		}
	}
	var errs []string
	emitted := make(map[string]bool, len(first))
	for p := phaseRequired; p <= phaseBound; p++ {
		for _, f := range r.failures {
			if f.phase != p || first[f.field] != p || emitted[f.field] {
				continue
			}
			emitted[f.field] = true
			errs = append(errs, f.msg)
		}
	}
	return errs
}

// First returns the first message of Errors, or "" when valid.
func (r *Rules) First() string {
	if errs := r.Errors(); len(errs) > 0 {
		return errs[0]
	}
	return ""
}

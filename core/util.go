package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of date form inputs.
const DateLayout = "2006-01-02"

var thousandsRegex = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d*)?$`)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseDecimal parses a decimal form value, allowing a leading "$" and thousands separators.
// Commas anywhere else are rejected: "1,50" is not 150.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimPrefix(CleanString(s), "$")
	if strings.Contains(s, ",") {
		if !thousandsRegex.MatchString(s) {
			return 0, &strconv.NumError{Func: "ParseDecimal", Num: s, Err: strconv.ErrSyntax}
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseID parses a positive integer id, 0 means "not set".
func ParseID(s string) int {
	id, err := strconv.Atoi(CleanString(s))
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, CleanString(s), time.UTC)
}

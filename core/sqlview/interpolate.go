package sqlview

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interpolate substitutes $n placeholders with quoted literals for display.
// The result is never executed: statements always run with bound parameters.
func Interpolate(query string, args []interface{}) string {
	if len(args) == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16*len(args))
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c != '$' || inQuote {
			b.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(Literal(args[n-1]))
		i = j - 1
	}
	return b.String()
}

// Literal formats v as an SQL literal.
func Literal(v interface{}) string {
	if valuer, ok := v.(driver.Valuer); ok {
		val, err := valuer.Value()
		if err != nil {
			return "?"
		}
		v = val
	}

	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(val)
	case []byte:
		return quote(string(val))
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return quote(val.UTC().Format("2006-01-02 15:04:05"))
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	default:
		return quote(fmt.Sprintf("%v", val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

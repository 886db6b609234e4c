// Package sqlview renders executed SQL statements and result sets for display.
package sqlview

import (
	"html/template"
	"regexp"
	"sort"
	"strings"
)

// Keywords are highlighted case-insensitively, multi-word keywords first.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT JOIN", "INNER JOIN", "RIGHT JOIN",
	"GROUP BY", "ORDER BY", "HAVING", "LIMIT", "OFFSET",
	"INSERT INTO", "UPDATE", "DELETE", "SET", "VALUES", "RETURNING",
	"AS", "ON", "AND", "OR", "NOT", "IN", "IS", "NULL", "LIKE", "ILIKE", "BETWEEN", "EXISTS",
	"DISTINCT", "COUNT", "AVG", "SUM", "MAX", "MIN", "COALESCE", "ROUND",
	"CASE", "WHEN", "THEN", "ELSE", "END",
	"UNION", "UNION ALL", "WITH", "CALL",
}

var keywordRegex = compileKeywords(Keywords)

func compileKeywords(kws []string) *regexp.Regexp {
	sorted := make([]string, len(kws))
	copy(sorted, kws)
	// longest first so "LEFT JOIN" wins over "JOIN"
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for i, kw := range sorted {
		sorted[i] = strings.ReplaceAll(regexp.QuoteMeta(kw), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(sorted, "|") + `)\b`)
}

// Highlight HTML-escapes query and wraps SQL keywords in <span class="sql-keyword">.
func Highlight(query string) template.HTML {
	escaped := template.HTMLEscapeString(query)
	return template.HTML(keywordRegex.ReplaceAllString(escaped, `<span class="sql-keyword">$1</span>`))
}

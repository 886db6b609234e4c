package sqlview

import (
	"strconv"
	"time"
)

const NullText = "NULL"

// Cell is a formatted result value.
type Cell struct {
	Value string
	Null  bool
}

func (c Cell) String() string {
	if c.Null {
		return NullText
	}
	return c.Value
}

// Result is a result set rendered as a table.
type Result struct {
	Columns []string
	Rows    [][]Cell
}

func (r Result) IsEmpty() bool {
	return len(r.Rows) == 0
}

// AppendRow formats and appends one row of raw driver values.
func (r *Result) AppendRow(values []interface{}) {
	row := make([]Cell, 0, len(values))
	for _, v := range values {
		row = append(row, FormatValue(v))
	}
	r.Rows = append(r.Rows, row)
}

// FormatValue formats a raw driver value for display.
func FormatValue(v interface{}) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{Null: true}
	case []byte:
		return Cell{Value: string(val)}
	case string:
		return Cell{Value: val}
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return Cell{Value: val.Format("2006-01-02")}
		}
		return Cell{Value: val.Format("2006-01-02 15:04:05")}
	case float64:
		return Cell{Value: strconv.FormatFloat(val, 'f', -1, 64)}
	case bool:
		return Cell{Value: strconv.FormatBool(val)}
	default:
		return Cell{Value: Literal(val)}
	}
}

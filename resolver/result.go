package resolver

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/Konsultn-Engineering/valueset/database"
)

// Result is the outcome of a resolution. The zero value means not found.
type Result struct {
	TableID string
	// Index is the position of the winning template within its table.
	Index   int
	Columns []string
	Values  []any

	found bool
}

// newResult relabels row with labels when there are any, keeping one value
// per label. Without labels the driver's column names are kept.
func newResult(tableID string, index int, labels []string, row *database.Row) *Result {
	res := &Result{TableID: tableID, Index: index, found: true}
	if len(labels) == 0 {
		res.Columns = row.Columns
		res.Values = row.Values
		return res
	}
	n := min(len(labels), len(row.Values))
	res.Columns = labels[:n]
	res.Values = row.Values[:n]
	return res
}

// Found reports whether a template produced a row.
func (r *Result) Found() bool {
	return r != nil && r.found
}

// Strings returns the row keyed by column with every value rendered as text.
// NULL renders as the empty string.
func (r *Result) Strings() map[string]string {
	m := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = FormatValue(r.Values[i])
	}
	return m
}

// FormatValue renders a scanned column value as text. Driver types such as
// pgtype.Numeric are rendered through their driver.Value.
func FormatValue(v any) string {
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return formatScalar(dv)
		}
	}
	return formatScalar(v)
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

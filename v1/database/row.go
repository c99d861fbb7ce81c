package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Row is one result row: column names in result order and their values.
//
// Values are normalised by the adapters to a small set of Go types: nil,
// string, int64, float64, bool, time.Time and []byte for binary columns.
// JSON documents are stored as text and stay strings; use JSON to decode them.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row from parallel column and value slices. When a column
// name repeats, the last value wins and the name is listed once.
func NewRow(columns []string, values []any) Row {
	r := Row{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = Normalize(values[i])
		}
		if _, seen := r.values[col]; !seen {
			r.columns = append(r.columns, col)
		}
		r.values[col] = v
	}
	return r
}

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Get returns the value of col and whether the row has that column.
func (r Row) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Value returns the value of col, or nil if the column is absent.
func (r Row) Value(col string) any {
	return r.values[col]
}

// IsNull reports whether col is absent or NULL.
func (r Row) IsNull(col string) bool {
	return r.values[col] == nil
}

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// String returns col as text. NULL becomes the empty string.
func (r Row) String(col string) string {
	switch v := r.values[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns col as an integer. Text holding a number is parsed.
func (r Row) Int64(col string) (int64, error) {
	switch v := r.values[col].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", col, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("column %q: cannot convert %T to int64", col, v)
	}
}

// Float64 returns col as a floating point number.
func (r Row) Float64(col string) (float64, error) {
	switch v := r.values[col].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", col, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("column %q: cannot convert %T to float64", col, v)
	}
}

// Bool returns col as a boolean. SQLite stores booleans as 0/1 integers.
func (r Row) Bool(col string) (bool, error) {
	switch v := r.values[col].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("column %q: %w", col, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("column %q: cannot convert %T to bool", col, v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time returns col as a timestamp. SQLite CURRENT_TIMESTAMP text is parsed as UTC.
func (r Row) Time(col string) (time.Time, error) {
	switch v := r.values[col].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("column %q: unrecognised time %q", col, v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("column %q: cannot convert %T to time", col, v)
	}
}

// JSON decodes a JSON text column into dst. NULL and empty text leave dst untouched.
func (r Row) JSON(col string, dst any) error {
	raw := r.String(col)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("column %q: decode json: %w", col, err)
	}
	return nil
}

// Normalize maps driver values onto the Row value set.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		if x == nil {
			return nil
		}
		out := make([]byte, len(x))
		copy(out, x)
		return out
	default:
		return x
	}
}

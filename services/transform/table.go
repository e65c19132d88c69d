package transform

import "strconv"

// Table is a spreadsheet sheet flattened to a header row plus one map per
// data row. Column order is carried in Headers; Rows may hold values for
// columns appended by a transform.
type Table struct {
	Headers []string
	Rows    []map[string]any
}

func (t *Table) hasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// addHeaders appends the named columns, skipping ones already present.
func (t *Table) addHeaders(names ...string) {
	for _, n := range names {
		if !t.hasHeader(n) {
			t.Headers = append(t.Headers, n)
		}
	}
}

// num reads a numeric cell; absent, blank or unparseable values count as 0.
func num(row map[string]any, key string) float64 {
	v, ok := row[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

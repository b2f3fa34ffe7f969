package masterdb

// Row is one result row: an ordered mapping from column name to the
// underlying store's scalar value (int64, float64, string or nil).
// Accessors report absence explicitly so that a NULL or missing column
// is never mistaken for a real zero.
type Row struct {
	columns []string
	values  map[string]any
}

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	return r.columns
}

// Has reports whether the column is present and non-NULL.
func (r Row) Has(col string) bool {
	v, ok := r.values[col]
	return ok && v != nil
}

// Int returns the column as an integer. ok is false when the column is
// absent, NULL or not numeric.
func (r Row) Int(col string) (int64, bool) {
	switch v := r.values[col].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Float returns the column as a float. ok is false when the column is
// absent, NULL or not numeric.
func (r Row) Float(col string) (float64, bool) {
	switch v := r.values[col].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Text returns the column as text. ok is false when the column is
// absent or NULL.
func (r Row) Text(col string) (string, bool) {
	if v, ok := r.values[col].(string); ok {
		return v, true
	}
	return "", false
}

// IntOr returns the column as an integer, or def when absent.
func (r Row) IntOr(col string, def int64) int64 {
	if v, ok := r.Int(col); ok {
		return v
	}
	return def
}

// FloatOr returns the column as a float, or def when absent.
func (r Row) FloatOr(col string, def float64) float64 {
	if v, ok := r.Float(col); ok {
		return v
	}
	return def
}

// TextOr returns the column as text, or def when absent.
func (r Row) TextOr(col, def string) string {
	if v, ok := r.Text(col); ok {
		return v
	}
	return def
}

// IntPtr returns a pointer to the column value, or nil when absent.
func (r Row) IntPtr(col string) *int64 {
	if v, ok := r.Int(col); ok {
		return &v
	}
	return nil
}

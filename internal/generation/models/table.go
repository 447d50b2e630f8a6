package models

import (
	dErrors "datareplicator/pkg/domain-errors"
)

// Table is an in-memory columnar table. Every column holds exactly Rows()
// values; nil cells mark missing values. A table is owned by the generator
// that produced it until handed to the relationship reconciler, which may
// rewrite designated key columns in place.
type Table struct {
	name    string
	rows    int
	order   []string
	columns map[string][]any
}

// NewTable creates an empty table with a fixed row count.
func NewTable(name string, rows int) *Table {
	return &Table{
		name:    name,
		rows:    rows,
		columns: make(map[string][]any),
	}
}

// Name returns the owning domain's name.
func (t *Table) Name() string { return t.name }

// Rows returns the fixed row count.
func (t *Table) Rows() int { return t.rows }

// IsEmpty reports whether the table holds no usable data.
func (t *Table) IsEmpty() bool {
	return t == nil || t.rows == 0 || len(t.columns) == 0
}

// SetColumn installs a column, enforcing the row-count invariant.
func (t *Table) SetColumn(name string, values []any) error {
	if len(values) != t.rows {
		return dErrors.Newf(dErrors.CodeInternal,
			"column %s has %d values, table %s requires exactly %d", name, len(values), t.name, t.rows)
	}
	if _, exists := t.columns[name]; !exists {
		t.order = append(t.order, name)
	}
	t.columns[name] = values
	return nil
}

// Column returns a column by name. The slice is shared, not copied.
func (t *Table) Column(name string) ([]any, bool) {
	col, ok := t.columns[name]
	return col, ok
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Variables returns column names in insertion order.
func (t *Table) Variables() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// SetCell overwrites a single cell. Used by the reconciler.
func (t *Table) SetCell(column string, row int, value any) error {
	col, ok := t.columns[column]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "table %s has no column %s", t.name, column)
	}
	if row < 0 || row >= t.rows {
		return dErrors.Newf(dErrors.CodeInvalidInput, "row %d out of range for table %s", row, t.name)
	}
	col[row] = value
	return nil
}

// DistinctValues returns a column's distinct non-missing values in
// first-appearance order.
func (t *Table) DistinctValues(column string) []any {
	col, ok := t.columns[column]
	if !ok {
		return nil
	}
	seen := make(map[any]struct{}, len(col))
	var out []any
	for _, v := range col {
		if v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values in a column.
func (t *Table) DistinctCount(column string) int {
	return len(t.DistinctValues(column))
}

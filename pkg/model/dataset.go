package model

import "fmt"

// Dataset is a small in-memory columnar table. All columns have equal length.
// Mutating operations work on the receiver only; Clone gives an independent
// copy, so a recode never touches the dataset a caller still holds.
type Dataset struct {
	cols  map[string][]float64
	order []string
	n     int
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{cols: make(map[string][]float64)}
}

// AddColumn appends a named column. The first column fixes the row count.
func (d *Dataset) AddColumn(name string, values []float64) error {
	if _, dup := d.cols[name]; dup {
		return fmt.Errorf("dataset: duplicate column %q", name)
	}
	if len(d.cols) > 0 && len(values) != d.n {
		return fmt.Errorf("dataset: column %q has %d rows, want %d", name, len(values), d.n)
	}
	d.n = len(values)
	d.cols[name] = values
	d.order = append(d.order, name)
	return nil
}

// Column returns the named column. The slice is shared; callers that need to
// write must Clone the dataset first.
func (d *Dataset) Column(name string) ([]float64, bool) {
	c, ok := d.cols[name]
	return c, ok
}

// Columns returns the column names in insertion order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the row count.
func (d *Dataset) Len() int { return d.n }

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		cols:  make(map[string][]float64, len(d.cols)),
		order: append([]string(nil), d.order...),
		n:     d.n,
	}
	for name, vals := range d.cols {
		c.cols[name] = append([]float64(nil), vals...)
	}
	return c
}

// Recode rewrites a binary column against a new reference level: rows equal
// to refLevel become 0, all other rows become 1.
func (d *Dataset) Recode(name string, refLevel float64) error {
	col, ok := d.cols[name]
	if !ok {
		return fmt.Errorf("dataset: no column %q", name)
	}
	for i, v := range col {
		if v == refLevel {
			col[i] = 0
		} else {
			col[i] = 1
		}
	}
	return nil
}

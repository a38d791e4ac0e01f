package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDataset_AddColumn(t *testing.T) {
	d := NewDataset()
	if err := d.AddColumn("y", []float64{0, 1, 1}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := d.AddColumn("x", []float64{1, 0, 1}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}
	if diff := cmp.Diff([]string{"y", "x"}, d.Columns()); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}

	if err := d.AddColumn("y", []float64{0}); err == nil {
		t.Error("duplicate column accepted")
	}
	if err := d.AddColumn("z", []float64{0, 1}); err == nil {
		t.Error("ragged column accepted")
	}
}

func TestDataset_CloneIsIndependent(t *testing.T) {
	d := NewDataset()
	if err := d.AddColumn("x", []float64{0, 1, 2}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	c := d.Clone()
	if err := c.Recode("x", 2); err != nil {
		t.Fatalf("Recode: %v", err)
	}

	orig, _ := d.Column("x")
	if diff := cmp.Diff([]float64{0, 1, 2}, orig); diff != "" {
		t.Errorf("original mutated by clone recode (-want +got):\n%s", diff)
	}
	recoded, _ := c.Column("x")
	if diff := cmp.Diff([]float64{1, 1, 0}, recoded); diff != "" {
		t.Errorf("clone recode wrong (-want +got):\n%s", diff)
	}
}

func TestDataset_Recode(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		refLevel float64
		want     []float64
	}{
		{"flip binary", []float64{0, 1, 0, 1}, 1, []float64{1, 0, 1, 0}},
		{"identity when ref is zero", []float64{0, 1, 1, 0}, 0, []float64{0, 1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDataset()
			if err := d.AddColumn("x", append([]float64(nil), tt.values...)); err != nil {
				t.Fatalf("AddColumn: %v", err)
			}
			if err := d.Recode("x", tt.refLevel); err != nil {
				t.Fatalf("Recode: %v", err)
			}
			got, _ := d.Column("x")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recode mismatch (-want +got):\n%s", diff)
			}
		})
	}

	d := NewDataset()
	if err := d.Recode("missing", 0); err == nil {
		t.Error("Recode on missing column succeeded")
	}
}

package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "outcome,alc,smk\n0,0,1\n1,1,0\n1,1,1\n")

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if ds.Len() != 3 {
		t.Errorf("Len = %d, want 3", ds.Len())
	}
	if diff := cmp.Diff([]string{"outcome", "alc", "smk"}, ds.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	alc, ok := ds.Column("alc")
	if !ok {
		t.Fatal("alc column missing")
	}
	if diff := cmp.Diff([]float64{0, 1, 1}, alc); diff != "" {
		t.Errorf("alc mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"header only", "outcome,alc\n"},
		{"non-numeric cell", "outcome,alc\n0,yes\n"},
		{"duplicate header", "outcome,outcome\n0,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCSV(writeCSV(t, tt.body)); err == nil {
				t.Error("LoadCSV succeeded, want error")
			}
		})
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadCSV succeeded on a missing file")
	}
}

package study

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"synergy/pkg/model"
)

// LoadCSV reads a numeric CSV with a header row into a Dataset. Every cell
// below the header must parse as a float.
func LoadCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s: need a header row and at least one data row", path)
	}

	header := records[0]
	cols := make([][]float64, len(header))
	for i := range cols {
		cols[i] = make([]float64, 0, len(records)-1)
	}
	for rowIdx, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("dataset %s row %d: %d fields, want %d", path, rowIdx+2, len(rec), len(header))
		}
		for i, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset %s row %d column %q: %w", path, rowIdx+2, header[i], err)
			}
			cols[i] = append(cols[i], v)
		}
	}

	ds := model.NewDataset()
	for i, name := range header {
		if err := ds.AddColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", path, err)
		}
	}
	return ds, nil
}

// LoadData loads the study's dataset.
func (s *Study) LoadData() (*model.Dataset, error) {
	return LoadCSV(s.DataPath())
}

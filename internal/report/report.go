// Package report renders an estimation result for humans: a short header in
// the style of the calibration reports plus a publication-style measure table.
package report

import (
	"fmt"
	"strings"

	"synergy/internal/format"
	"synergy/pkg/estimate"
)

// Format renders the full report: header, warnings, measure table.
func Format(res *estimate.Result, mode format.Mode) string {
	var b strings.Builder

	framing := "interaction"
	if res.EM {
		framing = "effect modification"
	}
	b.WriteString("=== Interaction analysis ===\n")
	b.WriteString(fmt.Sprintf("Model:     %s\n", res.Kind))
	b.WriteString(fmt.Sprintf("Exposures: %s, %s\n", res.Terms.Beta1, res.Terms.Beta2))
	b.WriteString(fmt.Sprintf("Framing:   %s\n", framing))
	b.WriteString(fmt.Sprintf("CI level:  %s\n", format.Percent(res.Level)))
	if res.RecodedData != nil {
		b.WriteString("Data:      recoded (see warnings)\n")
	}
	b.WriteString("\n")

	for _, w := range res.Warnings {
		b.WriteString(fmt.Sprintf("WARNING: %s\n", w.Message))
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(Table(res, mode))
	b.WriteString("\n")
	return b.String()
}

// Table renders only the measure table.
func Table(res *estimate.Result, mode format.Mode) string {
	t := format.NewTable(mode)
	t.Header("Measure", "Estimate", format.Percent(res.Level)+" CI", "p-value")
	t.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
	)
	for _, row := range res.Rows {
		ciCell := format.NA
		if row.HasCI {
			ciCell = format.Interval(row.Lower, row.Upper)
		}
		pCell := format.NA
		if row.HasP {
			pCell = format.PValue(row.P)
		}
		t.Row(row.Label, format.Estimate(row.Estimate), ciCell, pCell)
	}
	return t.String()
}

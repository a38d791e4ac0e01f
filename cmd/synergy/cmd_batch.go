package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"synergy/internal/batch"
	"synergy/internal/report"
)

var batchFlags struct {
	dir       string
	workers   int
	outFormat string
}

var batchCmd = &cobra.Command{
	Use:   "batch --dir <directory>",
	Short: "Run every study file in a directory",
	Long: `Batch discovers *.yaml, *.yml and *.json study files in a directory and
estimates them concurrently. Each study is independent; failures are reported
per study and do not stop the batch.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.dir, "dir", "", "Directory of study files (required)")
	f.IntVar(&batchFlags.workers, "workers", runtime.NumCPU(), "Concurrent studies")
	f.StringVar(&batchFlags.outFormat, "format", "ascii", "Table format (ascii|markdown)")
	_ = batchCmd.MarkFlagRequired("dir")
}

func runBatch(cmd *cobra.Command, args []string) error {
	var paths []string
	for _, pat := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(batchFlags.dir, pat))
		if err != nil {
			return err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no study files in %s", batchFlags.dir)
	}

	mode, err := parseMode(batchFlags.outFormat)
	if err != nil {
		return err
	}

	items := batch.Run(cmd.Context(), paths, batchFlags.workers)
	failed := 0
	out := cmd.OutOrStdout()
	for _, item := range items {
		fmt.Fprintf(out, "--- %s ---\n", item.Path)
		if item.Err != nil {
			failed++
			fmt.Fprintf(out, "FAILED: %v\n\n", item.Err)
			continue
		}
		fmt.Fprint(out, report.Format(item.Result, mode))
	}
	fmt.Fprintf(out, "%d/%d studies succeeded\n", len(items)-failed, len(items))
	if failed > 0 {
		return fmt.Errorf("%d of %d studies failed", failed, len(items))
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"synergy/internal/fit"
	"synergy/internal/format"
	"synergy/internal/report"
	"synergy/internal/study"
	"synergy/pkg/estimate"
)

var analyzeFlags struct {
	studyPath string
	outFormat string
	ciLevel   float64
	em        bool
	recode    bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [study-file]",
	Short: "Fit a logistic model and report interaction measures",
	Long: `Analyze fits the logistic model described by a study file and prints the
measure table with confidence intervals.

Usage:
  synergy analyze study.yaml                 # Study file as positional arg
  synergy analyze --study study.yaml         # Study file as flag
  synergy analyze study.yaml --em            # Effect-modification framing
  synergy analyze study.yaml --format markdown

Command-line flags override the study file's ci_level, em and recode settings
when given explicitly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.studyPath, "study", "", "Path to study file (YAML/JSON)")
	f.StringVar(&analyzeFlags.outFormat, "format", "ascii", "Table format (ascii|markdown)")
	f.Float64Var(&analyzeFlags.ciLevel, "ci", 0, "Confidence level override, in (0, 1)")
	f.BoolVar(&analyzeFlags.em, "em", false, "Effect-modification framing (8 rows)")
	f.BoolVar(&analyzeFlags.recode, "recode", false, "Recode preventive exposures and refit")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := analyzeFlags.studyPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("a study file is required (positional or --study)")
	}

	s, err := study.LoadFromPath(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ci") {
		s.CILevel = analyzeFlags.ciLevel
	}
	if cmd.Flags().Changed("em") {
		s.EM = analyzeFlags.em
	}
	if cmd.Flags().Changed("recode") {
		s.Recode = analyzeFlags.recode
	}

	data, err := s.LoadData()
	if err != nil {
		return err
	}

	fitter := &fit.Logit{}
	m, err := fitter.Fit(s.Spec(), data)
	if err != nil {
		return err
	}

	res, err := estimate.Run(m, s.Options(fitter))
	if err != nil {
		return err
	}

	mode, err := parseMode(analyzeFlags.outFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Format(res, mode))
	return nil
}

func parseMode(s string) (format.Mode, error) {
	switch s {
	case "ascii", "":
		return format.ASCII, nil
	case "markdown", "md":
		return format.Markdown, nil
	}
	return 0, fmt.Errorf("unknown table format %q (want ascii or markdown)", s)
}

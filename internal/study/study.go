// Package study loads analysis configurations and their datasets. A study
// file names the data, the outcome and the two exposures, plus the estimation
// options; the dataset itself is a plain CSV with a header row.
package study

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"synergy/pkg/estimate"
	"synergy/pkg/model"
)

// Study is one analysis configuration.
type Study struct {
	Name       string   `yaml:"name" json:"name"`
	Data       string   `yaml:"data" json:"data"` // CSV path, relative to the study file
	Outcome    string   `yaml:"outcome" json:"outcome"`
	Exposure1  string   `yaml:"exposure1" json:"exposure1"`
	Exposure2  string   `yaml:"exposure2" json:"exposure2"`
	Covariates []string `yaml:"covariates" json:"covariates"`
	Weights    string   `yaml:"weights" json:"weights"`
	CILevel    float64  `yaml:"ci_level" json:"ci_level"` // defaults to 0.95
	EM         bool     `yaml:"em" json:"em"`
	Recode     bool     `yaml:"recode" json:"recode"`

	dir string // directory of the study file, for resolving Data
}

// LoadFromPath reads a study file (YAML or JSON by extension, content sniff
// otherwise) and validates it.
func LoadFromPath(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read study: %w", err)
	}
	s, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Load parses a study from bytes. ext is the file extension for a format
// hint; empty means detect from content.
func Load(data []byte, ext string) (*Study, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	var s Study
	switch {
	case ext == ".yaml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse study yaml: %w", err)
		}
	case ext == ".json" || strings.HasPrefix(strings.TrimSpace(string(data)), "{"):
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse study json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse study yaml: %w", err)
		}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	if s.CILevel == 0 {
		s.CILevel = 0.95
	}
	return &s, nil
}

func (s *Study) validate() error {
	switch {
	case s.Data == "":
		return fmt.Errorf("study: data path is required")
	case s.Outcome == "":
		return fmt.Errorf("study: outcome column is required")
	case s.Exposure1 == "" || s.Exposure2 == "":
		return fmt.Errorf("study: both exposure columns are required")
	case s.CILevel < 0 || s.CILevel >= 1:
		return fmt.Errorf("study: ci_level %g outside (0, 1)", s.CILevel)
	}
	return nil
}

// DataPath resolves the dataset path against the study file location.
func (s *Study) DataPath() string {
	if filepath.IsAbs(s.Data) || s.dir == "" {
		return s.Data
	}
	return filepath.Join(s.dir, s.Data)
}

// Spec builds the model specification for the logistic fitter.
func (s *Study) Spec() model.Spec {
	return model.Spec{
		Outcome:    s.Outcome,
		Exposure1:  s.Exposure1,
		Exposure2:  s.Exposure2,
		Covariates: s.Covariates,
		Weights:    s.Weights,
		Kind:       model.Logistic,
	}
}

// Options builds the estimation options, wiring the given refitter for the
// recode path.
func (s *Study) Options(refitter model.Refitter) estimate.Options {
	return estimate.Options{
		Exposure1: s.Exposure1,
		Exposure2: s.Exposure2,
		CILevel:   s.CILevel,
		EM:        s.EM,
		Recode:    s.Recode,
		Refitter:  refitter,
	}
}

package achievement

import (
	"io/fs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Metric string

const (
	MetricAssignmentsCompleted Metric = "assignments_completed"
	MetricStudyHours           Metric = "study_hours"
	MetricStudySessions        Metric = "study_sessions"
	MetricDoubtsAsked          Metric = "doubts_asked"
)

func (m Metric) IsValid() bool {
	switch m {
	case MetricAssignmentsCompleted, MetricStudyHours, MetricStudySessions, MetricDoubtsAsked:
		return true
	}
	return false
}

type Definition struct {
	Code        string  `json:"code" yaml:"code"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Icon        string  `json:"icon" yaml:"icon"`
	Metric      Metric  `json:"metric" yaml:"metric"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
}

// Catalog is the ordered list of every achievement.
type Catalog []Definition

// ParseCatalog decodes a YAML list of definitions.
func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, errors.Wrap(err, "decoding achievement catalog")
	}

	seen := make(map[string]bool, len(cat))
	for i, def := range cat {
		switch {
		case def.Code == "":
			return nil, errors.Errorf("achievement #%d: missing code", i)
		case seen[def.Code]:
			return nil, errors.Errorf("achievement %q: duplicate code", def.Code)
		case !def.Metric.IsValid():
			return nil, errors.Errorf("achievement %q: unknown metric %q", def.Code, def.Metric)
		case def.Threshold <= 0:
			return nil, errors.Errorf("achievement %q: threshold must be positive", def.Code)
		}
		seen[def.Code] = true
	}
	return cat, nil
}

// LoadCatalog reads and parses the catalog file name from fsys.
func LoadCatalog(fsys fs.FS, name string) (Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, "reading achievement catalog")
	}
	return ParseCatalog(data)
}

// Due returns the definitions reached by counters and not in unlocked.
func (cat Catalog) Due(c Counters, unlocked map[string]bool) []Definition {
	var due []Definition
	for _, def := range cat {
		if !unlocked[def.Code] && c.Value(def.Metric) >= def.Threshold {
			due = append(due, def)
		}
	}
	return due
}

package scoring

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile parses a rubric definition from a YAML file.
func LoadFile(path string) (*Rubric, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric %s: %w", path, err)
	}

	var r Rubric
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse rubric %s: %w", path, err)
	}
	if err := validateRubric(&r); err != nil {
		return nil, fmt.Errorf("rubric %s: %w", path, err)
	}

	// Default the score range where the file omits it.
	for i := range r.Criteria {
		if r.Criteria[i].Min == 0 && r.Criteria[i].Max == 0 {
			r.Criteria[i].Min = 1
			r.Criteria[i].Max = 5
		}
	}

	return &r, nil
}

// LoadDir loads every .yaml/.yml rubric in dir into the registry.
func (reg *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read rubric dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		r, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		reg.Register(r)
	}
	return nil
}

func validateRubric(r *Rubric) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rubric id is empty")
	}
	if len(r.Criteria) == 0 {
		return fmt.Errorf("rubric has no criteria")
	}

	seen := map[string]bool{}
	for _, c := range r.Criteria {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("criterion id is empty")
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate criterion: %q", c.ID)
		}
		seen[c.ID] = true

		switch c.Category {
		case CategoryBusinessValue, CategoryRiskFactor:
		default:
			return fmt.Errorf("criterion %q has unknown category %q", c.ID, c.Category)
		}
		if c.Max < c.Min {
			return fmt.Errorf("criterion %q has inverted score range", c.ID)
		}
	}

	for _, rule := range r.PriorityRules {
		if rule.Priority < 1 || rule.Priority > 4 {
			return fmt.Errorf("priority rule %q out of range", rule.Label)
		}
	}
	return nil
}

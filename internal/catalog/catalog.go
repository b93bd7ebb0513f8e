// Package catalog holds the static exercise catalog and diet plan.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/claude/physiotrainer/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrNotFound is returned when a category, type, or exercise does not exist.
var ErrNotFound = errors.New("not found")

// Catalog is an immutable, ordered set of exercise categories plus the diet plan.
type Catalog struct {
	Categories []models.Category    `yaml:"categories" json:"categories"`
	DietPlan   []models.DietSection `yaml:"diet_plan" json:"diet_plan"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from a YAML file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}
	seenCat := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seenCat[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seenCat[cat.Name] = true
		if len(cat.Types) == 0 {
			return fmt.Errorf("category %q has no types", cat.Name)
		}
		seenType := make(map[string]bool, len(cat.Types))
		for _, t := range cat.Types {
			if seenType[t.Name] {
				return fmt.Errorf("duplicate type %q in %q", t.Name, cat.Name)
			}
			seenType[t.Name] = true
			if len(t.Exercises) == 0 {
				return fmt.Errorf("type %q in %q has no exercises", t.Name, cat.Name)
			}
			seenEx := make(map[string]bool, len(t.Exercises))
			for _, ex := range t.Exercises {
				if ex.Name == "" {
					return fmt.Errorf("exercise with empty name in %q / %q", cat.Name, t.Name)
				}
				if seenEx[ex.Name] {
					return fmt.Errorf("duplicate exercise %q in %q / %q", ex.Name, cat.Name, t.Name)
				}
				seenEx[ex.Name] = true
			}
		}
	}
	return nil
}

// CategoryNames lists categories in catalog order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// Types returns the exercise types of a category.
func (c *Catalog) Types(category string) ([]models.ExerciseType, error) {
	for _, cat := range c.Categories {
		if cat.Name == category {
			return cat.Types, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", category, ErrNotFound)
}

// Exercises returns the exercises of a category/type pair.
func (c *Catalog) Exercises(category, exType string) ([]models.Exercise, error) {
	types, err := c.Types(category)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if t.Name == exType {
			return t.Exercises, nil
		}
	}
	return nil, fmt.Errorf("type %q in %q: %w", exType, category, ErrNotFound)
}

// Lookup finds a single exercise by category, type and name.
func (c *Catalog) Lookup(category, exType, name string) (models.Exercise, error) {
	exercises, err := c.Exercises(category, exType)
	if err != nil {
		return models.Exercise{}, err
	}
	for _, ex := range exercises {
		if ex.Name == name {
			return ex, nil
		}
	}
	return models.Exercise{}, fmt.Errorf("exercise %q in %q / %q: %w", name, category, exType, ErrNotFound)
}

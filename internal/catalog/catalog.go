// Package catalog serves the institute's static course list.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/institute-portal/internal/schemas"
)

//go:embed courses.yaml
var defaultCourses []byte

// Course is one program on offer. Fee is in minor currency units.
type Course struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Category string   `json:"category" yaml:"category"`
	Duration string   `json:"duration,omitempty" yaml:"duration"`
	Mode     string   `json:"mode,omitempty" yaml:"mode"`
	Fee      int64    `json:"fee" yaml:"fee"`
	Currency string   `json:"currency" yaml:"currency"`
	Summary  string   `json:"summary,omitempty" yaml:"summary"`
	Modules  []string `json:"modules,omitempty" yaml:"modules"`
}

// Catalog is a read-only set of courses in display order.
type Catalog struct {
	courses []Course
	byID    map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCourses)
}

// Parse decodes and schema-checks a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse course catalog YAML: %w", err)
	}
	if err := schemas.Validate(schemas.CourseCatalog, raw); err != nil {
		return nil, fmt.Errorf("invalid course catalog: %w", err)
	}

	var f struct {
		Courses []Course `yaml:"courses"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode course catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Courses))}
	for _, course := range f.Courses {
		if _, dup := c.byID[course.ID]; dup {
			return nil, fmt.Errorf("invalid course catalog: duplicate course id %q", course.ID)
		}
		c.byID[course.ID] = len(c.courses)
		c.courses = append(c.courses, course)
	}
	return c, nil
}

// List returns every course.
func (c *Catalog) List() []Course {
	return slices.Clone(c.courses)
}

// Get looks a course up by id.
func (c *Catalog) Get(id string) (Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}

// ByCategory returns the courses in one category.
func (c *Catalog) ByCategory(category string) []Course {
	var out []Course
	for _, course := range c.courses {
		if course.Category == category {
			out = append(out, course)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, course := range c.courses {
		if !slices.Contains(out, course.Category) {
			out = append(out, course.Category)
		}
	}
	return out
}

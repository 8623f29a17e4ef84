// Package catalog serves the read-only prompt template, technique and tip catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/promptlab/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

var placeholderRegex = regexp.MustCompile(`\[([^\[\]]+)\]`)

type subjectFile struct {
	Name      string                 `yaml:"name"`
	Templates []model.PromptTemplate `yaml:"templates"`
}

type catalogFile struct {
	Subjects   []subjectFile     `yaml:"subjects"`
	Techniques []model.Technique `yaml:"techniques"`
	Tips       []model.Tip       `yaml:"tips"`
}

// Catalog is an immutable view of the embedded catalog file.
type Catalog struct {
	subjects   []string
	templates  map[string][]model.PromptTemplate
	techniques []model.Technique
	tips       []model.Tip
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog parsed from the embedded file. It panics if the
// embedded file is invalid, which can only happen with a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(catalogYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded catalog: %v", defaultErr))
	}
	return defaultCat
}

// Load parses the embedded catalog file.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Subjects) == 0 {
		return nil, errors.New("catalog has no subjects")
	}

	c := &Catalog{
		templates:  make(map[string][]model.PromptTemplate, len(f.Subjects)),
		techniques: f.Techniques,
		tips:       f.Tips,
	}
	for _, s := range f.Subjects {
		if s.Name == "" {
			return nil, errors.New("catalog subject without a name")
		}
		if _, dup := c.templates[s.Name]; dup {
			return nil, fmt.Errorf("duplicate subject %q", s.Name)
		}
		if len(s.Templates) == 0 {
			return nil, fmt.Errorf("subject %q has no templates", s.Name)
		}
		seen := make(map[string]bool, len(s.Templates))
		templates := make([]model.PromptTemplate, 0, len(s.Templates))
		for _, t := range s.Templates {
			if t.Category == "" || t.Text == "" {
				return nil, fmt.Errorf("subject %q has an incomplete template", s.Name)
			}
			if seen[t.Category] {
				return nil, fmt.Errorf("subject %q repeats category %q", s.Name, t.Category)
			}
			seen[t.Category] = true
			t.Subject = s.Name
			templates = append(templates, t)
		}
		c.subjects = append(c.subjects, s.Name)
		c.templates[s.Name] = templates
	}
	for _, t := range f.Techniques {
		if t.Name == "" || t.GoodExample == "" || t.BadExample == "" {
			return nil, fmt.Errorf("technique %q is incomplete", t.Name)
		}
	}
	return c, nil
}

// Subjects returns subject names in file order.
func (c *Catalog) Subjects() []string {
	return append([]string(nil), c.subjects...)
}

// Templates returns the templates of a subject, or nil for an unknown subject.
func (c *Catalog) Templates(subject string) []model.PromptTemplate {
	return append([]model.PromptTemplate(nil), c.templates[subject]...)
}

// Template looks up a single template.
func (c *Catalog) Template(subject, category string) (model.PromptTemplate, bool) {
	for _, t := range c.templates[subject] {
		if t.Category == category {
			return t, true
		}
	}
	return model.PromptTemplate{}, false
}

// Techniques returns all prompting techniques.
func (c *Catalog) Techniques() []model.Technique {
	return append([]model.Technique(nil), c.techniques...)
}

// Technique looks up a technique by name.
func (c *Catalog) Technique(name string) (model.Technique, bool) {
	for _, t := range c.techniques {
		if t.Name == name {
			return t, true
		}
	}
	return model.Technique{}, false
}

// Tips returns the best-practice tip groups.
func (c *Catalog) Tips() []model.Tip {
	return append([]model.Tip(nil), c.tips...)
}

// Placeholders lists the distinct bracketed names in a template text, in order
// of first appearance.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderRegex.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Package catalog holds the block categories users can place on the
// timeline, grouped by the workflow step that unlocks them.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FallbackDuration is used for categories missing from the catalog.
const FallbackDuration = 10.0

// FallbackColor is the neutral color for unknown categories.
const FallbackColor = "#d1d5db"

// Category is one placeable block kind.
type Category struct {
	Type            string  `yaml:"type"`
	Label           string  `yaml:"label"`
	Color           string  `yaml:"color"`
	DefaultDuration float64 `yaml:"defaultDuration"`
}

// Group is a named set of categories unlocked at a workflow step.
type Group struct {
	Name       string     `yaml:"name"`
	Step       int        `yaml:"step"`
	Categories []Category `yaml:"categories"`
}

// File is the on-disk override format.
type File struct {
	// Replace discards the built-in table instead of merging into it.
	Replace bool    `yaml:"replace"`
	Groups  []Group `yaml:"groups"`
}

// Catalog is an immutable lookup table of categories.
type Catalog struct {
	groups []Group
	byType map[string]Category
}

// New builds a catalog from groups, ordered by step then declaration.
func New(groups []Group) *Catalog {
	c := &Catalog{byType: make(map[string]Category)}
	for _, g := range groups {
		g.Categories = append([]Category(nil), g.Categories...)
		c.groups = append(c.groups, g)
	}
	sort.SliceStable(c.groups, func(i, j int) bool {
		return c.groups[i].Step < c.groups[j].Step
	})
	for _, g := range c.groups {
		for _, cat := range g.Categories {
			if _, dup := c.byType[cat.Type]; !dup {
				c.byType[cat.Type] = cat
			}
		}
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(builtin)
}

// Lookup returns the category for a type tag.
func (c *Catalog) Lookup(typ string) (Category, bool) {
	cat, ok := c.byType[typ]
	return cat, ok
}

// Resolve returns the category for typ, or a neutral placeholder.
func (c *Catalog) Resolve(typ string) Category {
	if cat, ok := c.byType[typ]; ok {
		return cat
	}
	return Category{Type: typ, Label: typ, Color: FallbackColor, DefaultDuration: FallbackDuration}
}

// Groups returns every group.
func (c *Catalog) Groups() []Group {
	return append([]Group(nil), c.groups...)
}

// Visible returns the groups unlocked at step.
func (c *Catalog) Visible(step int) []Group {
	var out []Group
	for _, g := range c.groups {
		if g.Step <= step {
			out = append(out, g)
		}
	}
	return out
}

// VisibleCategories flattens Visible(step).
func (c *Catalog) VisibleCategories(step int) []Category {
	var out []Category
	for _, g := range c.Visible(step) {
		out = append(out, g.Categories...)
	}
	return out
}

// Len returns the number of distinct category types.
func (c *Catalog) Len() int {
	return len(c.byType)
}

// Merge overlays groups onto the catalog. Groups match by name and
// categories by type; anything new is appended.
func (c *Catalog) Merge(groups []Group) *Catalog {
	merged := c.Groups()
	for _, g := range groups {
		idx := -1
		for i := range merged {
			if merged[i].Name == g.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, g)
			continue
		}
		base := &merged[idx]
		if g.Step > 0 {
			base.Step = g.Step
		}
		base.Categories = append([]Category(nil), base.Categories...)
		for _, cat := range g.Categories {
			replaced := false
			for i := range base.Categories {
				if base.Categories[i].Type == cat.Type {
					base.Categories[i] = cat
					replaced = true
					break
				}
			}
			if !replaced {
				base.Categories = append(base.Categories, cat)
			}
		}
	}
	return New(merged)
}

// Load reads a YAML override file and applies it to the built-in catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML override data to the built-in catalog.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	if f.Replace {
		return New(f.Groups), nil
	}
	return Default().Merge(f.Groups), nil
}

func (f File) validate() error {
	for gi, g := range f.Groups {
		if g.Name == "" {
			return fmt.Errorf("catalog group %d: name is required", gi)
		}
		for ci, cat := range g.Categories {
			if cat.Type == "" {
				return fmt.Errorf("catalog group %q category %d: type is required", g.Name, ci)
			}
			if cat.DefaultDuration < 0 {
				return fmt.Errorf("catalog category %q: defaultDuration must be non-negative, got %v", cat.Type, cat.DefaultDuration)
			}
		}
	}
	return nil
}

// Marshal renders the catalog in the override file format.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(File{Replace: true, Groups: c.groups})
}

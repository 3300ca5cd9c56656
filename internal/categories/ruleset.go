package categories

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordRule maps a category id to the lowercase substrings that trigger
// auto-classification into it. Keyword order within a rule is the scan
// order; membership is what matters.
type KeywordRule struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Ruleset is the versioned classification configuration: the category
// registry plus the keyword table. It is an immutable value passed into
// the classifier; edits produce a new Ruleset with a bumped version.
type Ruleset struct {
	Version    int           `yaml:"version" json:"version"`
	Categories []Category    `yaml:"categories" json:"categories"`
	Rules      []KeywordRule `yaml:"rules" json:"rules"`

	byID map[string]Category
}

var (
	ErrDuplicateCategory = errors.New("duplicate category id")
	ErrEmptyCategoryID   = errors.New("empty category id")
	ErrUnknownCategory   = errors.New("unknown category")
)

// DefaultRuleset returns the built-in registry and keyword table.
func DefaultRuleset() *Ruleset {
	rs := &Ruleset{
		Version:    1,
		Categories: DefaultCategories(),
		Rules:      defaultKeywords(),
	}
	rs.index()
	return rs
}

// LoadRuleset reads a YAML ruleset from path. Keywords are normalized to
// lowercase so matching stays case-insensitive regardless of how the
// file was written.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset: %w", err)
	}
	for i := range rs.Rules {
		for j, kw := range rs.Rules[i].Keywords {
			rs.Rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("validate ruleset: %w", err)
	}
	rs.index()
	return &rs, nil
}

func (r *Ruleset) index() {
	r.byID = make(map[string]Category, len(r.Categories))
	for _, c := range r.Categories {
		r.byID[c.ID] = c
	}
}

// Validate checks structural invariants: non-empty unique ids and a
// declared type for every category. Keyword rules referencing unknown
// ids are allowed (they silently never match).
func (r *Ruleset) Validate() error {
	seen := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return ErrEmptyCategoryID
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.ID)
		}
		seen[c.ID] = true
		switch c.Type {
		case TypeExpense, TypeIncome, TypeInvestment:
		default:
			return fmt.Errorf("category %s: unknown type %q", c.ID, c.Type)
		}
	}
	return nil
}

// CategoryByID looks up a registry entry.
func (r *Ruleset) CategoryByID(id string) (Category, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// LabelFor returns the display name for a category id, falling back to
// the id itself for unregistered categories.
func (r *Ruleset) LabelFor(id string) string {
	if c, ok := r.byID[id]; ok {
		return c.Name
	}
	return id
}

// ColorFor returns the chart color for a category id, with a neutral
// gray fallback.
func (r *Ruleset) ColorFor(id string) string {
	if c, ok := r.byID[id]; ok {
		return c.Color
	}
	return fallbackColor
}

package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesetIsValid(t *testing.T) {
	rs := DefaultRuleset()
	require.NoError(t, rs.Validate())

	// Every built-in rule references a registered category.
	for _, rule := range rs.Rules {
		_, ok := rs.CategoryByID(rule.Category)
		assert.True(t, ok, "rule %s has no registry entry", rule.Category)
	}

	// Fallback and income categories must exist, the classifier relies
	// on both being resolvable.
	_, ok := rs.CategoryByID(FallbackCategory)
	assert.True(t, ok)
	_, ok = rs.CategoryByID(IncomeCategory)
	assert.True(t, ok)
}

func TestRulesetValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		rs   Ruleset
	}{
		{
			name: "duplicate id",
			rs: Ruleset{Categories: []Category{
				{ID: "food", Name: "A", Type: TypeExpense},
				{ID: "food", Name: "B", Type: TypeExpense},
			}},
		},
		{
			name: "empty id",
			rs: Ruleset{Categories: []Category{
				{ID: "  ", Name: "A", Type: TypeExpense},
			}},
		},
		{
			name: "unknown type",
			rs: Ruleset{Categories: []Category{
				{ID: "food", Name: "A", Type: "savings"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.rs.Validate())
		})
	}
}

func TestLoadRuleset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := `version: 3
categories:
  - id: food
    name: Alimentação
    color: "#ef4444"
    type: expense
  - id: income
    name: Receitas
    color: "#22c55e"
    type: income
  - id: flexible
    name: Contas Flexíveis
    color: "#10b981"
    type: expense
rules:
  - category: food
    keywords: ["Mercado", "PADARIA"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rs, err := LoadRuleset(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Version)
	assert.Len(t, rs.Categories, 3)

	// Keywords are lowercased on load so matching stays case-insensitive.
	assert.Equal(t, []string{"mercado", "padaria"}, rs.Rules[0].Keywords)
	assert.Equal(t, "Alimentação", rs.LabelFor("food"))
	assert.Equal(t, "mystery", rs.LabelFor("mystery"))
	assert.Equal(t, fallbackColor, rs.ColorFor("mystery"))
}

func TestLoadRulesetErrors(t *testing.T) {
	_, err := LoadRuleset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [not an int"), 0644))
	_, err = LoadRuleset(path)
	assert.Error(t, err)
}

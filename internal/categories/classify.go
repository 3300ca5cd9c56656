package categories

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Classify assigns a category id to a transaction from its free-text
// description and signed amount. It is a total function: every input
// yields a valid id, never an error.
//
// Positive amounts are always classified as income. The sign of the
// amount dominates content-based matching for credits, so a deposit
// whose description happens to contain "uber" still lands in income.
//
// Non-positive amounts are matched against the keyword table in ruleset
// declaration order, skipping the income rule; the first category whose
// any keyword is a case-insensitive substring of the description wins.
// Debits with no match fall back to FallbackCategory.
func (r *Ruleset) Classify(description string, amount decimal.Decimal) string {
	if amount.Sign() > 0 {
		return IncomeCategory
	}

	desc := strings.ToLower(description)
	for _, rule := range r.Rules {
		if rule.Category == IncomeCategory {
			continue
		}
		// Rules pointing at unregistered ids never match (soft invariant:
		// the table may reference ids the registry no longer carries).
		if _, ok := r.byID[rule.Category]; !ok {
			continue
		}
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return FallbackCategory
}

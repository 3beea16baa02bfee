package finance

// MonthlySummary aggregates one month of transactions.
type MonthlySummary struct {
	Total           float64 `json:"total"`
	DeductibleTotal float64 `json:"deductible_total"`
	Count           int     `json:"counts"`
}

// SummarizeMonthly buckets transactions by YYYY-MM and totals the ones the
// rule table marks deductible. Transactions without a date are skipped; a
// nil rule table uses DefaultRules.
func SummarizeMonthly(rules []Rule, txns []*Transaction) map[string]MonthlySummary {
	if rules == nil {
		rules = DefaultRules()
	}

	months := make(map[string]MonthlySummary)
	for _, txn := range txns {
		if txn == nil || txn.Date.IsZero() {
			continue
		}

		key := txn.Date.UTC().Format("2006-01")
		summary := months[key]
		summary.Count++
		summary.Total += txn.Amount
		if deductibleByRules(rules, txn.Narration) {
			summary.DeductibleTotal += txn.Amount
		}
		months[key] = summary
	}
	return months
}

func deductibleByRules(rules []Rule, narration string) bool {
	for _, rule := range rules {
		if rule.Pattern.MatchString(narration) {
			return rule.Deductible
		}
	}
	return false
}

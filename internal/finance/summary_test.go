package finance

import (
	"testing"
	"time"
)

func TestSummarizeMonthly(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)

	txns := []*Transaction{
		{ID: "t1", Amount: 1200, Narration: "GitHub subscription", Date: jan},
		{ID: "t2", Amount: 800, Narration: "Groceries", Date: jan},
		{ID: "t3", Amount: 500, Narration: "Broadband bill", Date: feb},
		{ID: "t4", Amount: 999, Narration: "no date, skipped"},
	}

	months := SummarizeMonthly(nil, txns)

	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}

	janSummary := months["2025-01"]
	if janSummary.Count != 2 || janSummary.Total != 2000 {
		t.Fatalf("unexpected january summary: %+v", janSummary)
	}
	// Only the GitHub subscription hits a deductible rule.
	if janSummary.DeductibleTotal != 1200 {
		t.Fatalf("expected deductible total 1200, got %.0f", janSummary.DeductibleTotal)
	}

	febSummary := months["2025-02"]
	if febSummary.Count != 1 || febSummary.DeductibleTotal != 500 {
		t.Fatalf("unexpected february summary: %+v", febSummary)
	}
}

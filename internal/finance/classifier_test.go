package finance

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"go.uber.org/zap"
)

type stubDrafter struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubDrafter) Draft(_ context.Context, prompt string, _ int) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestClassifyRulePrecedence(t *testing.T) {
	classifier := NewClassifier(nil, &stubDrafter{response: "should not be called"}, zap.NewNop())

	got := classifier.Classify(context.Background(), &Transaction{
		ID:        "t1",
		Narration: "AWS Office Software",
	})

	if got.Category != "Software/Tools" {
		t.Fatalf("expected Software/Tools, got %s", got.Category)
	}
	if !got.Deductible {
		t.Fatal("expected Software/Tools to be deductible")
	}
	if got.Notes != "rule-match" {
		t.Fatalf("unexpected notes: %s", got.Notes)
	}
}

func TestClassifyFirstMatchingRuleWins(t *testing.T) {
	rules := []Rule{
		{regexp.MustCompile(`(?i)aws`), "First", true},
		{regexp.MustCompile(`(?i)aws`), "Second", false},
	}
	classifier := NewClassifier(rules, nil, zap.NewNop())

	got := classifier.Classify(context.Background(), &Transaction{ID: "t1", Narration: "aws invoice"})
	if got.Category != "First" {
		t.Fatalf("expected the first rule to win, got %s", got.Category)
	}
}

func TestClassifyFuelRule(t *testing.T) {
	classifier := NewClassifier(nil, nil, zap.NewNop())

	got := classifier.Classify(context.Background(), &Transaction{ID: "t1", Narration: "HP Petrol Pump Pune"})
	if got.Category != "Transport" || got.Deductible {
		t.Fatalf("expected non-deductible Transport, got %+v", got)
	}
}

func TestClassifyGeneratorFallback(t *testing.T) {
	stub := &stubDrafter{response: `{"category":"Meals","deductible":false,"reason":"client dinner"}`}
	classifier := NewClassifier(nil, stub, zap.NewNop())

	got := classifier.Classify(context.Background(), &Transaction{ID: "t1", Narration: "Dinner at Olive"})
	if got.Category != "Meals" {
		t.Fatalf("expected Meals from generator, got %s", got.Category)
	}
	if got.Deductible {
		t.Fatal("expected non-deductible")
	}
	if got.Notes != "client dinner" {
		t.Fatalf("unexpected notes: %s", got.Notes)
	}
	if stub.lastPrompt == "" {
		t.Fatal("expected generator to be called")
	}
}

func TestClassifyGeneratorCodeFenceResponse(t *testing.T) {
	stub := &stubDrafter{response: "```json\n{\"category\":\"Travel\",\"deductible\":\"yes\",\"reason\":\"site visit\"}\n```"}
	classifier := NewClassifier(nil, stub, zap.NewNop())

	got := classifier.Classify(context.Background(), &Transaction{ID: "t1", Narration: "IRCTC ticket"})
	if got.Category != "Travel" || !got.Deductible {
		t.Fatalf("expected deductible Travel, got %+v", got)
	}
}

func TestClassifyGeneratorFailureDegrades(t *testing.T) {
	cases := []struct {
		name string
		stub *stubDrafter
	}{
		{name: "generator error", stub: &stubDrafter{err: errors.New("timeout")}},
		{name: "malformed json", stub: &stubDrafter{response: "sorry, I cannot help with that"}},
		{name: "no generator", stub: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var classifier *Classifier
			if tc.stub == nil {
				classifier = NewClassifier(nil, nil, zap.NewNop())
			} else {
				classifier = NewClassifier(nil, tc.stub, zap.NewNop())
			}

			got := classifier.Classify(context.Background(), &Transaction{ID: "t1", Narration: "mystery spend"})
			if got.Category != "Other" || got.Deductible {
				t.Fatalf("expected Other/false fallback, got %+v", got)
			}
			if got.Notes != "fallback" {
				t.Fatalf("unexpected notes: %s", got.Notes)
			}
		})
	}
}

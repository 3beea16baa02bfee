package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/saksham-os/agent-core/internal/ai"
	"github.com/saksham-os/agent-core/internal/util"
	"go.uber.org/zap"
)

const classifyMaxTokens = 180

// Rule maps a narration pattern to a category. First match wins.
type Rule struct {
	Pattern    *regexp.Regexp
	Category   string
	Deductible bool
}

// DefaultRules is the built-in narration rule table, evaluated in order.
func DefaultRules() []Rule {
	return []Rule{
		{regexp.MustCompile(`(?i)fuel|petrol|diesel|petrol pump`), "Transport", false},
		{regexp.MustCompile(`(?i)amazon|flipkart|myntra|croma`), "Supplies", false},
		{regexp.MustCompile(`(?i)office|software|github|figma|adobe|paypal|google cloud|aws|azure`), "Software/Tools", true},
		{regexp.MustCompile(`(?i)electricity|internet|broadband|wifi`), "Utilities", true},
	}
}

// Classification is the derived category for one transaction. The original
// record is never mutated.
type Classification struct {
	TransactionID string `json:"transaction_id"`
	Category      string `json:"category"`
	Deductible    bool   `json:"deductible"`
	Notes         string `json:"notes,omitempty"`
}

// Classifier categorizes transactions by narration rules, falling back to
// the text generator for anything the table does not cover.
type Classifier struct {
	rules  []Rule
	gen    ai.Drafter
	logger *zap.Logger
}

// NewClassifier builds a classifier over the given rule table. A nil table
// uses DefaultRules; the table is passed explicitly so tests can vary it per
// call without shared state.
func NewClassifier(rules []Rule, gen ai.Drafter, logger *zap.Logger) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{rules: rules, gen: gen, logger: logger}
}

// Classify always produces a result. Rules are tried in table order; the
// generator fallback is parsed defensively and any failure there degrades to
// the Other/non-deductible default.
func (c *Classifier) Classify(ctx context.Context, txn *Transaction) *Classification {
	if txn == nil {
		return nil
	}

	for _, rule := range c.rules {
		if rule.Pattern.MatchString(txn.Narration) {
			return &Classification{
				TransactionID: txn.ID,
				Category:      rule.Category,
				Deductible:    rule.Deductible,
				Notes:         "rule-match",
			}
		}
	}

	return c.classifyWithGenerator(ctx, txn)
}

func (c *Classifier) classifyWithGenerator(ctx context.Context, txn *Transaction) *Classification {
	fallback := &Classification{
		TransactionID: txn.ID,
		Category:      "Other",
		Deductible:    false,
		Notes:         "fallback",
	}

	if c.gen == nil {
		return fallback
	}

	prompt := buildClassifyPrompt(txn)

	raw, err := c.gen.Draft(ctx, prompt, classifyMaxTokens)
	if err != nil {
		c.logger.Warn("classification generation failed",
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
		return fallback
	}

	c.logger.Debug("classification response",
		zap.String("transaction_id", txn.ID),
		zap.String("response_preview", util.TruncateForLog(raw, 200)),
	)

	var data map[string]any
	if err := json.Unmarshal([]byte(ai.ExtractJSON(raw)), &data); err != nil {
		c.logger.Warn("classification response is not valid json",
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
		return fallback
	}

	category := ai.CoerceString(data["category"])
	if category == "" {
		category = "Other"
	}

	notes := ai.CoerceString(data["reason"])
	if notes == "" {
		notes = "LLM"
	}

	return &Classification{
		TransactionID: txn.ID,
		Category:      category,
		Deductible:    ai.CoerceBool(data["deductible"]),
		Notes:         notes,
	}
}

func buildClassifyPrompt(txn *Transaction) string {
	narration := strings.ReplaceAll(txn.Narration, "\n", " ")
	return strings.TrimSpace(fmt.Sprintf(`
Classify this expense into one of: "Office/Software", "Travel", "Meals", "Supplies", "Utilities", "Medical", "Other".
Also say whether it is typically tax-deductible for a freelance sole proprietor in India (yes/no) with a one-line reason.
Return JSON: {"category":"...","deductible":true,"reason":"..."}.
NARRATION: "%s"
AMOUNT: %.2f`, narration, txn.Amount))
}

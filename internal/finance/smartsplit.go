package finance

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/saksham-os/agent-core/internal/ai"
	"go.uber.org/zap"
)

const (
	adviceMaxTokens = 120
	// A resulting balance under this share of the configured checking
	// balance triggers a low-balance alert.
	lowBalanceShare = 0.15
)

// SplitConfig is the percentage split applied to incoming payments. It is
// passed per call rather than read from package state.
type SplitConfig struct {
	TaxPct     int `json:"tax_pct" mapstructure:"tax-pct"`
	SavingsPct int `json:"savings_pct" mapstructure:"savings-pct"`
	BufferPct  int `json:"buffer_pct" mapstructure:"buffer-pct"`
}

// DefaultSplit returns the stock 30/20/50 split.
func DefaultSplit() SplitConfig {
	return SplitConfig{TaxPct: 30, SavingsPct: 20, BufferPct: 50}
}

// AccountProfile is what the advisor knows about the user's finances.
type AccountProfile struct {
	UserID          string
	CheckingBalance float64
	MonthlyBurn     float64
	Split           *SplitConfig
}

// Transfer is one proposed money movement. Nothing is executed here; the
// caller shows the proposal and waits for approval.
type Transfer struct {
	Action string  `json:"action"`
	To     string  `json:"to,omitempty"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// Advice is the advisor's reaction to one transaction.
type Advice struct {
	ID               string      `json:"advice_id"`
	Type             string      `json:"type"`
	TransactionID    string      `json:"txn_id"`
	Message          string      `json:"message"`
	Transfers        []Transfer  `json:"suggested_transfers,omitempty"`
	SuggestedActions []string    `json:"suggested_actions,omitempty"`
	Split            SplitConfig `json:"split,omitempty"`
	Balance          float64     `json:"balance,omitempty"`
}

// Advice types.
const (
	AdviceSmartSplit      = "smart_split"
	AdviceLowBalanceAlert = "low_balance_alert"
)

// Advisor reacts to account movements with split proposals and low-balance
// alerts.
type Advisor struct {
	gen    ai.Drafter
	logger *zap.Logger
}

func NewAdvisor(gen ai.Drafter, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{gen: gen, logger: logger}
}

// ShouldAct reports whether the transaction deserves a reaction: any
// incoming payment, or a debit that drags the balance under the low-balance
// threshold.
func (a *Advisor) ShouldAct(txn *Transaction, profile *AccountProfile) bool {
	if txn == nil {
		return false
	}
	switch txn.Kind() {
	case Credit:
		return txn.Amount > 0
	case Debit:
		if txn.BalanceAfter == nil || profile == nil {
			return false
		}
		return *txn.BalanceAfter < profile.CheckingBalance*lowBalanceShare
	}
	return false
}

// OnTransaction returns advice for the transaction, or nil when no action is
// warranted. Generator failures degrade to templated messages.
func (a *Advisor) OnTransaction(ctx context.Context, txn *Transaction, profile *AccountProfile) *Advice {
	if txn == nil {
		return nil
	}
	if profile == nil {
		profile = &AccountProfile{}
	}

	switch txn.Kind() {
	case Debit:
		return a.onDebit(ctx, txn, profile)
	case Credit:
		if txn.Amount > 0 {
			return a.onCredit(ctx, txn, profile)
		}
	}
	return nil
}

func (a *Advisor) onDebit(ctx context.Context, txn *Transaction, profile *AccountProfile) *Advice {
	if txn.BalanceAfter == nil {
		return nil
	}
	balance := *txn.BalanceAfter
	if balance >= profile.CheckingBalance*lowBalanceShare {
		return nil
	}

	fallback := fmt.Sprintf("Low balance: ₹%.0f.", balance)
	prompt := fmt.Sprintf("Shortly notify user: account balance low. Balance after transaction: ₹%.0f. Suggest 3 quick actions: (1) pause non-essential services (2) request early payments (3) move buffer from savings. Output 3 bullets.", balance)

	return &Advice{
		ID:            uuid.NewString(),
		Type:          AdviceLowBalanceAlert,
		TransactionID: txn.ID,
		Balance:       balance,
		Message:       a.message(ctx, txn, prompt, fallback),
		SuggestedActions: []string{
			"Pause services",
			"Request early payments",
			"Move buffer",
		},
	}
}

func (a *Advisor) onCredit(ctx context.Context, txn *Transaction, profile *AccountProfile) *Advice {
	split := DefaultSplit()
	if profile.Split != nil {
		split = *profile.Split
	}

	tax := math.Round(float64(split.TaxPct) / 100 * txn.Amount)
	savings := math.Round(float64(split.SavingsPct) / 100 * txn.Amount)
	buffer := math.Round(txn.Amount - tax - savings)

	fallback := fmt.Sprintf("Split: Tax %.0f, Savings %.0f, Checking %.0f", tax, savings, buffer)
	prompt := fmt.Sprintf(`Summarize the following split to the user in two short sentences: Incoming payment ₹%.0f. We suggest: Tax ₹%.0f, Savings ₹%.0f, Checking ₹%.0f. Also include one short actionable sentence: "Approve transfers" or "Adjust split".`,
		txn.Amount, tax, savings, buffer)

	return &Advice{
		ID:            uuid.NewString(),
		Type:          AdviceSmartSplit,
		TransactionID: txn.ID,
		Message:       a.message(ctx, txn, prompt, fallback),
		Split:         split,
		Transfers: []Transfer{
			{Action: "transfer", To: "tax_savings", Amount: tax, Reason: "smart_split_tax"},
			{Action: "transfer", To: "savings", Amount: savings, Reason: "smart_split_savings"},
			{Action: "leave_checking", Amount: buffer, Reason: "spendable_buffer"},
		},
	}
}

func (a *Advisor) message(ctx context.Context, txn *Transaction, prompt, fallback string) string {
	if a.gen == nil {
		return fallback
	}
	text, err := a.gen.Draft(ctx, prompt, adviceMaxTokens)
	if err != nil || text == "" {
		a.logger.Warn("advice message generation failed",
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
		return fallback
	}
	return text
}

package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/saksham-os/agent-core/internal/ai"
	"github.com/saksham-os/agent-core/internal/util"
	"go.uber.org/zap"
)

const (
	utilizationThreshold = 0.75

	defaultBillableDaysPerWeek = 5
	defaultBillableHoursPerDay = 6

	deepWorkStartHour = 9
	deepWorkDuration  = 2 * time.Hour
	deepWorkTitle     = "Deep Work - Focus Block"

	maxPromptTasks       = 20
	maxSuggestions       = 10
	fallbackSuggestions  = 3
	reprioritizeMaxToken = 200
)

// Task is one todo item in a schedule snapshot.
type Task struct {
	ID             string    `json:"id"`
	DueDate        time.Time `json:"dueDate,omitempty"`
	EstimatedHours float64   `json:"est_hours,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	Done           bool      `json:"done,omitempty"`
}

// Event is one calendar entry.
type Event struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title,omitempty"`
}

// Capacity is the user's declared billable capacity.
type Capacity struct {
	BillableDaysPerYear float64 `json:"billableDaysPerYear,omitempty"`
	BillableHoursPerDay float64 `json:"billableHoursPerDay,omitempty"`
}

// Snapshot is the transient per-evaluation view of a user's workload. It is
// built fresh for every call and never persisted here.
type Snapshot struct {
	UserID   string   `json:"user_id"`
	Tasks    []Task   `json:"tasks"`
	Events   []Event  `json:"calendarEvents"`
	Capacity Capacity `json:"capacity"`
}

// ActionType enumerates what the evaluator may propose.
type ActionType string

const (
	ActionBlockNewJobs ActionType = "block_new_jobs"
	ActionDeepWork     ActionType = "create_deep_work_block"
	ActionReprioritize ActionType = "suggest_reprioritize"
)

// Suggestion is one proposed priority change.
type Suggestion struct {
	TaskID            string `json:"taskId"`
	SuggestedPriority string `json:"suggestedPriority"`
}

// Action is one proposed scheduling move. Fields are populated per type.
type Action struct {
	Type        ActionType   `json:"type"`
	Reason      string       `json:"reason,omitempty"`
	Start       time.Time    `json:"start,omitempty"`
	End         time.Time    `json:"end,omitempty"`
	Title       string       `json:"title,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// Result is the evaluator's output: the utilization ratio plus zero to three
// proposed actions.
type Result struct {
	Utilization float64  `json:"utilization"`
	Actions     []Action `json:"actions"`
}

// Evaluator computes workload utilization and proposes scheduling moves.
type Evaluator struct {
	gen    ai.Drafter
	logger *zap.Logger
	now    func() time.Time
}

func NewEvaluator(gen ai.Drafter, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{gen: gen, logger: logger, now: time.Now}
}

// SetClock replaces the time source. Tests pin it so the deep-work block
// lands on a known day.
func (e *Evaluator) SetClock(fn func() time.Time) {
	if fn != nil {
		e.now = fn
	}
}

// Evaluate never fails: collaborator errors degrade to the deterministic
// earliest-due-date reprioritization fallback.
func (e *Evaluator) Evaluate(ctx context.Context, snap *Snapshot) *Result {
	if snap == nil {
		return &Result{Actions: []Action{}}
	}

	pending := pendingTasks(snap.Tasks)

	var committed float64
	for _, t := range pending {
		hours := t.EstimatedHours
		if hours <= 0 {
			hours = 1
		}
		committed += hours
	}

	capacity := weeklyCapacity(snap.Capacity)
	utilization := committed / capacity

	actions := make([]Action, 0, 3)

	if utilization >= utilizationThreshold {
		actions = append(actions, Action{
			Type:   ActionBlockNewJobs,
			Reason: fmt.Sprintf("High utilization %.0f%%", utilization*100),
		})
	}

	if block, ok := e.deepWorkBlock(snap.Events); ok {
		actions = append(actions, block)
	}

	actions = append(actions, Action{
		Type:        ActionReprioritize,
		Suggestions: e.reprioritize(ctx, snap.UserID, pending),
		Message:     "Auto-prioritized by Productivity Agent.",
	})

	e.logger.Info("schedule evaluated",
		zap.String("user_id", snap.UserID),
		zap.Float64("utilization", utilization),
		zap.Int("actions", len(actions)),
	)

	return &Result{Utilization: utilization, Actions: actions}
}

func pendingTasks(tasks []Task) []Task {
	pending := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Done {
			pending = append(pending, t)
		}
	}
	return pending
}

func weeklyCapacity(c Capacity) float64 {
	daysPerWeek := float64(defaultBillableDaysPerWeek)
	if c.BillableDaysPerYear > 0 {
		daysPerWeek = c.BillableDaysPerYear / 52
	}
	hoursPerDay := c.BillableHoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = defaultBillableHoursPerDay
	}

	capacity := daysPerWeek * hoursPerDay
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}

// deepWorkBlock places a two-hour focus block at 09:00 the following day
// unless it overlaps an existing event.
func (e *Evaluator) deepWorkBlock(events []Event) (Action, bool) {
	now := e.now()
	tomorrow := now.AddDate(0, 0, 1)
	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), deepWorkStartHour, 0, 0, 0, now.Location())
	end := start.Add(deepWorkDuration)

	for _, ev := range events {
		if start.Before(ev.End) && end.After(ev.Start) {
			return Action{}, false
		}
	}

	return Action{
		Type:  ActionDeepWork,
		Start: start,
		End:   end,
		Title: deepWorkTitle,
	}, true
}

func (e *Evaluator) reprioritize(ctx context.Context, userID string, pending []Task) []Suggestion {
	if e.gen != nil {
		prompt := buildReprioritizePrompt(pending)

		raw, err := e.gen.Draft(ctx, prompt, reprioritizeMaxToken)
		if err == nil {
			if suggestions, parseErr := parseSuggestions(raw); parseErr == nil {
				if len(suggestions) > maxSuggestions {
					suggestions = suggestions[:maxSuggestions]
				}
				return suggestions
			}
			e.logger.Warn("reprioritization response is not valid json",
				zap.String("user_id", userID),
				zap.String("response_preview", util.TruncateForLog(raw, 200)),
			)
		} else {
			e.logger.Warn("reprioritization generation failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	// Deterministic fallback: the tasks with the earliest due dates.
	sorted := make([]Task, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})

	limit := fallbackSuggestions
	if len(sorted) < limit {
		limit = len(sorted)
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, t := range sorted[:limit] {
		suggestions = append(suggestions, Suggestion{TaskID: t.ID, SuggestedPriority: "High"})
	}
	return suggestions
}

// parseSuggestions decodes the model's suggestion array through a map stage,
// so extra or loosely typed fields in the response do not fail the parse.
func parseSuggestions(raw string) ([]Suggestion, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(ai.ExtractJSON(raw)), &items); err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	cfg := &mapstructure.DecoderConfig{
		Result:  &suggestions,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func buildReprioritizePrompt(pending []Task) string {
	limited := pending
	if len(limited) > maxPromptTasks {
		limited = limited[:maxPromptTasks]
	}

	payload, _ := json.Marshal(limited)
	return fmt.Sprintf(`You are a productivity assistant. Given tasks (id, est_hours, dueDate), propose three tasks to mark HIGH priority to avoid missed deadlines. Return JSON array: [{"taskId":"..","suggestedPriority":"High"}] .
Tasks: %s`, payload)
}

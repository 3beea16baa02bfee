package ai

import "context"

// Drafter produces prose for a structured prompt. Implementations may be
// slow or fail; every caller defines a deterministic fallback, so a Drafter
// error never surfaces past an agent boundary.
type Drafter interface {
	Draft(ctx context.Context, prompt string, maxTokens int) (string, error)
}

package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeCall struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeCaller struct {
	mu      sync.Mutex
	queue   []fakeCall
	prompts []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeCaller) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	f.configs = append(f.configs, config)

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	call := f.queue[0]
	f.queue = f.queue[1:]
	return call.resp, call.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestDraftReturnsText(t *testing.T) {
	caller := &fakeCaller{queue: []fakeCall{{resp: textResponse("drafted text")}}}

	g := &Generator{models: caller, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.Draft(context.Background(), "write a proposal", 350)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output != "drafted text" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(caller.prompts) != 1 || caller.prompts[0] != "write a proposal" {
		t.Fatalf("unexpected prompts: %v", caller.prompts)
	}
	if caller.configs[0].MaxOutputTokens != 350 {
		t.Fatalf("expected max tokens to be set, got %d", caller.configs[0].MaxOutputTokens)
	}
}

func TestDraftRetriesOnTemporaryError(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	caller := &fakeCaller{queue: []fakeCall{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{resp: textResponse("retry ok")},
	}}

	g := &Generator{models: caller, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.Draft(context.Background(), "prompt", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(caller.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.prompts))
	}
}

func TestDraftStopsAfterRetriesExhausted(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	tempErr := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	caller := &fakeCaller{queue: []fakeCall{{err: tempErr}, {err: tempErr}}}

	g := &Generator{models: caller, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	if _, err := g.Draft(context.Background(), "prompt", 0); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if len(caller.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.prompts))
	}
}

func TestDraftDoesNotRetryPermanentError(t *testing.T) {
	caller := &fakeCaller{queue: []fakeCall{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}

	g := &Generator{models: caller, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.Draft(context.Background(), "prompt", 0); err == nil {
		t.Fatal("expected error for permanent failure")
	}
	if len(caller.prompts) != 1 {
		t.Fatalf("expected single call, got %d", len(caller.prompts))
	}
}

func TestDraftRejectsEmptyPromptAndResponse(t *testing.T) {
	g := &Generator{models: &fakeCaller{}, model: "gemini-pro", maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.Draft(context.Background(), "   ", 0); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	caller := &fakeCaller{queue: []fakeCall{{resp: &genai.GenerateContentResponse{}}}}
	g = &Generator{models: caller, model: "gemini-pro", maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.Draft(context.Background(), "prompt", 0); err == nil {
		t.Fatal("expected error for empty response")
	}
}

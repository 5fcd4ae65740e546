// Package generator talks to the external content generation backend. The
// chat orchestrator treats it as a black box: prompt in, text out, and any
// failure is reported as an error so the caller can degrade gracefully.
package generator

import (
	"context"
)

// Kind selects the generation style the backend should use for a prompt.
type Kind string

const (
	KindExplanation Kind = "explanation"
	KindTheory      Kind = "theory"
	KindLab         Kind = "lab"
)

// Request carries one generation call.
type Request struct {
	// Prompt is the user's message text.
	Prompt string
	// Kind tells the backend which generation mode to run.
	Kind Kind
	// Context holds the most recent conversation turns, oldest first,
	// formatted as "role: content" lines.
	Context []string
}

// Result is the generated payload.
type Result struct {
	Content string
}

// Service generates a reply for a prompt. Implementations must honor ctx
// cancellation and return an error rather than blocking past the configured
// timeout.
type Service interface {
	Generate(ctx context.Context, request *Request) (*Result, error)
}

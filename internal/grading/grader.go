package grading

import "context"

// Grader grades a trimmed answer for one session question.
// The remote implementation lives in internal/api; an OpenAI-compatible
// direct implementation is in this package for offline use.
type Grader interface {
	Grade(ctx context.Context, sessionID, questionID int64, answer string) (*Result, error)
}

// GraderFunc adapts a plain function to the Grader interface.
type GraderFunc func(ctx context.Context, sessionID, questionID int64, answer string) (*Result, error)

func (f GraderFunc) Grade(ctx context.Context, sessionID, questionID int64, answer string) (*Result, error) {
	return f(ctx, sessionID, questionID, answer)
}

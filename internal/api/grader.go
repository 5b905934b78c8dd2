package api

import (
	"context"

	"github.com/alstlr0307/interviewmon-front/internal/grading"
)

// RemoteGrader adapts the backend grading route to the grading.Grader
// interface used by the session layer.
type RemoteGrader struct {
	client *Client
}

// NewRemoteGrader wraps a Client as a grader.
func NewRemoteGrader(client *Client) *RemoteGrader {
	return &RemoteGrader{client: client}
}

func (g *RemoteGrader) Grade(ctx context.Context, sessionID, questionID int64, answer string) (*grading.Result, error) {
	raw, err := g.client.GradeAnswer(ctx, sessionID, questionID, answer)
	if err != nil {
		if grading.IsCancel(err) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &grading.ErrGraderUnavailable{Err: err}
	}
	return grading.Decode(raw)
}

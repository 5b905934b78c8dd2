package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGrader grades answers directly against an OpenAI-compatible
// endpoint. It is the offline fallback for when the backend grading route
// is unavailable (self-hosted setups, local models via Ollama, etc.).
// Output is schema-validated before being accepted.
type OpenAIGrader struct {
	api   *openai.Client
	model string
}

// NewOpenAIGrader creates a grader for the given OpenAI-compatible endpoint.
// baseURL may be empty for the official API.
func NewOpenAIGrader(baseURL, apiKey, model string) *OpenAIGrader {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGrader{api: openai.NewClientWithConfig(cfg), model: model}
}

func (g *OpenAIGrader) Grade(ctx context.Context, sessionID, questionID int64, answer string) (*Result, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: gradingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: answer},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		if IsCancel(err) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ErrGraderUnavailable{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrGraderUnavailable{Err: fmt.Errorf("no choices returned")}
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)
	slog.Debug("offline grading response", "session", sessionID, "question", questionID, "bytes", len(raw))

	if err := validateResult(raw); err != nil {
		return nil, err
	}
	return Decode(raw)
}

var gradingSystemPrompt = strings.TrimSpace(`
You are an interview coach grading one answer to a mock interview question.
Evaluate structure, specificity, logic, technical depth, and risk awareness.

Respond ONLY with a JSON object with these fields:
{
  "score": <0-100>,
  "grade": "<S|A|B|C|D|F>",
  "summary_interviewer": "<one-line assessment from an interviewer's view>",
  "summary_coach": "<one-line coaching note>",
  "strengths": ["..."],
  "gaps": ["..."],
  "adds": ["..."],
  "pitfalls": [{"text": "...", "level": <1-3>}],
  "next": ["..."],
  "tips": ["..."],
  "keywords": ["..."],
  "polished": "<a polished rewrite of the answer>",
  "chart": {"structure": <0-100>, "specificity": <0-100>, "logic": <0-100>, "tech_depth": <0-100>, "risk": <0-100>},
  "follow_up_questions": [{"question": "...", "reason": "..."}]
}
`)

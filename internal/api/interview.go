package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// QuestionItem is one question row of a session, including whatever answer
// state the backend has persisted for it.
type QuestionItem struct {
	ID         int64
	QuestionID int64
	Order      int
	Text       string
	Category   string
	Difficulty string
	Answer     string
	Score      *int
	Feedback   string
	DurationMs int64
}

// wireQuestion accepts both field-name conventions the backend emits.
type wireQuestion struct {
	ID           FlexInt         `json:"id"`
	SQID         FlexInt         `json:"sqid"`
	QuestionID   FlexInt         `json:"questionId"`
	QuestionIDSn FlexInt         `json:"question_id"`
	OrderNo      FlexInt         `json:"orderNo"`
	OrderNoSn    FlexInt         `json:"order_no"`
	Order        FlexInt         `json:"order"`
	Content      string          `json:"content"`
	Question     string          `json:"question"`
	Text         string          `json:"text"`
	Category     string          `json:"category"`
	Difficulty   string          `json:"difficulty"`
	Answer       string          `json:"answer"`
	Score        json.RawMessage `json:"score"`
	Feedback     string          `json:"feedback"`
	DurationMs   FlexInt         `json:"durationMs"`
	DurationSn   FlexInt         `json:"duration_ms"`
}

func (w wireQuestion) toItem() QuestionItem {
	item := QuestionItem{
		ID:         firstInt(w.ID, w.SQID),
		QuestionID: firstInt(w.QuestionID, w.QuestionIDSn),
		Order:      int(firstInt(w.OrderNo, w.OrderNoSn, w.Order)),
		Text:       firstString(w.Content, w.Question, w.Text),
		Category:   strings.TrimSpace(w.Category),
		Difficulty: strings.TrimSpace(w.Difficulty),
		Answer:     w.Answer,
		Feedback:   w.Feedback,
		DurationMs: firstInt(w.DurationMs, w.DurationSn),
	}
	if len(w.Score) > 0 && string(w.Score) != "null" {
		var f FlexInt
		if err := json.Unmarshal(w.Score, &f); err == nil {
			n := int(f)
			item.Score = &n
		}
	}
	return item
}

func decodeItems(raws []wireQuestion) []QuestionItem {
	if len(raws) == 0 {
		return nil
	}
	items := make([]QuestionItem, 0, len(raws))
	for _, w := range raws {
		items = append(items, w.toItem())
	}
	return items
}

// StartOptions parameterize a new session.
type StartOptions struct {
	Count    int    `json:"count,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
}

// StartResult is the created session and its initial question set.
type StartResult struct {
	SessionID int64
	Items     []QuestionItem
}

// StartSession creates a session for a company.
func (c *Client) StartSession(ctx context.Context, company string, opts StartOptions) (*StartResult, error) {
	var resp struct {
		SessionID   FlexInt        `json:"sessionId"`
		SessionIDSn FlexInt        `json:"session_id"`
		ID          FlexInt        `json:"id"`
		Items       []wireQuestion `json:"items"`
		Questions   []wireQuestion `json:"questions"`
	}
	path := fmt.Sprintf("/companies/%s/sessions/start", company)
	if err := c.do(ctx, http.MethodPost, path, nil, opts, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	items := resp.Items
	if len(items) == 0 {
		items = resp.Questions
	}
	return &StartResult{
		SessionID: firstInt(resp.SessionID, resp.SessionIDSn, resp.ID),
		Items:     decodeItems(items),
	}, nil
}

// SessionQuestions fetches the question set of an existing session.
func (c *Client) SessionQuestions(ctx context.Context, sessionID int64) ([]QuestionItem, error) {
	var resp struct {
		Items     []wireQuestion `json:"items"`
		Questions []wireQuestion `json:"questions"`
	}
	path := fmt.Sprintf("/sessions/%d/questions", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	items := resp.Items
	if len(items) == 0 {
		items = resp.Questions
	}
	return decodeItems(items), nil
}

// AnswerPatch is a partial update of one session question. Nil fields are
// left untouched on the server.
type AnswerPatch struct {
	Answer     *string `json:"answer,omitempty"`
	Score      *int    `json:"score,omitempty"`
	Feedback   *string `json:"feedback,omitempty"`
	DurationMs *int64  `json:"durationMs,omitempty"`
}

// SaveAnswer persists answer state for one session question.
func (c *Client) SaveAnswer(ctx context.Context, sessionID, sqID int64, patch AnswerPatch) error {
	path := fmt.Sprintf("/sessions/%d/questions/%d", sessionID, sqID)
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, nil, reqOpts{}); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// GradeAnswer asks the backend to grade an answer and returns the raw AI
// feedback payload. A response without a usable payload is an error even
// when the HTTP status is 200.
func (c *Client) GradeAnswer(ctx context.Context, sessionID, sqID int64, answer string) (json.RawMessage, error) {
	var resp struct {
		OK      *bool           `json:"ok"`
		AI      json.RawMessage `json:"ai"`
		Message string          `json:"message"`
	}
	path := fmt.Sprintf("/sessions/%d/questions/%d/grade", sessionID, sqID)
	body := map[string]string{"answer": answer}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp, reqOpts{timeout: GradeTimeout}); err != nil {
		return nil, fmt.Errorf("grade answer: %w", err)
	}
	if resp.OK != nil && !*resp.OK {
		return nil, &ErrGradeRejected{Message: resp.Message}
	}
	if len(resp.AI) == 0 || string(resp.AI) == "null" {
		return nil, &ErrGradeRejected{Message: "no feedback payload"}
	}
	return resp.AI, nil
}

// Summary aggregates a finished (or in-progress) session.
type Summary struct {
	SessionID    int64
	Company      string
	JobTitle     string
	Total        int
	Answered     int
	AverageScore float64
	Grade        string
	DurationMs   int64
	CreatedAt    string
	FinishedAt   string
	Items        []QuestionItem
}

type wireSummary struct {
	SessionID    FlexInt        `json:"sessionId"`
	SessionIDSn  FlexInt        `json:"session_id"`
	ID           FlexInt        `json:"id"`
	Company      string         `json:"company"`
	JobTitle     string         `json:"jobTitle"`
	JobTitleSn   string         `json:"job_title"`
	Total        FlexInt        `json:"total"`
	Count        FlexInt        `json:"count"`
	Answered     FlexInt        `json:"answered"`
	AvgScore     FlexFloat      `json:"avgScore"`
	AvgScoreSn   FlexFloat      `json:"avg_score"`
	AverageScore FlexFloat      `json:"averageScore"`
	Grade        string         `json:"grade"`
	DurationMs   FlexInt        `json:"durationMs"`
	DurationSn   FlexInt        `json:"duration_ms"`
	CreatedAt    string         `json:"createdAt"`
	CreatedAtSn  string         `json:"created_at"`
	FinishedAt   string         `json:"finishedAt"`
	FinishedAtSn string         `json:"finished_at"`
	Items        []wireQuestion `json:"items"`
	Questions    []wireQuestion `json:"questions"`
}

func (w wireSummary) toSummary() *Summary {
	avg := w.AvgScore
	if avg == 0 {
		if w.AverageScore != 0 {
			avg = w.AverageScore
		} else {
			avg = w.AvgScoreSn
		}
	}
	items := w.Items
	if len(items) == 0 {
		items = w.Questions
	}
	return &Summary{
		SessionID:    firstInt(w.SessionID, w.SessionIDSn, w.ID),
		Company:      strings.TrimSpace(w.Company),
		JobTitle:     firstString(w.JobTitle, w.JobTitleSn),
		Total:        int(firstInt(w.Total, w.Count)),
		Answered:     int(w.Answered),
		AverageScore: float64(avg),
		Grade:        strings.TrimSpace(w.Grade),
		DurationMs:   firstInt(w.DurationMs, w.DurationSn),
		CreatedAt:    firstString(w.CreatedAt, w.CreatedAtSn),
		FinishedAt:   firstString(w.FinishedAt, w.FinishedAtSn),
		Items:        decodeItems(items),
	}
}

// unwrapSummary tolerates both a bare summary object and {summary: {...}}.
func unwrapSummary(raw json.RawMessage) (*Summary, error) {
	var envelope struct {
		Summary *wireSummary `json:"summary"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Summary != nil {
		return envelope.Summary.toSummary(), nil
	}
	var w wireSummary
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return w.toSummary(), nil
}

// FinishSession closes a session and returns its summary.
func (c *Client) FinishSession(ctx context.Context, sessionID int64) (*Summary, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/sessions/%d/finish", sessionID)
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]any{}, &raw, reqOpts{}); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	s, err := unwrapSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("finish session: decode summary: %w", err)
	}
	if s.SessionID == 0 {
		s.SessionID = sessionID
	}
	return s, nil
}

// SessionSummary fetches the summary of a session.
func (c *Client) SessionSummary(ctx context.Context, sessionID int64) (*Summary, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/sessions/%d/summary", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw, reqOpts{}); err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	s, err := unwrapSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("load summary: decode: %w", err)
	}
	if s.SessionID == 0 {
		s.SessionID = sessionID
	}
	return s, nil
}

// AttachItem is a custom question to append to a session.
type AttachItem struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// AttachQuestions appends custom questions to a session. With replace set
// the backend swaps the whole question set.
func (c *Client) AttachQuestions(ctx context.Context, sessionID int64, items []AttachItem, replace bool) ([]QuestionItem, error) {
	var resp struct {
		Items     []wireQuestion `json:"items"`
		Questions []wireQuestion `json:"questions"`
	}
	path := fmt.Sprintf("/sessions/%d/questions/attach", sessionID)
	body := map[string]any{"items": items, "replace": replace}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("attach questions: %w", err)
	}
	out := resp.Items
	if len(out) == 0 {
		out = resp.Questions
	}
	return decodeItems(out), nil
}

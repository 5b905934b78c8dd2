package grading

import (
	"encoding/json"
	"fmt"
)

// Letter grades in descending order of score.
const (
	GradeS = "S"
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

// Pitfall is a single risk item in the feedback, with an optional severity level.
type Pitfall struct {
	Text  string `json:"text"`
	Level *int   `json:"level,omitempty"`
}

// FollowUp is a predicted follow-up interview question.
type FollowUp struct {
	Question string `json:"question"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the structured outcome of grading one answer.
// Only Score and Grade are always present; everything else is optional
// and left zero when the backend omits it.
type Result struct {
	Score int    `json:"score"`
	Grade string `json:"grade"`

	// Summary is the one-line summary shown next to the grade badge.
	// Filled from the interviewer variant when present, else the coach variant.
	Summary string `json:"summary,omitempty"`

	SummaryInterviewer string `json:"summary_interviewer,omitempty"`
	SummaryCoach       string `json:"summary_coach,omitempty"`

	Strengths []string   `json:"strengths,omitempty"`
	Gaps      []string   `json:"gaps,omitempty"`
	Additions []string   `json:"adds,omitempty"`
	Pitfalls  []Pitfall  `json:"pitfalls,omitempty"`
	NextSteps []string   `json:"next,omitempty"`
	Tips      []string   `json:"tips,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
	FollowUps []FollowUp `json:"follow_up_questions,omitempty"`

	Category string             `json:"category,omitempty"`
	Polished string             `json:"polished,omitempty"`
	Chart    map[string]float64 `json:"chart,omitempty"`
}

// GradeFromScore maps a 0-100 score onto the letter scale.
func GradeFromScore(score int) string {
	switch {
	case score >= 90:
		return GradeS
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 50:
		return GradeD
	default:
		return GradeF
	}
}

// Restored builds the minimal result shown when a question already has a
// persisted score: grade badge plus the stored feedback line. Structured
// fields stay empty until a fresh grading call completes.
func Restored(score int, feedback string) *Result {
	return &Result{
		Score:   score,
		Grade:   GradeFromScore(score),
		Summary: feedback,
	}
}

// wireResult mirrors the backend's ai payload before normalization.
// List-valued fields arrive as strings, objects, or garbage and are
// normalized afterwards; score may be a number or a numeric string.
type wireResult struct {
	Score              json.RawMessage `json:"score"`
	Grade              string          `json:"grade"`
	SummaryInterviewer *string         `json:"summary_interviewer"`
	SummaryCoach       *string         `json:"summary_coach"`
	Strengths          []any           `json:"strengths"`
	Gaps               []any           `json:"gaps"`
	Adds               []any           `json:"adds"`
	Pitfalls           []any           `json:"pitfalls"`
	Next               []any           `json:"next"`
	Tips               []any           `json:"tips"`
	Keywords           []any           `json:"keywords"`
	FollowUps          []any           `json:"follow_up_questions"`
	Category           *string         `json:"category"`
	Polished           *string         `json:"polished"`
	Chart              map[string]any  `json:"chart"`
}

// Decode parses a raw ai payload into a normalized Result.
// The server-supplied grade, when present, takes precedence over the
// letter derived from the score.
func Decode(raw json.RawMessage) (*Result, error) {
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse grading payload: %w", err)
	}

	score := 0
	if n, ok := rawNumber(w.Score); ok {
		score = int(n)
	}

	grade := w.Grade
	if grade == "" {
		grade = GradeFromScore(score)
	}

	r := &Result{
		Score:     score,
		Grade:     grade,
		Strengths: NormalizeList(w.Strengths),
		Gaps:      NormalizeList(w.Gaps),
		Additions: NormalizeList(w.Adds),
		Pitfalls:  NormalizePitfalls(w.Pitfalls),
		NextSteps: NormalizeList(w.Next),
		Tips:      NormalizeList(w.Tips),
		Keywords:  NormalizeList(w.Keywords),
		FollowUps: NormalizeFollowUps(w.FollowUps),
		Chart:     NormalizeChart(w.Chart),
	}

	if w.SummaryInterviewer != nil {
		r.SummaryInterviewer = *w.SummaryInterviewer
	}
	if w.SummaryCoach != nil {
		r.SummaryCoach = *w.SummaryCoach
	}
	if r.SummaryInterviewer != "" {
		r.Summary = r.SummaryInterviewer
	} else {
		r.Summary = r.SummaryCoach
	}
	if w.Category != nil {
		r.Category = *w.Category
	}
	if w.Polished != nil {
		r.Polished = *w.Polished
	}

	return r, nil
}

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alstlr0307/interviewmon-front/internal/api"
)

// Report is the exportable shape of a session summary.
type Report struct {
	ExportID     string           `json:"exportId" yaml:"export_id"`
	ExportedAt   time.Time        `json:"exportedAt" yaml:"exported_at"`
	SessionID    int64            `json:"sessionId" yaml:"session_id"`
	Company      string           `json:"company,omitempty" yaml:"company,omitempty"`
	JobTitle     string           `json:"jobTitle,omitempty" yaml:"job_title,omitempty"`
	Grade        string           `json:"grade,omitempty" yaml:"grade,omitempty"`
	AverageScore float64          `json:"averageScore" yaml:"average_score"`
	Total        int              `json:"total" yaml:"total"`
	Answered     int              `json:"answered" yaml:"answered"`
	Questions    []ReportQuestion `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// ReportQuestion is one question row of a Report.
type ReportQuestion struct {
	Order    int    `json:"order" yaml:"order"`
	Text     string `json:"text" yaml:"text"`
	Answer   string `json:"answer,omitempty" yaml:"answer,omitempty"`
	Score    *int   `json:"score,omitempty" yaml:"score,omitempty"`
	Feedback string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// FromSummary builds a Report.
func FromSummary(s *api.Summary) *Report {
	r := &Report{
		ExportID:     uuid.NewString(),
		ExportedAt:   time.Now().UTC(),
		SessionID:    s.SessionID,
		Company:      s.Company,
		JobTitle:     s.JobTitle,
		Grade:        s.Grade,
		AverageScore: s.AverageScore,
		Total:        s.Total,
		Answered:     s.Answered,
	}
	for _, q := range s.Items {
		r.Questions = append(r.Questions, ReportQuestion{
			Order:    q.Order,
			Text:     q.Text,
			Answer:   q.Answer,
			Score:    q.Score,
			Feedback: q.Feedback,
		})
	}
	return r
}

// Write renders the report in the named format (json, yaml or markdown).
func Write(w io.Writer, r *Report, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	case "markdown", "md":
		return writeMarkdown(w, r)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeMarkdown(w io.Writer, r *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Interview session %d\n\n", r.SessionID)
	if r.Company != "" {
		fmt.Fprintf(&b, "- Company: %s\n", r.Company)
	}
	if r.JobTitle != "" {
		fmt.Fprintf(&b, "- Role: %s\n", r.JobTitle)
	}
	fmt.Fprintf(&b, "- Answered: %d/%d\n", r.Answered, r.Total)
	fmt.Fprintf(&b, "- Average score: %.1f\n", r.AverageScore)
	if r.Grade != "" {
		fmt.Fprintf(&b, "- Grade: %s\n", r.Grade)
	}
	b.WriteString("\n")

	for _, q := range r.Questions {
		fmt.Fprintf(&b, "## Q%d. %s\n\n", q.Order, q.Text)
		if q.Answer != "" {
			fmt.Fprintf(&b, "%s\n\n", q.Answer)
		} else {
			b.WriteString("_no answer_\n\n")
		}
		if q.Score != nil {
			fmt.Fprintf(&b, "Score: %d\n\n", *q.Score)
		}
		if q.Feedback != "" {
			fmt.Fprintf(&b, "> %s\n\n", q.Feedback)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

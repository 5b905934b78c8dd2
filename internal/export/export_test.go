package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/alstlr0307/interviewmon-front/internal/api"
)

func sampleSummary() *api.Summary {
	score := 82
	return &api.Summary{
		SessionID:    42,
		Company:      "acme",
		JobTitle:     "backend",
		Total:        2,
		Answered:     1,
		AverageScore: 82,
		Grade:        "A",
		Items: []api.QuestionItem{
			{Order: 1, Text: "Why Go?", Answer: "Concurrency and tooling.", Score: &score, Feedback: "solid"},
			{Order: 2, Text: "Tell me about a failure."},
		},
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FromSummary(sampleSummary()), "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.SessionID != 42 || got.Answered != 1 || len(got.Questions) != 2 {
		t.Errorf("report = %+v", got)
	}
	if got.ExportID == "" {
		t.Error("export id missing")
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FromSummary(sampleSummary()), "yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if got["session_id"] != 42 {
		t.Errorf("session_id = %v, want 42", got["session_id"])
	}
}

func TestWrite_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FromSummary(sampleSummary()), "md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Interview session 42",
		"## Q1. Why Go?",
		"Score: 82",
		"_no answer_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, FromSummary(sampleSummary()), "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession_DecodesMixedConventions(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/companies/acme/sessions/start", r.URL.Path)
		var body StartOptions
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 5, body.Count)
		assert.Equal(t, "backend", body.JobTitle)
		w.Write([]byte(`{
			"session_id": "42",
			"items": [
				{"id": 1, "order_no": "1", "content": "Tell me about a failure.", "score": "85"},
				{"id": 2, "orderNo": 2, "question": "Why Go?", "question_id": 77}
			]
		}`))
	})
	c, _ := newTestClient(t, handler, nil)

	res, err := c.StartSession(context.Background(), "acme", StartOptions{Count: 5, JobTitle: "backend"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.SessionID)
	require.Len(t, res.Items, 2)

	first := res.Items[0]
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, "Tell me about a failure.", first.Text)
	require.NotNil(t, first.Score)
	assert.Equal(t, 85, *first.Score)

	second := res.Items[1]
	assert.Equal(t, int64(77), second.QuestionID)
	assert.Equal(t, "Why Go?", second.Text)
	assert.Nil(t, second.Score)
}

func TestSaveAnswer_OmitsNilFields(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/sessions/42/questions/7", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{}`))
	})
	c, _ := newTestClient(t, handler, nil)

	answer := "my answer"
	score := 90
	err := c.SaveAnswer(context.Background(), 42, 7, AnswerPatch{Answer: &answer, Score: &score})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": "my answer", "score": float64(90)}, gotBody)
}

func TestGradeAnswer_ReturnsRawPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/42/questions/7/grade", r.URL.Path)
		w.Write([]byte(`{"ok": true, "ai": {"score": 88, "grade": "A"}}`))
	})
	c, _ := newTestClient(t, handler, nil)

	raw, err := c.GradeAnswer(context.Background(), 42, 7, "an answer")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 88, "grade": "A"}`, string(raw))
}

func TestGradeAnswer_RejectedAndMissingPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"ok false", `{"ok": false, "message": "quota exceeded"}`},
		{"missing ai", `{"ok": true}`},
		{"null ai", `{"ai": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			c, _ := newTestClient(t, handler, nil)

			_, err := c.GradeAnswer(context.Background(), 42, 7, "an answer")
			var rejected *ErrGradeRejected
			require.ErrorAs(t, err, &rejected)
		})
	}
}

func TestFinishSession_UnwrapsEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary": {"sessionId": 42, "total": 5, "answered": "4", "avg_score": "81.5", "grade": "A"}}`))
	})
	c, _ := newTestClient(t, handler, nil)

	s, err := c.FinishSession(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.SessionID)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.Answered)
	assert.InDelta(t, 81.5, s.AverageScore, 0.001)
	assert.Equal(t, "A", s.Grade)
}

func TestSessionSummary_BareObject(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 3, "answered": 3, "avgScore": 70}`))
	})
	c, _ := newTestClient(t, handler, nil)

	s, err := c.SessionSummary(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.SessionID, "falls back to the requested id")
	assert.Equal(t, 3, s.Total)
	assert.InDelta(t, 70, s.AverageScore, 0.001)
}

func TestAttachQuestions(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/42/questions/attach", r.URL.Path)
		var body struct {
			Items   []AttachItem `json:"items"`
			Replace bool         `json:"replace"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Replace)
		require.Len(t, body.Items, 1)
		w.Write([]byte(`{"items": [{"id": 9, "text": "Custom question?", "order": 1}]}`))
	})
	c, _ := newTestClient(t, handler, nil)

	items, err := c.AttachQuestions(context.Background(), 42, []AttachItem{{Text: "Custom question?"}}, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Custom question?", items[0].Text)
}

func TestRemoteGrader_DecodesFeedback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true, "ai": {"score": 73, "strengths": ["clear"]}}`))
	})
	c, _ := newTestClient(t, handler, nil)

	g := NewRemoteGrader(c)
	res, err := g.Grade(context.Background(), 42, 7, "an answer")
	require.NoError(t, err)
	assert.Equal(t, 73, res.Score)
	assert.Equal(t, "B", res.Grade)
	assert.Equal(t, []string{"clear"}, res.Strengths)
}

package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/grading"
	"github.com/alstlr0307/interviewmon-front/internal/session"
)

// stubBackend serves a fixed question set and records finishes.
type stubBackend struct {
	mu       sync.Mutex
	items    []api.QuestionItem
	saved    int
	fetches  int
	finished bool
}

func (b *stubBackend) StartSession(_ context.Context, _ string, _ api.StartOptions) (*api.StartResult, error) {
	return &api.StartResult{SessionID: 1, Items: b.items}, nil
}

func (b *stubBackend) SessionQuestions(_ context.Context, _ int64) ([]api.QuestionItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	return b.items, nil
}

func (b *stubBackend) SaveAnswer(_ context.Context, _, _ int64, _ api.AnswerPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved++
	return nil
}

func (b *stubBackend) FinishSession(_ context.Context, sessionID int64) (*api.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
	return &api.Summary{SessionID: sessionID, Total: len(b.items), Answered: 1, AverageScore: 85, Grade: "A"}, nil
}

func (b *stubBackend) SessionSummary(_ context.Context, sessionID int64) (*api.Summary, error) {
	return nil, errors.New("not used")
}

// silentTicks never ticks, so the countdown cannot expire mid-test.
type silentTicks struct{}

func (silentTicks) TickEvery(time.Duration, func()) func() { return func() {} }

func TestRun_AnswersAndFinishes(t *testing.T) {
	backend := &stubBackend{items: []api.QuestionItem{
		{ID: 11, Order: 1, Text: "Why Go?"},
		{ID: 12, Order: 2, Text: "Tell me about a failure."},
	}}
	grader := grading.NewMockGrader(grading.MockResponse{
		Result: &grading.Result{Score: 85, Grade: grading.GradeA, Summary: "well structured", Strengths: []string{"clear"}},
	})
	mgr := session.NewManager(backend, grader, session.ManagerOptions{MinChars: 10})

	input := strings.Join([]string{
		"I picked Go for its concurrency model and tooling.",
		"/done",
		"/skip",
	}, "\n")
	var out bytes.Buffer

	app := New(mgr, strings.NewReader(input), &out, Options{Count: 2, Ticks: silentTicks{}})
	if err := app.Run(context.Background(), "acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := out.String()
	for _, want := range []string{"Why Go?", "85 / 100", "well structured", "skipped", "Session complete", "grade A"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !backend.finished {
		t.Error("session was not finished")
	}
	if backend.saved < 2 {
		t.Errorf("saved = %d, want both questions committed", backend.saved)
	}
}

func TestRun_TimeoutAdvancesWithoutGrading(t *testing.T) {
	backend := &stubBackend{items: []api.QuestionItem{
		{ID: 11, Order: 1, Text: "Why Go?"},
	}}
	grader := grading.NewMockGrader()
	mgr := session.NewManager(backend, grader, session.ManagerOptions{MinChars: 10})

	ticks := &manualTicks{}
	var out bytes.Buffer

	// Input that never arrives: the question can only end by expiry.
	pr, pw := io.Pipe()
	defer pw.Close()
	app := New(mgr, pr, &out, Options{Count: 1, Difficulty: "easy", Ticks: ticks})

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), "acme") }()

	// Drive the countdown to zero.
	for i := 0; i < session.LimitEasy; i++ {
		ticks.tick()
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grader.CallCount() != 0 {
		t.Errorf("grading calls = %d, want 0 for an empty timeout", grader.CallCount())
	}
	if !strings.Contains(out.String(), "time is up") {
		t.Error("expected timeout notice in output")
	}
	if !backend.finished {
		t.Error("session should finish after the last timeout")
	}
}

func TestRun_ExpiryDuringCommitDoesNotTimeOutNextQuestion(t *testing.T) {
	backend := &stubBackend{items: []api.QuestionItem{
		{ID: 11, Order: 1, Text: "Why Go?"},
		{ID: 12, Order: 2, Text: "Tell me about a failure."},
	}}
	grader := grading.NewMockGrader(grading.MockResponse{
		Result: &grading.Result{Score: 85, Grade: grading.GradeA},
	})
	grader.Gate = make(chan struct{})
	mgr := session.NewManager(backend, grader, session.ManagerOptions{MinChars: 10, Debounce: time.Hour})

	ticks := &manualTicks{}
	var out bytes.Buffer
	pr, pw := io.Pipe()
	defer pw.Close()
	app := New(mgr, pr, &out, Options{Count: 2, Difficulty: "easy", Ticks: ticks})

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), "acme") }()

	// Commit the first question; the grader holds the commit open.
	fmt.Fprintln(pw, "I picked Go for its concurrency model and tooling.")
	fmt.Fprintln(pw, "/done")
	waitFor(t, func() bool { return grader.CallCount() >= 1 })

	// Run the first question's clock out while its commit is blocked,
	// then let the commit finish.
	for i := 0; i < session.LimitEasy; i++ {
		ticks.tick()
	}
	close(grader.Gate)

	// The second question's clock never ticks; only /skip ends it.
	fmt.Fprintln(pw, "/skip")
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out.String(), "time is up") {
		t.Error("the first question's expiry leaked into the second")
	}
	if !strings.Contains(out.String(), "skipped") {
		t.Error("second question should have ended by /skip")
	}
	if !backend.finished {
		t.Error("session was not finished")
	}
}

func TestRun_ReloadRefetchesQuestions(t *testing.T) {
	backend := &stubBackend{items: []api.QuestionItem{
		{ID: 11, Order: 1, Text: "Why Go?"},
	}}
	mgr := session.NewManager(backend, grading.NewMockGrader(), session.ManagerOptions{MinChars: 10})

	input := "/reload\n/skip\n"
	var out bytes.Buffer
	app := New(mgr, strings.NewReader(input), &out, Options{Count: 1, Ticks: silentTicks{}})
	if err := app.Run(context.Background(), "acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backend.fetches != 1 {
		t.Errorf("question fetches = %d, want 1 from /reload", backend.fetches)
	}
	if !strings.Contains(out.String(), "questions reloaded") {
		t.Error("expected reload notice in output")
	}
	if !backend.finished {
		t.Error("session was not finished")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// manualTicks lets the test drive countdown ticks.
type manualTicks struct {
	mu sync.Mutex
	fn func()
}

func (m *manualTicks) TickEvery(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return func() {}
}

func (m *manualTicks) tick() {
	for {
		m.mu.Lock()
		fn := m.fn
		m.mu.Unlock()
		if fn != nil {
			fn()
			return
		}
		time.Sleep(time.Millisecond)
	}
}

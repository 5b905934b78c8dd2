package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/grading"
)

// PanelState is the feedback panel for the current question.
type PanelState int

const (
	PanelIdle PanelState = iota
	PanelGrading
	PanelGraded
	PanelFailed
)

func (s PanelState) String() string {
	switch s {
	case PanelGrading:
		return "grading"
	case PanelGraded:
		return "graded"
	case PanelFailed:
		return "failed"
	default:
		return "idle"
	}
}

// SyncState tracks whether a committed answer reached the server.
type SyncState int

const (
	SyncNone SyncState = iota
	SyncPending
	SyncSynced
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncPending:
		return "pending"
	case SyncSynced:
		return "synced"
	case SyncFailed:
		return "failed"
	default:
		return "none"
	}
}

// AdvanceReason tags why a question was committed.
type AdvanceReason string

const (
	ReasonAnswered AdvanceReason = "answered"
	ReasonSkipped  AdvanceReason = "skipped"
	ReasonTimeout  AdvanceReason = "timeout"
)

// Question is the local state of one session question.
type Question struct {
	ID         int64
	Order      int
	Text       string
	Category   string
	Draft      string
	Score      *int
	Feedback   string
	DurationMs int64
	Committed  bool
	Reason     AdvanceReason
	Sync       SyncState
}

// AnswerSaver persists answer state server-side. *api.Client satisfies it.
type AnswerSaver interface {
	SaveAnswer(ctx context.Context, sessionID, sqID int64, patch api.AnswerPatch) error
}

// FlowOptions tune a Flow.
type FlowOptions struct {
	// MinChars below which drafts are committed unscored and never graded.
	MinChars int
	// Autosave writes {answer, score} to the server whenever grading lands.
	Autosave bool
	// Now is the clock, injectable for tests.
	Now func() time.Time
}

// Flow is the per-session question state machine: it owns the question
// list, the current index, the draft, and the feedback panel, and drives
// the grading invoker as the draft changes.
type Flow struct {
	sessionID int64
	invoker   *grading.Invoker
	saver     AnswerSaver
	autosave  bool
	minChars  int
	now       func() time.Time

	mu        sync.Mutex
	questions []*Question
	index     int
	startedAt time.Time

	panel       PanelState
	panelResult *grading.Result
	panelErr    error
}

// NewFlow builds a Flow over the loaded question set. The index is clamped
// into range and the first question's panel is restored from any persisted
// score.
func NewFlow(sessionID int64, items []api.QuestionItem, invoker *grading.Invoker, saver AnswerSaver, opts FlowOptions) *Flow {
	if opts.MinChars <= 0 {
		opts.MinChars = grading.DefaultMinChars
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	questions := make([]*Question, 0, len(items))
	for _, it := range items {
		questions = append(questions, &Question{
			ID:         it.ID,
			Order:      it.Order,
			Text:       it.Text,
			Category:   it.Category,
			Draft:      it.Answer,
			Score:      it.Score,
			Feedback:   it.Feedback,
			DurationMs: it.DurationMs,
		})
	}
	f := &Flow{
		sessionID: sessionID,
		invoker:   invoker,
		saver:     saver,
		autosave:  opts.Autosave,
		minChars:  opts.MinChars,
		now:       opts.Now,
		questions: questions,
	}
	f.selectLocked(0)
	return f
}

// SessionID returns the owning session id.
func (f *Flow) SessionID() int64 { return f.sessionID }

// Len returns the number of questions.
func (f *Flow) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.questions)
}

// Index returns the current question index.
func (f *Flow) Index() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// Current returns a copy of the current question, or nil when empty.
func (f *Flow) Current() *Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.questions) == 0 {
		return nil
	}
	q := *f.questions[f.index]
	return &q
}

// Questions returns copies of all questions in order.
func (f *Flow) Questions() []Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Question, 0, len(f.questions))
	for _, q := range f.questions {
		out = append(out, *q)
	}
	return out
}

// Panel returns the feedback panel state for the current question.
func (f *Flow) Panel() (PanelState, *grading.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panel, f.panelResult, f.panelErr
}

// Select moves to question i (clamped), resetting the draft baseline, the
// elapsed-time reference and the panel. Any pending debounce cycle is
// dropped; an in-flight request is left to finish so its result can still
// land in the originating question's list entry.
func (f *Flow) Select(i int) {
	f.invoker.CancelPending()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectLocked(i)
}

func (f *Flow) selectLocked(i int) {
	if len(f.questions) == 0 {
		f.index = 0
		f.panel = PanelIdle
		f.panelResult = nil
		f.panelErr = nil
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(f.questions) {
		i = len(f.questions) - 1
	}
	f.index = i
	f.startedAt = f.now()
	f.panelErr = nil

	q := f.questions[i]
	if q.Score != nil {
		// Restore a minimal graded panel from the persisted score: the
		// grade badge and saved feedback only, no structured fields.
		f.panel = PanelGraded
		f.panelResult = grading.Restored(*q.Score, q.Feedback)
	} else {
		f.panel = PanelIdle
		f.panelResult = nil
	}
}

// Next advances to the following question, saturating at the end. It
// reports whether the index moved.
func (f *Flow) Next() bool {
	f.mu.Lock()
	i, n := f.index, len(f.questions)
	f.mu.Unlock()
	if i+1 >= n {
		return false
	}
	f.Select(i + 1)
	return true
}

// Prev moves to the preceding question, saturating at the start.
func (f *Flow) Prev() bool {
	f.mu.Lock()
	i := f.index
	f.mu.Unlock()
	if i == 0 {
		return false
	}
	f.Select(i - 1)
	return true
}

// SetAnswer updates the current draft synchronously and schedules a
// debounced grading cycle. Results are routed back by question id: the
// originating question's list entry is always updated, the panel only when
// that question is still current.
func (f *Flow) SetAnswer(text string) {
	f.mu.Lock()
	if len(f.questions) == 0 {
		f.mu.Unlock()
		return
	}
	q := f.questions[f.index]
	q.Draft = text
	qid := q.ID
	if utf8.RuneCountInString(strings.TrimSpace(text)) >= f.minChars {
		f.panel = PanelGrading
		f.panelErr = nil
	} else {
		f.panel = PanelIdle
		f.panelResult = nil
		f.panelErr = nil
	}
	f.mu.Unlock()

	f.invoker.Submit(qid, text, func(r *grading.Result, err error) {
		f.applyGrade(qid, text, r, err)
	})
}

// applyGrade lands an asynchronous grading outcome.
func (f *Flow) applyGrade(qid int64, answer string, r *grading.Result, err error) {
	f.mu.Lock()
	q := f.questionByID(qid)
	if q == nil {
		f.mu.Unlock()
		return
	}
	current := len(f.questions) > 0 && f.questions[f.index].ID == qid

	switch {
	case err != nil:
		if current {
			f.panel = PanelFailed
			f.panelResult = nil
			f.panelErr = err
		}
		f.mu.Unlock()
		return
	case r == nil:
		// Benign: cancelled or below threshold.
		if current && f.panel == PanelGrading {
			f.panel = PanelIdle
			f.panelResult = nil
		}
		f.mu.Unlock()
		return
	}

	score := r.Score
	q.Score = &score
	q.Feedback = r.Summary
	if current {
		f.panel = PanelGraded
		f.panelResult = r
		f.panelErr = nil
	}
	autosave := f.autosave
	f.mu.Unlock()

	if autosave && f.saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		patch := api.AnswerPatch{Answer: &answer, Score: &score}
		if saveErr := f.saver.SaveAnswer(ctx, f.sessionID, qid, patch); saveErr != nil {
			slog.Warn("autosave failed", "session", f.sessionID, "question", qid, "error", saveErr)
		}
	}
}

func (f *Flow) questionByID(qid int64) *Question {
	for _, q := range f.questions {
		if q.ID == qid {
			return q
		}
	}
	return nil
}

// Commit finalizes the current question: it records elapsed time, forces
// one grading attempt for an unscored long draft, updates local state
// unconditionally, and syncs to the server best-effort.
func (f *Flow) Commit(ctx context.Context, reason AdvanceReason) *Question {
	f.mu.Lock()
	if len(f.questions) == 0 {
		f.mu.Unlock()
		return nil
	}
	q := f.questions[f.index]
	qid := q.ID
	draft := q.Draft
	elapsed := f.now().Sub(f.startedAt).Milliseconds()
	needsGrade := q.Score == nil && utf8.RuneCountInString(strings.TrimSpace(draft)) >= f.minChars
	f.mu.Unlock()

	var score *int
	if needsGrade {
		if r, err := f.invoker.GradeNow(ctx, qid, draft); err != nil {
			slog.Warn("commit grading failed", "session", f.sessionID, "question", qid, "error", err)
		} else if r != nil {
			s := r.Score
			score = &s
			f.mu.Lock()
			if f.questions[f.index].ID == qid {
				f.panel = PanelGraded
				f.panelResult = r
				f.panelErr = nil
			}
			f.mu.Unlock()
		}
	}

	f.mu.Lock()
	if score != nil {
		q.Score = score
	}
	q.DurationMs = elapsed
	q.Committed = true
	q.Reason = reason
	q.Sync = SyncPending
	patch := api.AnswerPatch{Answer: &draft, Score: q.Score, DurationMs: &elapsed}
	f.mu.Unlock()

	if f.saver != nil {
		if err := f.saver.SaveAnswer(ctx, f.sessionID, qid, patch); err != nil {
			slog.Warn("answer sync failed", "session", f.sessionID, "question", qid, "error", err)
			f.setSync(qid, SyncFailed)
		} else {
			f.setSync(qid, SyncSynced)
		}
	} else {
		f.setSync(qid, SyncSynced)
	}

	f.mu.Lock()
	out := *q
	f.mu.Unlock()
	return &out
}

func (f *Flow) setSync(qid int64, s SyncState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q := f.questionByID(qid); q != nil {
		q.Sync = s
	}
}

// CommitAndAdvance commits the current question and moves to the next one.
// It reports whether the index advanced; at the last question it commits
// and stays put.
func (f *Flow) CommitAndAdvance(ctx context.Context, reason AdvanceReason) bool {
	f.Commit(ctx, reason)
	return f.Next()
}

// Answered counts questions with a non-empty committed or drafted answer.
func (f *Flow) Answered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.questions {
		if strings.TrimSpace(q.Draft) != "" {
			n++
		}
	}
	return n
}

// Close tears the flow down, aborting any pending or in-flight grading.
func (f *Flow) Close() {
	f.invoker.Close()
}

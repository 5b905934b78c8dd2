package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/grading"
)

// Backend is the server surface the lifecycle needs. *api.Client
// satisfies it.
type Backend interface {
	StartSession(ctx context.Context, company string, opts api.StartOptions) (*api.StartResult, error)
	SessionQuestions(ctx context.Context, sessionID int64) ([]api.QuestionItem, error)
	SaveAnswer(ctx context.Context, sessionID, sqID int64, patch api.AnswerPatch) error
	FinishSession(ctx context.Context, sessionID int64) (*api.Summary, error)
	SessionSummary(ctx context.Context, sessionID int64) (*api.Summary, error)
}

// ManagerOptions tune sessions built by a Manager.
type ManagerOptions struct {
	MinChars  int
	Debounce  time.Duration
	Autosave  bool
	Scheduler grading.Scheduler
	Now       func() time.Time
}

// Manager owns the active session: it starts or adopts sessions, rebuilds
// the per-session grading state (cache + invoker + flow) whenever the
// session identity changes, and finishes sessions into summaries.
type Manager struct {
	backend Backend
	grader  grading.Grader
	opts    ManagerOptions

	flow    *Flow
	cache   *grading.Cache
	invoker *grading.Invoker
	summary *api.Summary
}

// NewManager creates a Manager with no active session.
func NewManager(backend Backend, grader grading.Grader, opts ManagerOptions) *Manager {
	return &Manager{backend: backend, grader: grader, opts: opts}
}

// Flow returns the active session's flow, or nil.
func (m *Manager) Flow() *Flow { return m.flow }

// Summary returns the last loaded summary, or nil.
func (m *Manager) Summary() *api.Summary { return m.summary }

// Start creates a new session for company and makes it active.
func (m *Manager) Start(ctx context.Context, company string, opts api.StartOptions) (*Flow, error) {
	res, err := m.backend.StartSession(ctx, company, opts)
	if err != nil {
		return nil, err
	}
	items := res.Items
	if len(items) == 0 {
		items, err = m.backend.SessionQuestions(ctx, res.SessionID)
		if err != nil {
			return nil, err
		}
	}
	return m.adoptItems(res.SessionID, items), nil
}

// Adopt makes an existing session active, loading its questions.
func (m *Manager) Adopt(ctx context.Context, sessionID int64) (*Flow, error) {
	items, err := m.backend.SessionQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.adoptItems(sessionID, items), nil
}

// adoptItems swaps the active session. The previous invoker is torn down
// and the cache and summary are rebuilt from scratch: grading state never
// leaks across session identities.
func (m *Manager) adoptItems(sessionID int64, items []api.QuestionItem) *Flow {
	if m.invoker != nil {
		m.invoker.Close()
	}
	m.summary = nil
	m.cache = grading.NewCache()
	m.invoker = grading.NewInvoker(sessionID, m.grader, m.cache, grading.Options{
		MinChars:  m.opts.MinChars,
		Debounce:  m.opts.Debounce,
		Scheduler: m.opts.Scheduler,
	})
	m.flow = NewFlow(sessionID, items, m.invoker, m.backend, FlowOptions{
		MinChars: m.opts.MinChars,
		Autosave: m.opts.Autosave,
		Now:      m.opts.Now,
	})
	slog.Info("session adopted", "session", sessionID, "questions", len(items))
	return m.flow
}

// ReloadQuestions refetches the active session's question set, preserving
// the session identity (and thus the grading cache).
func (m *Manager) ReloadQuestions(ctx context.Context) error {
	if m.flow == nil {
		return fmt.Errorf("no active session")
	}
	sessionID := m.flow.SessionID()
	items, err := m.backend.SessionQuestions(ctx, sessionID)
	if err != nil {
		return err
	}
	m.flow = NewFlow(sessionID, items, m.invoker, m.backend, FlowOptions{
		MinChars: m.opts.MinChars,
		Autosave: m.opts.Autosave,
		Now:      m.opts.Now,
	})
	return nil
}

// Finish closes the active session server-side and returns its summary.
// The flow is torn down; the summary stays loaded for review.
func (m *Manager) Finish(ctx context.Context) (*api.Summary, error) {
	if m.flow == nil {
		return nil, fmt.Errorf("no active session")
	}
	sessionID := m.flow.SessionID()
	s, err := m.backend.FinishSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m.flow.Close()
	m.flow = nil
	m.invoker = nil
	m.summary = s
	slog.Info("session finished", "session", sessionID, "answered", s.Answered, "total", s.Total)
	return s, nil
}

// LoadSummary fetches a session's summary without touching the active
// session state, except that it becomes the reviewed summary.
func (m *Manager) LoadSummary(ctx context.Context, sessionID int64) (*api.Summary, error) {
	s, err := m.backend.SessionSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m.summary = s
	return s, nil
}

// Close tears down the active session without finishing it server-side.
func (m *Manager) Close() {
	if m.invoker != nil {
		m.invoker.Close()
		m.invoker = nil
	}
	m.flow = nil
}

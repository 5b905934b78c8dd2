package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alstlr0307/interviewmon-front/internal/api"
	"github.com/alstlr0307/interviewmon-front/internal/grading"
	"github.com/alstlr0307/interviewmon-front/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// starFields are the guided-answer prompts.
var starFields = []struct {
	label  string
	prompt string
}{
	{"Situation", "Set the scene: where and when did this happen?"},
	{"Task", "What were you responsible for?"},
	{"Action", "What did you actually do?"},
	{"Result", "What came out of it? Numbers help."},
}

// Options tune an interview run.
type Options struct {
	Count      int
	JobTitle   string
	Difficulty string
	StarMode   bool
	// Ticks overrides the countdown tick source, for tests.
	Ticks session.TickSource
}

// App drives an interactive interview session on a terminal.
type App struct {
	mgr  *session.Manager
	in   *bufio.Scanner
	out  io.Writer
	opts Options
}

// New wires an App over a session manager and terminal streams.
func New(mgr *session.Manager, in io.Reader, out io.Writer, opts Options) *App {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &App{mgr: mgr, in: scanner, out: out, opts: opts}
}

// Run starts a session for company and loops through its questions until
// they are exhausted or input ends, then finishes the session and renders
// the summary.
func (a *App) Run(ctx context.Context, company string) error {
	flow, err := a.mgr.Start(ctx, company, api.StartOptions{
		Count:    a.opts.Count,
		JobTitle: a.opts.JobTitle,
	})
	if err != nil {
		return err
	}
	if flow.Len() == 0 {
		return fmt.Errorf("session has no questions")
	}

	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("Interview at %s: %d questions", company, flow.Len())))
	fmt.Fprintln(a.out, hintStyle.Render("Finish an answer with /done, skip with /skip, refetch questions with /reload, quit with /quit."))
	fmt.Fprintln(a.out)

	lines := a.readLines()
	limit := session.LimitForDifficulty(a.opts.Difficulty)

	expired := make(chan struct{}, 1)
	cd := session.NewCountdown(a.opts.Ticks, func() {
		select {
		case expired <- struct{}{}:
		default:
		}
	})
	defer cd.Stop()

	for {
		q := flow.Current()
		fmt.Fprintln(a.out, questionStyle.Render(fmt.Sprintf("Q%d/%d. %s", flow.Index()+1, flow.Len(), q.Text)))
		if q.Category != "" {
			fmt.Fprintln(a.out, metaStyle.Render("category: "+q.Category))
		}
		fmt.Fprintln(a.out, metaStyle.Render(fmt.Sprintf("time limit: %ds", limit)))

		cd.Reset(limit)
		// An expiry buffered while the previous question was committing
		// must not count against this one.
		select {
		case <-expired:
		default:
		}

		var quit bool
		if a.opts.StarMode {
			quit = a.answerGuided(ctx, flow, lines, expired)
		} else {
			quit = a.answerFreeform(ctx, flow, lines, expired)
		}
		if quit {
			break
		}
		// A /reload swaps the flow; pick up the current one.
		flow = a.mgr.Flow()
		if flow.Index() == flow.Len()-1 && flow.Current().Committed {
			break
		}
	}
	cd.Stop()

	summary, err := a.mgr.Finish(ctx)
	if err != nil {
		return err
	}
	a.renderSummary(summary)
	return nil
}

// answerFreeform collects answer lines until /done, /skip, timeout or end
// of input. It reports whether the run should stop.
func (a *App) answerFreeform(ctx context.Context, flow *session.Flow, lines <-chan string, expired <-chan struct{}) bool {
	var draft []string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				a.commitAndShow(ctx, flow, session.ReasonAnswered)
				return true
			}
			switch strings.TrimSpace(line) {
			case "/done":
				a.commitAndShow(ctx, flow, session.ReasonAnswered)
				flow.Next()
				return false
			case "/skip":
				flow.Commit(ctx, session.ReasonSkipped)
				fmt.Fprintln(a.out, metaStyle.Render("skipped"))
				fmt.Fprintln(a.out)
				flow.Next()
				return false
			case "/quit":
				a.commitAndShow(ctx, flow, session.ReasonAnswered)
				return true
			case "/reload":
				if err := a.mgr.ReloadQuestions(ctx); err != nil {
					fmt.Fprintln(a.out, failStyle.Render("reload failed: "+err.Error()))
					continue
				}
				fmt.Fprintln(a.out, metaStyle.Render("questions reloaded"))
				return false
			default:
				draft = append(draft, line)
				flow.SetAnswer(strings.Join(draft, "\n"))
			}
		case <-expired:
			fmt.Fprintln(a.out, warnStyle.Render("time is up"))
			a.commitAndShow(ctx, flow, session.ReasonTimeout)
			flow.Next()
			return false
		case <-ctx.Done():
			return true
		}
	}
}

// answerGuided walks the STAR fields and composes them into one answer.
func (a *App) answerGuided(ctx context.Context, flow *session.Flow, lines <-chan string, expired <-chan struct{}) bool {
	var parts []string
	for _, field := range starFields {
		fmt.Fprintln(a.out, metaStyle.Render(field.label+": "+field.prompt))
		select {
		case line, ok := <-lines:
			if !ok {
				a.commitAndShow(ctx, flow, session.ReasonAnswered)
				return true
			}
			if strings.TrimSpace(line) == "/quit" {
				a.commitAndShow(ctx, flow, session.ReasonAnswered)
				return true
			}
			if strings.TrimSpace(line) != "" {
				parts = append(parts, field.label+": "+line)
			}
			flow.SetAnswer(strings.Join(parts, "\n"))
		case <-expired:
			fmt.Fprintln(a.out, warnStyle.Render("time is up"))
			a.commitAndShow(ctx, flow, session.ReasonTimeout)
			flow.Next()
			return false
		case <-ctx.Done():
			return true
		}
	}
	a.commitAndShow(ctx, flow, session.ReasonAnswered)
	flow.Next()
	return false
}

func (a *App) commitAndShow(ctx context.Context, flow *session.Flow, reason session.AdvanceReason) {
	q := flow.Commit(ctx, reason)
	if q == nil {
		return
	}
	state, result, err := flow.Panel()
	switch {
	case state == session.PanelGraded && result != nil:
		a.renderFeedback(result)
	case state == session.PanelFailed:
		fmt.Fprintln(a.out, failStyle.Render("grading unavailable: "+err.Error()))
	case q.Score == nil:
		fmt.Fprintln(a.out, metaStyle.Render("answer saved without a score"))
	}
	if q.Sync == session.SyncFailed {
		fmt.Fprintln(a.out, warnStyle.Render("answer kept locally; server sync failed"))
	}
	fmt.Fprintln(a.out)
}

func (a *App) renderFeedback(r *grading.Result) {
	var b strings.Builder
	b.WriteString(scoreStyle.Render(fmt.Sprintf("%d / 100, grade %s", r.Score, r.Grade)))
	if r.Summary != "" {
		b.WriteString("\n" + r.Summary)
	}
	writeBullets(&b, "Strengths", r.Strengths)
	writeBullets(&b, "Gaps", r.Gaps)
	writeBullets(&b, "Tips", r.Tips)
	for _, p := range r.Pitfalls {
		b.WriteString("\n! " + p.Text)
	}
	for _, fu := range r.FollowUps {
		b.WriteString("\n? " + fu.Question)
	}
	fmt.Fprintln(a.out, panelStyle.Render(b.String()))
}

func writeBullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + ":")
	for _, it := range items {
		b.WriteString("\n  - " + it)
	}
}

func (a *App) renderSummary(s *api.Summary) {
	fmt.Fprintln(a.out, headerStyle.Render("Session complete"))
	fmt.Fprintln(a.out, fmt.Sprintf("answered %d of %d", s.Answered, s.Total))
	if s.AverageScore > 0 {
		fmt.Fprintln(a.out, scoreStyle.Render(fmt.Sprintf("average score %.1f", s.AverageScore)))
	}
	if s.Grade != "" {
		fmt.Fprintln(a.out, scoreStyle.Render("grade "+s.Grade))
	}
	for _, q := range s.Items {
		line := fmt.Sprintf("Q%d: ", q.Order)
		if q.Score != nil {
			line += fmt.Sprintf("%d", *q.Score)
		} else {
			line += "-"
		}
		fmt.Fprintln(a.out, metaStyle.Render(line))
	}
}

// readLines pumps stdin lines into a channel so the answer loop can also
// react to countdown expiry.
func (a *App) readLines() <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for a.in.Scan() {
			ch <- a.in.Text()
		}
	}()
	return ch
}

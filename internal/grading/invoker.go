package grading

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Scheduler schedules a single callback after a delay.
// The returned cancel function abandons the callback; a cancelled callback
// never fires. Tests inject a manual scheduler to drive debounce cycles
// with logical time.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// RealScheduler returns a Scheduler backed by time.AfterFunc.
func RealScheduler() Scheduler { return realScheduler{} }

// Options tune the invoker.
type Options struct {
	// MinChars is the minimum trimmed answer length for grading.
	// Shorter answers resolve to nil without touching the network.
	MinChars int

	// Debounce is how long input must stay quiet before a grading
	// request is issued.
	Debounce time.Duration

	// Scheduler overrides the timer implementation. Nil means real timers.
	Scheduler Scheduler
}

// DefaultMinChars and DefaultDebounce match the interview screen's tuning.
const (
	DefaultMinChars = 40
	DefaultDebounce = 900 * time.Millisecond
)

// invoker states. Exactly one of pending/in-flight is active at a time;
// transitions happen under mu.
//
//	idle -> pending(timer) on Submit -> in-flight(cancel, token) on fire -> idle
//
// Every Submit bumps the request token; a response is applied only while its
// token is still the latest, so an older grading response can never overwrite
// a newer one regardless of network ordering.
type Invoker struct {
	sessionID int64
	grader    Grader
	cache     *Cache
	sched     Scheduler
	minChars  int
	debounce  time.Duration

	root context.Context
	stop context.CancelFunc

	mu          sync.Mutex
	token       uint64
	cancelTimer func()
	cancelReq   context.CancelFunc
}

// NewInvoker creates a debounced, single-flight grading invoker bound to one
// session. Results are consulted from and written to cache.
func NewInvoker(sessionID int64, grader Grader, cache *Cache, opts Options) *Invoker {
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	root, stop := context.WithCancel(context.Background())
	return &Invoker{
		sessionID: sessionID,
		grader:    grader,
		cache:     cache,
		sched:     opts.Scheduler,
		minChars:  opts.MinChars,
		debounce:  opts.Debounce,
		root:      root,
		stop:      stop,
	}
}

// Submit schedules a grading attempt for the answer after the debounce
// window. Any earlier pending cycle is abandoned and any in-flight request
// for this invoker is aborted. apply eventually receives:
//
//   - (result, nil) on success, also written to the cache
//   - (nil, nil) when the answer is too short, the attempt was superseded,
//     or the request was cancelled
//   - (nil, err) on a genuine grading failure
func (inv *Invoker) Submit(questionID int64, answer string, apply func(*Result, error)) {
	trimmed := strings.TrimSpace(answer)

	inv.mu.Lock()
	inv.clearTimerLocked()
	inv.abortRequestLocked()
	inv.token++
	tok := inv.token

	if utf8.RuneCountInString(trimmed) < inv.minChars {
		inv.mu.Unlock()
		apply(nil, nil)
		return
	}

	inv.cancelTimer = inv.sched.AfterFunc(inv.debounce, func() {
		inv.fire(tok, questionID, trimmed, apply)
	})
	inv.mu.Unlock()
}

// fire runs when a debounce timer elapses.
func (inv *Invoker) fire(tok uint64, questionID int64, trimmed string, apply func(*Result, error)) {
	inv.mu.Lock()
	if tok != inv.token {
		// A later Submit superseded this cycle between timer expiry and now.
		inv.mu.Unlock()
		apply(nil, nil)
		return
	}
	inv.cancelTimer = nil

	if r, ok := inv.cache.Get(inv.sessionID, questionID, trimmed); ok {
		inv.mu.Unlock()
		apply(r, nil)
		return
	}

	ctx, cancel := context.WithCancel(inv.root)
	inv.cancelReq = cancel
	inv.mu.Unlock()

	res, err := inv.grader.Grade(ctx, inv.sessionID, questionID, trimmed)

	inv.mu.Lock()
	stale := tok != inv.token
	if !stale {
		inv.cancelReq = nil
	}
	inv.mu.Unlock()
	cancel()

	switch {
	case stale:
		// A newer submission owns the slot; this result is discarded.
		apply(nil, nil)
	case err != nil && IsCancel(err):
		apply(nil, nil)
	case err != nil:
		apply(nil, err)
	default:
		inv.cache.Put(inv.sessionID, questionID, trimmed, res)
		apply(res, nil)
	}
}

// GradeNow issues one immediate grading attempt, bypassing the debounce
// window. It claims the latest token so any pending or in-flight debounced
// attempt is superseded. Used by Commit to score a long-enough draft that
// was never graded. Returns (nil, nil) for short answers and cancellation.
func (inv *Invoker) GradeNow(ctx context.Context, questionID int64, answer string) (*Result, error) {
	trimmed := strings.TrimSpace(answer)
	if utf8.RuneCountInString(trimmed) < inv.minChars {
		return nil, nil
	}

	inv.mu.Lock()
	inv.clearTimerLocked()
	inv.abortRequestLocked()
	inv.token++
	tok := inv.token
	inv.mu.Unlock()

	if r, ok := inv.cache.Get(inv.sessionID, questionID, trimmed); ok {
		return r, nil
	}

	reqCtx, cancel := CombineCancel(ctx, inv.root)
	defer cancel()

	res, err := inv.grader.Grade(reqCtx, inv.sessionID, questionID, trimmed)
	if err != nil {
		if IsCancel(err) {
			return nil, nil
		}
		return nil, err
	}

	inv.mu.Lock()
	fresh := tok == inv.token
	inv.mu.Unlock()
	if fresh {
		inv.cache.Put(inv.sessionID, questionID, trimmed, res)
	}
	return res, nil
}

// CancelPending abandons the pending debounce cycle, if any, without
// touching an in-flight request. Called on question switch: the edited-then-
// abandoned answer is silently never graded, but a request already on the
// wire is left to finish so its result can still land in the list and cache.
func (inv *Invoker) CancelPending() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.clearTimerLocked()
}

// Cancel abandons the pending cycle and aborts any in-flight request.
// Used on teardown.
func (inv *Invoker) Cancel() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.clearTimerLocked()
	inv.abortRequestLocked()
	inv.token++
}

// Close cancels everything, including requests issued through GradeNow.
func (inv *Invoker) Close() {
	inv.Cancel()
	inv.stop()
}

func (inv *Invoker) clearTimerLocked() {
	if inv.cancelTimer != nil {
		inv.cancelTimer()
		inv.cancelTimer = nil
	}
}

func (inv *Invoker) abortRequestLocked() {
	if inv.cancelReq != nil {
		inv.cancelReq()
		inv.cancelReq = nil
	}
}

// CombineCancel returns a context cancelled when either input is cancelled.
// The returned cancel must be called to release the watcher goroutine.
func CombineCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	if b.Done() == nil {
		return ctx, cancel
	}
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

package session

import (
	"sync"
	"testing"
	"time"
)

// fakeTicks lets tests advance the countdown tick by tick.
type fakeTicks struct {
	mu      sync.Mutex
	current func()
	stopped int
}

func (s *fakeTicks) TickEvery(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopped++
	}
}

func (s *fakeTicks) tick() {
	s.mu.Lock()
	fn := s.current
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestLimitForDifficulty(t *testing.T) {
	tests := []struct {
		difficulty string
		want       int
	}{
		{"easy", 30},
		{"normal", 45},
		{"hard", 60},
		{"", 45},
		{"nightmare", 45},
	}
	for _, tt := range tests {
		if got := LimitForDifficulty(tt.difficulty); got != tt.want {
			t.Errorf("LimitForDifficulty(%q) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}

func TestCountdown_ExpiresExactlyOnce(t *testing.T) {
	ticks := &fakeTicks{}
	expiries := 0
	c := NewCountdown(ticks, func() { expiries++ })

	c.Reset(3)
	if c.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", c.Remaining())
	}

	ticks.tick()
	ticks.tick()
	if expiries != 0 || c.Remaining() != 1 {
		t.Errorf("premature state: expiries=%d remaining=%d", expiries, c.Remaining())
	}

	ticks.tick()
	if expiries != 1 {
		t.Fatalf("expiries = %d, want 1", expiries)
	}
	if !c.Expired() || c.Remaining() != 0 {
		t.Errorf("post-expiry state: expired=%v remaining=%d", c.Expired(), c.Remaining())
	}

	// Ticks from the stopped ticker must not fire again.
	ticks.tick()
	ticks.tick()
	if expiries != 1 {
		t.Errorf("expiries = %d after extra ticks, want 1", expiries)
	}
}

func TestCountdown_ResetStartsNewGeneration(t *testing.T) {
	ticks := &fakeTicks{}
	expiries := 0
	c := NewCountdown(ticks, func() { expiries++ })

	c.Reset(2)
	old := ticks.current
	ticks.tick()

	c.Reset(5)
	if c.Remaining() != 5 {
		t.Errorf("Remaining = %d, want 5 after reset", c.Remaining())
	}

	// A straggler tick from the superseded generation is ignored.
	old()
	old()
	if expiries != 0 {
		t.Errorf("expiries = %d, want 0 from stale generation", expiries)
	}
	if c.Remaining() != 5 {
		t.Errorf("Remaining = %d, stale ticks must not decrement", c.Remaining())
	}
}

func TestCountdown_StopPreventsExpiry(t *testing.T) {
	ticks := &fakeTicks{}
	expiries := 0
	c := NewCountdown(ticks, func() { expiries++ })

	c.Reset(1)
	c.Stop()
	ticks.tick()

	if expiries != 0 {
		t.Errorf("expiries = %d, want 0 after Stop", expiries)
	}
}

func TestCountdown_ZeroSecondsExpiresImmediately(t *testing.T) {
	ticks := &fakeTicks{}
	expiries := 0
	c := NewCountdown(ticks, func() { expiries++ })

	c.Reset(0)
	if expiries != 1 {
		t.Errorf("expiries = %d, want immediate expiry", expiries)
	}
}

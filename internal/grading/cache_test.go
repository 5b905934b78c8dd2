package grading

import "testing"

func TestCache_RoundTrip(t *testing.T) {
	c := NewCache()
	r := &Result{Score: 80, Grade: GradeA}

	c.Put(1, 2, "  an answer  ", r)

	got, ok := c.Get(1, 2, "an answer")
	if !ok {
		t.Fatal("expected hit for trimmed-equal answer")
	}
	if got != r {
		t.Error("expected the same result back")
	}
}

func TestCache_KeyIncludesSessionAndQuestion(t *testing.T) {
	c := NewCache()
	c.Put(1, 2, "answer", &Result{Score: 80})

	if _, ok := c.Get(9, 2, "answer"); ok {
		t.Error("different session must miss")
	}
	if _, ok := c.Get(1, 9, "answer"); ok {
		t.Error("different question must miss")
	}
	if _, ok := c.Get(1, 2, "another answer"); ok {
		t.Error("different answer must miss")
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	c.Put(1, 2, "answer", &Result{Score: 80})
	c.Clear()
	if _, ok := c.Get(1, 2, "answer"); ok {
		t.Error("expected miss after Clear")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint(3, 7, "same text")
	b := Fingerprint(3, 7, "  same text ")
	if a != b {
		t.Errorf("fingerprints differ for trimmed-equal input: %q vs %q", a, b)
	}
	if a == Fingerprint(3, 7, "other text") {
		t.Error("distinct answers should not collide on this input")
	}
}

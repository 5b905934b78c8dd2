package grading

import (
	"strconv"
	"strings"
	"sync"
)

// Cache remembers grading results by (session, question, answer fingerprint)
// so identical answers are never re-sent to the grading backend.
//
// A Cache is owned by the session-scoped controller and rebuilt whenever the
// session changes, so results can never leak across sessions even when a new
// session reuses the same question id and answer text.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Result
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Result)}
}

// Get returns the cached result for the trimmed answer, if any.
func (c *Cache) Get(sessionID, questionID int64, answer string) (*Result, bool) {
	key := Fingerprint(sessionID, questionID, answer)
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

// Put stores a result under the trimmed answer's fingerprint.
func (c *Cache) Put(sessionID, questionID int64, answer string, r *Result) {
	key := Fingerprint(sessionID, questionID, answer)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = r
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Result)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint derives the cache key: session and question ids joined with a
// base-36 rolling hash of the trimmed answer text.
func Fingerprint(sessionID, questionID int64, answer string) string {
	return strconv.FormatInt(sessionID, 10) + ":" +
		strconv.FormatInt(questionID, 10) + ":" +
		hashAnswer(strings.TrimSpace(answer))
}

// hashAnswer is a djb2-xor rolling hash, base-36 encoded.
// Non-cryptographic on purpose: keys only need to be cheap and stable.
func hashAnswer(s string) string {
	h := uint32(5381)
	for _, r := range s {
		h = (h * 33) ^ uint32(r)
	}
	return strconv.FormatUint(uint64(h), 36)
}

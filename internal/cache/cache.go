// Package cache holds answers to repo questions, keyed to the sync
// state they were generated against.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/agent-sync/internal/question"
)

// DefaultTTL is how long an answer stays fresh.
const DefaultTTL = 15 * time.Minute

const (
	// sentinelModel stands in for "the agent's default model".
	sentinelModel = "default"
	// sentinelCommit stands in for "no sync has occurred yet".
	sentinelCommit = "no-sync"
)

type entry struct {
	answer    string
	expiresAt time.Time
}

// AnswerCache is a TTL cache of question answers. Entries expire lazily
// at read time; there is no background sweep and no size bound, so
// long-running owners should Clear periodically. Safe for concurrent
// use. Construct instances with New — there is no package-level cache.
type AnswerCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache. now supplies the current time and may be
// nil for time.Now; tests inject a fake clock.
func New(now func() time.Time) *AnswerCache {
	if now == nil {
		now = time.Now
	}
	return &AnswerCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Key builds the cache key for a question. An answer is only valid
// against the repository content it was generated from, so the last
// sync commit is part of the key: advancing the commit makes all
// prior entries unreachable without an invalidation pass. Components
// are length-prefix framed so no agent/model/commit values can collide.
func Key(agentID, modelKey, syncCommit, q string) string {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		modelKey = sentinelModel
	}
	if syncCommit == "" {
		syncCommit = sentinelCommit
	}

	parts := []string{agentID, modelKey, syncCommit, question.Normalize(q)}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(strconv.Itoa(len(p)))
		sb.WriteByte(':')
		sb.WriteString(p)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Get returns the cached answer for key, if present and unexpired.
// Expired entries are evicted on the way out.
func (c *AnswerCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if !e.expiresAt.After(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && !cur.expiresAt.After(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.answer, true
}

// Set stores an answer. Zero or negative TTLs are clamped to one
// second so an entry never expires the instant it is written.
func (c *AnswerCache) Set(key, answer string, ttl time.Duration) {
	if ttl < time.Second {
		ttl = time.Second
	}
	c.mu.Lock()
	c.entries[key] = entry{answer: answer, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *AnswerCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *AnswerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

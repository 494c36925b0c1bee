package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time manually.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*AnswerCache, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(clk.Now), clk
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache()
	key := Key("agent-1", "", "abc123", "what is the sync flow?")

	if _, ok := c.Get(key); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set(key, "the answer", DefaultTTL)
	got, ok := c.Get(key)
	if !ok || got != "the answer" {
		t.Errorf("expected hit with 'the answer', got %q, %v", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c, clk := newTestCache()
	key := Key("agent-1", "gpt-x", "abc123", "q")

	c.Set(key, "A", 10*time.Second)

	clk.Advance(9 * time.Second)
	if _, ok := c.Get(key); !ok {
		t.Error("entry expired early")
	}

	clk.Advance(2 * time.Second)
	if _, ok := c.Get(key); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, len=%d", c.Len())
	}
}

func TestNonPositiveTTLStillLives(t *testing.T) {
	c, clk := newTestCache()
	key := Key("a", "", "", "q")

	c.Set(key, "A", 0)
	if _, ok := c.Get(key); !ok {
		t.Error("zero TTL should clamp to a positive lifetime")
	}

	clk.Advance(2 * time.Second)
	if _, ok := c.Get(key); ok {
		t.Error("clamped entry should still expire")
	}
}

func TestKey_CommitSensitivity(t *testing.T) {
	a := Key("agent-1", "m", "commit-1", "same question")
	b := Key("agent-1", "m", "commit-2", "same question")
	if a == b {
		t.Error("keys for different sync commits must not collide")
	}
}

func TestKey_Sentinels(t *testing.T) {
	if Key("a", "", "c", "q") != Key("a", "  ", "c", "q") {
		t.Error("blank model should normalize to the default-model sentinel")
	}
	if Key("a", "m", "", "q") == Key("a", "m", "no-sync-commit", "q") {
		t.Error("real commit must not collide with the no-sync sentinel")
	}
}

func TestKey_NoComponentCollision(t *testing.T) {
	// Framed components: shifting a boundary between agent and model
	// must produce a different key.
	a := Key("a::b", "", "c", "q")
	b := Key("a", "b::", "c", "q")
	if a == b {
		t.Errorf("component boundary collision: %q", a)
	}
}

func TestKey_NormalizesQuestion(t *testing.T) {
	a := Key("agent", "m", "c", "  How   does SYNC work? ")
	b := Key("agent", "m", "c", "how does sync work?")
	if a != b {
		t.Errorf("equivalent questions should share a key: %q vs %q", a, b)
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache()
	c.Set(Key("a", "", "", "q1"), "x", DefaultTTL)
	c.Set(Key("a", "", "", "q2"), "y", DefaultTTL)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, len=%d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := Key("agent", "", "c", fmt.Sprintf("q%d", j%10))
				c.Set(key, "answer", DefaultTTL)
				c.Get(key)
				if j%50 == 0 && n == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}

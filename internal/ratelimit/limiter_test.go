package ratelimit

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

var fixedTime = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

var _ interfaces.Logger = (*captureLogger)(nil)

func (c *captureLogger) record(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, msg)
}

func (c *captureLogger) Trace(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Debug(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.record(msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.record(msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Fatal(msg string, _ ...any) { c.record(msg) }

func (c *captureLogger) WithContext(context.Context) interfaces.Logger { return c }

func (c *captureLogger) warnings(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, entry := range c.entries {
		if strings.Contains(entry, substr) {
			count++
		}
	}
	return count
}

func newTestLimiter(caps Caps, now *time.Time, logger interfaces.Logger) *Limiter {
	clock := func() time.Time { return *now }
	opts := []Option{
		WithClock(clock),
		WithStore(NewMemoryStoreWithClock(clock)),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return New(caps, opts...)
}

func TestRequestCapAdmission(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{RequestsPerMinute: 2, CharactersPerMinute: 1000}, &now, nil)

	results := []bool{limiter.Allow(0), limiter.Allow(0), limiter.Allow(0)}
	want := []bool{true, true, false}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("Allow() call %d = %v, want %v", i+1, results[i], want[i])
		}
	}
}

func TestRejectionDoesNotIncrement(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{RequestsPerMinute: 10, CharactersPerMinute: 100}, &now, nil)

	if limiter.Allow(101) {
		t.Fatal("expected rejection over character cap")
	}
	// The rejected call must not have consumed any budget.
	if !limiter.Allow(100) {
		t.Fatal("expected full character budget to remain")
	}
}

func TestNewMinuteWindowResetsCounters(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{RequestsPerMinute: 1, CharactersPerMinute: 1000}, &now, nil)

	if !limiter.Allow(10) {
		t.Fatal("first call should be admitted")
	}
	if limiter.Allow(10) {
		t.Fatal("second call in same minute should be rejected")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow(10) {
		t.Fatal("call in the next minute window should be admitted")
	}
}

func TestHourlyCapApplies(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{
		RequestsPerMinute:   100,
		CharactersPerMinute: 1000,
		CharactersPerHour:   1500,
	}, &now, nil)

	if !limiter.Allow(1000) {
		t.Fatal("first call should be admitted")
	}

	// Next minute: minute budget is fresh but the hour budget is nearly spent.
	now = now.Add(time.Minute)
	if limiter.Allow(600) {
		t.Fatal("expected rejection over hourly cap")
	}
	if !limiter.Allow(500) {
		t.Fatal("expected admission inside hourly cap")
	}
}

func TestZeroHourlyCapDisablesHourlyCheck(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{RequestsPerMinute: 100, CharactersPerMinute: 1000}, &now, nil)

	for i := 0; i < 5; i++ {
		if !limiter.Allow(1000) {
			t.Fatalf("call %d rejected with hourly cap disabled", i+1)
		}
		now = now.Add(time.Minute)
	}
}

func TestWarnsAboveEightyPercent(t *testing.T) {
	now := fixedTime
	logger := &captureLogger{}
	limiter := newTestLimiter(Caps{RequestsPerMinute: 100, CharactersPerMinute: 100}, &now, logger)

	if !limiter.Allow(79) {
		t.Fatal("expected admission")
	}
	if logger.warnings("above 80%") != 0 {
		t.Fatal("unexpected warning below threshold")
	}

	if !limiter.Allow(2) {
		t.Fatal("expected admission")
	}
	if logger.warnings("above 80%") != 1 {
		t.Fatal("expected a warning past 80% of the character cap")
	}
}

func TestConcurrentAdmissionRespectsCap(t *testing.T) {
	now := fixedTime
	limiter := newTestLimiter(Caps{RequestsPerMinute: 50, CharactersPerMinute: 1 << 20}, &now, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(1) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Fatalf("admitted %d calls, want exactly 50", admitted)
	}
}

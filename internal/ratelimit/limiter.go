package ratelimit

import (
	"sync"
	"time"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

const (
	minuteKeyLayout = "200601021504"
	hourKeyLayout   = "2006010215"
)

// Caps configures admission limits. CharactersPerHour of zero disables the
// hourly check; the hourly counter is still maintained.
type Caps struct {
	RequestsPerMinute   int
	CharactersPerMinute int
	CharactersPerHour   int
}

// WindowStore persists fixed-window counters. Implementations must expire
// entries after the supplied duration so stale windows self-clean; absence of
// a key reads as zero.
type WindowStore interface {
	Count(key string) int
	Increment(key string, amount int, expiry time.Duration) int
}

// Option mutates the limiter configuration.
type Option func(*Limiter)

// WithLogger overrides the logger used for block and threshold warnings.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source used for window truncation.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithStore overrides the backing window store. Deployments spanning several
// worker processes should supply a shared store here.
func WithStore(store WindowStore) Option {
	return func(l *Limiter) {
		if store != nil {
			l.store = store
		}
	}
}

// Limiter applies fixed-window admission control over requests and characters.
// Windows are keyed by truncating the current time to minute or hour
// granularity, which permits up to twice the nominal cap across a window
// boundary; callers accept that burst characteristic.
type Limiter struct {
	mu     sync.Mutex
	caps   Caps
	store  WindowStore
	logger interfaces.Logger
	now    func() time.Time
}

// New constructs a limiter with an in-memory window store.
func New(caps Caps, opts ...Option) *Limiter {
	l := &Limiter{
		caps:   caps,
		store:  NewMemoryStore(),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a call carrying charCount characters may proceed.
// Rejections leave every counter untouched; admissions increment the request,
// per-minute character, and per-hour character counters together. The
// check-then-increment sequence holds the limiter lock so concurrent callers
// cannot both slip past a cap.
func (l *Limiter) Allow(charCount int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	reqKey := "translate_rl_req_" + now.Format(minuteKeyLayout)
	charKey := "translate_rl_char_" + now.Format(minuteKeyLayout)
	hourKey := "translate_rl_hchar_" + now.Format(hourKeyLayout)

	requests := l.store.Count(reqKey)
	chars := l.store.Count(charKey)
	hourChars := l.store.Count(hourKey)

	exceedsRequests := requests+1 > l.caps.RequestsPerMinute
	exceedsChars := chars+charCount > l.caps.CharactersPerMinute
	exceedsHourly := l.caps.CharactersPerHour > 0 && hourChars+charCount > l.caps.CharactersPerHour

	if exceedsRequests || exceedsChars || exceedsHourly {
		l.logger.Warn("rate limit block",
			"requests", requests,
			"chars", chars,
			"hour_chars", hourChars,
			"char_count", charCount,
		)
		return false
	}

	// Expiry runs slightly past each window to tolerate clock skew.
	requests = l.store.Increment(reqKey, 1, 2*time.Minute)
	chars = l.store.Increment(charKey, charCount, 2*time.Minute)
	hourChars = l.store.Increment(hourKey, charCount, 2*time.Hour)

	l.warnNearCap(requests, chars, hourChars)
	return true
}

func (l *Limiter) warnNearCap(requests, chars, hourChars int) {
	nearRequests := requests*10 > l.caps.RequestsPerMinute*8
	nearChars := chars*10 > l.caps.CharactersPerMinute*8
	nearHourly := l.caps.CharactersPerHour > 0 && hourChars*10 > l.caps.CharactersPerHour*8

	if nearRequests || nearChars || nearHourly {
		l.logger.Warn("rate limit above 80% of cap",
			"requests", requests,
			"chars", chars,
			"hour_chars", hourChars,
		)
	}
}

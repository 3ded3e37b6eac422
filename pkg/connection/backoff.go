package connection

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Redial backoff defaults.
const (
	// InitialBackoff is the delay before the first redial.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the delay between redials.
	MaxBackoff = 30 * time.Second

	// BackoffMultiplier is applied to the delay after every attempt.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of the base delay.
	JitterFactor = 0.25
)

// BackoffConfig customizes a Backoff. Zero fields take the defaults above;
// a negative Jitter disables jitter.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Backoff produces exponentially growing delays with jitter.
type Backoff struct {
	mu sync.Mutex

	config   BackoffConfig
	current  time.Duration
	attempts int

	// rand returns a value in [0, 1). Replaced in tests.
	rand func() float64
}

// NewBackoff creates a backoff with the default settings.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{})
}

// NewBackoffWithConfig creates a backoff with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = JitterFactor
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		config:  cfg,
		current: cfg.Initial,
		rand:    rand.Float64,
	}
}

// Next returns the current delay plus jitter and advances to the next one.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	if b.config.Jitter > 0 {
		delay += time.Duration(float64(delay) * b.config.Jitter * b.rand())
	}

	b.attempts++
	b.current = min(time.Duration(float64(b.current)*b.config.Multiplier), b.config.Max)

	return delay
}

// Reset returns to the initial delay. Called once a link is established.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.config.Initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the next base delay, without jitter.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

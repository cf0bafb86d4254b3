// Package gesture turns raw trackpad wheel streams into discrete
// back and forward navigation intents.
package gesture

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Intent is a navigation request produced by a completed swipe.
type Intent string

const (
	IntentNone    Intent = ""
	IntentBack    Intent = "back"
	IntentForward Intent = "forward"
)

// Config tunes swipe detection.
type Config struct {
	// Threshold is the accumulated horizontal delta that commits a swipe.
	Threshold float64
	// NoiseFloor discards events whose horizontal delta sits below it.
	NoiseFloor float64
	// Dominance classifies an event as vertical scrolling when |dy|
	// exceeds Dominance multiplied by |dx|.
	Dominance float64
	// SettleAfter invalidates an accumulation that never saw a release
	// signal once no event arrives within it.
	SettleAfter time.Duration
	// EventsPerSecond caps the processed event rate; excess events drop.
	EventsPerSecond int
	Burst           int
}

// DefaultConfig returns trackpad-friendly tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:       100,
		NoiseFloor:      2,
		Dominance:       2,
		SettleAfter:     300 * time.Millisecond,
		EventsPerSecond: 60,
		Burst:           30,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Threshold <= 0 {
		c.Threshold = def.Threshold
	}
	if c.NoiseFloor <= 0 {
		c.NoiseFloor = def.NoiseFloor
	}
	if c.Dominance <= 0 {
		c.Dominance = def.Dominance
	}
	if c.SettleAfter <= 0 {
		c.SettleAfter = def.SettleAfter
	}
	if c.EventsPerSecond <= 0 {
		c.EventsPerSecond = def.EventsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = def.Burst
	}
	return c
}

// Navigator accumulates horizontal wheel deltas and commits at most one
// intent per gesture when the release signal arrives. Events pass three
// filters before they count: a rate limiter drops floods, vertically
// dominant deltas are treated as scrolling, and sub-noise deltas are
// discarded. The navigator holds no state between gestures.
type Navigator struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter
	now     func() time.Time

	acc  float64
	last time.Time

	stats *recorder
}

// New creates a navigator. Zero config fields fall back to defaults.
func New(cfg Config) *Navigator {
	cfg = cfg.withDefaults()
	return &Navigator{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.Burst),
		now:     time.Now,
		stats:   newRecorder(256),
	}
}

// Observe ingests one wheel event. Accepted deltas accumulate until End
// commits or cancels the gesture.
func (n *Navigator) Observe(dx, dy float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.limiter.Allow() {
		n.stats.dropped()
		return
	}
	if math.Abs(dy) > n.cfg.Dominance*math.Abs(dx) {
		return
	}
	if math.Abs(dx) < n.cfg.NoiseFloor {
		return
	}

	now := n.now()
	if !n.last.IsZero() && now.Sub(n.last) > n.cfg.SettleAfter {
		// The previous gesture never got a release signal; discard it
		// rather than let stale motion leak into this one.
		n.cancelLocked()
	}
	n.last = now
	n.acc += dx
}

// End closes the active gesture and returns the intent it commits.
// Accumulation below the threshold cancels without emitting. A positive
// net delta is a rightward swipe and maps to back.
func (n *Navigator) End() Intent {
	n.mu.Lock()
	defer n.mu.Unlock()

	acc := n.acc
	n.acc = 0
	n.last = time.Time{}

	if math.Abs(acc) < n.cfg.Threshold {
		if acc != 0 {
			n.stats.abandon(math.Abs(acc))
		}
		return IntentNone
	}
	intent := IntentForward
	if acc > 0 {
		intent = IntentBack
	}
	n.stats.committed(intent, math.Abs(acc))
	return intent
}

// Pending returns the delta accumulated by the gesture in flight.
func (n *Navigator) Pending() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.acc
}

// Stats summarizes recent gesture activity.
func (n *Navigator) Stats() Summary {
	return n.stats.summary()
}

func (n *Navigator) cancelLocked() {
	if n.acc != 0 {
		n.stats.abandon(math.Abs(n.acc))
	}
	n.acc = 0
	n.last = time.Time{}
}

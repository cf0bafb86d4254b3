package gesture

import (
	gomath "math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates recent gesture activity for diagnostics.
type Summary struct {
	Back          uint64  `json:"back"`
	Forward       uint64  `json:"forward"`
	Abandoned     uint64  `json:"abandoned"`
	Dropped       uint64  `json:"dropped"`
	MeanMagnitude float64 `json:"mean_magnitude"`
	StdDev        float64 `json:"std_dev"`
	P90Magnitude  float64 `json:"p90_magnitude"`
}

// recorder keeps a bounded window of gesture magnitudes plus outcome
// counters. It has its own lock so summaries never block event intake.
type recorder struct {
	mu        sync.Mutex
	window    []float64
	next      int
	full      bool
	back      uint64
	forward   uint64
	abandoned uint64
	drops     uint64
}

func newRecorder(window int) *recorder {
	if window <= 0 {
		window = 256
	}
	return &recorder{window: make([]float64, window)}
}

func (r *recorder) committed(intent Intent, magnitude float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if intent == IntentBack {
		r.back++
	} else {
		r.forward++
	}
	r.pushLocked(magnitude)
}

func (r *recorder) abandon(magnitude float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned++
	r.pushLocked(magnitude)
}

func (r *recorder) dropped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops++
}

func (r *recorder) pushLocked(v float64) {
	r.window[r.next] = v
	r.next = (r.next + 1) % len(r.window)
	if r.next == 0 {
		r.full = true
	}
}

func (r *recorder) summary() Summary {
	r.mu.Lock()
	values := r.valuesLocked()
	s := Summary{
		Back:      r.back,
		Forward:   r.forward,
		Abandoned: r.abandoned,
		Dropped:   r.drops,
	}
	r.mu.Unlock()

	if len(values) == 0 {
		return s
	}
	s.MeanMagnitude = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDev = gomath.Sqrt(stat.Variance(values, nil))
	}
	sort.Float64s(values)
	s.P90Magnitude = stat.Quantile(0.9, stat.Empirical, values, nil)
	return s
}

func (r *recorder) valuesLocked() []float64 {
	if r.full {
		out := make([]float64, len(r.window))
		copy(out, r.window[r.next:])
		copy(out[len(r.window)-r.next:], r.window[:r.next])
		return out
	}
	out := make([]float64, r.next)
	copy(out, r.window[:r.next])
	return out
}

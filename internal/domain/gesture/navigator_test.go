package gesture

import (
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EventsPerSecond = 1000
	cfg.Burst = 1000
	return cfg
}

func TestVerticalScrollIgnored(t *testing.T) {
	n := New(testConfig())
	for i := 0; i < 20; i++ {
		n.Observe(10, 30)
	}
	if n.Pending() != 0 {
		t.Errorf("vertical scroll accumulated %f", n.Pending())
	}
	if got := n.End(); got != IntentNone {
		t.Errorf("vertical scroll committed %q", got)
	}
}

func TestNoiseBelowThresholdEmitsNothing(t *testing.T) {
	n := New(testConfig())
	for i := 0; i < 3; i++ {
		n.Observe(1, 0)
	}
	if got := n.End(); got != IntentNone {
		t.Errorf("noise gesture committed %q", got)
	}
}

func TestSwipeRightCommitsSingleBack(t *testing.T) {
	n := New(testConfig())
	n.Observe(40, 0)
	n.Observe(40, 5)
	n.Observe(40, 0)
	if got := n.End(); got != IntentBack {
		t.Fatalf("intent = %q, want back", got)
	}
	// The release consumed the accumulation; an immediate second
	// release must not double-commit.
	if got := n.End(); got != IntentNone {
		t.Fatalf("second release committed %q", got)
	}
	if s := n.Stats(); s.Back != 1 || s.Forward != 0 {
		t.Errorf("stats back=%d forward=%d, want 1/0", s.Back, s.Forward)
	}
}

func TestSwipeLeftCommitsForward(t *testing.T) {
	n := New(testConfig())
	n.Observe(-60, 0)
	n.Observe(-60, 0)
	if got := n.End(); got != IntentForward {
		t.Fatalf("intent = %q, want forward", got)
	}
}

func TestSignFlipFollowsNetDirection(t *testing.T) {
	n := New(testConfig())
	n.Observe(60, 0)
	n.Observe(-80, 0)
	n.Observe(-90, 0)
	if got := n.End(); got != IntentForward {
		t.Fatalf("intent = %q, want forward after net leftward motion", got)
	}
}

func TestBelowThresholdCancels(t *testing.T) {
	n := New(testConfig())
	n.Observe(40, 0)
	if got := n.End(); got != IntentNone {
		t.Fatalf("sub-threshold gesture committed %q", got)
	}
	if s := n.Stats(); s.Abandoned != 1 {
		t.Errorf("abandoned = %d, want 1", s.Abandoned)
	}
	if n.Pending() != 0 {
		t.Errorf("pending after release = %f", n.Pending())
	}
}

func TestStaleAccumulationDiscarded(t *testing.T) {
	n := New(testConfig())
	clock := time.Unix(1000, 0)
	n.now = func() time.Time { return clock }

	n.Observe(60, 0)
	n.Observe(60, 0)

	// No release arrived; the next event after the settle window must
	// start from a clean accumulator.
	clock = clock.Add(time.Second)
	n.Observe(-60, 0)
	if got := n.Pending(); got != -60 {
		t.Fatalf("pending = %f, want -60", got)
	}
	if got := n.End(); got != IntentNone {
		t.Fatalf("stale carryover committed %q", got)
	}
	if s := n.Stats(); s.Abandoned != 2 {
		t.Errorf("abandoned = %d, want 2 (stale gesture plus cancel)", s.Abandoned)
	}
}

func TestGesturesAreIndependent(t *testing.T) {
	n := New(testConfig())
	n.Observe(120, 0)
	if got := n.End(); got != IntentBack {
		t.Fatalf("first gesture = %q", got)
	}
	n.Observe(-120, 0)
	if got := n.End(); got != IntentForward {
		t.Fatalf("second gesture = %q", got)
	}
	if s := n.Stats(); s.Back != 1 || s.Forward != 1 {
		t.Errorf("counts back=%d forward=%d, want 1/1", s.Back, s.Forward)
	}
}

func TestRateLimiterDropsFlood(t *testing.T) {
	cfg := testConfig()
	cfg.EventsPerSecond = 1
	cfg.Burst = 2
	n := New(cfg)

	for i := 0; i < 10; i++ {
		n.Observe(40, 0)
	}
	if n.Pending() > 80 {
		t.Errorf("accumulated %f past the burst allowance", n.Pending())
	}
	if s := n.Stats(); s.Dropped < 7 {
		t.Errorf("dropped = %d, want at least 7", s.Dropped)
	}
}

func TestSummaryMagnitudes(t *testing.T) {
	n := New(testConfig())
	n.Observe(120, 0)
	n.End()
	n.Observe(-150, 0)
	n.End()

	s := n.Stats()
	if s.Back != 1 || s.Forward != 1 {
		t.Fatalf("counts back=%d forward=%d", s.Back, s.Forward)
	}
	if s.MeanMagnitude < 120 || s.MeanMagnitude > 150 {
		t.Errorf("mean magnitude = %f, want within [120, 150]", s.MeanMagnitude)
	}
	if s.P90Magnitude < s.MeanMagnitude {
		t.Errorf("p90 %f below mean %f", s.P90Magnitude, s.MeanMagnitude)
	}
}

func TestConfigDefaultsFillZeroes(t *testing.T) {
	n := New(Config{Threshold: 50})
	if n.cfg.Threshold != 50 {
		t.Errorf("threshold overridden to %f", n.cfg.Threshold)
	}
	def := DefaultConfig()
	if n.cfg.Dominance != def.Dominance || n.cfg.Burst != def.Burst {
		t.Errorf("zero fields not defaulted: %+v", n.cfg)
	}
}

package nav

import (
	"testing"

	"github.com/MarinaBrowser/marina/shell/internal/domain/overlay"
)

func TestRecordNavigation(t *testing.T) {
	tr := NewTracker(Config{})

	tr.RecordNavigation("tab_1", "https://example.com")
	if url, ok := tr.LastWebURL("tab_1"); !ok || url != "https://example.com" {
		t.Errorf("expected recorded URL, got %q (%v)", url, ok)
	}

	// Internal URLs never overwrite the web record
	tr.RecordNavigation("tab_1", "app://newtab")
	if url, _ := tr.LastWebURL("tab_1"); url != "https://example.com" {
		t.Errorf("internal URL clobbered the record: %q", url)
	}

	tr.RecordNavigation("tab_1", "")
	if url, _ := tr.LastWebURL("tab_1"); url != "https://example.com" {
		t.Errorf("empty URL clobbered the record: %q", url)
	}

	tr.RecordNavigation("tab_1", "https://example.com/page2")
	if url, _ := tr.LastWebURL("tab_1"); url != "https://example.com/page2" {
		t.Errorf("newer web URL should win, got %q", url)
	}
}

func TestResolveBack(t *testing.T) {
	tr := NewTracker(Config{})

	// Surface history wins
	d := tr.ResolveBack("tab_1", "https://example.com/page2", true)
	if d.Action != ActionDelegateBack {
		t.Errorf("expected delegate_back, got %s", d.Action)
	}

	// History exhausted on web content crosses into the home overlay
	d = tr.ResolveBack("tab_1", "https://example.com", false)
	if d.Action != ActionShowOverlay || d.URL != overlay.HomeURL {
		t.Errorf("expected show_overlay(home), got %s %q", d.Action, d.URL)
	}

	// On an overlay with no history: absorbed, never an error
	d = tr.ResolveBack("tab_1", "app://newtab", false)
	if d.Action != ActionNone {
		t.Errorf("expected none, got %s", d.Action)
	}

	// Untracked tab, empty URL: still a safe no-op
	d = tr.ResolveBack("tab_ghost", "", false)
	if d.Action != ActionNone {
		t.Errorf("expected none, got %s", d.Action)
	}
}

func TestResolveForward(t *testing.T) {
	tr := NewTracker(Config{})
	tr.RecordNavigation("tab_1", "https://example.com")

	// Overlay with a mounted surface restores the recorded URL
	d := tr.ResolveForward("tab_1", "app://newtab", true, false)
	if d.Action != ActionRestoreWeb || d.URL != "https://example.com" {
		t.Errorf("expected restore_web(example.com), got %s %q", d.Action, d.URL)
	}
	if d.ResetForward {
		t.Error("default config must not request a forward reset")
	}

	// Overlay without a surface cannot restore; falls through
	d = tr.ResolveForward("tab_1", "app://newtab", false, false)
	if d.Action != ActionNone {
		t.Errorf("expected none without a surface, got %s", d.Action)
	}

	// Overlay, surface mounted, but nothing recorded
	d = tr.ResolveForward("tab_2", "app://newtab", true, false)
	if d.Action != ActionNone {
		t.Errorf("expected none without a record, got %s", d.Action)
	}

	// Web content delegates to the surface when it can go forward
	d = tr.ResolveForward("tab_1", "https://example.com", true, true)
	if d.Action != ActionDelegateForward {
		t.Errorf("expected delegate_forward, got %s", d.Action)
	}

	// Web content, no native forward: absorbed
	d = tr.ResolveForward("tab_1", "https://example.com", true, false)
	if d.Action != ActionNone {
		t.Errorf("expected none, got %s", d.Action)
	}
}

func TestResolveForwardResetPolicy(t *testing.T) {
	tr := NewTracker(Config{RestoreResetsForward: true})
	tr.RecordNavigation("tab_1", "https://example.com")

	d := tr.ResolveForward("tab_1", "app://settings", true, true)
	if d.Action != ActionRestoreWeb {
		t.Fatalf("expected restore_web, got %s", d.Action)
	}
	if !d.ResetForward {
		t.Error("policy should request a forward reset on restore")
	}
}

func TestForget(t *testing.T) {
	tr := NewTracker(Config{})
	tr.RecordNavigation("tab_1", "https://example.com")
	tr.RecordNavigation("tab_2", "https://other.example")

	tr.Forget("tab_1")
	if _, ok := tr.LastWebURL("tab_1"); ok {
		t.Error("forgotten tab should have no record")
	}
	if tr.Size() != 1 {
		t.Errorf("size = %d, want 1", tr.Size())
	}
}

package bridge

import (
	"sync"

	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
)

// remoteSurface is the shell-side handle of a content view living in the
// UI process. Commands are fire-and-forget bridge messages; getters read
// a mirror updated from surfaceEvent reports, so they trail the embedder
// by one message at most.
type remoteSurface struct {
	bridge *Bridge
	tabID  string

	mu      sync.RWMutex
	url     string
	loading bool
	canBack bool
	canFwd  bool
}

func (s *remoteSurface) Navigate(url string) {
	s.command("surface.navigate", surfaceReq{TabID: s.tabID, URL: url})
}

func (s *remoteSurface) GoBack()  { s.command("surface.goBack", surfaceReq{TabID: s.tabID}) }
func (s *remoteSurface) GoForward() {
	s.command("surface.goForward", surfaceReq{TabID: s.tabID})
}
func (s *remoteSurface) Reload() { s.command("surface.reload", surfaceReq{TabID: s.tabID}) }
func (s *remoteSurface) Stop()   { s.command("surface.stop", surfaceReq{TabID: s.tabID}) }
func (s *remoteSurface) Show()   { s.command("surface.show", surfaceReq{TabID: s.tabID}) }
func (s *remoteSurface) Hide()   { s.command("surface.hide", surfaceReq{TabID: s.tabID}) }

func (s *remoteSurface) Close() {
	s.bridge.dropSurface(s.tabID, s)
	s.command("surface.close", surfaceReq{TabID: s.tabID})
}

func (s *remoteSurface) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

func (s *remoteSurface) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *remoteSurface) CanGoBack() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canBack
}

func (s *remoteSurface) CanGoForward() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canFwd
}

func (s *remoteSurface) command(typ string, payload surfaceReq) {
	s.bridge.push(typ, payload)
}

// applyEvent refreshes the mirror from an embedder report. Every event
// carries the history flags of the moment it was emitted.
func (s *remoteSurface) applyEvent(ev surface.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canBack = ev.CanGoBack
	s.canFwd = ev.CanGoForward
	switch ev.Kind {
	case surface.EventStartLoading:
		s.loading = true
	case surface.EventStopLoading:
		s.loading = false
	case surface.EventNavigated, surface.EventNavigatedInPage:
		if ev.URL != "" {
			s.url = ev.URL
		}
	case surface.EventCrashed:
		s.loading = false
	}
}

var _ surface.Surface = (*remoteSurface)(nil)

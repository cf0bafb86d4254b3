package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarinaBrowser/marina/shell/internal/bridge"
	"github.com/MarinaBrowser/marina/shell/internal/domain/session"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/providers/favicon"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
)

// Handlers serves the diagnostics API. Everything here is read-mostly;
// mutations ride the UI bridge, with the session endpoints as the one
// operational exception.
type Handlers struct {
	sh       *shell.Shell
	sessions *session.Manager
	bridge   *bridge.Bridge
	favicons *favicon.Provider
	track    *HandlerMetrics
	log      *logging.Logger
}

// NewHandlers creates the diagnostics handlers. The favicon provider and
// metrics tracker may be nil.
func NewHandlers(sh *shell.Shell, sessions *session.Manager, br *bridge.Bridge, favicons *favicon.Provider, track *HandlerMetrics, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		sh:       sh,
		sessions: sessions,
		bridge:   br,
		favicons: favicons,
		track:    track,
		log:      log.Named("api"),
	}
}

// Health returns service health status.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "marina-shell",
		"timestamp": time.Now().Unix(),
	})
}

// State returns the full sidebar state.
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.sh.State())
}

// Tabs returns the flat tab listing the UI renders from.
func (h *Handlers) Tabs(c *gin.Context) {
	tabs := h.sh.Tabs()
	c.JSON(http.StatusOK, gin.H{
		"tabs":  tabs,
		"count": len(tabs),
	})
}

// ActiveTab returns the active tab with its navigation affordances.
func (h *Handlers) ActiveTab(c *gin.Context) {
	active := h.sh.ActiveTab()
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active tab"})
		return
	}
	c.JSON(http.StatusOK, active)
}

// Stats returns counters from every shell component.
func (h *Handlers) Stats(c *gin.Context) {
	payload := gin.H{
		"shell": h.sh.Stats(),
	}
	if h.sessions != nil {
		payload["session"] = h.sessions.Stats()
	}
	if h.bridge != nil {
		payload["bridge"] = gin.H{"connected": h.bridge.Connected()}
	}
	if h.favicons != nil {
		payload["favicons"] = gin.H{"cached": h.favicons.CacheLen()}
	}
	c.JSON(http.StatusOK, payload)
}

// GestureStats returns the gesture outcome counters and the magnitude
// distribution of recent swipes.
func (h *Handlers) GestureStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.sh.Stats().Gestures)
}

// SessionStats returns autosave activity.
func (h *Handlers) SessionStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Stats())
}

// SaveSession forces a snapshot write ahead of the debounce window.
func (h *Handlers) SaveSession(c *gin.Context) {
	defer h.trackOp("session_save")()

	if err := h.sessions.Save(); err != nil {
		c.JSON(statusOf(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.sessions.Stats(),
	})
}

type sessionFileRequest struct {
	Path string `json:"path" binding:"required"`
}

// ExportSession writes the current organization to a file of the
// caller's choosing. The extension picks the format.
func (h *Handlers) ExportSession(c *gin.Context) {
	defer h.trackOp("session_export")()

	var req sessionFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "path is required"})
		return
	}

	if err := h.sessions.Export(req.Path); err != nil {
		c.JSON(statusOf(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// ImportSession replaces the organization with a previously exported
// file.
func (h *Handlers) ImportSession(c *gin.Context) {
	defer h.trackOp("session_import")()

	var req sessionFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "path is required"})
		return
	}

	restored, err := h.sessions.Import(req.Path)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"restored": restored,
	})
}

func (h *Handlers) trackOp(op string) func() {
	if h.track == nil {
		return func() {}
	}
	return h.track.Track(op)
}

// statusOf maps shell error codes onto HTTP statuses.
func statusOf(err error) int {
	switch errs.CodeOf(err) {
	case errs.InvalidOperation:
		return http.StatusBadRequest
	case errs.InvalidState:
		return http.StatusConflict
	case errs.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

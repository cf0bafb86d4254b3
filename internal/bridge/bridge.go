package bridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

const defaultCallTimeout = 5 * time.Second

// EventSink consumes surface lifecycle events. Satisfied by the surface
// coordinator.
type EventSink interface {
	HandleEvent(tabID string, ev surface.Event) bool
}

// Recorder counts bridge traffic. Nil disables recording.
type Recorder interface {
	RecordBridgeMessage(direction, msgType string)
	IncBridgeConnections()
	DecBridgeConnections()
}

// Config tunes the bridge.
type Config struct {
	// CallTimeout bounds shell-to-UI calls such as surface mounts.
	CallTimeout time.Duration
}

// Bridge is the websocket channel between this process and the UI. One
// connection is active at a time; a reconnect supersedes the previous one
// and receives a fresh state snapshot. Bridge implements surface.Factory:
// production surfaces are mirrors driven over this channel.
type Bridge struct {
	cfg      Config
	store    *org.Store
	log      *logging.Logger
	rec      Recorder
	upgrader websocket.Upgrader

	sh   *shell.Shell
	sink EventSink

	mu     sync.Mutex
	active *conn

	surfMu   sync.Mutex
	surfaces map[string]*remoteSurface

	pubMu   sync.Mutex
	last    *types.SidebarState
	adblock *types.AdblockStatus
}

// New creates the bridge. Wire attaches the shell facade and event sink
// once they exist; the coordinator takes the bridge as its surface factory
// in between.
func New(cfg Config, store *org.Store, log *logging.Logger, rec Recorder) *Bridge {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Bridge{
		cfg:   cfg,
		store: store,
		log:   log.Named("bridge"),
		rec:   rec,
		upgrader: websocket.Upgrader{
			// The UI process connects from its own origin on localhost.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		surfaces: make(map[string]*remoteSurface),
	}
}

// Wire attaches the request targets. Must run before the HTTP server
// starts serving /bridge.
func (b *Bridge) Wire(sh *shell.Shell, sink EventSink) {
	b.sh = sh
	b.sink = sink
}

// Watch subscribes to store changes and pushes tab updates to the UI.
func (b *Bridge) Watch() {
	b.store.Subscribe(func(types.SidebarState) { b.publishState() })
}

// Handle upgrades an HTTP request into the bridge connection. Blocks for
// the connection's lifetime.
func (b *Bridge) Handle(c *gin.Context) {
	ws, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.log.Warn("bridge upgrade failed", zap.Error(err))
		return
	}
	cn := newConn(ws, b.log)
	b.attach(cn)
	if b.rec != nil {
		b.rec.IncBridgeConnections()
	}
	b.log.Info("ui connected", zap.String("remote", c.Request.RemoteAddr))

	cn.readLoop(func(msg Message) { b.dispatch(cn, msg) })

	cn.close()
	b.detach(cn)
	if b.rec != nil {
		b.rec.DecBridgeConnections()
	}
	b.log.Info("ui disconnected", zap.String("remote", c.Request.RemoteAddr))
}

// Connected reports whether a UI connection is active.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// AdblockStatus returns the last status the embedder reported.
func (b *Bridge) AdblockStatus() *types.AdblockStatus {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if b.adblock == nil {
		return nil
	}
	status := *b.adblock
	return &status
}

// PushSurfaceCrashed tells the UI a tab's content view died.
func (b *Bridge) PushSurfaceCrashed(tabID string) {
	b.push("surfaceCrashed", crashPush{TabID: tabID})
}

// Close drops the active connection.
func (b *Bridge) Close() {
	b.mu.Lock()
	cn := b.active
	b.active = nil
	b.mu.Unlock()
	if cn != nil {
		cn.close()
	}
}

func (b *Bridge) attach(cn *conn) {
	b.mu.Lock()
	old := b.active
	b.active = cn
	b.mu.Unlock()
	if old != nil {
		b.log.Info("bridge connection superseded")
		old.close()
	}
	b.syncConn(cn)
}

func (b *Bridge) detach(cn *conn) {
	b.mu.Lock()
	if b.active == cn {
		b.active = nil
	}
	b.mu.Unlock()
}

func (b *Bridge) current() *conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// syncConn sends a full snapshot to a fresh connection.
func (b *Bridge) syncConn(cn *conn) {
	b.pubMu.Lock()
	state := b.store.Snapshot()
	b.last = &state
	adblock := b.adblock
	b.pubMu.Unlock()

	b.sendTo(cn, "tabsUpdated", tabInfos(state.Tabs))
	b.sendTo(cn, "activeTabChanged", b.sh.ActiveTab())
	if adblock != nil {
		b.sendTo(cn, "adblockStatus", *adblock)
	}
}

// publishState diffs the store against the last pushed state and emits
// the narrowest update. Snapshotting here rather than trusting the
// subscription argument keeps pushes current when publishes race.
func (b *Bridge) publishState() {
	cn := b.current()
	if cn == nil {
		return
	}

	b.pubMu.Lock()
	next := b.store.Snapshot()
	prev := b.last
	b.last = &next
	b.pubMu.Unlock()

	if prev == nil {
		b.sendTo(cn, "tabsUpdated", tabInfos(next.Tabs))
		b.sendTo(cn, "activeTabChanged", b.sh.ActiveTab())
		return
	}

	changed, structural := diffTabs(prev.Tabs, next.Tabs)
	switch {
	case structural || len(changed) > 1:
		b.sendTo(cn, "tabsUpdated", tabInfos(next.Tabs))
	case len(changed) == 1:
		b.sendTo(cn, "tabUpdated", changed[0].Info())
	}

	if activeChanged(prev, &next, changed) {
		b.sendTo(cn, "activeTabChanged", b.sh.ActiveTab())
	}
}

func (b *Bridge) push(typ string, payload interface{}) {
	cn := b.current()
	if cn == nil {
		return
	}
	b.sendTo(cn, typ, payload)
}

func (b *Bridge) sendTo(cn *conn, typ string, payload interface{}) {
	data, err := raw(payload)
	if err != nil {
		b.log.Error("bridge push encode failed", zap.String("type", typ), zap.Error(err))
		return
	}
	if cn.enqueue(Message{Type: typ, Payload: data}) && b.rec != nil {
		b.rec.RecordBridgeMessage("out", typ)
	}
}

// Create implements surface.Factory: it asks the embedder to mount a
// content view for the tab and returns its command mirror.
func (b *Bridge) Create(ctx context.Context, tabID string) (surface.Surface, error) {
	cn := b.current()
	if cn == nil {
		return nil, ErrNotConnected
	}
	if b.rec != nil {
		b.rec.RecordBridgeMessage("out", "surface.mount")
	}
	if _, err := cn.call(ctx, "surface.mount", surfaceReq{TabID: tabID}, b.cfg.CallTimeout); err != nil {
		return nil, err
	}
	s := &remoteSurface{bridge: b, tabID: tabID}
	b.surfMu.Lock()
	b.surfaces[tabID] = s
	b.surfMu.Unlock()
	return s, nil
}

func (b *Bridge) surfaceFor(tabID string) (*remoteSurface, bool) {
	b.surfMu.Lock()
	defer b.surfMu.Unlock()
	s, ok := b.surfaces[tabID]
	return s, ok
}

func (b *Bridge) dropSurface(tabID string, s *remoteSurface) {
	b.surfMu.Lock()
	if b.surfaces[tabID] == s {
		delete(b.surfaces, tabID)
	}
	b.surfMu.Unlock()
}

func tabInfos(tabs []types.Tab) []types.TabInfo {
	out := make([]types.TabInfo, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.Info())
	}
	return out
}

// diffTabs reports content-changed tabs and whether membership, order,
// or placement changed, which forces a full push.
func diffTabs(prev, next []types.Tab) (changed []types.Tab, structural bool) {
	if len(prev) != len(next) {
		return nil, true
	}
	for i := range next {
		p, n := prev[i], next[i]
		if p.ID != n.ID || p.RealmID != n.RealmID || p.Order != n.Order ||
			p.IsPinned != n.IsPinned || !sameDock(p.DockID, n.DockID) {
			return nil, true
		}
		if p.URL != n.URL || p.Title != n.Title || p.Favicon != n.Favicon || p.IsLoading != n.IsLoading {
			changed = append(changed, n)
		}
	}
	return changed, false
}

func activeChanged(prev, next *types.SidebarState, changed []types.Tab) bool {
	prevID, nextID := "", ""
	if prev.ActiveTabID != nil {
		prevID = *prev.ActiveTabID
	}
	if next.ActiveTabID != nil {
		nextID = *next.ActiveTabID
	}
	if prevID != nextID {
		return true
	}
	for _, t := range changed {
		if t.ID == nextID {
			return true
		}
	}
	return false
}

func sameDock(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// commandTimeout bounds agent-backed command execution.
const commandTimeout = 2 * time.Minute

func parse(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return errs.New(errs.InvalidOperation, "missing payload")
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return errs.New(errs.InvalidOperation, "bad payload: %v", err)
	}
	return nil
}

// dispatch routes one inbound message. It runs on the connection's reader
// goroutine; everything here must return without waiting on the UI.
func (b *Bridge) dispatch(cn *conn, msg Message) {
	if b.rec != nil {
		b.rec.RecordBridgeMessage("in", msg.Type)
	}

	switch msg.Type {
	case "wheel":
		var req wheelReq
		if err := parse(msg.Payload, &req); err != nil {
			b.log.Debug("wheel event rejected", zap.Error(err))
			return
		}
		b.sh.HandleWheel(req.DX, req.DY)
		return
	case "wheelEnd":
		b.sh.HandleWheelEnd()
		return
	case "surfaceEvent":
		b.handleSurfaceEvent(msg)
		return
	case "adblockStatus":
		b.handleAdblockStatus(msg)
		return
	}

	result, err := b.handleRequest(msg)
	if msg.ID == "" {
		if err != nil {
			b.log.Warn("unanswerable request failed", zap.String("type", msg.Type), zap.Error(err))
		}
		return
	}
	if err != nil {
		cn.replyError(msg.ID, err)
	} else {
		cn.reply(msg.ID, result)
	}
	if b.rec != nil {
		b.rec.RecordBridgeMessage("out", msg.Type)
	}
}

func (b *Bridge) handleRequest(msg Message) (interface{}, error) {
	switch msg.Type {
	case "createTab":
		var req createTabReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		tab, err := b.sh.CreateTab(req.RealmID, req.DockID, req.URL)
		if err != nil {
			return nil, err
		}
		return tab.Info(), nil

	case "closeTab":
		var req idReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.sh.CloseTab(req.ID)

	case "switchTab":
		var req idReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.sh.SwitchTab(req.ID)

	case "getAllTabs":
		return b.sh.Tabs(), nil

	case "getActiveTab":
		return b.sh.ActiveTab(), nil

	case "updateTab":
		var req updateTabReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		tab, err := b.sh.UpdateTab(req.ID, req.TabUpdate)
		if err != nil {
			return nil, err
		}
		return tab.Info(), nil

	case "navigate":
		var req navigateReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.sh.Navigate(req.URL)

	case "goBack":
		b.sh.GoBack()
		return nil, nil

	case "goForward":
		b.sh.GoForward()
		return nil, nil

	case "reload", "stop":
		return nil, b.sh.ReloadOrStop()

	case "command":
		var req commandReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return b.sh.Command(ctx, req.Text)

	case "getState":
		return b.sh.State(), nil

	case "createRealm":
		var req createRealmReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return b.store.CreateRealm(req.Name, req.Icon, req.Color)

	case "createDock":
		var req createDockReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return b.store.CreateDock(req.RealmID, req.Name, req.Icon, req.Color)

	case "updateRealm":
		var req updateRealmReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.UpdateRealm(req.ID, req.RealmUpdate)

	case "updateDock":
		var req updateDockReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.UpdateDock(req.ID, req.DockUpdate)

	case "deleteRealm":
		var req idReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.DeleteRealm(req.ID)

	case "deleteDock":
		var req deleteDockReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.sh.DeleteDock(req.ID, req.Policy)

	case "moveTab":
		var req moveTabReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		realmID := req.RealmID
		if realmID == "" {
			tab, ok := b.store.Get(req.TabID)
			if !ok {
				return nil, errs.New(errs.NotFound, "tab %s not found", req.TabID)
			}
			realmID = tab.RealmID
		}
		index := -1
		if req.Index != nil {
			index = *req.Index
		}
		return nil, b.store.MoveTab(req.TabID, realmID, req.DockID, index)

	case "reorderTabs":
		var req reorderReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.Reorder(req.Scope, req.IDs)

	case "setPinned":
		var req setPinnedReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.SetPinned(req.TabID, req.Pinned)

	case "setCollapsed":
		var req setCollapsedReq
		if err := parse(msg.Payload, &req); err != nil {
			return nil, err
		}
		return nil, b.store.SetCollapsed(req.DockID, req.Collapsed)
	}

	return nil, errs.New(errs.InvalidOperation, "unknown request %q", msg.Type)
}

// handleSurfaceEvent refreshes the command mirror before the coordinator
// sees the event, so state reads during handling observe the report that
// caused them.
func (b *Bridge) handleSurfaceEvent(msg Message) {
	var req surfaceEventReq
	if err := parse(msg.Payload, &req); err != nil {
		b.log.Debug("surface event rejected", zap.Error(err))
		return
	}
	if s, ok := b.surfaceFor(req.TabID); ok {
		s.applyEvent(req.Event)
	}
	if !b.sink.HandleEvent(req.TabID, req.Event) {
		b.log.Debug("surface event dropped",
			zap.String("tab_id", req.TabID),
			zap.String("kind", string(req.Event.Kind)))
	}
}

// handleAdblockStatus mirrors the embedder's filter state back out so the
// sidebar renderer sees what the network layer reported.
func (b *Bridge) handleAdblockStatus(msg Message) {
	var status types.AdblockStatus
	if err := parse(msg.Payload, &status); err != nil {
		b.log.Debug("adblock status rejected", zap.Error(err))
		return
	}
	b.pubMu.Lock()
	b.adblock = &status
	b.pubMu.Unlock()
	b.push("adblockStatus", status)
}

package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/MarinaBrowser/marina/shell/internal/domain/org"
	"github.com/MarinaBrowser/marina/shell/internal/domain/surface"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// Message is the wire envelope. Requests carry an id so the response can
// be correlated; fire-and-forget messages and pushes omit it.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply types. Everything else in Type is a request or push name.
const (
	typeResponse = "response"
	typeError    = "error"
)

// WireError is the payload of an error reply.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(msg Message) ([]byte, error) {
	return sonic.Marshal(msg)
}

func decode(data []byte) (Message, error) {
	var msg Message
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode bridge message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, errs.New(errs.InvalidOperation, "bridge message missing type")
	}
	return msg, nil
}

// raw encodes a payload value. A nil value produces a nil payload so the
// field is omitted on the wire.
func raw(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// isReply reports whether the message answers a pending call rather than
// opening a new request.
func (m Message) isReply() bool {
	return m.ID != "" && (m.Type == typeResponse || m.Type == typeError)
}

// wireErr decodes an error reply into a coded error.
func (m Message) wireErr() error {
	var we WireError
	if err := sonic.Unmarshal(m.Payload, &we); err != nil || we.Message == "" {
		return errs.New(errs.InvalidState, "ui rejected call")
	}
	return errs.New(errs.Code(we.Code), "%s", we.Message)
}

// Request payloads, UI to shell.

type createTabReq struct {
	URL     string  `json:"url,omitempty"`
	RealmID string  `json:"realm_id,omitempty"`
	DockID  *string `json:"dock_id,omitempty"`
}

type idReq struct {
	ID string `json:"id"`
}

type updateTabReq struct {
	ID string `json:"id"`
	types.TabUpdate
}

type navigateReq struct {
	URL string `json:"url"`
}

type commandReq struct {
	Text string `json:"text"`
}

type createRealmReq struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

type createDockReq struct {
	RealmID string `json:"realm_id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Color   string `json:"color,omitempty"`
}

type updateRealmReq struct {
	ID string `json:"id"`
	types.RealmUpdate
}

type updateDockReq struct {
	ID string `json:"id"`
	types.DockUpdate
}

type deleteDockReq struct {
	ID     string                 `json:"id"`
	Policy types.DockDeletePolicy `json:"policy,omitempty"`
}

type moveTabReq struct {
	TabID   string  `json:"tab_id"`
	RealmID string  `json:"realm_id,omitempty"`
	DockID  *string `json:"dock_id,omitempty"`
	Index   *int    `json:"index,omitempty"`
}

type reorderReq struct {
	Scope org.Container `json:"scope"`
	IDs   []string      `json:"ids"`
}

type setPinnedReq struct {
	TabID  string `json:"tab_id"`
	Pinned bool   `json:"pinned"`
}

type setCollapsedReq struct {
	DockID    string `json:"dock_id"`
	Collapsed bool   `json:"collapsed"`
}

type wheelReq struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type surfaceEventReq struct {
	TabID string        `json:"tab_id"`
	Event surface.Event `json:"event"`
}

// Surface control payloads, shell to UI.

type surfaceReq struct {
	TabID string `json:"tab_id"`
	URL   string `json:"url,omitempty"`
}

// Push payloads, shell to UI.

type crashPush struct {
	TabID string `json:"tab_id"`
}

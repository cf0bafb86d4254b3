package shell

import "context"

// ActionKind classifies what an agent asked the shell to do.
type ActionKind string

const (
	ActionNone      ActionKind = "none"
	ActionNavigate  ActionKind = "navigate"
	ActionCreateTab ActionKind = "create_tab"
	ActionSwitchTab ActionKind = "switch_tab"
)

// Action is the shell-applicable result of an agent command.
type Action struct {
	Kind  ActionKind `json:"kind"`
	URL   string     `json:"url,omitempty"`
	TabID string     `json:"tab_id,omitempty"`
}

// Agent executes natural-language commands out of process and maps the
// result onto a shell action.
type Agent interface {
	Execute(ctx context.Context, text, currentURL string) (Action, error)
}

package surface

// EventKind identifies a lifecycle or navigation report from an
// embedded surface.
type EventKind string

const (
	EventStartLoading    EventKind = "start_loading"
	EventStopLoading     EventKind = "stop_loading"
	EventNavigated       EventKind = "navigated"
	EventNavigatedInPage EventKind = "navigated_in_page"
	EventTitleChanged    EventKind = "title_changed"
	EventFaviconChanged  EventKind = "favicon_changed"
	EventCrashed         EventKind = "crashed"
	EventNewWindow       EventKind = "new_window"
)

// Event is one report from an embedded surface. CanGoBack and
// CanGoForward carry the embedder's history flags at emission time.
type Event struct {
	Kind         EventKind `json:"kind"`
	URL          string    `json:"url,omitempty"`
	Title        string    `json:"title,omitempty"`
	IconURL      string    `json:"icon_url,omitempty"`
	CanGoBack    bool      `json:"can_go_back"`
	CanGoForward bool      `json:"can_go_forward"`
}

package types

// TabInfo is the flattened Tab projection pushed to the UI process
type TabInfo struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Favicon   string  `json:"favicon,omitempty"`
	IsLoading bool    `json:"is_loading"`
	RealmID   string  `json:"realm_id"`
	DockID    *string `json:"dock_id,omitempty"`
	Order     int     `json:"order"`
	IsPinned  bool    `json:"is_pinned"`
}

// ActiveTabInfo extends TabInfo with navigation affordances
type ActiveTabInfo struct {
	TabInfo
	CanGoBack    bool `json:"can_go_back"`
	CanGoForward bool `json:"can_go_forward"`
}

// TabUpdate is a partial tab mutation; nil fields are left untouched.
// Applied by the surface coordinator on the event path and by the
// updateTab bridge request.
type TabUpdate struct {
	URL       *string `json:"url,omitempty"`
	Title     *string `json:"title,omitempty"`
	Favicon   *string `json:"favicon,omitempty"`
	IsLoading *bool   `json:"is_loading,omitempty"`
	Touch     bool    `json:"-"` // bump LastAccessedAt
}

// Info projects a Tab into its wire shape
func (t Tab) Info() TabInfo {
	return TabInfo{
		ID:        t.ID,
		URL:       t.URL,
		Title:     t.Title,
		Favicon:   t.Favicon,
		IsLoading: t.IsLoading,
		RealmID:   t.RealmID,
		DockID:    t.DockID,
		Order:     t.Order,
		IsPinned:  t.IsPinned,
	}
}

// AdblockStatus mirrors the filtering engine state for the UI
type AdblockStatus struct {
	Enabled      bool   `json:"enabled"`
	BlockedCount uint64 `json:"blocked_count"`
	ListVersion  string `json:"list_version,omitempty"`
}

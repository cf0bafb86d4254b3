package types

import "time"

// Realm is a top-level workspace grouping Docks and Tabs
type Realm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dock is a named, collapsible group of Tabs within a Realm
type Dock struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	RealmID     string    `json:"realm_id"`
	IsCollapsed bool      `json:"is_collapsed"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultTabTitle is the placeholder title a tab carries until a page
// or provider reports a real one
const DefaultTabTitle = "New Tab"

// Tab is a single browsing context, loose or docked
type Tab struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Favicon        string    `json:"favicon"`
	IsLoading      bool      `json:"is_loading"`
	RealmID        string    `json:"realm_id"`
	DockID         *string   `json:"dock_id,omitempty"` // nil = loose tab
	Order          int       `json:"order"`
	IsPinned       bool      `json:"is_pinned"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// SidebarState is the persisted snapshot of the full organization
type SidebarState struct {
	Realms      []Realm   `json:"realms"`
	Docks       []Dock    `json:"docks"`
	Tabs        []Tab     `json:"tabs"`
	ActiveTabID *string   `json:"active_tab_id,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// RealmUpdate is a partial realm mutation; nil fields are left untouched
type RealmUpdate struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// DockUpdate is a partial dock mutation; nil fields are left untouched
type DockUpdate struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// DockDeletePolicy controls what happens to a deleted Dock's tabs
type DockDeletePolicy string

const (
	// DockDeleteDemote moves the Dock's tabs to the Realm's loose set,
	// preserving relative order and pinned flags
	DockDeleteDemote DockDeletePolicy = "demote"
	// DockDeleteTabs deletes the Dock's tabs along with it
	DockDeleteTabs DockDeletePolicy = "delete"
)

// Valid reports whether the policy is a known value
func (p DockDeletePolicy) Valid() bool {
	return p == DockDeleteDemote || p == DockDeleteTabs
}

// Stats contains organization statistics
type Stats struct {
	TotalRealms int     `json:"total_realms"`
	TotalDocks  int     `json:"total_docks"`
	TotalTabs   int     `json:"total_tabs"`
	LooseTabs   int     `json:"loose_tabs"`
	PinnedTabs  int     `json:"pinned_tabs"`
	ActiveTabID *string `json:"active_tab_id,omitempty"`
}

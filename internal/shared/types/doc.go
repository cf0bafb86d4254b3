// Package types provides shared data structures for the Marina shell.
//
// This package defines core types used across all shell components,
// ensuring type safety and consistent data structures.
//
// Organization Types:
//   - Realm: Top-level workspace grouping Docks and Tabs
//   - Dock: Named, collapsible group of Tabs within a Realm
//   - Tab: A single browsing context, loose or docked
//   - SidebarState: Persisted snapshot of the full organization
//
// Bridge Types:
//   - TabInfo, ActiveTabInfo: Wire projections pushed to the UI process
//   - TabUpdate: Partial tab mutation applied on the event path
//   - AdblockStatus: Filtering engine status passthrough
//
// State Management:
//   - DockDeletePolicy: What happens to a deleted Dock's tabs
//   - Stats: Organization statistics
//
// Example Usage:
//
//	tab := &types.Tab{
//	    ID:      string(id.NewTabID()),
//	    RealmID: realmID,
//	    URL:     "app://newtab",
//	}
package types

// Package session persists the sidebar between runs.
//
// The manager subscribes to organization store changes and writes a
// snapshot after a quiet debounce window, so a burst of tab churn costs
// one disk write. On boot it restores the previous snapshot before the
// bridge comes up; the store re-selects the persisted active tab when it
// still exists. A missing or corrupt snapshot restores nothing and the
// shell seeds defaults instead.
//
// Call order matters: Restore, then Watch, then serve traffic.
package session

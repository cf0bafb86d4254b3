/*
Package snapshot persists the sidebar organization to the profile directory.

# Overview

One current snapshot lives under <profile>/snapshots as sonic-encoded JSON,
optionally compressed (gzip or zstd). Saves are atomic: a temp file is
written and renamed over the previous snapshot, so a crash mid-save never
leaves a torn file behind.

Corrupt or missing snapshots load as empty state with a warning; the shell
then boots with a fresh default realm instead of refusing to start.

# Export and import

Export and Import move snapshots through user-visible files, selecting the
codec by extension: .json, .yaml, or .toml. Listing walks the snapshot
directory.
*/
package snapshot

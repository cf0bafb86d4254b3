// Package bridge is the websocket channel between the shell and the UI
// process.
//
// One connection is active at a time; a reconnect supersedes the previous
// connection and receives a full state snapshot. Messages are sonic-encoded
// JSON envelopes {id, type, payload}: requests carry a correlation id,
// fire-and-forget messages and pushes omit it. Inbound request handling
// runs on the connection's reader goroutine.
//
// The bridge doubles as the surface factory. A mount is a shell-to-UI call
// answered by the embedder; the returned surface handle sends its commands
// as fire-and-forget messages and mirrors state from surfaceEvent reports.
// Surface handles survive a reconnect, since the embedder keeps its content
// views when only the socket drops.
package bridge

// Package timer implements the JSON-RPC 2.0 method channel used by UI clients.
//
// Calls are accepted over HTTP POST at /jsonrpc and over a WebSocket at
// /jsonrpc/ws. WebSocket clients also receive alarmFired and alarmStopped
// push notifications.
package timer

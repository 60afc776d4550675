// Package wire defines the pomodoro.v1.TimerService gRPC contract.
//
// Messages are plain Go structs carried by the "json" codec registered on
// import, so server and client share this package instead of generated code.
// The same message shapes are returned by the JSON-RPC method channel.
package wire

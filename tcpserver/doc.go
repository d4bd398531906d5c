// Package tcpserver provides the persistent-connection command channel.
//
// Automation clients connect over TCP and exchange newline-delimited JSON
// command and response envelopes. Each connection gets its own client
// identifier, used both for response delivery and for deriving unique
// per-execution node names. Connection-closed and reset errors are logged
// and dropped at this layer; they never surface as command failures.
package tcpserver

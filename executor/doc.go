// Package executor runs caller-supplied code fragments inside the embedded
// editor host.
//
// For each execute command the handler synthesizes a runnable unit from the
// fragment, compiles it into a fresh interpreter state, attaches it to a
// transient scene node parented under the host's bridge attach point, waits
// a fixed number of host frames for deferred work to settle, collects the
// unit's captured output, result and error, and detaches the node. The node
// is detached on every path, so the bridge's child count is unchanged after
// each execution whether it succeeded or failed at any stage.
//
// Failures are carried in the response, never raised: validation failures
// skip execution entirely, compile failures report the parser diagnostic,
// and runtime failures surface through the unit's recorded error field with
// any output emitted before the failure preserved.
package executor

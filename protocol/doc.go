// Package protocol defines the command envelope and dispatch layer shared
// by all transports.
//
// A Command carries a type string, free-form parameters and an opaque
// correlation identifier. The Router holds an ordered collection of
// handlers and dispatches each command to the first handler whose
// capability predicate matches its type; a matched handler sends exactly
// one Response, tagged with the command's identifier, through a Sender.
// Unmatched commands produce no response here; the transport adapter
// decides how to surface them.
package protocol

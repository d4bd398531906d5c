// Package inspect provides the read-only command handlers.
//
// These handlers expose host metadata (the scene tree, the project's
// registered script paths and the project settings) as command responses.
// They never mutate host state and always succeed.
package inspect

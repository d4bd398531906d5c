// Package host embeds the editor host the bridge drives.
//
// The host owns a scene tree, a cooperative frame scheduler and a Lua script
// engine (Shopify/go-lua). Scripts compile into their own interpreter state,
// bind to scene nodes, and may define a global tick() the host invokes on
// every frame while the node stays attached. Callers suspend against frame
// boundaries with AwaitTicks; the scheduler is the only place frames
// advance, in tests usually by calling Step directly.
package host

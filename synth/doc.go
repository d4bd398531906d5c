// Package synth builds runnable script units from caller-supplied code
// fragments.
//
// A fragment is a block of free-form Lua statements. Synthesis rewrites the
// fragment's print calls so console output is also recorded into an
// inspectable buffer, normalizes leading-space indentation to tabs, and
// embeds the result into a fixed template. The template declares a nullable
// result slot, the output-capturing function and an init entry point that
// runs the fragment under a protected call, recording any failure into an
// error field instead of raising.
//
// The produced unit is self-contained: it references only identifiers the
// template defines, the fragment's own definitions and the Lua standard
// library.
package synth

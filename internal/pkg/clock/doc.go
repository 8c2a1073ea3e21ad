// Package clock provides a tiny time abstraction.
//
// Stage logic that enforces time windows depends on the Clocker interface
// instead of calling time.Now() directly, so tests can pin "now" with a
// Frozen clock and step it across a window boundary.
package clock

// Package notifications pushes publish progress and failures to ntfy. With
// no topic configured the service degrades to a noop, so callers never
// guard notification calls.
package notifications

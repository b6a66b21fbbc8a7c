// Package notifications publishes workflow events to an ntfy topic. The
// service degrades to a noop when no topic is configured, so callers never
// branch on whether notifications are enabled.
package notifications

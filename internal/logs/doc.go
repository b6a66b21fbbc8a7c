// Package logs tails the daemon's seminar.log for the CLI. Tail serves
// both the one-shot "last N lines" read and the offset-resuming poll loop
// behind `seminar logs --follow`; cancellation comes from the caller's
// context so follow mode exits cleanly on interrupt.
package logs

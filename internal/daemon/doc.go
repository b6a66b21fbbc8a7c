// Package daemon owns the long-running seminar process: it ties the
// workflow manager to a single lifecycle with flock-based locking so two
// daemon instances never tick the same record store concurrently.
package daemon

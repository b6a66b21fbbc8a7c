// Package services defines shared utilities consumed by the pipeline steps
// and external-service clients: the sentinel error taxonomy used for
// per-discussion failure classification, and the context keys that thread
// discussion, step, and correlation identifiers into structured logs.
package services

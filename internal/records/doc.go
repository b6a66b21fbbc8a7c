// Package records is the typed boundary over the generic record store.
// Each collection gets a struct and a reflection-free translation to and
// from column/value pairs; nothing outside this package builds raw field
// maps for domain collections. The Catalog bundles the typed accessors and
// the invariant-bearing helpers (transcript upsert, participant identity
// upsert, report ensure-once, append-only error logs).
package records

// Package store provides the generic row-oriented record store shared by
// every collection in the system. Collections are declared with a fixed
// column order and materialized in SQLite on first access; rows are
// referenced by stable integer ids so independent stages can update the
// columns they own without clobbering the rest.
package store

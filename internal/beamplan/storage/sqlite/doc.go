// Package sqlite persists channel plans as flat carrier records.
//
// The store is a boundary collaborator of the allocation core: it speaks
// only the interchange record shape and rebuilds plans through the core's
// ingest path, so a loaded plan carries the same validation guarantees as
// one built live.
package sqlite

// Package simconfig holds the cylinder-flow study configuration and the static
// field catalog that describes it.
//
// The catalog is the single registry of fields that frontends and the
// assistant may read or write. Each entry carries its display label, value
// kind, unit and a reference to the backing struct field, so adding a field
// means adding one catalog row. The catalog is built once at package init and
// never mutated, which makes it safe for concurrent reads.
package simconfig

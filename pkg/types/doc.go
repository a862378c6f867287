// Package types defines the entity model of the kladia registry: the five
// entity kinds, identifiers, attribute mappings, the Store and Namespace
// interfaces that backends implement, and the standard errors.
//
// A Store owns one Namespace per Kind. Namespaces never share storage, so the
// identifier "A" in the node namespace is unrelated to "A" in the link
// namespace. Entity construction (validating and normalising an identifier)
// is kept separate from namespace selection: NewEntity shapes the entity,
// Store.Namespace picks where it lives.
package types

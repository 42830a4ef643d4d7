// Package runtime provides the execution context for arbor commands.
//
// It bundles the open repository, its event log store, the repo config,
// and the logger, and it knows how to assemble a consistent view of the
// commit graph from all of them.
package runtime

// Package actions provides the high-level logic behind arbor commands.
//
// Each action corresponds to one command (init, smartlog, hide, undo,
// move, ...) and orchestrates the event log, the commit graph, and the
// repository collaborator. Actions print through the Splog on the runtime
// context and return typed errors; the CLI layer maps those to exit codes.
package actions

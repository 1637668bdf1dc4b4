// Package cli implements the interactive command-line client of Vinony.
//
// The App wires the engine (session manager, conversation manager and
// generation scheduler) over the configured store and exposes it through a
// small REPL. Chat replies and image renders arrive asynchronously and are
// announced when they settle.
package cli

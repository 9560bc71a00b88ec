// Package cli holds the wiring behind the abacus command: configuration to
// engine, store selection, and the long-running front-ends.
package cli

/*
Package runner implements the read-apply-render loop for line-oriented front-ends.

A Runner reads a Request (key-presses or a command) from an IOHandler, forwards the
events to the engine, optionally persists the state, and hands the resulting View
back to the handler. Two handlers ship with the package:

  - TextHandler: an interactive REPL. Keys are typed one per field ("7 + 8 =") or
    packed ("7+8="); "history" prints the history table.
  - JSONHandler: JSON-lines for scripts and agents, one event object per line in,
    one View per line out.

# Usage

	eng := abacus.New()
	r := runner.NewRunner(
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	state, err := r.Run(ctx, eng, eng.Start("local"))
*/
package runner

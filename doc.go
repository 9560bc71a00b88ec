/*
Package abacus is a small, deterministic calculator engine designed to sit behind any renderer: a terminal, an HTTP API or an AI agent.

It accepts a bounded stream of key-presses, assembles them into a single binary expression (operand, operator, operand), evaluates it and appends the result to a running history. The result becomes the seed operand of the next expression, so computations can be chained.

# Concept

The engine owns no UI and no storage. A renderer forwards discrete events (digit, decimal point, operator, equals, delete, clear) and re-reads the state after every call. Session state is an explicit value passed into each operation, which keeps the engine trivially embeddable and lets the session layer store it anywhere.

# Key Features

  - Bounded input: the sequence never exceeds three tokens; extra appends are no-ops.
  - Recoverable errors: division by zero, invalid operations and malformed numbers are reported on the state, never by crashing the session.
  - Append-only history: every successful evaluation is recorded in order.
  - Pluggable front-ends: text REPL, JSON-lines, full-screen keypad, HTTP and MCP.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/abacus"
		"github.com/aretw0/abacus/pkg/domain"
	)

	func main() {
		eng := abacus.New()
		state := eng.Start("session-123")

		ctx := context.Background()
		_ = eng.ApplyAll(ctx, state,
			domain.Digit('7'),
			domain.Op(domain.OpAdd),
			domain.Digit('8'),
			domain.Equals,
		)

		fmt.Println(eng.Display(state)) // 15
		for line := range eng.History(state) {
			fmt.Println(line) // 7 + 8 = 15
		}
	}
*/
package abacus

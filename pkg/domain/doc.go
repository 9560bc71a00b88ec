/*
Package domain contains the core domain models of the Abacus calculator engine.

It defines the tokens a renderer feeds into the engine, the session State the
engine mutates and the read model (View) renderers display. The package is kept
pure and free of I/O or persistence concerns.

# Key Entities

  - Token: a tagged Operand (numeric literal as typed) or Operator (+ - * /).
  - State: the input Sequence (at most three tokens), the append-only History and the last error.
  - HistoryEntry: an immutable record of one completed computation.
  - Event: a discrete user action (digit, decimal point, operator, equals, delete, clear).
  - StateDiff: the incremental change between two states, used by streaming adapters.
*/
package domain

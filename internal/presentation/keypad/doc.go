// Package keypad implements the full-screen terminal calculator.
//
// It maps single key presses to engine events: digits, the decimal point and
// the four operators as typed, Enter or = to evaluate, Backspace to delete the
// last token, Esc or c to clear, and q or Ctrl+C to leave.
package keypad

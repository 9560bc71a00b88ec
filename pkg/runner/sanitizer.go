package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize bounds one line of keys, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "ABACUS_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// glyphs maps typographic operator signs, as pasted from documents or phone
// keyboards, to the ASCII keys ParseKey understands.
var glyphs = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"−", "-",
	"＋", "+",
	"＝", "=",
)

// SanitizeInput prepares a line of keys for ParseLine using the limit from
// EnvMaxInputSize, or DefaultMaxInputSize.
func SanitizeInput(line string) (string, error) {
	return SanitizeInputLimit(line, 0)
}

// SanitizeInputLimit rejects oversized or non-UTF-8 lines, drops control
// characters other than whitespace (terminal escapes, NUL, BEL) and normalizes
// operator glyphs. A limit <= 0 falls back to the environment or the default.
//
// Oversized lines are rejected, never truncated: a cut line would press a
// different set of keys.
func SanitizeInputLimit(line string, limit int) (string, error) {
	if limit <= 0 {
		limit = maxInputSize()
	}
	if n := len(line); n > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, n, limit)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	line = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, line)
	return glyphs.Replace(line), nil
}

func maxInputSize() int {
	if v, ok := os.LookupEnv(EnvMaxInputSize); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxInputSize
}

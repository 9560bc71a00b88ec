package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")

	out := buf.String()
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "|_.__/")
	// A bytes.Buffer is not a terminal, so no escape sequences are written.
	assert.NotContains(t, out, "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(0)
	require.NoError(t, err)

	out, err := render("| # | Expression | Result |\n|---:|:---|---:|\n| 1 | 7 + 8 | 15 |\n")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "7 + 8"))
	assert.Contains(t, out, "15")
}

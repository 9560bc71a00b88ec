package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// NewRenderer renders REPL replies (the display and history list) as terminal markdown.
// The style follows the terminal background; width 0 disables word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
